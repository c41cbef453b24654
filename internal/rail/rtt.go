package rail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/trainquery/trainbot/internal/models"
	"github.com/trainquery/trainbot/pkg/http/client"
)

const rttProviderName = "RealTimeTrains"

// RTTProvider reads the RealTimeTrains JSON API. Station search on this
// backend is case-sensitive server-side, so SearchStations retries an
// ordered set of casing variants of the query.
type RTTProvider struct {
	httpClient *client.Client
}

func NewRTTProvider(httpClient *client.Client) *RTTProvider {
	return &RTTProvider{httpClient: httpClient}
}

func (p *RTTProvider) Name() string {
	return rttProviderName
}

type rttLocation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CRS         string `json:"crs"`
}

type rttCallPoint struct {
	Location          rttLocation `json:"location"`
	GbttBookedArrival string      `json:"gbttBookedArrival"`
	GbttBookedPass    string      `json:"gbttBookedPass"`
	RealtimeArrival   string      `json:"realtimeArrival"`
	RealtimePass      string      `json:"realtimePass"`
}

type rttLocationDetail struct {
	Destination             []rttLocation  `json:"destination"`
	GbttBookedDeparture     string         `json:"gbttBookedDeparture"`
	RealtimeDeparture       string         `json:"realtimeDeparture"`
	RealtimeDepartureActual string         `json:"realtimeDepartureActual"`
	Platform                string         `json:"platform"`
	DisplayAs               string         `json:"displayAs"`
	IsCancelled             bool           `json:"isCancelled"`
	CallPoints              []rttCallPoint `json:"callPoints"`
}

type rttService struct {
	ServiceUID     string            `json:"serviceUid"`
	RunDate        string            `json:"runDate"`
	AtocCode       string            `json:"atocCode"`
	AtocName       string            `json:"atocName"`
	LocationDetail rttLocationDetail `json:"locationDetail"`
}

type rttSearchResponse struct {
	Location  *rttLocation  `json:"location"`
	Locations []rttLocation `json:"locations"`
	Services  []rttService  `json:"services"`
}

func (p *RTTProvider) SearchStations(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	// The backend matches case-sensitively. Try the query as given first,
	// then common re-casings, stopping at the first variant with matches.
	var verbatim *rttSearchResponse
	for i, variant := range searchVariants(query) {
		payload, found, err := p.getSearch(ctx, variant)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			verbatim = payload
		}
		if !found || payload == nil {
			continue
		}

		matches := stationsFromLocations(payload.Locations, limit)
		if len(matches) > 0 {
			return matches, nil
		}
	}

	// No variant produced a match list, but the backend's best guess for
	// the verbatim query may still carry a usable station.
	if verbatim != nil && verbatim.Location != nil {
		if s, ok := stationFromLocation(*verbatim.Location); ok {
			return []models.StationSummary{s}, nil
		}
	}

	return []models.StationSummary{}, nil
}

func (p *RTTProvider) GetDepartures(ctx context.Context, originCode string, opts DepartureOptions) ([]models.Departure, error) {
	origin := strings.ToUpper(originCode)
	destination := strings.ToUpper(opts.DestinationCode)

	var path string
	if destination == "" {
		path = "/api/v1/json/dep/" + url.PathEscape(origin)
	} else {
		path = "/api/v1/json/search/" + url.PathEscape(origin) + "/to/" + url.PathEscape(destination)
	}

	resp, err := p.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, NewProviderError(rttProviderName, "requesting departures", err)
	}
	payload, found, err := p.decode(resp, "requesting departures")
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.Departure{}, nil
	}

	departures := make([]models.Departure, 0, len(payload.Services))
	for _, service := range payload.Services {
		detail := service.LocationDetail
		aimed := optional(detail.GbttBookedDeparture)
		expected := firstNonEmpty(detail.RealtimeDeparture, detail.GbttBookedDeparture)

		if departedBefore(service.RunDate, detail.GbttBookedDeparture, opts.When) {
			continue
		}

		destName, destCode := selectDestination(detail.Destination)

		departures = append(departures, models.Departure{
			ServiceID:             service.ServiceUID,
			DestinationName:       destName,
			DestinationCode:       destCode,
			Platform:              optional(detail.Platform),
			AimedDepartureTime:    aimed,
			ExpectedDepartureTime: expected,
			Status:                deriveStatus(detail),
			CallingPoints:         parseCallPoints(detail.CallPoints),
			OperatorName:          firstNonEmpty(service.AtocName, service.AtocCode),
		})
	}

	if opts.Limit > 0 && len(departures) > opts.Limit {
		departures = departures[:opts.Limit]
	}
	return departures, nil
}

func (p *RTTProvider) getSearch(ctx context.Context, query string) (*rttSearchResponse, bool, error) {
	resp, err := p.httpClient.Get(ctx, "/api/v1/json/search/"+url.PathEscape(query), nil)
	if err != nil {
		return nil, false, NewProviderError(rttProviderName, "searching for stations", err)
	}
	return p.decode(resp, "searching for stations")
}

// decode turns a response into a payload. A not-found answer means the
// backend has no data for the query, reported as found=false with no error.
func (p *RTTProvider) decode(resp *client.Response, action string) (*rttSearchResponse, bool, error) {
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode >= 400 {
		return nil, false, &ProviderError{
			Provider: rttProviderName,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("while %s: %s", action, truncateBody(resp.Body)),
		}
	}

	var payload rttSearchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, false, NewProviderError(rttProviderName,
			fmt.Sprintf("non-JSON response while %s (status %d, content-type %s): %s",
				action, resp.StatusCode, resp.ContentType, truncateBody(resp.Body)),
			err)
	}
	return &payload, true, nil
}

// departedBefore reports whether a service should be dropped for a
// requested departure time. Only services carrying both a run date and an
// aimed time can be excluded; anything with either field missing or
// unparsable is retained.
func departedBefore(runDate, aimed string, when *time.Time) bool {
	if when == nil || runDate == "" || aimed == "" {
		return false
	}
	runAt, err := time.ParseInLocation("2006-01-02 15:04", runDate+" "+aimed, when.Location())
	if err != nil {
		return false
	}
	return runAt.Before(*when)
}

func selectDestination(destinations []rttLocation) (string, string) {
	if len(destinations) == 0 {
		return "Unknown", ""
	}
	dest := destinations[0]
	name := dest.Description
	if name == "" {
		name = dest.Name
	}
	if name == "" {
		name = "Unknown"
	}
	return name, dest.CRS
}

func parseCallPoints(points []rttCallPoint) []models.CallingPoint {
	parsed := make([]models.CallingPoint, 0, len(points))
	for _, point := range points {
		name := point.Location.Description
		if name == "" {
			name = point.Location.Name
		}
		parsed = append(parsed, models.CallingPoint{
			StationName:         name,
			StationCode:         point.Location.CRS,
			AimedArrivalTime:    firstNonEmpty(point.GbttBookedArrival, point.GbttBookedPass),
			ExpectedArrivalTime: firstNonEmpty(point.RealtimeArrival, point.RealtimePass),
		})
	}
	return parsed
}

func deriveStatus(detail rttLocationDetail) string {
	if detail.IsCancelled {
		return "CANCELLED"
	}
	if detail.DisplayAs != "" {
		return strings.ToUpper(detail.DisplayAs)
	}
	if detail.RealtimeDepartureActual != "" {
		return "DEPARTED " + detail.RealtimeDepartureActual
	}
	if detail.RealtimeDeparture != "" {
		return "EXPECTED " + detail.RealtimeDeparture
	}
	return "UNKNOWN"
}

func stationsFromLocations(locations []rttLocation, limit int) []models.StationSummary {
	var matches []models.StationSummary
	for _, item := range locations {
		s, ok := stationFromLocation(item)
		if !ok {
			continue
		}
		matches = append(matches, s)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches
}

func stationFromLocation(item rttLocation) (models.StationSummary, bool) {
	name := item.Name
	if name == "" {
		name = item.Description
	}
	if item.CRS == "" || name == "" {
		return models.StationSummary{}, false
	}
	return models.StationSummary{Name: name, StationCode: item.CRS}, true
}

// searchVariants returns the ordered casings to try against the
// case-sensitive search endpoint, without duplicates.
func searchVariants(query string) []string {
	candidates := []string{
		query,
		strings.ToLower(query),
		strings.ToUpper(query),
		titleCase(query),
	}
	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if seen[v] {
			continue
		}
		seen[v] = true
		variants = append(variants, v)
	}
	return variants
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// optional converts a decoded string field into a presence-aware value.
// These backends omit fields rather than sending empty strings, so an
// empty value means absent.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v != "" {
			return &v
		}
	}
	return nil
}
