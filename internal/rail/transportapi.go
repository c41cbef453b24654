package rail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trainquery/trainbot/internal/models"
	"github.com/trainquery/trainbot/pkg/http/client"
)

const transportAPIProviderName = "TransportAPI"

// TransportAPIProvider reads the TransportAPI live departures endpoints.
// Unlike RealTimeTrains, destination and requested-time filtering happen
// server-side through request parameters.
type TransportAPIProvider struct {
	httpClient *client.Client
	appID      string
	appKey     string
}

func NewTransportAPIProvider(httpClient *client.Client, appID, appKey string) *TransportAPIProvider {
	return &TransportAPIProvider{
		httpClient: httpClient,
		appID:      appID,
		appKey:     appKey,
	}
}

func (p *TransportAPIProvider) Name() string {
	return transportAPIProviderName
}

type transportPlace struct {
	Name        string `json:"name"`
	StationCode string `json:"station_code"`
}

type transportPlacesResponse struct {
	Member []transportPlace `json:"member"`
}

type transportCallingPoint struct {
	StationName         string  `json:"station_name"`
	StationCode         string  `json:"station_code"`
	AimedArrivalTime    *string `json:"aimed_arrival_time"`
	ExpectedArrivalTime *string `json:"expected_arrival_time"`
}

type transportStationDetail struct {
	CallingAt []transportCallingPoint `json:"calling_at"`
}

type transportDeparture struct {
	Service               string                  `json:"service"`
	TrainUID              string                  `json:"train_uid"`
	DestinationName       json.RawMessage         `json:"destination_name"`
	Platform              *string                 `json:"platform"`
	AimedDepartureTime    *string                 `json:"aimed_departure_time"`
	ExpectedDepartureTime *string                 `json:"expected_departure_time"`
	Status                string                  `json:"status"`
	OperatorName          *string                 `json:"operator_name"`
	StationDetail         *transportStationDetail `json:"station_detail"`
	CallingAt             []transportCallingPoint `json:"calling_at"`
}

type transportDeparturesResponse struct {
	Departures *struct {
		All []transportDeparture `json:"all"`
	} `json:"departures"`
}

func (p *TransportAPIProvider) SearchStations(ctx context.Context, query string, limit int) ([]models.StationSummary, error) {
	params := p.authParams()
	params.Set("query", query)
	params.Set("type", "train_station")
	params.Set("limit", strconv.Itoa(limit))

	resp, err := p.httpClient.Get(ctx, "/uk/places.json", params)
	if err != nil {
		return nil, NewProviderError(transportAPIProviderName, "searching for stations", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return []models.StationSummary{}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, p.statusError(resp, "searching for stations")
	}

	var payload transportPlacesResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, p.decodeError(resp, "searching for stations", err)
	}

	matches := make([]models.StationSummary, 0, len(payload.Member))
	for _, item := range payload.Member {
		if item.StationCode == "" {
			continue
		}
		matches = append(matches, models.StationSummary{
			Name:        item.Name,
			StationCode: item.StationCode,
		})
	}
	return matches, nil
}

func (p *TransportAPIProvider) GetDepartures(ctx context.Context, originCode string, opts DepartureOptions) ([]models.Departure, error) {
	params := p.authParams()
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("station_detail", "calling_at")
	if opts.DestinationCode != "" {
		params.Set("calling_at", opts.DestinationCode)
	}
	if opts.When != nil {
		params.Set("date", opts.When.Format("2006-01-02"))
		params.Set("time", opts.When.Format("15:04"))
	}

	path := "/uk/train/station/" + url.PathEscape(originCode) + "/live.json"
	resp, err := p.httpClient.Get(ctx, path, params)
	if err != nil {
		return nil, NewProviderError(transportAPIProviderName, "requesting departures", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return []models.Departure{}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, p.statusError(resp, "requesting departures")
	}

	var payload transportDeparturesResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, p.decodeError(resp, "requesting departures", err)
	}
	if payload.Departures == nil {
		return nil, NewProviderError(transportAPIProviderName,
			"unexpected payload structure; 'departures.all' missing", nil)
	}

	departures := make([]models.Departure, 0, len(payload.Departures.All))
	for _, item := range payload.Departures.All {
		departures = append(departures, parseTransportDeparture(item))
	}
	return departures, nil
}

func parseTransportDeparture(item transportDeparture) models.Departure {
	rawPoints := item.CallingAt
	if item.StationDetail != nil && len(item.StationDetail.CallingAt) > 0 {
		rawPoints = item.StationDetail.CallingAt
	}
	callingPoints := make([]models.CallingPoint, 0, len(rawPoints))
	for _, point := range rawPoints {
		callingPoints = append(callingPoints, models.CallingPoint{
			StationName:         point.StationName,
			StationCode:         point.StationCode,
			AimedArrivalTime:    point.AimedArrivalTime,
			ExpectedArrivalTime: point.ExpectedArrivalTime,
		})
	}

	destinationName := parseDestinationName(item.DestinationName)

	// This vendor only names the destination; recover its code from the
	// calling points when one of them matches.
	destinationCode := ""
	for _, point := range callingPoints {
		if point.StationName == destinationName {
			destinationCode = point.StationCode
			break
		}
	}

	status := item.Status
	if status == "" {
		status = "UNKNOWN"
	}

	return models.Departure{
		ServiceID:             item.Service,
		DestinationName:       destinationName,
		DestinationCode:       destinationCode,
		Platform:              item.Platform,
		AimedDepartureTime:    item.AimedDepartureTime,
		ExpectedDepartureTime: item.ExpectedDepartureTime,
		Status:                status,
		CallingPoints:         callingPoints,
		OperatorName:          item.OperatorName,
	}
}

// parseDestinationName handles the vendor sending either a bare string or a
// list of destination names; the first entry wins for lists.
func parseDestinationName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "Unknown"
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return "Unknown"
}

func (p *TransportAPIProvider) authParams() url.Values {
	params := url.Values{}
	params.Set("app_id", p.appID)
	params.Set("app_key", p.appKey)
	return params
}

func (p *TransportAPIProvider) statusError(resp *client.Response, action string) *ProviderError {
	return &ProviderError{
		Provider: transportAPIProviderName,
		Status:   resp.StatusCode,
		Message:  fmt.Sprintf("while %s: %s", action, truncateBody(resp.Body)),
	}
}

func (p *TransportAPIProvider) decodeError(resp *client.Response, action string, err error) *ProviderError {
	return NewProviderError(transportAPIProviderName,
		fmt.Sprintf("non-JSON response while %s (status %d, content-type %s): %s",
			action, resp.StatusCode, resp.ContentType, truncateBody(resp.Body)),
		err)
}
