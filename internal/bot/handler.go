package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/trainquery/trainbot/internal/format"
	"github.com/trainquery/trainbot/internal/models"
	"github.com/trainquery/trainbot/internal/rail"
)

const (
	startMessage = "👋 Hi! Send /journey followed by origin and destination, e.g.\n" +
		"/journey London Waterloo to Winchester at 17:30\n\n" +
		"Need a station code? Try /stations <search term>."

	helpMessage = "Usage:\n" +
		"  /journey <origin> to <destination> [at HH:MM]\n" +
		"  /stations <search term>\n\n" +
		"Examples:\n" +
		"  /journey Manchester Piccadilly to London Euston\n" +
		"  /journey Leeds to York at 09:15\n" +
		"  /stations Paddington"

	unknownMessage = "Unknown command. Send /help for usage."

	genericFailureMessage = "Something went wrong fetching rail data. Please try again later."
)

const resolveCandidateLimit = 3

var railStationSuffix = regexp.MustCompile(`\bRail (Station|Stn)\b`)

// Handler turns one inbound command line into one composed text reply. All
// rail data flows through the fallback orchestrator; parse and resolution
// failures short-circuit with a user-facing message, anything unexpected is
// logged in full and reduced to a generic failure line.
type Handler struct {
	orc          *rail.Orchestrator
	defaultLimit int
	log          zerolog.Logger
}

func NewHandler(orc *rail.Orchestrator, defaultLimit int, log zerolog.Logger) *Handler {
	return &Handler{
		orc:          orc,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// Dispatch routes a command line to its handler and returns the reply text.
func (h *Handler) Dispatch(ctx context.Context, text string) string {
	verb, args := splitCommand(text)

	switch verb {
	case "/start":
		return startMessage
	case "/help":
		return helpMessage
	case "/stations":
		return h.stations(ctx, args)
	case "/journey":
		return h.journey(ctx, args)
	default:
		return unknownMessage
	}
}

func (h *Handler) stations(ctx context.Context, query string) string {
	if query == "" {
		return "Please supply a station name, e.g. /stations York"
	}

	result, err := h.orc.SearchStations(ctx, query, 5, true)
	if err != nil {
		var allFailed *rail.AllProvidersFailed
		if errors.As(err, &allFailed) {
			return "All data providers failed while searching for stations:\n" +
				strings.Join(allFailed.Messages, "\n")
		}
		h.log.Error().Err(err).Str("query", query).Msg("Station search failed unexpectedly")
		return genericFailureMessage
	}

	if len(result.Value) == 0 {
		return "No stations found for that search term."
	}

	lines := make([]string, 0, len(result.Value))
	for _, station := range result.Value {
		lines = append(lines, fmt.Sprintf("%s — %s", station.Name, station.StationCode))
	}

	header := "Station matches"
	if result.Provider != "" {
		header = fmt.Sprintf("Station matches (via %s)", result.Provider)
	}
	for _, diagnostic := range result.Diagnostics {
		header += "\nFallback note: " + diagnostic
	}
	return header + ":\n" + strings.Join(lines, "\n")
}

func (h *Handler) journey(ctx context.Context, query string) string {
	if query == "" {
		return "Please provide origin and destination, e.g. /journey Bristol Temple Meads to Bath Spa"
	}

	request, err := ParseJourneyQuery(query, time.Now())
	if err != nil {
		return err.Error()
	}

	originSearch, err := h.orc.SearchStations(ctx, request.OriginQuery, resolveCandidateLimit, true)
	if err != nil {
		return h.resolutionFailure(err, "resolving stations")
	}
	destinationSearch, err := h.orc.SearchStations(ctx, request.DestinationQuery, resolveCandidateLimit, true)
	if err != nil {
		return h.resolutionFailure(err, "resolving stations")
	}

	if len(originSearch.Value) == 0 {
		return "Couldn't find a station matching the origin."
	}
	if len(destinationSearch.Value) == 0 {
		return "Couldn't find a station matching the destination."
	}

	origin := originSearch.Value[0]
	destination := destinationSearch.Value[0]

	departuresResult, err := h.orc.GetDepartures(ctx, origin.StationCode, rail.DepartureOptions{
		DestinationCode: destination.StationCode,
		Limit:           h.defaultLimit,
		When:            request.When,
	}, true)
	if err != nil {
		return h.resolutionFailure(err, "fetching departures")
	}

	message := format.Departures(
		tidyStationName(origin.Name),
		tidyStationName(destination.Name),
		departuresResult.Value,
		request.When,
	)

	suffix := formatAlternatives(originSearch.Value, destinationSearch.Value)

	var diagnostics []string
	for _, d := range originSearch.Diagnostics {
		diagnostics = append(diagnostics, "Origin fallback: "+d)
	}
	for _, d := range destinationSearch.Diagnostics {
		diagnostics = append(diagnostics, "Destination fallback: "+d)
	}
	for _, d := range departuresResult.Diagnostics {
		diagnostics = append(diagnostics, "Departure fallback: "+d)
	}

	providerNote := ""
	if name := firstAttribution(departuresResult.Provider, originSearch.Provider, destinationSearch.Provider); name != "" {
		providerNote = "\n\nData source: " + name
	}

	diagnosticNote := ""
	if len(diagnostics) > 0 {
		diagnosticNote = "\n" + strings.Join(diagnostics, "\n")
	}

	return message + suffix + providerNote + diagnosticNote
}

func (h *Handler) resolutionFailure(err error, action string) string {
	var allFailed *rail.AllProvidersFailed
	if errors.As(err, &allFailed) {
		return fmt.Sprintf("All data providers failed while %s:\n%s",
			action, strings.Join(allFailed.Messages, "\n"))
	}
	h.log.Error().Err(err).Str("action", action).Msg("Journey handling failed unexpectedly")
	return genericFailureMessage
}

// splitCommand separates the leading verb from its arguments. Telegram
// clients may suffix the verb with the bot's username ("/help@trainbot").
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	verb, args, _ := strings.Cut(text, " ")
	if at := strings.Index(verb, "@"); at > 0 {
		verb = verb[:at]
	}
	return verb, strings.TrimSpace(args)
}

func tidyStationName(name string) string {
	return strings.TrimSpace(railStationSuffix.ReplaceAllString(name, ""))
}

// firstAttribution picks the first non-empty provider name, preferring the
// departures call over the origin and destination searches.
func firstAttribution(names ...string) string {
	for _, name := range names {
		if name != "" {
			return name
		}
	}
	return ""
}

func formatAlternatives(originCandidates, destinationCandidates []models.StationSummary) string {
	originSuffix := formatStationCandidates("Origin suggestions", originCandidates)
	destinationSuffix := formatStationCandidates("Destination suggestions", destinationCandidates)
	if originSuffix == "" && destinationSuffix == "" {
		return ""
	}
	return "\n\n" + originSuffix + destinationSuffix
}

// formatStationCandidates lists the second and third ranked matches as
// alternative suggestions. The first candidate is already the chosen one.
func formatStationCandidates(label string, candidates []models.StationSummary) string {
	if len(candidates) <= 1 {
		return ""
	}

	end := len(candidates)
	if end > 3 {
		end = 3
	}
	var lines []string
	for _, station := range candidates[1:end] {
		lines = append(lines, fmt.Sprintf("- %s — %s", station.Name, station.StationCode))
	}
	return label + ":\n" + strings.Join(lines, "\n") + "\n"
}
