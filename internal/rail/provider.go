package rail

import (
	"context"
	"time"

	"github.com/trainquery/trainbot/internal/models"
)

// Provider abstracts a rail data backend. Implementations are stateless
// aside from fixed credentials and base URL and are safe to reuse across
// requests.
//
// A structural "no data" answer from the backend (a not-found class
// response) must come back as an empty slice with a nil error; only
// transport failures return a *ProviderError.
type Provider interface {
	Name() string
	SearchStations(ctx context.Context, query string, limit int) ([]models.StationSummary, error)
	GetDepartures(ctx context.Context, originCode string, opts DepartureOptions) ([]models.Departure, error)
}

// DepartureOptions narrows a departure board request.
type DepartureOptions struct {
	// DestinationCode limits results to services calling at that station.
	DestinationCode string
	// Limit caps the number of departures returned.
	Limit int
	// When drops services departing strictly before the given instant.
	When *time.Time
}
