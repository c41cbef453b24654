package rail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trainquery/trainbot/internal/models"
)

// Result carries an orchestrated answer with its attribution. Provider is
// empty when no backend produced the value. Diagnostics holds one line per
// provider that errored during the call, in provider order.
type Result[T any] struct {
	Value       T
	Provider    string
	Diagnostics []string
}

// Orchestrator invokes an ordered list of providers sequentially,
// tolerating individual failures. A provider error becomes a diagnostic
// line and the next provider is tried; only when every provider errors does
// the call fail, with the full diagnostic list attached.
//
// Providers are never invoked concurrently. A slow backend delays the call
// but cannot race against a peer.
type Orchestrator struct {
	providers []Provider
	log       zerolog.Logger
}

// NewOrchestrator wires an ordered, non-empty provider list to a structured
// log sink for fallback diagnostics.
func NewOrchestrator(providers []Provider, log zerolog.Logger) (*Orchestrator, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	return &Orchestrator{providers: providers, log: log}, nil
}

// SearchStations runs a station search across the providers. With
// retryOnEmpty set, a successful but empty answer is remembered and the
// next provider is tried for a better one.
func (o *Orchestrator) SearchStations(ctx context.Context, query string, limit int, retryOnEmpty bool) (Result[[]models.StationSummary], error) {
	return fallback(o, retryOnEmpty, func(p Provider) ([]models.StationSummary, error) {
		return p.SearchStations(ctx, query, limit)
	})
}

// GetDepartures runs a departure board request across the providers.
func (o *Orchestrator) GetDepartures(ctx context.Context, originCode string, opts DepartureOptions, retryOnEmpty bool) (Result[[]models.Departure], error) {
	return fallback(o, retryOnEmpty, func(p Provider) ([]models.Departure, error) {
		return p.GetDepartures(ctx, originCode, opts)
	})
}

func fallback[T any](o *Orchestrator, retryOnEmpty bool, call func(Provider) ([]T, error)) (Result[[]T], error) {
	var diagnostics []string
	var remembered []T
	haveRemembered := false

	for _, provider := range o.providers {
		value, err := call(provider)
		if err != nil {
			diagnostic := fmt.Sprintf("%s: %s", provider.Name(), err.Error())
			diagnostics = append(diagnostics, diagnostic)
			o.log.Warn().
				Str("provider", provider.Name()).
				Err(err).
				Msg("Provider failed, falling back")
			continue
		}

		if len(value) > 0 || !retryOnEmpty {
			return Result[[]T]{
				Value:       value,
				Provider:    provider.Name(),
				Diagnostics: diagnostics,
			}, nil
		}

		// Empty but successful: keep as the best answer so far and see
		// whether a later provider has data.
		remembered = value
		haveRemembered = true
	}

	if haveRemembered {
		// An empty answer carries no attribution: no provider actually
		// produced data for it.
		return Result[[]T]{
			Value:       remembered,
			Diagnostics: diagnostics,
		}, nil
	}

	if len(diagnostics) > 0 {
		return Result[[]T]{}, &AllProvidersFailed{Messages: diagnostics}
	}

	return Result[[]T]{Value: []T{}}, nil
}
