package rail

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainquery/trainbot/internal/models"
)

type fakeProvider struct {
	name       string
	stations   []models.StationSummary
	departures []models.Departure
	err        error
	calls      int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) SearchStations(_ context.Context, _ string, _ int) ([]models.StationSummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stations, nil
}

func (f *fakeProvider) GetDepartures(_ context.Context, _ string, _ DepartureOptions) ([]models.Departure, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.departures, nil
}

func newTestOrchestrator(t *testing.T, providers ...Provider) *Orchestrator {
	t.Helper()
	orc, err := NewOrchestrator(providers, zerolog.Nop())
	require.NoError(t, err)
	return orc
}

func TestNewOrchestratorRequiresProviders(t *testing.T) {
	_, err := NewOrchestrator(nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestFallbackFirstProviderErrorsSecondSucceeds(t *testing.T) {
	failing := &fakeProvider{
		name: "primary",
		err:  NewProviderError("primary", "connection refused", nil),
	}
	working := &fakeProvider{
		name:     "secondary",
		stations: []models.StationSummary{{Name: "York", StationCode: "YRK"}},
	}
	orc := newTestOrchestrator(t, failing, working)

	result, err := orc.SearchStations(context.Background(), "york", 5, true)

	require.NoError(t, err)
	assert.Equal(t, "secondary", result.Provider)
	assert.Len(t, result.Value, 1)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "primary")
}

func TestFallbackAllEmptyNoErrors(t *testing.T) {
	first := &fakeProvider{name: "primary", stations: []models.StationSummary{}}
	second := &fakeProvider{name: "secondary", stations: []models.StationSummary{}}
	orc := newTestOrchestrator(t, first, second)

	result, err := orc.SearchStations(context.Background(), "nowhere", 5, true)

	require.NoError(t, err)
	assert.Empty(t, result.Value)
	assert.Empty(t, result.Provider)
	assert.Empty(t, result.Diagnostics)
	// Both providers were consulted before settling on the empty answer.
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFallbackAllProvidersError(t *testing.T) {
	first := &fakeProvider{name: "primary", err: NewProviderError("primary", "boom", nil)}
	second := &fakeProvider{name: "secondary", err: NewProviderError("secondary", "bust", nil)}
	orc := newTestOrchestrator(t, first, second)

	_, err := orc.SearchStations(context.Background(), "york", 5, true)

	var allFailed *AllProvidersFailed
	require.ErrorAs(t, err, &allFailed)
	require.Len(t, allFailed.Messages, 2)
	assert.Contains(t, allFailed.Messages[0], "primary")
	assert.Contains(t, allFailed.Messages[1], "secondary")
}

func TestFallbackEmptyThenNonEmpty(t *testing.T) {
	empty := &fakeProvider{name: "primary", departures: []models.Departure{}}
	full := &fakeProvider{
		name:       "secondary",
		departures: []models.Departure{{ServiceID: "S1", Status: "ON TIME"}},
	}
	orc := newTestOrchestrator(t, empty, full)

	result, err := orc.GetDepartures(context.Background(), "LDS", DepartureOptions{Limit: 5}, true)

	require.NoError(t, err)
	assert.Equal(t, "secondary", result.Provider)
	assert.Len(t, result.Value, 1)
	assert.Empty(t, result.Diagnostics)
}

func TestFallbackRetryOnEmptyDisabledReturnsFirstSuccess(t *testing.T) {
	empty := &fakeProvider{name: "primary", departures: []models.Departure{}}
	full := &fakeProvider{
		name:       "secondary",
		departures: []models.Departure{{ServiceID: "S1", Status: "ON TIME"}},
	}
	orc := newTestOrchestrator(t, empty, full)

	result, err := orc.GetDepartures(context.Background(), "LDS", DepartureOptions{Limit: 5}, false)

	require.NoError(t, err)
	assert.Equal(t, "primary", result.Provider)
	assert.Empty(t, result.Value)
	assert.Equal(t, 0, full.calls, "second provider must not be consulted")
}

func TestFallbackErrorThenEmptyKeepsDiagnostics(t *testing.T) {
	failing := &fakeProvider{name: "primary", err: NewProviderError("primary", "rate limited", nil)}
	empty := &fakeProvider{name: "secondary", stations: []models.StationSummary{}}
	orc := newTestOrchestrator(t, failing, empty)

	result, err := orc.SearchStations(context.Background(), "york", 5, true)

	require.NoError(t, err)
	assert.Empty(t, result.Provider, "an empty answer is not attributed")
	assert.Empty(t, result.Value)
	require.Len(t, result.Diagnostics, 1)
	assert.Contains(t, result.Diagnostics[0], "rate limited")
}
