package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trainquery/trainbot/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func TestDeparturesEmptyBoard(t *testing.T) {
	got := Departures("Leeds", "York", nil, nil)
	assert.Equal(t, "Next services from Leeds to York\nNo matching services found.", got)
}

func TestDeparturesHeaderVariants(t *testing.T) {
	requested := time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)

	got := Departures("Leeds", "", nil, &requested)
	assert.Equal(t, "Next services departing Leeds after 09:15 on 01 May\nNo matching services found.", got)
}

func TestDeparturesFullBlock(t *testing.T) {
	departures := []models.Departure{
		{
			ServiceID:             "L12345",
			DestinationName:       "York",
			Platform:              strPtr("4"),
			AimedDepartureTime:    strPtr("09:30"),
			ExpectedDepartureTime: strPtr("09:33"),
			Status:                "LATE",
			OperatorName:          strPtr("Northern"),
			CallingPoints: []models.CallingPoint{
				{StationName: "Cross Gates"},
				{StationName: "Garforth"},
			},
		},
		{
			ServiceID:             "L67890",
			DestinationName:       "Scarborough",
			AimedDepartureTime:    strPtr("10:00"),
			ExpectedDepartureTime: strPtr("10:00"),
			Status:                "ON TIME",
		},
	}

	got := Departures("Leeds", "York", departures, nil)

	assert.Contains(t, got, "1. Leeds ➜ York")
	assert.Contains(t, got, "Due 09:30 (est. 09:33, LATE)")
	assert.Contains(t, got, "Platform 4")
	assert.Contains(t, got, "Operator: Northern")
	assert.Contains(t, got, "Calling at: Cross Gates, Garforth")

	// Matching aimed/expected collapses to a single time; missing
	// platform and operator get explicit markers.
	assert.Contains(t, got, "Due 10:00 (ON TIME)")
	assert.Contains(t, got, "Platform TBC")
	assert.Contains(t, got, "Operator: L67890")
	assert.Contains(t, got, "Calling points data unavailable.")
}

func TestDeparturesDestinationFallsBackToService(t *testing.T) {
	departures := []models.Departure{
		{ServiceID: "S1", DestinationName: "Hull", Status: "UNKNOWN"},
	}

	got := Departures("Leeds", "", departures, nil)
	assert.Contains(t, got, "1. Leeds ➜ Hull")
	assert.Contains(t, got, "Due ??:?? (UNKNOWN)")
}

func TestDeparturesCallingPointTruncation(t *testing.T) {
	points := make([]models.CallingPoint, 8)
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for i, name := range names {
		points[i] = models.CallingPoint{StationName: name}
	}
	departures := []models.Departure{
		{ServiceID: "S1", Status: "ON TIME", CallingPoints: points},
	}

	got := Departures("Leeds", "York", departures, nil)
	assert.Contains(t, got, "Calling at: A, B, C, D, E, F…")
	assert.False(t, strings.Contains(got, "G"), "only the first six stops are listed")
}

func TestDeparturesOperatorUnknownMarker(t *testing.T) {
	departures := []models.Departure{
		{Status: "UNKNOWN"},
	}

	got := Departures("Leeds", "York", departures, nil)
	assert.Contains(t, got, "Operator: Unknown")
}
