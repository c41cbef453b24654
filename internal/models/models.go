package models

import "time"

// StationSummary is one match for a free-text station search. The code is
// unique within a single provider's answer only.
type StationSummary struct {
	Name        string `json:"name"`
	StationCode string `json:"stationCode"`
}

// CallingPoint is an intermediate or terminal stop of a service, in the
// order reported by the source. Times are pointers so that a genuinely
// absent time is distinguishable from an empty string.
type CallingPoint struct {
	StationName         string  `json:"stationName"`
	StationCode         string  `json:"stationCode"`
	AimedArrivalTime    *string `json:"aimedArrivalTime,omitempty"`
	ExpectedArrivalTime *string `json:"expectedArrivalTime,omitempty"`
}

// Departure is a single service leaving an origin station, normalized from
// whichever backend produced it. Status is always set; adapters fall back
// to "UNKNOWN" rather than leaving it empty.
type Departure struct {
	ServiceID             string         `json:"serviceId"`
	DestinationName       string         `json:"destinationName"`
	DestinationCode       string         `json:"destinationCode"`
	Platform              *string        `json:"platform,omitempty"`
	AimedDepartureTime    *string        `json:"aimedDepartureTime,omitempty"`
	ExpectedDepartureTime *string        `json:"expectedDepartureTime,omitempty"`
	Status                string         `json:"status"`
	CallingPoints         []CallingPoint `json:"callingPoints"`
	OperatorName          *string        `json:"operatorName,omitempty"`
}

// JourneyRequest is the structured form of a parsed journey query.
type JourneyRequest struct {
	OriginQuery      string
	DestinationQuery string
	When             *time.Time
}
