// Package format renders normalized departure boards as plain text replies.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/trainquery/trainbot/internal/models"
)

const maxCallingPoints = 6

// Departures renders a header plus one block per departure. An empty board
// still gets its header, followed by an explicit no-services line.
func Departures(originName, destinationName string, departures []models.Departure, requestedTime *time.Time) string {
	header := formatHeader(originName, destinationName, requestedTime)
	if len(departures) == 0 {
		return header + "\nNo matching services found."
	}

	blocks := []string{header}
	for i, service := range departures {
		destination := destinationName
		if destination == "" {
			destination = service.DestinationName
		}
		block := strings.Join([]string{
			fmt.Sprintf("%d. %s ➜ %s", i+1, originName, destination),
			formatTiming(service),
			formatPlatform(service.Platform),
			"Operator: " + operatorName(service),
			formatCallingPoints(service.CallingPoints),
		}, "\n")
		blocks = append(blocks, block)
	}

	return strings.Join(blocks, "\n\n")
}

func formatHeader(originName, destinationName string, requestedTime *time.Time) string {
	var base string
	if destinationName != "" {
		base = fmt.Sprintf("Next services from %s to %s", originName, destinationName)
	} else {
		base = fmt.Sprintf("Next services departing %s", originName)
	}

	if requestedTime == nil {
		return base
	}
	return base + " after " + requestedTime.Format("15:04 on 02 Jan")
}

// formatTiming shows both aimed and expected times plus the status when
// they differ, otherwise just the aimed time and status.
func formatTiming(service models.Departure) string {
	aimed := "??:??"
	if service.AimedDepartureTime != nil {
		aimed = *service.AimedDepartureTime
	}
	if service.ExpectedDepartureTime != nil && *service.ExpectedDepartureTime != aimed {
		return fmt.Sprintf("Due %s (est. %s, %s)", aimed, *service.ExpectedDepartureTime, service.Status)
	}
	return fmt.Sprintf("Due %s (%s)", aimed, service.Status)
}

func formatPlatform(platform *string) string {
	if platform == nil || *platform == "" {
		return "Platform TBC"
	}
	return "Platform " + *platform
}

func operatorName(service models.Departure) string {
	if service.OperatorName != nil && *service.OperatorName != "" {
		return *service.OperatorName
	}
	if service.ServiceID != "" {
		return service.ServiceID
	}
	return "Unknown"
}

func formatCallingPoints(points []models.CallingPoint) string {
	if len(points) == 0 {
		return "Calling points data unavailable."
	}

	names := make([]string, 0, len(points))
	for _, point := range points {
		names = append(names, point.StationName)
	}

	suffix := ""
	if len(names) > maxCallingPoints {
		names = names[:maxCallingPoints]
		suffix = "…"
	}
	return "Calling at: " + strings.Join(names, ", ") + suffix
}
