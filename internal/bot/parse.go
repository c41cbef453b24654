package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trainquery/trainbot/internal/models"
)

// ParseError is a user-correctable failure to parse a journey query. Its
// message is surfaced to the user verbatim.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

var (
	timePattern      = regexp.MustCompile(`(?:\bat\s+)?(\d{1,2}):(\d{2})$`)
	separatorPattern = regexp.MustCompile(`\s+(?:to|->)\s+`)
	prefixPattern    = regexp.MustCompile(`(?i)^(?:from|to)\s+`)
)

// ParseJourneyQuery turns free text like "Leeds to York at 09:15" into a
// JourneyRequest. A trailing HH:MM token (optionally prefixed with "at")
// becomes a requested time on now's date; the rest must split into origin
// and destination on a "to" or "->" separator.
func ParseJourneyQuery(text string, now time.Time) (models.JourneyRequest, error) {
	var when *time.Time
	if match := timePattern.FindStringSubmatchIndex(text); match != nil {
		hours, _ := strconv.Atoi(text[match[2]:match[3]])
		minutes, _ := strconv.Atoi(text[match[4]:match[5]])
		if hours > 23 || minutes > 59 {
			return models.JourneyRequest{}, &ParseError{
				Message: fmt.Sprintf("Invalid time '%02d:%02d': hours must be 00-23 and minutes 00-59.", hours, minutes),
			}
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, now.Location())
		when = &t
		text = strings.TrimSpace(text[:match[0]])
	}

	parts := separatorPattern.Split(text, 2)
	if len(parts) != 2 {
		return models.JourneyRequest{}, &ParseError{
			Message: "Couldn't parse journey. Use '/journey origin to destination [at HH:MM]'.",
		}
	}

	origin := stripFromKeyword(parts[0])
	destination := stripFromKeyword(parts[1])

	if origin == "" || destination == "" {
		return models.JourneyRequest{}, &ParseError{
			Message: "Origin and destination are both required.",
		}
	}

	return models.JourneyRequest{
		OriginQuery:      origin,
		DestinationQuery: destination,
		When:             when,
	}, nil
}

func stripFromKeyword(value string) string {
	return prefixPattern.ReplaceAllString(strings.TrimSpace(value), "")
}
