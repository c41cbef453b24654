package rail

import (
	"fmt"
	"strings"
)

// ProviderError represents a transport or format failure from a single rail
// data backend. It carries enough context for a diagnostic line: the
// provider name, the HTTP status when one was received, and a truncated
// body excerpt.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error %d: %s", e.Provider, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a provider error without an HTTP status, for
// network-level and decode failures.
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// AllProvidersFailed is raised when every configured provider errored during
// one orchestrator call. Messages holds one diagnostic per provider, in
// provider order.
type AllProvidersFailed struct {
	Messages []string
}

func (e *AllProvidersFailed) Error() string {
	return strings.Join(e.Messages, "; ")
}

// truncateBody bounds a backend body excerpt for diagnostics.
func truncateBody(body []byte) string {
	const maxExcerpt = 200
	if len(body) == 0 {
		return "<empty body>"
	}
	if len(body) > maxExcerpt {
		return string(body[:maxExcerpt])
	}
	return string(body)
}
