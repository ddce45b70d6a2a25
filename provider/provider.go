// Package provider holds shared plumbing for the external API clients:
// the news search and chat-completion providers the pipeline stages
// talk to.
package provider

import "fmt"

// StatusError is returned for non-2xx HTTP responses from a provider.
// The status code lets callers distinguish retriable (5xx) from
// non-retriable (4xx) failures.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Code)
}

// Retriable reports whether the failure is worth retrying.
func (e *StatusError) Retriable() bool {
	return e.Code >= 500
}
