package embed

import (
	"errors"
	"fmt"
)

// Errors for embedding generation.
var (
	// ErrEmptyContent means the input text was empty (or whitespace-only)
	// after sanitization. Detected before any network call.
	ErrEmptyContent = errors.New("embed: content is empty")

	// ErrNoEmbedding means the provider answered with a success status but
	// returned zero vectors. This is a contract violation on the provider
	// side, distinct from a transport failure.
	ErrNoEmbedding = errors.New("embed: provider returned no embedding")
)

// maxErrorBody bounds how much of an upstream error body is retained.
const maxErrorBody = 2048

// UpstreamError is returned when the embedding provider responds with a
// non-success status. The status code and (truncated) response body are
// preserved for the caller to decide on retry; this package never retries.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("embed: provider returned %d: %s", e.Status, e.Body)
}

func newUpstreamError(status int, body []byte) *UpstreamError {
	s := string(body)
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return &UpstreamError{Status: status, Body: s}
}
