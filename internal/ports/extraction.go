package ports

import "context"

// ExtractionClient sends a free-text return description to an external
// extraction service and returns its raw structured response.
type ExtractionClient interface {
	Extract(ctx context.Context, text string) (string, error)
	Name() string
}
