package extraction

import (
	"context"
	"errors"

	"returnsdesk/internal/ports"
)

// ErrDisabled is returned when no extraction provider is configured.
var ErrDisabled = errors.New("natural-language intake is disabled (extraction.provider=none)")

type DisabledClient struct{}

var _ ports.ExtractionClient = DisabledClient{}

func (DisabledClient) Name() string { return "none" }

func (DisabledClient) Extract(context.Context, string) (string, error) {
	return "", ErrDisabled
}
