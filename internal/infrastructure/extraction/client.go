package extraction

import (
	"context"
	"fmt"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/ports"
)

// NewClient builds the extraction client selected by cfg.Provider.
func NewClient(ctx context.Context, cfg config.ExtractionConfig) (ports.ExtractionClient, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderNone, "":
		return DisabledClient{}, nil
	default:
		return nil, fmt.Errorf("unsupported extraction provider %q", cfg.Provider)
	}
}
