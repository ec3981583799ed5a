package extraction

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient asks a Gemini model for the structured record in JSON mode.
type GeminiClient struct {
	client *genai.Client
	model  string
}

var _ ports.ExtractionClient = (*GeminiClient)(nil)

func NewGeminiClient(ctx context.Context, cfg config.ExtractionConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("extraction.api_key is required for the gemini provider")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errs.Wrap(err, "create genai client")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Name() string {
	return "gemini:" + c.model
}

func (c *GeminiClient) Extract(ctx context.Context, text string) (string, error) {
	temperature := float32(0)
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       &temperature,
	})
	if err != nil {
		return "", errs.Wrap(err, "gemini generate content")
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
