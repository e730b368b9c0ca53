package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider implements the Provider interface for Google's Gemini models.
// Hosted prompt references are not supported; the system prompt is sent
// inline and the schema goes through ResponseJsonSchema.
type GeminiProvider struct {
	Config ProviderConfig
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

func (p *GeminiProvider) Name() string { return "gemini" }

// GenerateResponse sends a generateContent request to the Gemini API using the official GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if p.Config.APIKey == "" {
		return "", fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	model := firstNonEmpty(req.Model, p.Config.Model, defaultGeminiModel)

	clientCfg := &genai.ClientConfig{
		APIKey:  p.Config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.Config.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.Config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if n := firstPositive(req.MaxTokens, p.Config.MaxTokens); n > 0 {
		config.MaxOutputTokens = int32(n)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = req.Schema.Document
	}
	if sys := p.AdaptInstructions(req.SystemPrompt); sys != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: sys},
			},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.Config.timeout())
	defer cancel()

	result, err := client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(req.Instruction),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
