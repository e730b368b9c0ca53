package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls the Responses API. When the request carries a hosted
// prompt reference the prompt asset supplies the instructions; the schema is
// always enforced through text.format with strict mode.
type OpenAIProvider struct {
	Config     ProviderConfig
	HTTPClient *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider with its own HTTP client.
func NewOpenAIProvider(cfg ProviderConfig) *OpenAIProvider {
	return &OpenAIProvider{
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: cfg.timeout()},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type openAIPrompt struct {
	ID        string            `json:"id"`
	Version   string            `json:"version,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

type openAIFormat struct {
	Type   string                 `json:"type"`
	Name   string                 `json:"name,omitempty"`
	Schema map[string]interface{} `json:"schema,omitempty"`
	Strict bool                   `json:"strict,omitempty"`
}

type openAIRequest struct {
	Model           string        `json:"model,omitempty"`
	Prompt          *openAIPrompt `json:"prompt,omitempty"`
	Instructions    string        `json:"instructions,omitempty"`
	Input           string        `json:"input"`
	Text            *openAIText   `json:"text,omitempty"`
	Temperature     *float64      `json:"temperature,omitempty"`
	MaxOutputTokens int           `json:"max_output_tokens,omitempty"`
}

type openAIText struct {
	Format openAIFormat `json:"format"`
}

type openAIResponse struct {
	Status     string `json:"status"`
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text"`
			Refusal string `json:"refusal"`
		} `json:"content"`
	} `json:"output"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResponse sends one Responses API call and returns the output text.
func (p *OpenAIProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if p.Config.APIKey == "" {
		return "", fmt.Errorf("openai: %w", ErrMissingAPIKey)
	}

	body := openAIRequest{
		Model:           firstNonEmpty(req.Model, p.Config.Model),
		Input:           req.Instruction,
		Temperature:     req.Temperature,
		MaxOutputTokens: firstPositive(req.MaxTokens, p.Config.MaxTokens),
	}
	if req.Prompt != nil && req.Prompt.ID != "" {
		body.Prompt = &openAIPrompt{ID: req.Prompt.ID, Version: req.Prompt.Version, Variables: req.Prompt.Variables}
	} else {
		body.Instructions = p.AdaptInstructions(req.SystemPrompt)
	}
	if req.Schema != nil {
		body.Text = &openAIText{Format: openAIFormat{
			Type:   "json_schema",
			Name:   req.Schema.Name,
			Schema: req.Schema.Document,
			Strict: true,
		}}
	}

	jsonBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: failed to marshal request: %w", err)
	}

	baseURL := strings.TrimRight(firstNonEmpty(p.Config.BaseURL, openAIBaseURL), "/")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/responses", bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("openai: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.Config.APIKey)

	resp, err := p.client().Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: api call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: failed to read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Provider: p.Name(), StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out openAIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: failed to decode response: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("openai: %s: %s", out.Error.Code, out.Error.Message)
	}
	if out.Status == "incomplete" && out.IncompleteDetails != nil {
		return "", fmt.Errorf("openai: response incomplete: %s", out.IncompleteDetails.Reason)
	}

	if out.OutputText != "" {
		return out.OutputText, nil
	}
	var parts []string
	for _, item := range out.Output {
		for _, c := range item.Content {
			switch {
			case c.Type == "output_text" && c.Text != "":
				parts = append(parts, c.Text)
			case c.Type == "refusal" && c.Refusal != "":
				return "", fmt.Errorf("openai: model refused: %s", c.Refusal)
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("openai: no output text in response")
	}
	return strings.Join(parts, ""), nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}

func (p *OpenAIProvider) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
