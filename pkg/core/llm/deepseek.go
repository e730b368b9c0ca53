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

const deepSeekBaseURL = "https://api.deepseek.com"

// DeepSeekProvider uses the chat completions API in JSON mode. DeepSeek has
// no schema enforcement, so the schema is appended to the system prompt and
// the caller validates the result.
type DeepSeekProvider struct {
	Config     ProviderConfig
	HTTPClient *http.Client
}

var _ Provider = (*DeepSeekProvider)(nil)

// DeepSeekRequest is the chat completions request body.
type DeepSeekRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	if p.Config.APIKey == "" {
		return "", fmt.Errorf("deepseek: %w", ErrMissingAPIKey)
	}

	system := p.AdaptInstructions(req.SystemPrompt)
	format := "text"
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema.Document)
		if err != nil {
			return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %v", err)
		}
		system += "\n\nReturn a single JSON object that validates against this JSON Schema:\n" + string(schemaJSON)
		format = "json_object"
	}

	temperature := 0.2
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	reqBody := DeepSeekRequest{
		Messages: []Message{
			{Content: system, Role: "system"},
			{Content: req.Instruction, Role: "user"},
		},
		Model:          firstNonEmpty(req.Model, p.Config.Model, "deepseek-chat"),
		MaxTokens:      firstPositive(req.MaxTokens, p.Config.MaxTokens, 8192),
		ResponseFormat: ResponseFormat{Type: format},
		Temperature:    temperature,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %v", err)
	}

	url := strings.TrimRight(firstNonEmpty(p.Config.BaseURL, deepSeekBaseURL), "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_REQ_CREATE_ERROR: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.Config.APIKey)

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: p.Config.timeout()}
	}
	res, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_READ_BODY_ERROR: %v", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", &APIError{Provider: p.Name(), StatusCode: res.StatusCode, Body: string(body)}
	}

	var response DeepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %v", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", truncate(string(body), 512))
	}
	if response.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("DEEPSEEK_TRUNCATED: output hit max_tokens")
	}

	return response.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
