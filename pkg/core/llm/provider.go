package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, req Request) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Request is one structured generation call.
type Request struct {
	SystemPrompt string     // sent when the provider has no hosted prompt
	Instruction  string     // user turn
	Prompt       *PromptRef // hosted prompt asset, if the provider supports it
	Schema       *SchemaRef // structured output contract
	Model        string     // overrides ProviderConfig.Model
	Temperature  *float64
	MaxTokens    int
}

// PromptRef points at a prompt stored on the provider side.
type PromptRef struct {
	ID        string
	Version   string
	Variables map[string]string
}

// SchemaRef is a JSON Schema the output must conform to.
type SchemaRef struct {
	Name     string
	Document map[string]interface{}
}

// ProviderConfig carries credentials and endpoints. Providers never read the
// environment themselves.
type ProviderConfig struct {
	APIKey    string        `yaml:"-"`
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

const defaultTimeout = 120 * time.Second

func (c ProviderConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultTimeout
}

// ErrMissingAPIKey is returned when a provider is called without credentials.
var ErrMissingAPIKey = errors.New("api key not configured")

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: status=%d body=%s", e.Provider, e.StatusCode, truncate(e.Body, 512))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
