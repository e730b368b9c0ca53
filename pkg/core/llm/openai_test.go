package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIHostedPromptRequest(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"completed","output_text":"{\"version\":\"1\"}"}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(ProviderConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4.1"})
	out, err := p.GenerateResponse(context.Background(), Request{
		SystemPrompt: "ignored when a hosted prompt is set",
		Instruction:  "Analyze 1 Main St",
		Prompt:       &PromptRef{ID: "pmpt_123", Version: "4", Variables: map[string]string{"address": "1 Main St"}},
		Schema:       &SchemaRef{Name: "property_report", Document: map[string]interface{}{"type": "object"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"version":"1"}`, out)

	assert.Equal(t, "gpt-4.1", got["model"])
	assert.NotContains(t, got, "instructions")
	prompt := got["prompt"].(map[string]interface{})
	assert.Equal(t, "pmpt_123", prompt["id"])
	assert.Equal(t, "4", prompt["version"])
	assert.Equal(t, "1 Main St", prompt["variables"].(map[string]interface{})["address"])

	format := got["text"].(map[string]interface{})["format"].(map[string]interface{})
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "property_report", format["name"])
	assert.Equal(t, true, format["strict"])
}

func TestOpenAIInlineInstructionsAndOutputParts(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"completed","output":[
			{"type":"reasoning","content":[]},
			{"type":"message","content":[{"type":"output_text","text":"{\"a\":"},{"type":"output_text","text":"1}"}]}
		]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
	out, err := p.GenerateResponse(context.Background(), Request{SystemPrompt: "be exact", Instruction: "go"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
	assert.Equal(t, "be exact", got["instructions"])
	assert.NotContains(t, got, "prompt")
	assert.NotContains(t, got, "text")
}

func TestOpenAIErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		"http status": {http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
		}},
		"refusal": {http.StatusOK, `{"output":[{"type":"message","content":[{"type":"refusal","refusal":"no"}]}]}`, func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "refused")
		}},
		"incomplete": {http.StatusOK, `{"status":"incomplete","incomplete_details":{"reason":"max_output_tokens"}}`, func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "max_output_tokens")
		}},
		"empty": {http.StatusOK, `{"status":"completed","output":[]}`, func(t *testing.T, err error) {
			assert.Contains(t, err.Error(), "no output text")
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewOpenAIProvider(ProviderConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := p.GenerateResponse(context.Background(), Request{Instruction: "x"})
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestProvidersRequireAPIKey(t *testing.T) {
	for _, p := range []Provider{&OpenAIProvider{}, &DeepSeekProvider{}, &GeminiProvider{}} {
		_, err := p.GenerateResponse(context.Background(), Request{Instruction: "x"})
		assert.ErrorIs(t, err, ErrMissingAPIKey, p.Name())
	}
}
