package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"property_report/resources"
)

// StubProvider answers every request with the embedded sample report, with
// the subject address and price taken from the prompt variables. It lets the
// service run end to end without credentials.
type StubProvider struct {
	// Response, when set, is returned verbatim instead of the sample.
	Response string
	// Err, when set, is returned instead of any response.
	Err error
	// Calls counts GenerateResponse invocations.
	Calls int
	// Last is the most recent request.
	Last Request

	mu sync.Mutex
}

var _ Provider = (*StubProvider)(nil)

func (p *StubProvider) Name() string { return "stub" }

func (p *StubProvider) GenerateResponse(ctx context.Context, req Request) (string, error) {
	p.mu.Lock()
	p.Calls++
	p.Last = req
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Err != nil {
		return "", p.Err
	}
	if p.Response != "" {
		return p.Response, nil
	}

	data, err := fs.ReadFile(resources.FS, resources.SampleReportPath)
	if err != nil {
		return "", fmt.Errorf("stub: failed to read sample: %w", err)
	}
	if req.Prompt == nil || len(req.Prompt.Variables) == 0 {
		return string(data), nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("stub: sample is not JSON: %w", err)
	}
	if addr, ok := req.Prompt.Variables["address"]; ok && addr != "" {
		if subject, ok := doc["subject"].(map[string]interface{}); ok {
			subject["address"] = addr
		}
	}
	if price, err := strconv.ParseFloat(req.Prompt.Variables["purchase_price"], 64); err == nil {
		if purchase, ok := doc["purchase"].(map[string]interface{}); ok {
			purchase["price"] = price
		}
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("stub: failed to encode sample: %w", err)
	}
	return string(out), nil
}

func (p *StubProvider) AdaptInstructions(raw string) string {
	return raw
}
