package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// reportKeys are the top-level keys that identify a report object once any
// wrapper has been peeled off.
var reportKeys = []string{"version", "units", "financing", "operatingAssumptions"}

// ExtractReportJSON pulls the report object out of raw model output. Providers
// and proxies disagree on shape, so this accepts, in order:
//   - the report object itself
//   - a JSON string whose content is the report
//   - wrappers: {"report":…}, {"data":…}, {"output_text":…},
//     {"output":[{"content":[{"text":…}]}]}, {"choices":[{"message":{"content":…}}]}
//   - any of the above inside a markdown code fence or surrounding prose
//
// Malformed JSON goes through DecodeLenient (repair, then Hjson) before giving
// up. The result is compact standard JSON.
func ExtractReportJSON(raw string) ([]byte, error) {
	text := StripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, fmt.Errorf("EXTRACT_EMPTY: model output is empty")
	}

	candidates := []string{text}
	// Prose around the object: also try from the first brace to the last.
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if cut := text[start : end+1]; cut != text {
			candidates = append(candidates, cut)
		}
	}

	var lastErr error
	for _, c := range candidates {
		var v interface{}
		if _, err := DecodeLenient(c, &v); err != nil {
			lastErr = err
			continue
		}
		if obj, ok := unwrap(v, 0); ok {
			return json.Marshal(obj)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("EXTRACT_PARSE_FAILED: %w", lastErr)
	}
	return nil, fmt.Errorf("EXTRACT_NO_REPORT: no report object found in model output")
}

// unwrap walks known wrapper shapes until it finds a report-like object.
func unwrap(v interface{}, depth int) (map[string]interface{}, bool) {
	if depth > 8 {
		return nil, false
	}
	switch t := v.(type) {
	case string:
		s := StripCodeFence(strings.TrimSpace(t))
		var inner interface{}
		if _, err := DecodeLenient(s, &inner); err != nil {
			return nil, false
		}
		if _, isString := inner.(string); isString {
			return nil, false
		}
		return unwrap(inner, depth+1)
	case []interface{}:
		for _, item := range t {
			if obj, ok := unwrap(item, depth+1); ok {
				return obj, true
			}
		}
	case map[string]interface{}:
		if looksLikeReport(t) {
			return t, true
		}
		for _, key := range []string{"report", "data", "result", "output_parsed", "output_text", "text", "content", "output", "message", "choices"} {
			if inner, ok := t[key]; ok {
				if obj, ok := unwrap(inner, depth+1); ok {
					return obj, true
				}
			}
		}
	}
	return nil, false
}

func looksLikeReport(m map[string]interface{}) bool {
	hits := 0
	for _, k := range reportKeys {
		if _, ok := m[k]; ok {
			hits++
		}
	}
	return hits >= 2
}

// StripCodeFence removes a single outer ``` or ```json fence.
func StripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		lang := strings.TrimSpace(s[:nl])
		if lang == "" || !strings.ContainsAny(lang, "{[\"") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
