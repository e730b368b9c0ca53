package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

const miniReport = `{"version":"1.0","units":[{"name":"A","monthlyRent":1200}],"financing":{"termMonths":360}}`

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, data)
	}
	return m
}

func TestExtractReportJSONShapes(t *testing.T) {
	quoted, _ := json.Marshal(miniReport)

	cases := map[string]string{
		"plain":          miniReport,
		"fenced":         "```json\n" + miniReport + "\n```",
		"prose":          "Here is your report:\n" + miniReport + "\nLet me know if you need changes.",
		"string payload": string(quoted),
		"report wrapper": `{"report":` + miniReport + `}`,
		"output_text":    `{"output_text":` + string(quoted) + `}`,
		"responses api":  `{"output":[{"type":"message","content":[{"type":"output_text","text":` + string(quoted) + `}]}]}`,
		"chat api":       `{"choices":[{"message":{"role":"assistant","content":` + string(quoted) + `}}]}`,
		"trailing comma": `{"version":"1.0","units":[{"name":"A","monthlyRent":1200},],"financing":{"termMonths":360},}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := ExtractReportJSON(raw)
			if err != nil {
				t.Fatalf("extract failed: %v", err)
			}
			m := decode(t, out)
			if m["version"] != "1.0" {
				t.Errorf("expected version 1.0, got %v", m["version"])
			}
			units, ok := m["units"].([]interface{})
			if !ok || len(units) != 1 {
				t.Errorf("expected one unit, got %v", m["units"])
			}
		})
	}
}

func TestExtractReportJSONFailures(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":     "   ",
		"no report": `{"error":"rate limited"}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ExtractReportJSON(raw); err == nil {
				t.Errorf("expected an error for %q", raw)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	if got := StripCodeFence("```\n{}\n```"); got != "{}" {
		t.Errorf("expected {}, got %q", got)
	}
	if got := StripCodeFence("```json\n[1]\n```"); got != "[1]" {
		t.Errorf("expected [1], got %q", got)
	}
	if got := StripCodeFence("{}"); got != "{}" {
		t.Errorf("unfenced input changed: %q", got)
	}
}

func TestMarkdownToHTMLRendersTables(t *testing.T) {
	html, err := MarkdownToHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<td>2</td>") {
		t.Errorf("expected a table, got %s", html)
	}
}

func TestDecodeLenientPrefersStrictJSON(t *testing.T) {
	var v map[string]interface{}
	name, err := DecodeLenient(miniReport, &v)
	if err != nil || name != "json" {
		t.Fatalf("expected the json decoder, got %q (%v)", name, err)
	}

	loose := `{version: "1.0", units: [{name: "A", monthlyRent: 1200}]}`
	v = nil
	name, err = DecodeLenient(loose, &v)
	if err != nil {
		t.Fatalf("loose input rejected: %v", err)
	}
	if name == "json" {
		t.Error("loose input should not pass as strict JSON")
	}
	if v["version"] != "1.0" {
		t.Errorf("expected version 1.0, got %v", v["version"])
	}
}
