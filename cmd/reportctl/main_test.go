package main

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_report/pkg/core/report"
	"property_report/resources"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	schemaPath, verbose = "", false
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func sampleFile(t *testing.T) (string, []byte) {
	t.Helper()
	data, err := fs.ReadFile(resources.FS, resources.SampleReportPath)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func TestMetricsJSON(t *testing.T) {
	path, _ := sampleFile(t)
	out, err := execute(t, "", "metrics", path)
	require.NoError(t, err)

	var m report.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.InDelta(t, 22407.6, m.Metrics.NetOperatingIncomeAnnual, 0.01)
	assert.Empty(t, m.Discrepancies)
	assert.Len(t, m.Sensitivity, 5)
}

func TestMetricsOverridesFromStdin(t *testing.T) {
	_, data := sampleFile(t)
	fenced := "Here you go:\n```json\n" + string(data) + "\n```"

	out, err := execute(t, fenced, "metrics", "-", "--overrides", `{"interestRatePct": 9}`)
	require.NoError(t, err)

	var m report.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.NotEmpty(t, m.Discrepancies, "the report's own debt service no longer matches")
}

func TestMetricsMarkdown(t *testing.T) {
	path, _ := sampleFile(t)
	out, err := execute(t, "", "metrics", path, "--format", "md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Investment Report: "))
	assert.Contains(t, out, "## Sensitivity")
}

func TestMetricsRejectsBadInput(t *testing.T) {
	path, _ := sampleFile(t)

	_, err := execute(t, "", "metrics", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "", "metrics", path, "--overrides", `{"downPaymentPct": 150}`)
	assert.ErrorContains(t, err, "invalid --overrides")

	_, err = execute(t, "not a report at all", "metrics", "-")
	assert.ErrorIs(t, err, report.ErrContract)

	_, err = execute(t, "", "metrics")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	path, data := sampleFile(t)
	out, err := execute(t, "", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "matches the schema")

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	delete(doc, "glossary")
	broken, err := json.Marshal(doc)
	require.NoError(t, err)

	out, err = execute(t, string(broken), "validate", "-")
	require.Error(t, err)
	assert.Contains(t, out, "✗")
}

func TestSchemaDescribe(t *testing.T) {
	out, err := execute(t, "", "schema", "describe")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Greater(t, len(lines), 20)
	assert.Contains(t, lines[0], "PATH")
	assert.Contains(t, out, "rentComps")
	assert.Contains(t, out, "minItems=5")
}

func TestSchemaCheck(t *testing.T) {
	out, err := execute(t, "", "schema", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "honors the contract")

	loose := filepath.Join(t.TempDir(), "loose.json")
	require.NoError(t, os.WriteFile(loose, []byte(`{"type":"object","properties":{}}`), 0o644))
	out, err = execute(t, "", "--schema", loose, "schema", "check")
	require.Error(t, err)
	assert.Contains(t, out, "additionalProperties must be false")
}
