package prompt

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_report/resources"
)

func TestLoadEmbeddedResources(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadFromFS(resources.FS))

	pt, err := r.GetPrompt(ReportGenerate)
	require.NoError(t, err)
	assert.Equal(t, "report", pt.Category)
	assert.NotEmpty(t, pt.SystemPrompt)

	schema, err := r.SchemaFor(pt)
	require.NoError(t, err)
	assert.Equal(t, ReportSchema, schema.ID)
	assert.Contains(t, schema.JSONSchema, `"rentComps"`)
}

func TestLoadDerivesIDAndCategory(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/review/summary.json": {Data: []byte(`{"system_prompt":"be brief"}`)},
		"schemas/summary.json":        {Data: []byte(`{"type":"object"}`)},
	}
	r := NewRegistry()
	require.NoError(t, r.LoadFromFS(fsys))

	pt, err := r.GetPrompt("review.summary")
	require.NoError(t, err)
	assert.Equal(t, "review", pt.Category)
	assert.Equal(t, []string{"review.summary"}, r.ListPrompts())
	assert.Equal(t, 1, r.SchemaCount())
}

func TestLoadRejectsBrokenSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/a/b.json": {Data: []byte(`{}`)},
		"schemas/bad.json": {Data: []byte(`{"type":`)},
	}
	require.Error(t, NewRegistry().LoadFromFS(fsys))
}

func TestRenderUserPrompt(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.LoadFromFS(resources.FS))
	pt, err := r.GetPrompt(ReportGenerate)
	require.NoError(t, err)

	out, err := RenderUserPrompt(pt, NewContext().
		Set("Address", "12 Elm St, Dayton, OH").
		Set("PurchasePrice", 250000.0).
		Set("Date", "2026-01-02"))
	require.NoError(t, err)
	assert.Contains(t, out, "12 Elm St, Dayton, OH")
	assert.Contains(t, out, "$250000")
	assert.Contains(t, out, "typical market assumptions")
	assert.True(t, strings.HasSuffix(out, "Report date: 2026-01-02."))

	out, err = RenderUserPrompt(pt, NewContext().
		Set("Address", "12 Elm St").
		Set("PurchasePrice", 250000.0).
		Set("Overrides", []string{"Vacancy: 7%", "Interest rate: 6.5%"}))
	require.NoError(t, err)
	assert.Contains(t, out, "- Vacancy: 7%\n- Interest rate: 6.5%")
	assert.NotContains(t, out, "typical market assumptions")
}

func TestRenderUserPromptRequiresVariables(t *testing.T) {
	pt := &PromptTemplate{
		ID:             "x",
		UserPromptTmpl: "{{.Address}}",
		Variables:      []PromptVariable{{Name: "Address", Required: true}},
	}
	_, err := RenderUserPrompt(pt, NewContext())
	require.Error(t, err)
}

func TestLookupsWrapErrUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.GetPrompt("missing")
	assert.ErrorIs(t, err, ErrUnknown)

	_, err = r.SchemaFor(&PromptTemplate{ID: "x", ResponseSchemaID: "nope"})
	assert.ErrorIs(t, err, ErrUnknown)

	require.Error(t, r.Register(&PromptTemplate{}))
}
