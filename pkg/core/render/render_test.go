package render

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_report/pkg/core/invest"
	"property_report/pkg/core/report"
	"property_report/pkg/core/schema"
	"property_report/resources"
)

func sampleResponse(t *testing.T) *report.GenerateResponse {
	t.Helper()
	raw, err := fs.ReadFile(resources.FS, resources.SampleReportPath)
	require.NoError(t, err)
	s, err := schema.Default()
	require.NoError(t, err)
	rep, m, err := report.ComputeRaw(s, raw, invest.Overrides{}, 0)
	require.NoError(t, err)
	return &report.GenerateResponse{
		ID:            "0b7e2f4c-1111-4c2a-9f00-3a1d2e4b5c6d",
		Report:        rep,
		Metrics:       m.Metrics,
		Sensitivity:   m.Sensitivity,
		Discrepancies: m.Discrepancies,
		Warnings:      m.Warnings,
		Provider:      "stub",
		GeneratedAt:   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestFormatters(t *testing.T) {
	cases := []struct{ got, want string }{
		{Money(ptr(1234.4)), "$1,234"},
		{Money(ptr(999)), "$999"},
		{Money(ptr(1234567)), "$1,234,567"},
		{Money(ptr(-6095.86)), "-$6,096"},
		{Money(nil), Dash},
		{Ratio(ptr(1.2345)), "1.23x"},
		{Ratio(nil), Dash},
		{FractionPct(ptr(0.0725)), "7.25%"},
		{WholePct(ptr(5)), "5.00%"},
		{Number(ptr(2.5)), "2.5"},
		{Int(nil), Dash},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.got)
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleResponse(t))

	for _, heading := range []string{"## Property", "## Rent Roll", "## Market Rents", "## Assumptions", "## Metrics", "## Sensitivity", "## Glossary"} {
		assert.Contains(t, md, heading)
	}
	assert.True(t, strings.HasPrefix(md, "# Investment Report: 1418 Oak Hollow Dr"))
	assert.Contains(t, md, "| Net operating income | $22,408 |")
	assert.Contains(t, md, "| DSCR | 1.31x |")
	assert.Contains(t, md, "| Landlord utilities | "+Dash+" |")
	assert.Contains(t, md, "| Base case | $22,408 |")
	assert.NotContains(t, md, "## Model Consistency")
	assert.NotContains(t, md, "## Warnings")
}

func TestMarkdownFlagsDiscrepancies(t *testing.T) {
	resp := sampleResponse(t)
	resp.Discrepancies = []invest.Discrepancy{{Field: "noiAnnual", Reported: 30000, Computed: 22407.6, RelDiff: 0.3388}}
	resp.Warnings = []string{"purchase.price: model reported 275000 | using requested 300000"}

	md := Markdown(resp)
	assert.Contains(t, md, "## Model Consistency")
	assert.Contains(t, md, "| `noiAnnual` | 30000 | 22407.6 | 33.9% |")
	assert.Contains(t, md, `275000 \| using`)
}

func TestMarkdownWithoutReport(t *testing.T) {
	md := Markdown(&report.GenerateResponse{Metrics: invest.Calculate(invest.Defaults())})
	assert.Contains(t, md, "# Investment Report: Property")
	assert.Contains(t, md, "| Cap rate | "+Dash+" |")
}

func TestHTMLPage(t *testing.T) {
	resp := sampleResponse(t)
	resp.Report.Negotiation.TalkingPoints = append(resp.Report.Negotiation.TalkingPoints, "<script>alert(1)</script>")

	out, err := HTML(resp)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Contains(t, doc.Find("title").Text(), "1418 Oak Hollow Dr")
	assert.Equal(t, 0, doc.Find("body script").Length())
	assert.GreaterOrEqual(t, doc.Find("table").Length(), 6)

	var dscr string
	doc.Find("td").Each(func(_ int, s *goquery.Selection) {
		if s.Text() == "DSCR" {
			dscr = s.Next().Text()
		}
	})
	assert.Equal(t, "1.31x", dscr)

	headings := doc.Find("h2").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Contains(t, headings, "Sensitivity")
	assert.Contains(t, string(out), "@media print")
}
