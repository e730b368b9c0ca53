// Package render presents a generated report as Markdown or as a print-ready
// HTML page.
package render

import (
	"fmt"
	"math"
	"strings"

	"property_report/pkg/core/invest"
	"property_report/pkg/core/report"
	"property_report/pkg/models"
)

var scenarioLabels = map[string]string{
	invest.ScenarioRentMinus10: "Rent -10%",
	invest.ScenarioBaseCase:    "Base case",
	invest.ScenarioRentPlus10:  "Rent +10%",
	invest.ScenarioOpExMinus10: "OpEx -10%",
	invest.ScenarioOpExPlus10:  "OpEx +10%",
}

// Markdown renders the full report. Metrics come from the local calculation,
// never from the model's totals.
func Markdown(resp *report.GenerateResponse) string {
	var b strings.Builder
	rep := resp.Report
	if rep == nil {
		rep = &models.PropertyReport{}
	}

	title := rep.Subject.Address
	if title == "" {
		title = "Property"
	}
	fmt.Fprintf(&b, "# Investment Report: %s\n\n", title)
	meta := []string{}
	if !resp.GeneratedAt.IsZero() {
		meta = append(meta, "Generated "+resp.GeneratedAt.Format("January 2, 2006"))
	}
	if resp.Provider != "" {
		src := resp.Provider
		if resp.Model != "" {
			src += " / " + resp.Model
		}
		meta = append(meta, "Source: "+src)
	}
	if resp.ID != "" {
		meta = append(meta, "Report ID: `"+resp.ID+"`")
	}
	if len(meta) > 0 {
		b.WriteString("_" + strings.Join(meta, " · ") + "_\n\n")
	}

	writeSubject(&b, rep)
	writeUnits(&b, rep)
	writeRents(&b, rep)
	writeAssumptions(&b, rep)
	writeMetrics(&b, resp.Metrics)
	writeSensitivity(&b, resp.Sensitivity)
	writeDiscrepancies(&b, resp.Discrepancies)
	writeList(&b, "Warnings", resp.Warnings)
	writeNegotiation(&b, rep.Negotiation)
	writeGlossary(&b, rep.Glossary)

	if d := strings.TrimSpace(rep.ReportMeta.Disclaimer); d != "" {
		b.WriteString("---\n\n_" + cell(d) + "_\n")
	}
	return b.String()
}

func writeSubject(b *strings.Builder, rep *models.PropertyReport) {
	s, p := rep.Subject, rep.PropertySnapshot
	b.WriteString("## Property\n\n")
	table(b, []string{"Field", "Value"}, [][]string{
		{"Address", cell(s.Address)},
		{"City / State / ZIP", strings.Join([]string{Text(s.City), Text(s.State), Text(s.PostalCode)}, " / ")},
		{"Type", cell(strings.ReplaceAll(s.PropertyType, "_", " "))},
		{"Year built", Int(p.YearBuilt)},
		{"Building sqft", Number(p.BuildingSqft)},
		{"Lot sqft", Number(p.LotSqft)},
		{"Beds / baths", Number(p.BedroomsTotal) + " / " + Number(p.BathroomsTotal)},
		{"Condition", Text(p.Condition)},
		{"Purchase price", Money(rep.Purchase.Price)},
		{"Rehab budget", Money(rep.Purchase.RehabBudget)},
	})
	if sum := strings.TrimSpace(p.Summary); sum != "" {
		b.WriteString(sum + "\n\n")
	}
}

func writeUnits(b *strings.Builder, rep *models.PropertyReport) {
	b.WriteString("## Rent Roll\n\n")
	rows := make([][]string, 0, len(rep.Units)+1)
	var total float64
	for _, u := range rep.Units {
		rows = append(rows, []string{cell(u.Name), Number(u.Beds), Number(u.Baths), Number(u.Sqft), Money(u.MonthlyRent)})
		if u.MonthlyRent != nil {
			total += *u.MonthlyRent
		}
	}
	rows = append(rows, []string{"**Total**", "", "", "", "**" + money(total) + "**"})
	table(b, []string{"Unit", "Beds", "Baths", "Sqft", "Monthly rent"}, rows)
}

func writeRents(b *strings.Builder, rep *models.PropertyReport) {
	r := rep.Rents
	b.WriteString("## Market Rents\n\n")
	fmt.Fprintf(b, "Market range: %s to %s per month.\n\n", Money(r.MarketRentMonthlyLow), Money(r.MarketRentMonthlyHigh))
	if m := strings.TrimSpace(r.Methodology); m != "" {
		b.WriteString(m + "\n\n")
	}
	if len(rep.RentComps) == 0 {
		return
	}
	rows := make([][]string, 0, len(rep.RentComps))
	for _, c := range rep.RentComps {
		rows = append(rows, []string{cell(c.Address), Number(c.DistanceMiles), Number(c.Beds), Number(c.Baths), Number(c.Sqft), Money(c.MonthlyRent), cell(Text(c.Source))})
	}
	table(b, []string{"Comparable", "Miles", "Beds", "Baths", "Sqft", "Rent", "Source"}, rows)
}

func writeAssumptions(b *strings.Builder, rep *models.PropertyReport) {
	o, f, p := rep.OperatingAssumptions, rep.Financing, rep.Purchase
	b.WriteString("## Assumptions\n\n")
	table(b, []string{"Assumption", "Value"}, [][]string{
		{"Vacancy", WholePct(o.VacancyPct)},
		{"Maintenance (of gross rent)", WholePct(o.MaintenancePctOfGrossRent)},
		{"Management (of EGI)", WholePct(o.ManagementPctOfEGI)},
		{"Property taxes", Money(o.TaxesAnnual)},
		{"Insurance", Money(o.InsuranceAnnual)},
		{"HOA", Money(o.HOAAnnual)},
		{"Landlord utilities", Money(o.UtilitiesLandlordAnnual)},
		{"Other operating expenses", Money(o.OtherOpExAnnual)},
		{"Closing costs", WholePct(p.ClosingCostPct)},
		{"Points", WholePct(p.PointsPct)},
		{"Down payment", WholePct(f.DownPaymentPct)},
		{"Interest rate", WholePct(f.InterestRatePct)},
		{"Term (months)", Int(f.TermMonths)},
		{"Loan type", Text(f.LoanType)},
	})
	b.WriteString("Annual dollar amounts; blanks fall back to standard defaults in the metrics below.\n\n")
}

func writeMetrics(b *strings.Builder, m invest.Result) {
	b.WriteString("## Metrics\n\n")
	table(b, []string{"Metric", "Value"}, [][]string{
		{"Gross scheduled rent", money(m.GrossScheduledRentAnnual)},
		{"Effective gross income", money(m.EffectiveGrossIncomeAnnual)},
		{"Operating expenses", money(m.OperatingExpensesAnnual)},
		{"Net operating income", money(m.NetOperatingIncomeAnnual)},
		{"Total acquisition cost", money(m.TotalAcquisitionCost)},
		{"Loan amount", money(m.LoanAmount)},
		{"Monthly P&I", money(m.MonthlyPrincipalAndInterest)},
		{"Annual debt service", money(m.AnnualDebtService)},
		{"Cash invested", money(m.CashInvested)},
		{"Annual cash flow", money(m.AnnualCashFlow)},
		{"Cap rate", FractionPct(m.CapRatePct)},
		{"DSCR", Ratio(m.DebtServiceCoverageRatio)},
		{"Cash-on-cash", FractionPct(m.CashOnCashRoiPct)},
	})
}

func writeSensitivity(b *strings.Builder, t invest.SensitivityTable) {
	if len(t) == 0 {
		return
	}
	b.WriteString("## Sensitivity\n\n")
	rows := make([][]string, 0, len(invest.ScenarioNames))
	for _, name := range invest.ScenarioNames {
		s, ok := t[name]
		if !ok {
			continue
		}
		rows = append(rows, []string{scenarioLabels[name], money(s.NOIAnnual), FractionPct(s.CapRatePct), Ratio(s.DSCR), money(s.CashFlowAnnual)})
	}
	table(b, []string{"Scenario", "NOI", "Cap rate", "DSCR", "Cash flow"}, rows)
}

func writeDiscrepancies(b *strings.Builder, ds []invest.Discrepancy) {
	if len(ds) == 0 {
		return
	}
	b.WriteString("## Model Consistency\n\n")
	b.WriteString("The model's own totals disagree with the calculation above:\n\n")
	rows := make([][]string, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, []string{"`" + d.Field + "`", Number(ptr(d.Reported)), Number(ptr(round2(d.Computed))), fmt.Sprintf("%.1f%%", d.RelDiff*100)})
	}
	table(b, []string{"Field", "Reported", "Computed", "Difference"}, rows)
}

func writeNegotiation(b *strings.Builder, n models.Negotiation) {
	if n.SuggestedOfferPrice == nil && len(n.TalkingPoints) == 0 && len(n.Risks) == 0 {
		return
	}
	b.WriteString("## Negotiation\n\n")
	fmt.Fprintf(b, "Suggested offer: **%s**\n\n", Money(n.SuggestedOfferPrice))
	writeItems(b, "Talking points", n.TalkingPoints)
	writeItems(b, "Risks", n.Risks)
}

func writeGlossary(b *strings.Builder, g []models.GlossaryEntry) {
	if len(g) == 0 {
		return
	}
	b.WriteString("## Glossary\n\n")
	for _, e := range g {
		fmt.Fprintf(b, "- **%s**: %s\n", cell(e.Term), cell(e.Definition))
	}
	b.WriteString("\n")
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("## " + heading + "\n\n")
	for _, it := range items {
		b.WriteString("- " + cell(it) + "\n")
	}
	b.WriteString("\n")
}

func writeItems(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("**" + heading + "**\n\n")
	for _, it := range items {
		b.WriteString("- " + cell(it) + "\n")
	}
	b.WriteString("\n")
}

func table(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, r := range rows {
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
	}
	b.WriteString("\n")
}

// cell keeps free text from breaking table rows.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
