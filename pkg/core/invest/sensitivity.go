package invest

import (
	"math"

	"property_report/pkg/models"
)

// Scenario names, in display order.
const (
	ScenarioRentMinus10 = "rentMinus10"
	ScenarioBaseCase    = "baseCase"
	ScenarioRentPlus10  = "rentPlus10"
	ScenarioOpExMinus10 = "opExMinus10"
	ScenarioOpExPlus10  = "opExPlus10"
)

// ScenarioNames lists every sensitivity case.
var ScenarioNames = []string{
	ScenarioRentMinus10,
	ScenarioBaseCase,
	ScenarioRentPlus10,
	ScenarioOpExMinus10,
	ScenarioOpExPlus10,
}

// ScenarioResult has the same shape for every case so renderers can treat
// them uniformly. CapRatePct is a fraction.
type ScenarioResult struct {
	NOIAnnual      float64  `json:"noiAnnual"`
	CapRatePct     *float64 `json:"capRatePct"`
	DSCR           *float64 `json:"dscr"`
	CashFlowAnnual float64  `json:"cashFlowAnnual"`
}

// SensitivityTable maps scenario name to its result.
type SensitivityTable map[string]ScenarioResult

// Sensitivity recomputes the five standard cases. Rent cases scale every
// unit's rent by 10%; operating expense cases scale total operating expenses.
func Sensitivity(in Inputs) SensitivityTable {
	in = sanitize(in)
	base := Calculate(in)

	table := SensitivityTable{
		ScenarioBaseCase:    scenarioOf(base.NetOperatingIncomeAnnual, base),
		ScenarioRentMinus10: scenarioOf(Calculate(scaleRents(in, 0.9)).NetOperatingIncomeAnnual, base),
		ScenarioRentPlus10:  scenarioOf(Calculate(scaleRents(in, 1.1)).NetOperatingIncomeAnnual, base),
		ScenarioOpExMinus10: scenarioOf(base.EffectiveGrossIncomeAnnual-0.9*base.OperatingExpensesAnnual, base),
		ScenarioOpExPlus10:  scenarioOf(base.EffectiveGrossIncomeAnnual-1.1*base.OperatingExpensesAnnual, base),
	}
	return table
}

// Debt and acquisition cost do not move across scenarios, only NOI does.
func scenarioOf(noi float64, base Result) ScenarioResult {
	return ScenarioResult{
		NOIAnnual:      noi,
		CapRatePct:     ratio(noi, base.TotalAcquisitionCost),
		DSCR:           ratio(noi, base.AnnualDebtService),
		CashFlowAnnual: noi - base.AnnualDebtService,
	}
}

func scaleRents(in Inputs, factor float64) Inputs {
	out := in
	out.Units = make([]Unit, len(in.Units))
	for i, u := range in.Units {
		out.Units[i] = Unit{Name: u.Name, MonthlyRent: u.MonthlyRent * factor}
	}
	return out
}

// DefaultTolerance is the relative difference above which a reported total is
// flagged.
const DefaultTolerance = 0.01

// Discrepancy records a reported total that disagrees with the local math.
type Discrepancy struct {
	Field    string  `json:"field"`
	Reported float64 `json:"reported"`
	Computed float64 `json:"computed"`
	RelDiff  float64 `json:"relDiff"`
}

// Reconcile compares the model-reported totals with res. Null totals and
// undefined local ratios are skipped. Percent totals are compared as whole
// percents.
func Reconcile(t models.Totals, res Result, tolerance float64) []Discrepancy {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	pct := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		p := *v * 100
		return &p
	}
	checks := []struct {
		field    string
		reported *float64
		computed *float64
	}{
		{"grossScheduledRentAnnual", t.GrossScheduledRentAnnual, &res.GrossScheduledRentAnnual},
		{"effectiveGrossIncomeAnnual", t.EffectiveGrossIncomeAnnual, &res.EffectiveGrossIncomeAnnual},
		{"operatingExpensesAnnual", t.OperatingExpensesAnnual, &res.OperatingExpensesAnnual},
		{"noiAnnual", t.NOIAnnual, &res.NetOperatingIncomeAnnual},
		{"annualDebtService", t.AnnualDebtService, &res.AnnualDebtService},
		{"capRatePct", t.CapRatePct, pct(res.CapRatePct)},
		{"dscr", t.DSCR, res.DebtServiceCoverageRatio},
		{"cashFlowAnnual", t.CashFlowAnnual, &res.AnnualCashFlow},
		{"cashOnCashPct", t.CashOnCashPct, pct(res.CashOnCashRoiPct)},
	}

	var out []Discrepancy
	for _, c := range checks {
		if c.reported == nil || c.computed == nil {
			continue
		}
		diff := math.Abs(*c.reported-*c.computed) / math.Max(math.Abs(*c.computed), 1)
		if !finite(diff) {
			// reported totals near the float64 limit
			diff = math.MaxFloat64
		}
		if diff > tolerance {
			out = append(out, Discrepancy{
				Field:    c.field,
				Reported: *c.reported,
				Computed: *c.computed,
				RelDiff:  diff,
			})
		}
	}
	return out
}
