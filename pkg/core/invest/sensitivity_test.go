package invest

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property_report/pkg/models"
)

func scenarioInputs() Inputs {
	in := Defaults()
	in.PurchasePrice = 300000
	in.Units = []Unit{{Name: "A", MonthlyRent: 1500}}
	in.TaxesAnnual = 3000
	in.InsuranceAnnual = 1200
	in.Financing.AnnualRatePct = 0.06
	return in
}

func TestSensitivityHasEveryScenario(t *testing.T) {
	table := Sensitivity(scenarioInputs())
	require.Len(t, table, len(ScenarioNames))
	for _, name := range ScenarioNames {
		_, ok := table[name]
		assert.True(t, ok, "missing scenario %s", name)
	}
}

func TestSensitivityBaseCaseMatchesCalculate(t *testing.T) {
	in := scenarioInputs()
	res := Calculate(in)
	base := Sensitivity(in)[ScenarioBaseCase]

	assert.Equal(t, res.NetOperatingIncomeAnnual, base.NOIAnnual)
	assert.Equal(t, res.AnnualCashFlow, base.CashFlowAnnual)
	require.NotNil(t, base.DSCR)
	assert.InDelta(t, *res.DebtServiceCoverageRatio, *base.DSCR, 1e-12)
}

func TestSensitivityOrdering(t *testing.T) {
	table := Sensitivity(scenarioInputs())
	base := table[ScenarioBaseCase].NOIAnnual

	assert.Less(t, table[ScenarioRentMinus10].NOIAnnual, base)
	assert.Greater(t, table[ScenarioRentPlus10].NOIAnnual, base)
	assert.Greater(t, table[ScenarioOpExMinus10].NOIAnnual, base)
	assert.Less(t, table[ScenarioOpExPlus10].NOIAnnual, base)

	// OpEx +10% lowers NOI by exactly a tenth of operating expenses
	opex := Calculate(scenarioInputs()).OperatingExpensesAnnual
	assert.InDelta(t, base-0.1*opex, table[ScenarioOpExPlus10].NOIAnnual, 1e-9)
}

func TestSensitivityWorkedExample(t *testing.T) {
	// ADS is 16187.86 throughout; acquisition cost is 309000.
	f := func(v float64) *float64 { return &v }
	want := SensitivityTable{
		ScenarioRentMinus10: {NOIAnnual: 8662.8, CapRatePct: f(0.028035), DSCR: f(0.535142), CashFlowAnnual: -7525.06},
		ScenarioBaseCase:    {NOIAnnual: 10092, CapRatePct: f(0.032660), DSCR: f(0.623430), CashFlowAnnual: -6095.86},
		ScenarioRentPlus10:  {NOIAnnual: 11521.2, CapRatePct: f(0.037285), DSCR: f(0.711718), CashFlowAnnual: -4666.66},
		ScenarioOpExMinus10: {NOIAnnual: 10792.8, CapRatePct: f(0.034928), DSCR: f(0.666722), CashFlowAnnual: -5395.06},
		ScenarioOpExPlus10:  {NOIAnnual: 9391.2, CapRatePct: f(0.030392), DSCR: f(0.580138), CashFlowAnnual: -6796.66},
	}

	got := Sensitivity(scenarioInputs())
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 0.01)); diff != "" {
		t.Errorf("sensitivity mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileFlagsOnlyMismatches(t *testing.T) {
	res := Calculate(scenarioInputs())
	totals := models.Totals{
		GrossScheduledRentAnnual: models.Float(18000),
		NOIAnnual:                models.Float(res.NetOperatingIncomeAnnual * 1.2),
		CapRatePct:               models.Float(*res.CapRatePct * 100),
		DSCR:                     nil,
	}

	got := Reconcile(totals, res, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "noiAnnual", got[0].Field)
	assert.InDelta(t, 0.2, got[0].RelDiff, 1e-9)
}

func TestReconcileSurvivesExtremeReportedTotals(t *testing.T) {
	res := Calculate(scenarioInputs())
	totals := models.Totals{
		NOIAnnual:      models.Float(1.7e308),
		CashFlowAnnual: models.Float(-1.7e308),
	}
	got := Reconcile(totals, res, 0)
	require.Len(t, got, 2)
	for _, d := range got {
		assert.False(t, math.IsInf(d.RelDiff, 0) || math.IsNaN(d.RelDiff), "%s relDiff %v", d.Field, d.RelDiff)
	}
	_, err := json.Marshal(got)
	assert.NoError(t, err)
}
