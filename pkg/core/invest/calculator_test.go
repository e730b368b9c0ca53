package invest

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: expected %.6f, got %.6f", name, want, got)
	}
}

func ptrApprox(t *testing.T, name string, got *float64, want, tol float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: expected %.6f, got nil", name, want)
	}
	approx(t, name, *got, want, tol)
}

func TestMonthlyPaymentAmortization(t *testing.T) {
	// 375k at 7.7% over 30 years
	pi := MonthlyPayment(375000, 0.077, 360)
	approx(t, "P&I", pi, 2673.60, 0.01)

	// Present value of the payment stream must equal the principal
	r := 0.077 / 12
	var pv float64
	for k := 1; k <= 360; k++ {
		pv += pi / math.Pow(1+r, float64(k))
	}
	approx(t, "PV of payments", pv, 375000, 0.01)
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	pi := MonthlyPayment(360000, 0, 360)
	if pi != 1000 {
		t.Errorf("Expected straight-line 1000, got %f", pi)
	}
	if math.IsNaN(MonthlyPayment(0, 0, 360)) {
		t.Error("zero principal at zero rate produced NaN")
	}
}

func TestDefaultFill(t *testing.T) {
	price := 500000.0
	in := Partial{
		PurchasePrice: &price,
		Units:         []Unit{{Name: "Unit A", MonthlyRent: 2000}},
	}.Resolve()

	if in.VacancyRate != DefaultVacancyRate || in.ClosingCostPct != DefaultClosingCostPct ||
		in.PointsPct != DefaultPointsPct || in.Financing.TermMonths != DefaultTermMonths ||
		in.Financing.DownPaymentPct != DefaultDownPaymentPct || in.Financing.AnnualRatePct != DefaultAnnualRatePct {
		t.Fatalf("defaults not applied: %+v", in)
	}

	res := Calculate(in)
	approx(t, "GSR", res.GrossScheduledRentAnnual, 24000, 1e-9)
	approx(t, "EGI", res.EffectiveGrossIncomeAnnual, 22800, 1e-9)
	approx(t, "NOI", res.NetOperatingIncomeAnnual, 19056, 1e-6)
	approx(t, "Loan", res.LoanAmount, 375000, 1e-9)
	approx(t, "P&I", res.MonthlyPrincipalAndInterest, 2673.60, 0.01)
}

func TestEndToEndScenario(t *testing.T) {
	price := 300000.0
	taxes := 3000.0
	ins := 1200.0
	down := Fraction(0.25)
	rate := Fraction(0.06)
	term := 360
	in := Partial{
		PurchasePrice:   &price,
		Units:           []Unit{{MonthlyRent: 1500}},
		TaxesAnnual:     &taxes,
		InsuranceAnnual: &ins,
		DownPaymentPct:  &down,
		AnnualRatePct:   &rate,
		TermMonths:      &term,
	}.Resolve()

	res := Calculate(in)

	approx(t, "GSR", res.GrossScheduledRentAnnual, 18000, 1e-9)
	approx(t, "EGI", res.EffectiveGrossIncomeAnnual, 17100, 1e-9)
	approx(t, "Maintenance", res.MaintenanceAnnual, 1440, 1e-9)
	approx(t, "Management", res.ManagementAnnual, 1368, 1e-9)
	approx(t, "OpEx", res.OperatingExpensesAnnual, 7008, 1e-9)
	approx(t, "NOI", res.NetOperatingIncomeAnnual, 10092, 1e-9)
	approx(t, "TotalAcquisitionCost", res.TotalAcquisitionCost, 309000, 1e-9)
	approx(t, "P&I", res.MonthlyPrincipalAndInterest, 1348.99, 0.01)
	approx(t, "ADS", res.AnnualDebtService, 16187.86, 0.01)
	approx(t, "CashInvested", res.CashInvested, 86250, 1e-9)
	approx(t, "CashFlow", res.AnnualCashFlow, -6095.86, 0.01)
	ptrApprox(t, "CapRate", res.CapRatePct, 10092.0/309000.0, 1e-9)
	ptrApprox(t, "DSCR", res.DebtServiceCoverageRatio, 0.6234, 1e-4)
	ptrApprox(t, "CoC", res.CashOnCashRoiPct, -0.0707, 1e-4)
}

func TestMaintenanceUsesGrossRent(t *testing.T) {
	base := Defaults()
	base.PurchasePrice = 400000
	base.Units = []Unit{{Name: "A", MonthlyRent: 1000}, {Name: "B", MonthlyRent: 1000}}

	full := base
	full.VacancyRate = 0
	half := base
	half.VacancyRate = 0.5

	r0 := Calculate(full)
	r5 := Calculate(half)

	if r0.MaintenanceAnnual != r5.MaintenanceAnnual {
		t.Errorf("maintenance moved with vacancy: %f vs %f", r0.MaintenanceAnnual, r5.MaintenanceAnnual)
	}
	approx(t, "management halves", r5.ManagementAnnual, r0.ManagementAnnual/2, 1e-9)
}

func TestAllCashPurchaseHasNoDSCR(t *testing.T) {
	in := Defaults()
	in.PurchasePrice = 250000
	in.Units = []Unit{{Name: "A", MonthlyRent: 2200}}
	in.Financing.DownPaymentPct = 1

	res := Calculate(in)
	if res.LoanAmount != 0 || res.AnnualDebtService != 0 {
		t.Fatalf("expected no debt, got loan=%f ads=%f", res.LoanAmount, res.AnnualDebtService)
	}
	if res.DebtServiceCoverageRatio != nil {
		t.Errorf("expected nil DSCR, got %f", *res.DebtServiceCoverageRatio)
	}
	if res.CashOnCashRoiPct == nil {
		t.Error("cash-on-cash should be defined for an all-cash purchase")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v, ok := decoded["debtServiceCoverageRatio"]; !ok || v != nil {
		t.Errorf("expected JSON null DSCR, got %v", v)
	}
}

func TestZeroPriceRatiosAreNil(t *testing.T) {
	in := Defaults()
	in.Units = []Unit{{Name: "A", MonthlyRent: 1000}}
	res := Calculate(in)

	if res.CapRatePct != nil || res.DebtServiceCoverageRatio != nil || res.CashOnCashRoiPct != nil {
		t.Errorf("expected nil ratios for zero price, got %+v", res)
	}
}

func TestNegativeNOIIsNotClamped(t *testing.T) {
	in := Defaults()
	in.PurchasePrice = 200000
	in.Units = []Unit{{Name: "A", MonthlyRent: 500}}
	in.TaxesAnnual = 20000

	res := Calculate(in)
	if res.NetOperatingIncomeAnnual >= 0 {
		t.Fatalf("expected negative NOI, got %f", res.NetOperatingIncomeAnnual)
	}
	if res.CapRatePct == nil || *res.CapRatePct >= 0 {
		t.Error("expected a negative cap rate")
	}
}

func TestInvalidInputsFallBackToDefaults(t *testing.T) {
	in := Inputs{
		PurchasePrice:  100000,
		ClosingCostPct: -1,
		VacancyRate:    Fraction(math.NaN()),
		TaxesAnnual:    math.Inf(1),
		Units:          []Unit{{Name: "A", MonthlyRent: -50}},
		Financing:      Financing{DownPaymentPct: 2, AnnualRatePct: -0.1, TermMonths: 0},
	}
	res := Calculate(in)

	approx(t, "closing uses default", res.ClosingCost, 3000, 1e-9)
	approx(t, "negative rent is zero", res.GrossScheduledRentAnnual, 0, 1e-9)
	approx(t, "loan uses default down payment", res.LoanAmount, 75000, 1e-9)
	for _, v := range []float64{res.OperatingExpensesAnnual, res.MonthlyPrincipalAndInterest, res.AnnualCashFlow} {
		if !finite(v) {
			t.Errorf("non-finite output %f", v)
		}
	}
}

func TestCalculateIsPureAndDeterministic(t *testing.T) {
	in := Defaults()
	in.PurchasePrice = 320000
	in.Units = []Unit{{Name: "A", MonthlyRent: 1400}, {Name: "B", MonthlyRent: -10}}
	snapshot := append([]Unit(nil), in.Units...)

	first := Calculate(in)
	second := Calculate(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(in.Units, snapshot) {
		t.Errorf("input units mutated: %+v", in.Units)
	}
}

func TestEmptyUnitsGetSyntheticUnit(t *testing.T) {
	in := Defaults()
	in.Units = nil
	res := Calculate(in)
	if res.GrossScheduledRentAnnual != 0 {
		t.Errorf("expected zero rent, got %f", res.GrossScheduledRentAnnual)
	}
	if in.Units != nil {
		t.Error("Calculate must not write back into its input")
	}
}

func TestOversizedInputsStayFinite(t *testing.T) {
	in := Defaults()
	in.PurchasePrice = 1.78e308
	in.Units = []Unit{{Name: "A", MonthlyRent: 1.6e307}, {Name: "B", MonthlyRent: 1200}}
	in.TaxesAnnual = 1e300
	in.ClosingCostPct = 1e300
	in.Financing.AnnualRatePct = 5

	res := Calculate(in)
	approx(t, "oversized price is invalid", res.TotalAcquisitionCost, 0, 1e-9)
	approx(t, "oversized rent is zero", res.GrossScheduledRentAnnual, 14400, 1e-9)
	approx(t, "oversized taxes are zero", res.OperatingExpensesAnnual, 14400*float64(DefaultMaintenancePctOfGrossRent)+
		14400*(1-float64(DefaultVacancyRate))*float64(DefaultManagementPctOfEGI), 1e-6)

	if _, err := json.Marshal(res); err != nil {
		t.Fatalf("result does not serialize: %v", err)
	}
	if _, err := json.Marshal(Sensitivity(in)); err != nil {
		t.Fatalf("sensitivity does not serialize: %v", err)
	}

	at := Defaults()
	at.PurchasePrice = MaxAmount
	at.Units = []Unit{{Name: "A", MonthlyRent: MaxAmount}}
	if _, err := json.Marshal(Calculate(at)); err != nil {
		t.Fatalf("inputs at the bound do not serialize: %v", err)
	}
}
