// Package invest provides the deterministic rental investment calculator:
// income, operating expenses, mortgage amortization and the standard ratios
// (cap rate, DSCR, cash-on-cash). Everything here is pure arithmetic.
package invest

import "math"

// Percent is a whole-number percentage as written in reports (5 means 5%).
type Percent float64

// Fraction is a canonical fraction (0.05 means 5%). The calculator only
// accepts fractions.
type Fraction float64

// Fraction converts a whole-number percent into a fraction.
func (p Percent) Fraction() Fraction { return Fraction(float64(p) / 100) }

// Percent converts a fraction back into a whole-number percent for display.
func (f Fraction) Percent() Percent { return Percent(float64(f) * 100) }

// Unit is one rentable unit in the rent roll.
type Unit struct {
	Name        string  `json:"name"`
	MonthlyRent float64 `json:"monthlyRent"`
}

// Financing describes a fixed-rate fully amortizing loan.
type Financing struct {
	DownPaymentPct Fraction `json:"downPaymentPct"` // [0,1]
	AnnualRatePct  Fraction `json:"annualRatePct"`  // 0.077 = 7.7% APR
	TermMonths     int      `json:"termMonths"`
}

// Inputs is the normalized, defaulted form consumed by Calculate.
type Inputs struct {
	PurchasePrice  float64  `json:"purchasePrice"`
	ClosingCostPct Fraction `json:"closingCostPct"`
	PointsPct      Fraction `json:"pointsPct"`

	VacancyRate               Fraction `json:"vacancyRate"`
	MaintenancePctOfGrossRent Fraction `json:"maintenancePctOfGrossRent"`
	ManagementPctOfEGI        Fraction `json:"managementPctOfEGI"`

	TaxesAnnual             float64 `json:"taxesAnnual"`
	InsuranceAnnual         float64 `json:"insuranceAnnual"`
	HOAAnnual               float64 `json:"hoaAnnual"`
	UtilitiesLandlordAnnual float64 `json:"utilitiesLandlordAnnual"`
	OtherOpExAnnual         float64 `json:"otherOpExAnnual"`

	Units     []Unit    `json:"units"`
	Financing Financing `json:"financing"`
}

// Result holds the derived metrics. Ratios are nil when their denominator is
// zero and serialize as JSON null.
type Result struct {
	GrossScheduledRentAnnual   float64 `json:"grossScheduledRentAnnual"`
	EffectiveGrossIncomeAnnual float64 `json:"effectiveGrossIncomeAnnual"`
	MaintenanceAnnual          float64 `json:"maintenanceAnnual"`
	ManagementAnnual           float64 `json:"managementAnnual"`
	OperatingExpensesAnnual    float64 `json:"operatingExpensesAnnual"`
	NetOperatingIncomeAnnual   float64 `json:"netOperatingIncomeAnnual"`

	ClosingCost                 float64 `json:"closingCost"`
	PointsCost                  float64 `json:"pointsCost"`
	TotalAcquisitionCost        float64 `json:"totalAcquisitionCost"`
	LoanAmount                  float64 `json:"loanAmount"`
	MonthlyPrincipalAndInterest float64 `json:"monthlyPrincipalAndInterest"`
	AnnualDebtService           float64 `json:"annualDebtService"`

	DebtServiceCoverageRatio *float64 `json:"debtServiceCoverageRatio"`
	CapRatePct               *float64 `json:"capRatePct"` // fraction; multiply by 100 for display
	CashInvested             float64  `json:"cashInvested"`
	AnnualCashFlow           float64  `json:"annualCashFlow"`
	CashOnCashRoiPct         *float64 `json:"cashOnCashRoiPct"` // fraction
}

// Default assumptions applied to any absent or invalid input.
const (
	DefaultClosingCostPct            Fraction = 0.03
	DefaultPointsPct                 Fraction = 0.0075
	DefaultVacancyRate               Fraction = 0.05
	DefaultMaintenancePctOfGrossRent Fraction = 0.08
	DefaultManagementPctOfEGI        Fraction = 0.08
	DefaultDownPaymentPct            Fraction = 0.25
	DefaultAnnualRatePct             Fraction = 0.077
	DefaultTermMonths                         = 360
	DefaultUnitName                           = "Unit A"
)

// Defaults returns Inputs filled with the default assumptions and a single
// empty unit.
func Defaults() Inputs {
	return Inputs{
		ClosingCostPct:            DefaultClosingCostPct,
		PointsPct:                 DefaultPointsPct,
		VacancyRate:               DefaultVacancyRate,
		MaintenancePctOfGrossRent: DefaultMaintenancePctOfGrossRent,
		ManagementPctOfEGI:        DefaultManagementPctOfEGI,
		Units:                     []Unit{{Name: DefaultUnitName}},
		Financing: Financing{
			DownPaymentPct: DefaultDownPaymentPct,
			AnnualRatePct:  DefaultAnnualRatePct,
			TermMonths:     DefaultTermMonths,
		},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MaxAmount bounds every money input. Anything larger is treated as invalid,
// which keeps every derived figure finite.
const MaxAmount = 1e12

// nonNegative returns v, or def when v is negative, above MaxAmount, NaN or
// infinite.
func nonNegative(v, def float64) float64 {
	if !finite(v) || v < 0 || v > MaxAmount {
		return def
	}
	return v
}

// nonNegativeFraction returns v, or def when v is outside [0, 1].
func nonNegativeFraction(v, def Fraction) Fraction {
	if !finite(float64(v)) || v < 0 || v > 1 {
		return def
	}
	return v
}

// ratio divides num by den, returning nil for a zero or non-finite result.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	if !finite(r) {
		return nil
	}
	return &r
}
