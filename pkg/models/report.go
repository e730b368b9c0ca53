// Package models defines the property investment report returned by the
// generation service. Field names and nullability mirror
// resources/schemas/property_report.json.
package models

// PropertyReport is the top-level structured report.
// Numbers the model may not know are pointers so "unknown" (null) can be told
// apart from zero.
type PropertyReport struct {
	Version              string               `json:"version"`
	ReportMeta           ReportMeta           `json:"reportMeta"`
	Subject              Subject              `json:"subject"`
	Purchase             Purchase             `json:"purchase"`
	PropertySnapshot     PropertySnapshot     `json:"propertySnapshot"`
	Units                []Unit               `json:"units"`
	Rents                Rents                `json:"rents"`
	RentComps            []RentComp           `json:"rentComps"`
	OperatingAssumptions OperatingAssumptions `json:"operatingAssumptions"`
	Financing            Financing            `json:"financing"`
	Totals               Totals               `json:"totals"`
	Sensitivity          Sensitivity          `json:"sensitivity"`
	Negotiation          Negotiation          `json:"negotiation"`
	Glossary             []GlossaryEntry      `json:"glossary"`
}

type ReportMeta struct {
	GeneratedAt string  `json:"generatedAt"`
	Currency    string  `json:"currency"`
	Model       *string `json:"model"`
	Disclaimer  string  `json:"disclaimer"`
}

type Subject struct {
	Address      string  `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postalCode"`
	PropertyType string  `json:"propertyType"` // single_family, duplex, triplex, fourplex, multifamily, condo, townhouse, other
}

// Purchase percentages are whole-number percents (3 means 3%).
type Purchase struct {
	Price          *float64 `json:"price"`
	ClosingCostPct *float64 `json:"closingCostPct"`
	PointsPct      *float64 `json:"pointsPct"`
	RehabBudget    *float64 `json:"rehabBudget"`
}

type PropertySnapshot struct {
	YearBuilt      *int     `json:"yearBuilt"`
	BuildingSqft   *float64 `json:"buildingSqft"`
	LotSqft        *float64 `json:"lotSqft"`
	BedroomsTotal  *float64 `json:"bedroomsTotal"`
	BathroomsTotal *float64 `json:"bathroomsTotal"`
	Condition      *string  `json:"condition"`
	Summary        string   `json:"summary"`
}

type Unit struct {
	Name        string   `json:"name"`
	Beds        *float64 `json:"beds"`
	Baths       *float64 `json:"baths"`
	Sqft        *float64 `json:"sqft"`
	MonthlyRent *float64 `json:"monthlyRent"`
}

type Rents struct {
	MarketRentMonthlyLow  *float64 `json:"marketRentMonthlyLow"`
	MarketRentMonthlyHigh *float64 `json:"marketRentMonthlyHigh"`
	Methodology           string   `json:"methodology"`
}

type RentComp struct {
	Address       string   `json:"address"`
	DistanceMiles *float64 `json:"distanceMiles"`
	Beds          *float64 `json:"beds"`
	Baths         *float64 `json:"baths"`
	Sqft          *float64 `json:"sqft"`
	MonthlyRent   *float64 `json:"monthlyRent"`
	Source        *string  `json:"source"`
}

// OperatingAssumptions percentages are whole-number percents.
type OperatingAssumptions struct {
	VacancyPct                *float64 `json:"vacancyPct"`
	MaintenancePctOfGrossRent *float64 `json:"maintenancePctOfGrossRent"`
	ManagementPctOfEGI        *float64 `json:"managementPctOfEGI"`
	TaxesAnnual               *float64 `json:"taxesAnnual"`
	InsuranceAnnual           *float64 `json:"insuranceAnnual"`
	HOAAnnual                 *float64 `json:"hoaAnnual"`
	UtilitiesLandlordAnnual   *float64 `json:"utilitiesLandlordAnnual"`
	OtherOpExAnnual           *float64 `json:"otherOpExAnnual"`
}

// Financing percentages are whole-number percents (7.7 means 7.7% APR).
type Financing struct {
	DownPaymentPct  *float64 `json:"downPaymentPct"`
	InterestRatePct *float64 `json:"interestRatePct"`
	TermMonths      *int     `json:"termMonths"`
	LoanType        *string  `json:"loanType"`
}

// Totals are the model's own arithmetic. They are reconciled against the
// local calculation, never trusted for display.
type Totals struct {
	GrossScheduledRentAnnual   *float64 `json:"grossScheduledRentAnnual"`
	EffectiveGrossIncomeAnnual *float64 `json:"effectiveGrossIncomeAnnual"`
	OperatingExpensesAnnual    *float64 `json:"operatingExpensesAnnual"`
	NOIAnnual                  *float64 `json:"noiAnnual"`
	AnnualDebtService          *float64 `json:"annualDebtService"`
	CapRatePct                 *float64 `json:"capRatePct"`
	DSCR                       *float64 `json:"dscr"`
	CashFlowAnnual             *float64 `json:"cashFlowAnnual"`
	CashOnCashPct              *float64 `json:"cashOnCashPct"`
}

type Sensitivity struct {
	RentMinus10 Scenario `json:"rentMinus10"`
	BaseCase    Scenario `json:"baseCase"`
	RentPlus10  Scenario `json:"rentPlus10"`
	OpExMinus10 Scenario `json:"opExMinus10"`
	OpExPlus10  Scenario `json:"opExPlus10"`
}

// Scenario is shared by every sensitivity case. CapRatePct is a whole-number
// percent.
type Scenario struct {
	NOIAnnual      *float64 `json:"noiAnnual"`
	CapRatePct     *float64 `json:"capRatePct"`
	DSCR           *float64 `json:"dscr"`
	CashFlowAnnual *float64 `json:"cashFlowAnnual"`
}

type Negotiation struct {
	SuggestedOfferPrice *float64 `json:"suggestedOfferPrice"`
	TalkingPoints       []string `json:"talkingPoints"`
	Risks               []string `json:"risks"`
}

type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Float returns a pointer to f. Used when building reports in code.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// String returns a pointer to s.
func String(s string) *string { return &s }
