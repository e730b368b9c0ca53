package invest

import (
	"fmt"

	"property_report/pkg/models"
)

// Partial is a sparse set of calculator inputs. Nil fields fall back to the
// defaults when resolved. All rates are fractions.
type Partial struct {
	PurchasePrice  *float64  `json:"purchasePrice,omitempty"`
	ClosingCostPct *Fraction `json:"closingCostPct,omitempty"`
	PointsPct      *Fraction `json:"pointsPct,omitempty"`

	VacancyRate               *Fraction `json:"vacancyRate,omitempty"`
	MaintenancePctOfGrossRent *Fraction `json:"maintenancePctOfGrossRent,omitempty"`
	ManagementPctOfEGI        *Fraction `json:"managementPctOfEGI,omitempty"`

	TaxesAnnual             *float64 `json:"taxesAnnual,omitempty"`
	InsuranceAnnual         *float64 `json:"insuranceAnnual,omitempty"`
	HOAAnnual               *float64 `json:"hoaAnnual,omitempty"`
	UtilitiesLandlordAnnual *float64 `json:"utilitiesLandlordAnnual,omitempty"`
	OtherOpExAnnual         *float64 `json:"otherOpExAnnual,omitempty"`

	Units []Unit `json:"units,omitempty"`

	DownPaymentPct *Fraction `json:"downPaymentPct,omitempty"`
	AnnualRatePct  *Fraction `json:"annualRatePct,omitempty"`
	TermMonths     *int      `json:"termMonths,omitempty"`
}

// Resolve fills every nil field with its default.
func (p Partial) Resolve() Inputs {
	in := Defaults()
	setFloat(&in.PurchasePrice, p.PurchasePrice)
	setFraction(&in.ClosingCostPct, p.ClosingCostPct)
	setFraction(&in.PointsPct, p.PointsPct)
	setFraction(&in.VacancyRate, p.VacancyRate)
	setFraction(&in.MaintenancePctOfGrossRent, p.MaintenancePctOfGrossRent)
	setFraction(&in.ManagementPctOfEGI, p.ManagementPctOfEGI)
	setFloat(&in.TaxesAnnual, p.TaxesAnnual)
	setFloat(&in.InsuranceAnnual, p.InsuranceAnnual)
	setFloat(&in.HOAAnnual, p.HOAAnnual)
	setFloat(&in.UtilitiesLandlordAnnual, p.UtilitiesLandlordAnnual)
	setFloat(&in.OtherOpExAnnual, p.OtherOpExAnnual)
	if len(p.Units) > 0 {
		in.Units = append([]Unit(nil), p.Units...)
	}
	setFraction(&in.Financing.DownPaymentPct, p.DownPaymentPct)
	setFraction(&in.Financing.AnnualRatePct, p.AnnualRatePct)
	if p.TermMonths != nil {
		in.Financing.TermMonths = *p.TermMonths
	}
	return in
}

// Merge returns p with every non-nil field of o laid over it.
func (p Partial) Merge(o Partial) Partial {
	out := p
	pick(&out.PurchasePrice, o.PurchasePrice)
	pick(&out.ClosingCostPct, o.ClosingCostPct)
	pick(&out.PointsPct, o.PointsPct)
	pick(&out.VacancyRate, o.VacancyRate)
	pick(&out.MaintenancePctOfGrossRent, o.MaintenancePctOfGrossRent)
	pick(&out.ManagementPctOfEGI, o.ManagementPctOfEGI)
	pick(&out.TaxesAnnual, o.TaxesAnnual)
	pick(&out.InsuranceAnnual, o.InsuranceAnnual)
	pick(&out.HOAAnnual, o.HOAAnnual)
	pick(&out.UtilitiesLandlordAnnual, o.UtilitiesLandlordAnnual)
	pick(&out.OtherOpExAnnual, o.OtherOpExAnnual)
	if len(o.Units) > 0 {
		out.Units = o.Units
	}
	pick(&out.DownPaymentPct, o.DownPaymentPct)
	pick(&out.AnnualRatePct, o.AnnualRatePct)
	pick(&out.TermMonths, o.TermMonths)
	return out
}

// Overrides are user-supplied assumptions submitted with a generation
// request. Rates are whole-number percents, the same unit the report uses.
type Overrides struct {
	ClosingCostPct            *Percent `json:"closingCostPct,omitempty"`
	PointsPct                 *Percent `json:"pointsPct,omitempty"`
	VacancyPct                *Percent `json:"vacancyPct,omitempty"`
	MaintenancePctOfGrossRent *Percent `json:"maintenancePctOfGrossRent,omitempty"`
	ManagementPctOfEGI        *Percent `json:"managementPctOfEGI,omitempty"`

	TaxesAnnual             *float64 `json:"taxesAnnual,omitempty"`
	InsuranceAnnual         *float64 `json:"insuranceAnnual,omitempty"`
	HOAAnnual               *float64 `json:"hoaAnnual,omitempty"`
	UtilitiesLandlordAnnual *float64 `json:"utilitiesLandlordAnnual,omitempty"`
	OtherOpExAnnual         *float64 `json:"otherOpExAnnual,omitempty"`

	DownPaymentPct  *Percent `json:"downPaymentPct,omitempty"`
	InterestRatePct *Percent `json:"interestRatePct,omitempty"`
	TermMonths      *int     `json:"termMonths,omitempty"`
}

// Partial converts the overrides into calculator fractions.
func (o Overrides) Partial() Partial {
	return Partial{
		ClosingCostPct:            percentPtr(o.ClosingCostPct),
		PointsPct:                 percentPtr(o.PointsPct),
		VacancyRate:               percentPtr(o.VacancyPct),
		MaintenancePctOfGrossRent: percentPtr(o.MaintenancePctOfGrossRent),
		ManagementPctOfEGI:        percentPtr(o.ManagementPctOfEGI),
		TaxesAnnual:               o.TaxesAnnual,
		InsuranceAnnual:           o.InsuranceAnnual,
		HOAAnnual:                 o.HOAAnnual,
		UtilitiesLandlordAnnual:   o.UtilitiesLandlordAnnual,
		OtherOpExAnnual:           o.OtherOpExAnnual,
		DownPaymentPct:            percentPtr(o.DownPaymentPct),
		AnnualRatePct:             percentPtr(o.InterestRatePct),
		TermMonths:                o.TermMonths,
	}
}

// IsEmpty reports whether no override is set.
func (o Overrides) IsEmpty() bool {
	return o == Overrides{}
}

// Validate checks overrides against the ranges a request may carry.
func (o Overrides) Validate() error {
	pcts := []struct {
		name string
		v    *Percent
	}{
		{"closingCostPct", o.ClosingCostPct},
		{"pointsPct", o.PointsPct},
		{"vacancyPct", o.VacancyPct},
		{"maintenancePctOfGrossRent", o.MaintenancePctOfGrossRent},
		{"managementPctOfEGI", o.ManagementPctOfEGI},
		{"downPaymentPct", o.DownPaymentPct},
		{"interestRatePct", o.InterestRatePct},
	}
	for _, p := range pcts {
		if p.v != nil && (!finite(float64(*p.v)) || *p.v < 0 || *p.v > 100) {
			return fmt.Errorf("%s must be between 0 and 100, got %v", p.name, float64(*p.v))
		}
	}
	amounts := []struct {
		name string
		v    *float64
	}{
		{"taxesAnnual", o.TaxesAnnual},
		{"insuranceAnnual", o.InsuranceAnnual},
		{"hoaAnnual", o.HOAAnnual},
		{"utilitiesLandlordAnnual", o.UtilitiesLandlordAnnual},
		{"otherOpExAnnual", o.OtherOpExAnnual},
	}
	for _, a := range amounts {
		if a.v != nil && (!finite(*a.v) || *a.v < 0 || *a.v > MaxAmount) {
			return fmt.Errorf("%s must be an amount between 0 and %.0f, got %v", a.name, MaxAmount, *a.v)
		}
	}
	if o.TermMonths != nil && (*o.TermMonths < 1 || *o.TermMonths > MaxTermMonths) {
		return fmt.Errorf("termMonths must be between 1 and %d, got %d", MaxTermMonths, *o.TermMonths)
	}
	return nil
}

// MaxTermMonths bounds a requested loan term (40 years).
const MaxTermMonths = 480

// ReportPartial lifts the calculator inputs out of a generated report. This is
// the only place whole-number report percents become fractions.
func ReportPartial(r *models.PropertyReport) Partial {
	if r == nil {
		return Partial{}
	}
	p := Partial{
		PurchasePrice:             r.Purchase.Price,
		ClosingCostPct:            wholePct(r.Purchase.ClosingCostPct),
		PointsPct:                 wholePct(r.Purchase.PointsPct),
		VacancyRate:               wholePct(r.OperatingAssumptions.VacancyPct),
		MaintenancePctOfGrossRent: wholePct(r.OperatingAssumptions.MaintenancePctOfGrossRent),
		ManagementPctOfEGI:        wholePct(r.OperatingAssumptions.ManagementPctOfEGI),
		TaxesAnnual:               r.OperatingAssumptions.TaxesAnnual,
		InsuranceAnnual:           r.OperatingAssumptions.InsuranceAnnual,
		HOAAnnual:                 r.OperatingAssumptions.HOAAnnual,
		UtilitiesLandlordAnnual:   r.OperatingAssumptions.UtilitiesLandlordAnnual,
		OtherOpExAnnual:           r.OperatingAssumptions.OtherOpExAnnual,
		DownPaymentPct:            wholePct(r.Financing.DownPaymentPct),
		AnnualRatePct:             wholePct(r.Financing.InterestRatePct),
		TermMonths:                r.Financing.TermMonths,
	}
	for i, u := range r.Units {
		name := u.Name
		if name == "" {
			name = fmt.Sprintf("Unit %c", 'A'+rune(i%26))
		}
		var rent float64
		if u.MonthlyRent != nil {
			rent = *u.MonthlyRent
		}
		p.Units = append(p.Units, Unit{Name: name, MonthlyRent: rent})
	}
	return p
}

// FromReport builds calculator inputs from a report with the request
// overrides applied on top.
func FromReport(r *models.PropertyReport, o Overrides) Inputs {
	return ReportPartial(r).Merge(o.Partial()).Resolve()
}

func wholePct(v *float64) *Fraction {
	if v == nil {
		return nil
	}
	f := Percent(*v).Fraction()
	return &f
}

func percentPtr(p *Percent) *Fraction {
	if p == nil {
		return nil
	}
	f := p.Fraction()
	return &f
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setFraction(dst *Fraction, v *Fraction) {
	if v != nil {
		*dst = *v
	}
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}
