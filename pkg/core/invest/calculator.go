package invest

import "math"

// Calculate derives the full metric set from in. It never fails: negative,
// oversized or non-finite inputs are replaced with the documented defaults,
// and ratios with a zero denominator come back nil. in is not modified.
func Calculate(in Inputs) Result {
	in = sanitize(in)
	var res Result

	// 1. Income
	var monthlyRent float64
	for _, u := range in.Units {
		monthlyRent += u.MonthlyRent
	}
	res.GrossScheduledRentAnnual = 12 * monthlyRent
	res.EffectiveGrossIncomeAnnual = res.GrossScheduledRentAnnual * (1 - float64(in.VacancyRate))

	// 2. Operating expenses
	// Maintenance scales with scheduled rent, management with collected income.
	res.MaintenanceAnnual = res.GrossScheduledRentAnnual * float64(in.MaintenancePctOfGrossRent)
	res.ManagementAnnual = res.EffectiveGrossIncomeAnnual * float64(in.ManagementPctOfEGI)
	res.OperatingExpensesAnnual = in.TaxesAnnual +
		in.InsuranceAnnual +
		in.HOAAnnual +
		res.MaintenanceAnnual +
		res.ManagementAnnual +
		in.UtilitiesLandlordAnnual +
		in.OtherOpExAnnual
	res.NetOperatingIncomeAnnual = res.EffectiveGrossIncomeAnnual - res.OperatingExpensesAnnual

	// 3. Acquisition and debt
	res.ClosingCost = in.PurchasePrice * float64(in.ClosingCostPct)
	res.TotalAcquisitionCost = in.PurchasePrice + res.ClosingCost
	res.LoanAmount = in.PurchasePrice * (1 - float64(in.Financing.DownPaymentPct))
	res.MonthlyPrincipalAndInterest = MonthlyPayment(res.LoanAmount, in.Financing.AnnualRatePct, in.Financing.TermMonths)
	res.AnnualDebtService = res.MonthlyPrincipalAndInterest * 12

	// 4. Returns
	res.DebtServiceCoverageRatio = ratio(res.NetOperatingIncomeAnnual, res.AnnualDebtService)
	res.PointsCost = in.PurchasePrice * float64(in.PointsPct)
	res.CashInvested = in.PurchasePrice*float64(in.Financing.DownPaymentPct) + res.ClosingCost + res.PointsCost
	res.AnnualCashFlow = res.NetOperatingIncomeAnnual - res.AnnualDebtService
	res.CapRatePct = ratio(res.NetOperatingIncomeAnnual, res.TotalAcquisitionCost)
	res.CashOnCashRoiPct = ratio(res.AnnualCashFlow, res.CashInvested)

	return res
}

// MonthlyPayment is the fixed principal-and-interest payment of a fully
// amortizing loan. A zero rate falls back to straight-line principal.
func MonthlyPayment(principal float64, annualRate Fraction, termMonths int) float64 {
	if principal <= 0 || termMonths < 1 {
		return 0
	}
	n := float64(termMonths)
	r := float64(annualRate) / 12
	if r == 0 {
		return principal / n
	}
	return principal * r / (1 - math.Pow(1+r, -n))
}

// sanitize returns a copy of in with every invalid field replaced by its
// default. The unit slice is copied so callers keep their own.
func sanitize(in Inputs) Inputs {
	out := in
	out.PurchasePrice = nonNegative(in.PurchasePrice, 0)
	out.ClosingCostPct = nonNegativeFraction(in.ClosingCostPct, DefaultClosingCostPct)
	out.PointsPct = nonNegativeFraction(in.PointsPct, DefaultPointsPct)
	out.VacancyRate = nonNegativeFraction(in.VacancyRate, DefaultVacancyRate)
	out.MaintenancePctOfGrossRent = nonNegativeFraction(in.MaintenancePctOfGrossRent, DefaultMaintenancePctOfGrossRent)
	out.ManagementPctOfEGI = nonNegativeFraction(in.ManagementPctOfEGI, DefaultManagementPctOfEGI)

	out.TaxesAnnual = nonNegative(in.TaxesAnnual, 0)
	out.InsuranceAnnual = nonNegative(in.InsuranceAnnual, 0)
	out.HOAAnnual = nonNegative(in.HOAAnnual, 0)
	out.UtilitiesLandlordAnnual = nonNegative(in.UtilitiesLandlordAnnual, 0)
	out.OtherOpExAnnual = nonNegative(in.OtherOpExAnnual, 0)

	if len(in.Units) == 0 {
		out.Units = []Unit{{Name: DefaultUnitName}}
	} else {
		out.Units = make([]Unit, len(in.Units))
		for i, u := range in.Units {
			out.Units[i] = Unit{Name: u.Name, MonthlyRent: nonNegative(u.MonthlyRent, 0)}
		}
	}

	f := in.Financing
	f.DownPaymentPct = nonNegativeFraction(f.DownPaymentPct, DefaultDownPaymentPct)
	f.AnnualRatePct = nonNegativeFraction(f.AnnualRatePct, DefaultAnnualRatePct)
	if f.TermMonths < 1 {
		f.TermMonths = DefaultTermMonths
	}
	out.Financing = f
	return out
}
