package services

import (
	"loanbackend/types"
)

// NetMonthlyIncome applies the statutory deductions to gross salary,
// floored at zero. Inputs are clamped, never rejected here; negative raw
// figures are caught earlier at the request boundary.
func NetMonthlyIncome(gross float64, deductions types.StatutoryDeductions) float64 {
	net := gross - deductions.Total()
	if net < 0 {
		return 0
	}
	return net
}

// RecognizedIncome computes the income figure a specific bank uses for its
// DSR rules. NET-basis banks start from net income, GROSS-basis banks from
// gross (deductions ignored entirely). Self-employed applicants get the
// bank's self-employed factor on the base figure; rental and foreign income
// streams are added after their own factors.
func RecognizedIncome(profile types.ApplicantProfile, bank types.BankStandard) float64 {
	base := profile.GrossMonthlyIncome
	if bank.IncomeBasis == types.IncomeBasisNet {
		base = NetMonthlyIncome(profile.GrossMonthlyIncome, profile.Deductions)
	}

	if profile.EmploymentType == types.EmploymentSelfEmployed && bank.Recognition.SelfEmployed > 0 {
		base *= bank.Recognition.SelfEmployed
	}

	recognized := base
	recognized += profile.RentalMonthlyIncome * bank.Recognition.Rental
	recognized += profile.ForeignMonthlyIncome * bank.Recognition.Foreign

	if recognized < 0 {
		return 0
	}
	return recognized
}
