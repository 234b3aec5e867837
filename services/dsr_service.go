package services

import (
	"math"

	"loanbackend/types"
)

// MonthlyPayment is the standard annuity (PMT) formula: the level payment
// that amortizes principal over tenureMonths at annualRate percent. A zero
// rate degenerates to straight division.
func MonthlyPayment(principal, annualRate float64, tenureMonths int) float64 {
	if tenureMonths <= 0 || principal <= 0 {
		return 0
	}
	n := float64(tenureMonths)
	if annualRate == 0 {
		return principal / n
	}
	r := annualRate / 100 / 12
	pow := math.Pow(1+r, n)
	return principal * r * pow / (pow - 1)
}

// MaxPrincipal inverts the annuity formula: the largest principal a given
// monthly payment can service over tenureMonths at annualRate percent.
func MaxPrincipal(payment, annualRate float64, tenureMonths int) float64 {
	if tenureMonths <= 0 || payment <= 0 {
		return 0
	}
	n := float64(tenureMonths)
	if annualRate == 0 {
		return payment * n
	}
	r := annualRate / 100 / 12
	return payment * (1 - math.Pow(1+r, -n)) / r
}

// DsrLimitFor locates the applicable DSR ceiling: the tier with the highest
// threshold not exceeding the recognized income. Income below every
// threshold falls into the lowest tier.
func DsrLimitFor(bank types.BankStandard, recognizedIncome float64) float64 {
	if len(bank.DsrTiers) == 0 {
		return 0
	}
	limit := bank.DsrTiers[0].MaxDsrPercent
	for _, tier := range bank.DsrTiers {
		if recognizedIncome >= tier.IncomeThreshold {
			limit = tier.MaxDsrPercent
		}
	}
	return limit
}

// EstimationRate picks the annual rate used for this bank's projection: the
// applicant's quoted rate when one exists, otherwise the midpoint of the
// bank's rate range for the product.
func EstimationRate(bank types.BankStandard, product types.ProductType, quotedRate float64) float64 {
	if quotedRate > 0 {
		return quotedRate
	}
	if rng, ok := bank.InterestRateRange[product]; ok {
		return (rng.Min + rng.Max) / 2
	}
	return 0
}

// EvaluateBank runs the affordability math for one bank: recognized income,
// tier lookup, serviceable headroom, max loan via the inverse annuity
// capped by the bank's limits, and the projected DSR for the requested
// loan. Status here reflects the DSR classification only; eligibility
// overrides are applied by the matcher.
func EvaluateBank(profile types.ApplicantProfile, bank types.BankStandard, totalCommitment float64) types.PerBankResult {
	loan := profile.RequestedLoan
	income := RecognizedIncome(profile, bank)
	limit := DsrLimitFor(bank, income)
	rate := EstimationRate(bank, loan.ProductType, loan.AssumedAnnualRate)

	result := types.PerBankResult{
		BankID:           bank.BankID,
		BankName:         bank.Name,
		RecognizedIncome: income,
		DsrLimitApplied:  limit,
		EstimatedRate:    rate,
	}

	if income <= 0 {
		// Cannot evaluate a ratio against zero income; report DSR 0 and
		// let the matcher force rejection.
		result.Status = types.StatusRejected
		result.Reasons = append(result.Reasons, "no recognized income")
		result.MarginPercent = 0
		return result
	}

	headroom := income*limit/100 - totalCommitment
	if headroom < 0 {
		headroom = 0
	}
	result.MaxMonthlyPayment = headroom

	var maxLoan, newPayment float64
	switch loan.ProductType {
	case types.ProductCreditCard:
		// For cards the requested amount is a credit limit; servicing is
		// implied at the same utilization rate as existing cards, and the
		// ceiling comes from the credit-limit multiplier, not amortization.
		newPayment = loan.Amount * CreditCardUtilizationRate
		maxLoan = income * bank.LoanLimits.CreditLimitMultiplier
		maxLoan = math.Min(maxLoan, bank.LoanLimits.AbsoluteMax)
	default:
		newPayment = MonthlyPayment(loan.Amount, rate, loan.TenureMonths)
		maxLoan = MaxPrincipal(headroom, rate, loan.TenureMonths)
		maxLoan = math.Min(maxLoan, bank.LoanLimits.AbsoluteMax)
		if bank.LoanLimits.IncomeMultiplier > 0 {
			maxLoan = math.Min(maxLoan, income*bank.LoanLimits.IncomeMultiplier)
		}
		if loan.ProductType == types.ProductMortgage && loan.PropertyValue > 0 && bank.LoanLimits.MaxLtvPercent > 0 {
			maxLoan = math.Min(maxLoan, loan.PropertyValue*bank.LoanLimits.MaxLtvPercent/100)
		}
	}
	result.MaxLoanAmount = maxLoan

	projected := (totalCommitment + newPayment) / income * 100
	result.ProjectedDSR = projected
	result.MarginPercent = limit - projected

	switch {
	case projected <= limit:
		result.Status = types.StatusApproved
	case projected <= limit+RiskBufferPercent:
		result.Status = types.StatusRisky
	default:
		result.Status = types.StatusRejected
	}
	return result
}
