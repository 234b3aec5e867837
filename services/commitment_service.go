package services

import (
	"fmt"

	"loanbackend/types"
)

// AggregateCommitments sums the applicant's existing obligations into a
// single monthly figure. Credit cards contribute their used amount at the
// fixed utilization rate; everything else contributes its stated payment.
// Negative amounts are rejected rather than silently summed.
func AggregateCommitments(commitments []types.Commitment) (float64, error) {
	if len(commitments) > MaxCommitments {
		return 0, fmt.Errorf("%w: more than %d entries", types.ErrNegativeCommitment, MaxCommitments)
	}

	total := 0.0
	for i, c := range commitments {
		if c.MonthlyPayment < 0 || c.CreditCardUsedAmount < 0 {
			return 0, fmt.Errorf("%w: entry %d", types.ErrNegativeCommitment, i)
		}
		if c.Type == types.CommitmentCreditCard {
			total += c.CreditCardUsedAmount * CreditCardUtilizationRate
		} else {
			total += c.MonthlyPayment
		}
	}
	return total, nil
}
