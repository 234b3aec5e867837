package services

const (
	// CreditCardUtilizationRate is the fraction of a card's used amount
	// counted as an implied monthly commitment.
	CreditCardUtilizationRate = 0.05

	// RiskBufferPercent is the band above a bank's DSR ceiling within
	// which a request is flagged risky instead of rejected.
	RiskBufferPercent = 10.0

	// DefaultAnnualRate backs the bank-agnostic projection when the
	// applicant has no quoted rate.
	DefaultAnnualRate = 7.0

	// MaxRecommendations caps the ranked list returned to clients; the
	// full per-bank table is always included alongside it.
	MaxRecommendations = 5

	// Input ceilings. Requests beyond these are rejected as invalid
	// rather than evaluated into meaningless figures.
	MaxLoanAmount   = 100_000_000.0
	MaxAnnualRate   = 100.0
	MaxTenureMonths = 480
	MaxCommitments  = 50
)
