package types

import "errors"

// Validation errors surfaced at the evaluation request boundary. Handlers
// map these to 400 responses.
var (
	ErrNegativeIncome     = errors.New("gross monthly income cannot be negative")
	ErrNegativeDeduction  = errors.New("statutory deductions cannot be negative")
	ErrNegativeCommitment = errors.New("commitment amounts cannot be negative")
	ErrInvalidTenure      = errors.New("loan tenure must be a positive number of months")
	ErrInvalidRate        = errors.New("assumed annual rate must be between 0 and 100")
	ErrInvalidAmount      = errors.New("requested loan amount must be positive")
	ErrUnknownProduct     = errors.New("unknown product type")
)

// IsValidationError reports whether err belongs to the request validation
// taxonomy, as opposed to an operational failure.
func IsValidationError(err error) bool {
	for _, v := range []error{
		ErrNegativeIncome,
		ErrNegativeDeduction,
		ErrNegativeCommitment,
		ErrInvalidTenure,
		ErrInvalidRate,
		ErrInvalidAmount,
		ErrUnknownProduct,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
