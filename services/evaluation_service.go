package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	kafka_client "loanbackend/clients/kafka"
	mongo_client "loanbackend/clients/mongo"
	rabbitmq_client "loanbackend/clients/rabbitmq"
	"loanbackend/types"
	"loanbackend/utils/helpers"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type EvaluationServiceI interface {
	EvaluateAffordability(ctx context.Context, profile types.ApplicantProfile) (types.EvaluationResult, error)
}

type evaluationService struct{}

var EvaluationService EvaluationServiceI = &evaluationService{}

// EvaluateAffordability is the single entry point: it validates the
// request, normalizes income, aggregates commitments, evaluates every bank
// in the standards table and ranks the approvals. The evaluation itself is
// pure; the history write and event publish afterwards are best-effort.
func (s *evaluationService) EvaluateAffordability(ctx context.Context, profile types.ApplicantProfile) (types.EvaluationResult, error) {
	span := sentry.StartSpan(ctx, "[SERVICE] EvaluateAffordability")
	defer span.Finish()

	if err := validateProfile(profile); err != nil {
		return types.EvaluationResult{}, err
	}

	totalCommitment, err := AggregateCommitments(profile.ExistingCommitments)
	if err != nil {
		return types.EvaluationResult{}, err
	}

	net := NetMonthlyIncome(profile.GrossMonthlyIncome, profile.Deductions)

	loan := profile.RequestedLoan
	rate := loan.AssumedAnnualRate
	if rate == 0 {
		rate = DefaultAnnualRate
	}
	var newPayment float64
	if loan.ProductType == types.ProductCreditCard {
		newPayment = loan.Amount * CreditCardUtilizationRate
	} else {
		newPayment = MonthlyPayment(loan.Amount, rate, loan.TenureMonths)
	}

	projectedDSR := 0.0
	if net > 0 {
		projectedDSR = (totalCommitment + newPayment) / net * 100
	}

	result := types.EvaluationResult{
		EvaluationID:               uuid.New().String(),
		NetMonthlyIncome:           helpers.RoundTo2(net),
		TotalExistingCommitment:    helpers.RoundTo2(totalCommitment),
		ProjectedNewMonthlyPayment: helpers.RoundTo2(newPayment),
		ProjectedDSR:               helpers.RoundTo2(projectedDSR),
		CreatedAt:                  time.Now().UTC(),
	}

	perBank := make([]types.PerBankResult, 0, len(BankStandards()))
	for _, bank := range BankStandards() {
		bankResult := EvaluateBank(profile, bank, totalCommitment)
		if reasons := eligibilityReasons(profile, bank); len(reasons) > 0 {
			bankResult.Status = types.StatusRejected
			bankResult.Reasons = append(bankResult.Reasons, reasons...)
		}
		perBank = append(perBank, roundBankResult(bankResult))
	}
	result.PerBankResults = perBank
	result.RankedRecommendations = rankRecommendations(perBank)

	for _, r := range result.RankedRecommendations {
		if r.MaxLoanAmount > result.MaxLoanAmount {
			result.MaxLoanAmount = r.MaxLoanAmount
		}
		if r.MaxMonthlyPayment > result.MaxMonthlyPayment {
			result.MaxMonthlyPayment = r.MaxMonthlyPayment
		}
	}

	saveEvaluation(profile, result)
	publishEvaluationEvent(profile, result)

	return result, nil
}

// validateProfile enforces the input taxonomy before any arithmetic runs.
func validateProfile(profile types.ApplicantProfile) error {
	if profile.GrossMonthlyIncome < 0 {
		return types.ErrNegativeIncome
	}
	d := profile.Deductions
	if d.EPF < 0 || d.IncomeTax < 0 || d.Socso < 0 {
		return types.ErrNegativeDeduction
	}
	if profile.RentalMonthlyIncome < 0 || profile.ForeignMonthlyIncome < 0 {
		return types.ErrNegativeIncome
	}

	loan := profile.RequestedLoan
	switch loan.ProductType {
	case types.ProductPersonalLoan, types.ProductMortgage, types.ProductBusinessLoan:
		if loan.TenureMonths <= 0 || loan.TenureMonths > MaxTenureMonths {
			return fmt.Errorf("%w: got %d", types.ErrInvalidTenure, loan.TenureMonths)
		}
	case types.ProductCreditCard:
		// Cards have no amortization tenure; the amount is a limit.
	default:
		return fmt.Errorf("%w: %q", types.ErrUnknownProduct, loan.ProductType)
	}
	if loan.Amount <= 0 || loan.Amount > MaxLoanAmount {
		return fmt.Errorf("%w: got %.2f", types.ErrInvalidAmount, loan.Amount)
	}
	if loan.AssumedAnnualRate < 0 || loan.AssumedAnnualRate > MaxAnnualRate {
		return fmt.Errorf("%w: got %.2f", types.ErrInvalidRate, loan.AssumedAnnualRate)
	}
	return nil
}

// eligibilityReasons lists why a bank would decline the applicant outright,
// independent of DSR.
func eligibilityReasons(profile types.ApplicantProfile, bank types.BankStandard) []string {
	var reasons []string
	loan := profile.RequestedLoan
	rules := bank.Eligibility

	if min, ok := bank.MinIncomeByProduct[loan.ProductType]; ok {
		if RecognizedIncome(profile, bank) < min {
			reasons = append(reasons, fmt.Sprintf("recognized income below bank minimum of RM%.0f", min))
		}
	}
	if profile.Age > 0 {
		if profile.Age < rules.MinAge {
			reasons = append(reasons, fmt.Sprintf("below minimum age %d", rules.MinAge))
		}
		if rules.MaxAge > 0 && profile.Age > rules.MaxAge {
			reasons = append(reasons, fmt.Sprintf("above maximum age %d", rules.MaxAge))
		}
	}
	if profile.EmploymentType == types.EmploymentSelfEmployed {
		if profile.BusinessAgeMonths < rules.MinBusinessAgeMonths {
			reasons = append(reasons, fmt.Sprintf("business younger than %d months", rules.MinBusinessAgeMonths))
		}
	} else if profile.EmploymentTenureMonths < rules.MinEmploymentMonths {
		reasons = append(reasons, fmt.Sprintf("employment tenure under %d months", rules.MinEmploymentMonths))
	}
	if rules.CivilServantOnly && loan.ProductType == types.ProductPersonalLoan {
		if profile.Identity != types.IdentityCivilServant && profile.EmploymentType != types.EmploymentGovernment {
			reasons = append(reasons, "personal financing limited to civil servants")
		}
	}
	return reasons
}

// rankRecommendations filters to approved banks and sorts them descending
// by safety margin. The sort is stable, so margin ties keep the standards
// table insertion order.
func rankRecommendations(perBank []types.PerBankResult) []types.PerBankResult {
	ranked := make([]types.PerBankResult, 0, len(perBank))
	for _, r := range perBank {
		if r.Status == types.StatusApproved {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MarginPercent > ranked[j].MarginPercent
	})
	if len(ranked) > MaxRecommendations {
		ranked = ranked[:MaxRecommendations]
	}
	return ranked
}

func roundBankResult(r types.PerBankResult) types.PerBankResult {
	r.RecognizedIncome = helpers.RoundTo2(r.RecognizedIncome)
	r.ProjectedDSR = helpers.RoundTo2(r.ProjectedDSR)
	r.MarginPercent = helpers.RoundTo2(r.MarginPercent)
	r.MaxMonthlyPayment = helpers.RoundTo2(r.MaxMonthlyPayment)
	r.MaxLoanAmount = helpers.RoundTo2(r.MaxLoanAmount)
	return r
}

// saveEvaluation writes the evaluation summary to the history collection.
// Not critical: a failure is logged and never surfaces to the caller.
func saveEvaluation(profile types.ApplicantProfile, result types.EvaluationResult) {
	if mongo_client.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	collection := mongo_client.Client.Database(os.Getenv("DATABASE")).Collection(os.Getenv("COLLECTION"))
	doc := bson.M{
		"evaluationId":  result.EvaluationID,
		"productType":   profile.RequestedLoan.ProductType,
		"amount":        profile.RequestedLoan.Amount,
		"tenureMonths":  profile.RequestedLoan.TenureMonths,
		"projectedDSR":  result.ProjectedDSR,
		"approvedBanks": len(result.RankedRecommendations),
		"incomeSegment": helpers.GetIncomeSegment(result.NetMonthlyIncome),
		"createdAt":     result.CreatedAt,
	}
	if _, err := collection.InsertOne(ctx, doc); err != nil {
		sentry.CaptureException(err)
		zap.L().Error("Failed to save evaluation history", zap.String("evaluationId", result.EvaluationID), zap.Error(err))
	}
}

// publishEvaluationEvent pushes the summary to whichever brokers are
// configured. Also best-effort.
func publishEvaluationEvent(profile types.ApplicantProfile, result types.EvaluationResult) {
	event := types.EvaluationEvent{
		EvaluationID:  result.EvaluationID,
		ProductType:   profile.RequestedLoan.ProductType,
		ProjectedDSR:  result.ProjectedDSR,
		ApprovedBanks: len(result.RankedRecommendations),
		CreatedAt:     result.CreatedAt,
	}
	if len(result.RankedRecommendations) > 0 {
		event.TopBank = result.RankedRecommendations[0].BankID
	}

	if kafka_client.Enabled() {
		kafka_client.SendMessage(event)
	}
	if rabbitmq_client.Enabled() {
		rabbitmq_client.SendMessage(event)
	}
}
