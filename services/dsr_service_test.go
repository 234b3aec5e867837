package services

import (
	"math"
	"testing"

	"loanbackend/types"
)

// testBank builds a single-tier NET bank with no caps in the way, so the
// amortization math can be checked in isolation.
func testBank(id string, maxDsr float64, seFactor float64) types.BankStandard {
	return types.BankStandard{
		BankID:      id,
		Name:        id,
		IncomeBasis: types.IncomeBasisNet,
		DsrTiers:    []types.DsrTier{{IncomeThreshold: 0, MaxDsrPercent: maxDsr}},
		LoanLimits:  types.LoanLimits{AbsoluteMax: 100_000_000, CreditLimitMultiplier: 2},
		Recognition: types.SpecialRecognition{SelfEmployed: seFactor, Rental: 0.8, Foreign: 0.5},
	}
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	result := MonthlyPayment(1200, 0, 12)
	expected := 100.0
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestMonthlyPayment_StandardLoan(t *testing.T) {
	// RM100,000 over 60 months at 7% p.a. pays about RM1,980 a month.
	result := MonthlyPayment(100000, 7, 60)
	if math.Abs(result-1980.12) > 0.5 {
		t.Errorf("Expected ~1980.12, got %v", result)
	}
}

func TestMonthlyPayment_Degenerate(t *testing.T) {
	if result := MonthlyPayment(0, 7, 60); result != 0 {
		t.Errorf("Expected 0 for zero principal, got %v", result)
	}
	if result := MonthlyPayment(100000, 7, 0); result != 0 {
		t.Errorf("Expected 0 for zero tenure, got %v", result)
	}
}

func TestMaxPrincipal_ZeroRate(t *testing.T) {
	result := MaxPrincipal(100, 0, 12)
	expected := 1200.0
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestAmortizationRoundTrip(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		tenure    int
	}{
		{100000, 7, 60},
		{250000, 4.5, 360},
		{5000, 12.5, 24},
		{1_000_000, 3.95, 420},
	}
	for _, c := range cases {
		payment := MonthlyPayment(c.principal, c.rate, c.tenure)
		back := MaxPrincipal(payment, c.rate, c.tenure)
		relErr := math.Abs(back-c.principal) / c.principal
		if relErr > 1e-6 {
			t.Errorf("round trip for %v@%v%%/%dm: got %v (rel err %v)", c.principal, c.rate, c.tenure, back, relErr)
		}
	}
}

func TestDsrLimitFor_TierSelection(t *testing.T) {
	bank := types.BankStandard{
		DsrTiers: []types.DsrTier{
			{IncomeThreshold: 0, MaxDsrPercent: 60},
			{IncomeThreshold: 5000, MaxDsrPercent: 70},
			{IncomeThreshold: 10000, MaxDsrPercent: 75},
		},
	}
	cases := []struct {
		income   float64
		expected float64
	}{
		{0, 60},
		{4999.99, 60},
		{5000, 70},
		{9999, 70},
		{10000, 75},
		{50000, 75},
	}
	for _, c := range cases {
		result := DsrLimitFor(bank, c.income)
		if result != c.expected {
			t.Errorf("income %v: Expected %v, got %v", c.income, c.expected, result)
		}
	}
}

func TestDsrLimitFor_BelowAllThresholds(t *testing.T) {
	bank := types.BankStandard{
		DsrTiers: []types.DsrTier{
			{IncomeThreshold: 3000, MaxDsrPercent: 60},
			{IncomeThreshold: 8000, MaxDsrPercent: 70},
		},
	}
	// Income under every threshold still gets the lowest tier.
	result := DsrLimitFor(bank, 1000)
	if result != 60 {
		t.Errorf("Expected 60, got %v", result)
	}
}

func TestEstimationRate(t *testing.T) {
	bank := testBank("X", 70, 0.8)
	bank.InterestRateRange = map[types.ProductType]types.RateRange{
		types.ProductPersonalLoan: {Min: 6, Max: 14},
	}
	if result := EstimationRate(bank, types.ProductPersonalLoan, 7.5); result != 7.5 {
		t.Errorf("quoted rate should win, got %v", result)
	}
	if result := EstimationRate(bank, types.ProductPersonalLoan, 0); result != 10 {
		t.Errorf("Expected range midpoint 10, got %v", result)
	}
	if result := EstimationRate(bank, types.ProductBusinessLoan, 0); result != 0 {
		t.Errorf("Expected 0 for missing range, got %v", result)
	}
}

func salariedProfile(gross float64, loan types.RequestedLoan) types.ApplicantProfile {
	return types.ApplicantProfile{
		Identity:               types.IdentityCitizen,
		EmploymentType:         types.EmploymentSalaried,
		Age:                    30,
		EmploymentTenureMonths: 24,
		GrossMonthlyIncome:     gross,
		RequestedLoan:          loan,
	}
}

func TestEvaluateBank_BoundaryIsApproved(t *testing.T) {
	// Payment lands the DSR exactly on the ceiling; boundary is inclusive.
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(10000, types.RequestedLoan{
		ProductType:  types.ProductPersonalLoan,
		Amount:       420000,
		TenureMonths: 60,
	})
	result := EvaluateBank(profile, bank, 0)
	if result.ProjectedDSR != 70 {
		t.Fatalf("Expected DSR 70, got %v", result.ProjectedDSR)
	}
	if result.Status != types.StatusApproved {
		t.Errorf("Expected approved at the boundary, got %v", result.Status)
	}
	if result.MarginPercent != 0 {
		t.Errorf("Expected margin 0, got %v", result.MarginPercent)
	}
}

func TestEvaluateBank_RiskyWithinBuffer(t *testing.T) {
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(10000, types.RequestedLoan{
		ProductType:  types.ProductPersonalLoan,
		Amount:       450000,
		TenureMonths: 60,
	})
	result := EvaluateBank(profile, bank, 0)
	if result.ProjectedDSR != 75 {
		t.Fatalf("Expected DSR 75, got %v", result.ProjectedDSR)
	}
	if result.Status != types.StatusRisky {
		t.Errorf("Expected risky inside the buffer, got %v", result.Status)
	}
}

func TestEvaluateBank_RejectedBeyondBuffer(t *testing.T) {
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(10000, types.RequestedLoan{
		ProductType:  types.ProductPersonalLoan,
		Amount:       510000,
		TenureMonths: 60,
	})
	result := EvaluateBank(profile, bank, 0)
	if result.ProjectedDSR != 85 {
		t.Fatalf("Expected DSR 85, got %v", result.ProjectedDSR)
	}
	if result.Status != types.StatusRejected {
		t.Errorf("Expected rejected beyond the buffer, got %v", result.Status)
	}
}

func TestEvaluateBank_ZeroIncomeRejected(t *testing.T) {
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(0, types.RequestedLoan{
		ProductType:  types.ProductPersonalLoan,
		Amount:       10000,
		TenureMonths: 24,
	})
	result := EvaluateBank(profile, bank, 0)
	if result.ProjectedDSR != 0 {
		t.Errorf("Expected DSR 0 for zero income, got %v", result.ProjectedDSR)
	}
	if result.Status != types.StatusRejected {
		t.Errorf("Expected rejected for zero income, got %v", result.Status)
	}
}

func TestEvaluateBank_ExistingCommitmentsShrinkHeadroom(t *testing.T) {
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(10000, types.RequestedLoan{
		ProductType:  types.ProductPersonalLoan,
		Amount:       60000,
		TenureMonths: 60,
	})
	unburdened := EvaluateBank(profile, bank, 0)
	burdened := EvaluateBank(profile, bank, 3000)
	if burdened.MaxMonthlyPayment >= unburdened.MaxMonthlyPayment {
		t.Errorf("commitments should shrink headroom: %v vs %v", burdened.MaxMonthlyPayment, unburdened.MaxMonthlyPayment)
	}
	if burdened.ProjectedDSR <= unburdened.ProjectedDSR {
		t.Errorf("commitments should raise DSR: %v vs %v", burdened.ProjectedDSR, unburdened.ProjectedDSR)
	}
}

func TestEvaluateBank_SelfEmployedRecognitionOrdering(t *testing.T) {
	// Declared RM13,000; 60% vs 90% recognition must scale
	// both recognized income and max loan by exactly the factor ratio.
	bankA := testBank("A", 70, 0.6)
	bankB := testBank("B", 70, 0.9)
	profile := types.ApplicantProfile{
		Identity:           types.IdentitySelfEmployed,
		EmploymentType:     types.EmploymentSelfEmployed,
		Age:                40,
		BusinessAgeMonths:  60,
		GrossMonthlyIncome: 13000,
		RequestedLoan: types.RequestedLoan{
			ProductType:  types.ProductPersonalLoan,
			Amount:       50000,
			TenureMonths: 60,
		},
	}
	resultA := EvaluateBank(profile, bankA, 0)
	resultB := EvaluateBank(profile, bankB, 0)

	if resultA.RecognizedIncome != 7800 {
		t.Errorf("Expected 7800 recognized at 60%%, got %v", resultA.RecognizedIncome)
	}
	if resultB.RecognizedIncome != 11700 {
		t.Errorf("Expected 11700 recognized at 90%%, got %v", resultB.RecognizedIncome)
	}
	if resultA.RecognizedIncome > resultB.RecognizedIncome {
		t.Errorf("lower factor must never recognize more income")
	}
	ratio := resultB.MaxLoanAmount / resultA.MaxLoanAmount
	if math.Abs(ratio-1.5) > 1e-9 {
		t.Errorf("Expected max loan ratio 1.5, got %v", ratio)
	}
}

func TestEvaluateBank_CreditCardLimit(t *testing.T) {
	bank := testBank("B1", 70, 1)
	profile := salariedProfile(6000, types.RequestedLoan{
		ProductType: types.ProductCreditCard,
		Amount:      20000,
	})
	result := EvaluateBank(profile, bank, 0)
	// Implied servicing at 5% of the requested limit: RM1,000 on RM6,000.
	expectedDSR := 1000.0 / 6000 * 100
	if math.Abs(result.ProjectedDSR-expectedDSR) > 1e-9 {
		t.Errorf("Expected DSR %v, got %v", expectedDSR, result.ProjectedDSR)
	}
	if result.MaxLoanAmount != 12000 {
		t.Errorf("Expected limit 2x income = 12000, got %v", result.MaxLoanAmount)
	}
}

func TestEvaluateBank_MortgageLtvCap(t *testing.T) {
	bank := testBank("B1", 70, 1)
	bank.LoanLimits.MaxLtvPercent = 90
	profile := salariedProfile(20000, types.RequestedLoan{
		ProductType:       types.ProductMortgage,
		Amount:            400000,
		TenureMonths:      360,
		PropertyValue:     300000,
		AssumedAnnualRate: 4.5,
	})
	result := EvaluateBank(profile, bank, 0)
	if result.MaxLoanAmount != 270000 {
		t.Errorf("Expected LTV cap 270000, got %v", result.MaxLoanAmount)
	}
}
