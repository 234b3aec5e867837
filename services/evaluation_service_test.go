package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"loanbackend/types"
)

func loadBuiltinTable() {
	bankStandards = builtinStandards()
}

func scenarioProfile() types.ApplicantProfile {
	// The worked example: RM6,000 gross, EPF RM480, tax RM300, SOCSO RM50,
	// no commitments, RM100,000 over 60 months at 7% p.a.
	return types.ApplicantProfile{
		Identity:               types.IdentityCitizen,
		EmploymentType:         types.EmploymentSalaried,
		Age:                    32,
		EmploymentTenureMonths: 36,
		GrossMonthlyIncome:     6000,
		Deductions:             types.StatutoryDeductions{EPF: 480, IncomeTax: 300, Socso: 50},
		RequestedLoan: types.RequestedLoan{
			ProductType:       types.ProductPersonalLoan,
			Amount:            100000,
			TenureMonths:      60,
			AssumedAnnualRate: 7,
		},
	}
}

func TestEvaluateAffordability_Scenario(t *testing.T) {
	loadBuiltinTable()

	result, err := EvaluationService.EvaluateAffordability(context.Background(), scenarioProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NetMonthlyIncome != 5170 {
		t.Errorf("Expected net income 5170, got %v", result.NetMonthlyIncome)
	}
	if math.Abs(result.ProjectedNewMonthlyPayment-1980.12) > 0.5 {
		t.Errorf("Expected payment ~1980.12, got %v", result.ProjectedNewMonthlyPayment)
	}
	if math.Abs(result.ProjectedDSR-38.3) > 0.2 {
		t.Errorf("Expected DSR ~38.3, got %v", result.ProjectedDSR)
	}
	if len(result.RankedRecommendations) == 0 {
		t.Fatalf("expected at least one approved bank")
	}
	if len(result.RankedRecommendations) > MaxRecommendations {
		t.Errorf("ranked list exceeds cap: %d", len(result.RankedRecommendations))
	}
	if len(result.PerBankResults) != len(BankStandards()) {
		t.Errorf("per-bank table incomplete: %d of %d", len(result.PerBankResults), len(BankStandards()))
	}

	// Against Maybank's 70%% tier the margin is about 31.7 points.
	for _, r := range result.PerBankResults {
		if r.BankID != "MBB" {
			continue
		}
		if r.Status != types.StatusApproved {
			t.Errorf("Expected MBB approved, got %v", r.Status)
		}
		if math.Abs(r.MarginPercent-31.7) > 0.2 {
			t.Errorf("Expected MBB margin ~31.7, got %v", r.MarginPercent)
		}
	}
}

func TestEvaluateAffordability_Idempotent(t *testing.T) {
	loadBuiltinTable()
	profile := scenarioProfile()

	first, err := EvaluationService.EvaluateAffordability(context.Background(), profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := EvaluationService.EvaluateAffordability(context.Background(), profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first.PerBankResults, second.PerBankResults) {
		t.Errorf("per-bank results differ between identical calls")
	}
	if !reflect.DeepEqual(first.RankedRecommendations, second.RankedRecommendations) {
		t.Errorf("rankings differ between identical calls")
	}
	if first.ProjectedDSR != second.ProjectedDSR {
		t.Errorf("DSR differs: %v vs %v", first.ProjectedDSR, second.ProjectedDSR)
	}
}

func TestEvaluateAffordability_DSRMonotonicInIncome(t *testing.T) {
	loadBuiltinTable()

	prev := math.Inf(1)
	for gross := 3000.0; gross <= 30000; gross += 1500 {
		profile := scenarioProfile()
		profile.GrossMonthlyIncome = gross
		profile.ExistingCommitments = []types.Commitment{
			{Type: types.CommitmentAuto, MonthlyPayment: 800},
		}
		result, err := EvaluationService.EvaluateAffordability(context.Background(), profile)
		if err != nil {
			t.Fatalf("unexpected error at income %v: %v", gross, err)
		}
		if result.ProjectedDSR > prev {
			t.Errorf("DSR increased with income: %v -> %v at %v", prev, result.ProjectedDSR, gross)
		}
		prev = result.ProjectedDSR
	}
}

func TestEvaluateAffordability_RankingProperties(t *testing.T) {
	loadBuiltinTable()

	result, err := EvaluationService.EvaluateAffordability(context.Background(), scenarioProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range result.RankedRecommendations {
		if r.Status != types.StatusApproved {
			t.Errorf("non-approved entry %s in rankings", r.BankID)
		}
		if i > 0 && result.RankedRecommendations[i-1].MarginPercent < r.MarginPercent {
			t.Errorf("rankings not sorted by margin at position %d", i)
		}
	}
}

func TestEvaluateAffordability_CivilServantOnlyBank(t *testing.T) {
	loadBuiltinTable()

	result, err := EvaluationService.EvaluateAffordability(context.Background(), scenarioProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range result.PerBankResults {
		if r.BankID == "BKRM" && r.Status != types.StatusRejected {
			t.Errorf("Expected BKRM to reject a private-sector applicant, got %v", r.Status)
		}
	}

	servant := scenarioProfile()
	servant.Identity = types.IdentityCivilServant
	servant.EmploymentType = types.EmploymentGovernment
	result, err = EvaluationService.EvaluateAffordability(context.Background(), servant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range result.PerBankResults {
		if r.BankID == "BKRM" && r.Status == types.StatusRejected {
			t.Errorf("Expected BKRM to consider a civil servant, got rejected (%v)", r.Reasons)
		}
	}
}

func TestEvaluateAffordability_ValidationErrors(t *testing.T) {
	loadBuiltinTable()

	cases := []struct {
		name     string
		mutate   func(*types.ApplicantProfile)
		expected error
	}{
		{"negative income", func(p *types.ApplicantProfile) { p.GrossMonthlyIncome = -1 }, types.ErrNegativeIncome},
		{"negative deduction", func(p *types.ApplicantProfile) { p.Deductions.EPF = -10 }, types.ErrNegativeDeduction},
		{"zero tenure", func(p *types.ApplicantProfile) { p.RequestedLoan.TenureMonths = 0 }, types.ErrInvalidTenure},
		{"negative rate", func(p *types.ApplicantProfile) { p.RequestedLoan.AssumedAnnualRate = -2 }, types.ErrInvalidRate},
		{"zero amount", func(p *types.ApplicantProfile) { p.RequestedLoan.Amount = 0 }, types.ErrInvalidAmount},
		{"unknown product", func(p *types.ApplicantProfile) { p.RequestedLoan.ProductType = "payday" }, types.ErrUnknownProduct},
		{"negative commitment", func(p *types.ApplicantProfile) {
			p.ExistingCommitments = []types.Commitment{{Type: types.CommitmentAuto, MonthlyPayment: -50}}
		}, types.ErrNegativeCommitment},
	}
	for _, c := range cases {
		profile := scenarioProfile()
		c.mutate(&profile)
		_, err := EvaluationService.EvaluateAffordability(context.Background(), profile)
		if !errors.Is(err, c.expected) {
			t.Errorf("%s: Expected %v, got %v", c.name, c.expected, err)
		}
	}
}

func TestRankRecommendations_StableTieBreak(t *testing.T) {
	perBank := []types.PerBankResult{
		{BankID: "A", Status: types.StatusApproved, MarginPercent: 10},
		{BankID: "B", Status: types.StatusRisky, MarginPercent: 50},
		{BankID: "C", Status: types.StatusApproved, MarginPercent: 25},
		{BankID: "D", Status: types.StatusApproved, MarginPercent: 10},
		{BankID: "E", Status: types.StatusRejected, MarginPercent: 99},
	}
	ranked := rankRecommendations(perBank)
	expected := []string{"C", "A", "D"}
	if len(ranked) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(ranked))
	}
	for i, id := range expected {
		if ranked[i].BankID != id {
			t.Errorf("position %d: Expected %s, got %s", i, id, ranked[i].BankID)
		}
	}
}
