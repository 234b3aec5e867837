package services

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"loanbackend/types"

	"go.uber.org/zap"
)

// bankStandards is the live table. It is populated exactly once by
// LoadBankStandards during startup and treated as read-only afterwards,
// which makes it safe for concurrent evaluation requests.
var bankStandards []types.BankStandard

// BankStandards returns the loaded standards table.
func BankStandards() []types.BankStandard {
	return bankStandards
}

// LoadBankStandards initializes the table, preferring an XLSX workbook
// (BANK_STANDARDS_XLSX), then a JSON file (BANK_STANDARDS_FILE), then the
// built-in table.
func LoadBankStandards() error {
	var table []types.BankStandard
	var source string

	switch {
	case os.Getenv("BANK_STANDARDS_XLSX") != "":
		source = os.Getenv("BANK_STANDARDS_XLSX")
		parsed, err := ParseStandardsWorkbook(source)
		if err != nil {
			return fmt.Errorf("could not parse standards workbook %s: %w", source, err)
		}
		table = parsed
	case os.Getenv("BANK_STANDARDS_FILE") != "":
		source = os.Getenv("BANK_STANDARDS_FILE")
		data, err := os.ReadFile(source)
		if err != nil {
			return fmt.Errorf("could not read standards file %s: %w", source, err)
		}
		if err := json.Unmarshal(data, &table); err != nil {
			return fmt.Errorf("could not decode standards file %s: %w", source, err)
		}
	default:
		source = "builtin"
		table = builtinStandards()
	}

	if problems := ValidateStandards(table); len(problems) > 0 {
		return fmt.Errorf("standards table from %s is invalid: %v", source, problems)
	}

	for i := range table {
		sort.SliceStable(table[i].DsrTiers, func(a, b int) bool {
			return table[i].DsrTiers[a].IncomeThreshold < table[i].DsrTiers[b].IncomeThreshold
		})
	}

	bankStandards = table
	zap.L().Info("Loaded bank standards table",
		zap.String("source", source),
		zap.Int("banks", len(table)))
	return nil
}

// ValidateStandards checks the schema invariants of a standards table and
// returns a list of human-readable problems. An empty list means valid.
func ValidateStandards(table []types.BankStandard) []string {
	var problems []string
	if len(table) == 0 {
		return append(problems, "table contains no banks")
	}

	seen := make(map[string]bool)
	for _, bank := range table {
		if bank.BankID == "" {
			problems = append(problems, "bank with empty bankId")
			continue
		}
		if seen[bank.BankID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate bankId", bank.BankID))
		}
		seen[bank.BankID] = true

		if bank.IncomeBasis != types.IncomeBasisNet && bank.IncomeBasis != types.IncomeBasisGross {
			problems = append(problems, fmt.Sprintf("%s: incomeBasis must be NET or GROSS", bank.BankID))
		}
		if len(bank.DsrTiers) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no DSR tiers", bank.BankID))
		}
		prev := -1.0
		for _, tier := range bank.DsrTiers {
			if tier.IncomeThreshold < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative tier threshold", bank.BankID))
			}
			if tier.IncomeThreshold <= prev {
				problems = append(problems, fmt.Sprintf("%s: tier thresholds must be strictly increasing", bank.BankID))
			}
			prev = tier.IncomeThreshold
			if tier.MaxDsrPercent <= 0 || tier.MaxDsrPercent > 100 {
				problems = append(problems, fmt.Sprintf("%s: maxDsrPercent must be in (0,100]", bank.BankID))
			}
		}
		for product, min := range bank.MinIncomeByProduct {
			if min < 0 {
				problems = append(problems, fmt.Sprintf("%s: negative min income for %s", bank.BankID, product))
			}
		}
		limits := bank.LoanLimits
		if limits.AbsoluteMax < 0 || limits.IncomeMultiplier < 0 || limits.MaxLtvPercent < 0 || limits.CreditLimitMultiplier < 0 {
			problems = append(problems, fmt.Sprintf("%s: loan limits must be non-negative", bank.BankID))
		}
		for product, rng := range bank.InterestRateRange {
			if rng.Min < 0 || rng.Max < rng.Min {
				problems = append(problems, fmt.Sprintf("%s: bad rate range for %s", bank.BankID, product))
			}
		}
		if bank.Eligibility.MinAge < 0 || (bank.Eligibility.MaxAge > 0 && bank.Eligibility.MaxAge < bank.Eligibility.MinAge) {
			problems = append(problems, fmt.Sprintf("%s: bad age range", bank.BankID))
		}
		for stream, factor := range map[string]float64{
			"selfEmployed": bank.Recognition.SelfEmployed,
			"rental":       bank.Recognition.Rental,
			"foreign":      bank.Recognition.Foreign,
		} {
			if factor < 0 || factor > 1 {
				problems = append(problems, fmt.Sprintf("%s: %s recognition factor must be in [0,1]", bank.BankID, stream))
			}
		}
	}
	return problems
}

// builtinStandards is the default Malaysian bank parameter table.
func builtinStandards() []types.BankStandard {
	return []types.BankStandard{
		{
			BankID:      "MBB",
			Name:        "Maybank",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 60},
				{IncomeThreshold: 5000, MaxDsrPercent: 70},
				{IncomeThreshold: 10000, MaxDsrPercent: 75},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 3000,
				types.ProductMortgage:     3500,
				types.ProductCreditCard:   3000,
				types.ProductBusinessLoan: 5000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 2_000_000, IncomeMultiplier: 10, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 6.5, Max: 14.5},
				types.ProductMortgage:     {Min: 4.2, Max: 4.9},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.0, Max: 8.5},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 6, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.8, Rental: 0.8, Foreign: 0.5},
		},
		{
			BankID:      "CIMB",
			Name:        "CIMB Bank",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 65},
				{IncomeThreshold: 8000, MaxDsrPercent: 75},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 2000,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 5000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 1_500_000, IncomeMultiplier: 12, MaxLtvPercent: 90, CreditLimitMultiplier: 3},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 6.88, Max: 14.88},
				types.ProductMortgage:     {Min: 4.1, Max: 4.75},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.5, Max: 9.0},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 58, MinEmploymentMonths: 6, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.7, Rental: 0.8, Foreign: 0.6},
		},
		{
			BankID:      "PBB",
			Name:        "Public Bank",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 55},
				{IncomeThreshold: 5000, MaxDsrPercent: 65},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 3000,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2500,
				types.ProductBusinessLoan: 6000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 1_000_000, IncomeMultiplier: 8, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 7.3, Max: 13.6},
				types.ProductMortgage:     {Min: 4.22, Max: 4.72},
				types.ProductCreditCard:   {Min: 15, Max: 17},
				types.ProductBusinessLoan: {Min: 5.2, Max: 8.0},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 12, MinBusinessAgeMonths: 36},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.6, Rental: 0.7, Foreign: 0.5},
		},
		{
			BankID:      "RHB",
			Name:        "RHB Bank",
			IncomeBasis: types.IncomeBasisGross,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 60},
				{IncomeThreshold: 7000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 2000,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 4000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 1_500_000, IncomeMultiplier: 10, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 8.18, Max: 13.76},
				types.ProductMortgage:     {Min: 4.3, Max: 4.85},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.8, Max: 9.2},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 6, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.75, Rental: 0.8, Foreign: 0.6},
		},
		{
			BankID:      "HLB",
			Name:        "Hong Leong Bank",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 60},
				{IncomeThreshold: 6000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 2000,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 5000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 1_200_000, IncomeMultiplier: 10, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 9.0, Max: 12.5},
				types.ProductMortgage:     {Min: 4.25, Max: 4.8},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.5, Max: 8.8},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 6, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.75, Rental: 0.8, Foreign: 0.5},
		},
		{
			BankID:      "AMB",
			Name:        "AmBank",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 65},
				{IncomeThreshold: 5000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 1500,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 4000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 1_000_000, IncomeMultiplier: 10, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 8.0, Max: 13.0},
				types.ProductMortgage:     {Min: 4.3, Max: 4.9},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.6, Max: 9.0},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 6, MinBusinessAgeMonths: 12},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.8, Rental: 0.8, Foreign: 0.5},
		},
		{
			BankID:      "BIMB",
			Name:        "Bank Islam",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 60},
				{IncomeThreshold: 4000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 2000,
				types.ProductMortgage:     2500,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 4000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 800_000, IncomeMultiplier: 10, MaxLtvPercent: 90, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 6.5, Max: 9.5},
				types.ProductMortgage:     {Min: 4.2, Max: 4.7},
				types.ProductCreditCard:   {Min: 13.5, Max: 17.5},
				types.ProductBusinessLoan: {Min: 5.0, Max: 8.0},
			},
			Eligibility: types.EligibilityRules{MinAge: 18, MaxAge: 60, MinEmploymentMonths: 3, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.7, Rental: 0.7, Foreign: 0},
		},
		{
			BankID:      "BKRM",
			Name:        "Bank Rakyat",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 70},
				{IncomeThreshold: 5000, MaxDsrPercent: 80},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 1500,
				types.ProductMortgage:     2500,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 3500,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 400_000, IncomeMultiplier: 10, MaxLtvPercent: 95, CreditLimitMultiplier: 2},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 4.54, Max: 8.0},
				types.ProductMortgage:     {Min: 4.3, Max: 4.75},
				types.ProductCreditCard:   {Min: 13.5, Max: 16.5},
				types.ProductBusinessLoan: {Min: 5.0, Max: 7.5},
			},
			// Personal financing restricted to civil servants with salary
			// deduction at source, hence the higher DSR ceilings.
			Eligibility: types.EligibilityRules{MinAge: 18, MaxAge: 60, MinEmploymentMonths: 3, MinBusinessAgeMonths: 36, CivilServantOnly: true},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.6, Rental: 0.7, Foreign: 0},
		},
		{
			BankID:      "ABMB",
			Name:        "Alliance Bank",
			IncomeBasis: types.IncomeBasisGross,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 60},
				{IncomeThreshold: 6000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 3000,
				types.ProductMortgage:     3000,
				types.ProductCreditCard:   2000,
				types.ProductBusinessLoan: 5000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 300_000, IncomeMultiplier: 12, MaxLtvPercent: 90, CreditLimitMultiplier: 3},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 4.99, Max: 16.68},
				types.ProductMortgage:     {Min: 4.25, Max: 4.85},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.5, Max: 9.5},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 60, MinEmploymentMonths: 6, MinBusinessAgeMonths: 24},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.8, Rental: 0.8, Foreign: 0.5},
		},
		{
			BankID:      "SCB",
			Name:        "Standard Chartered",
			IncomeBasis: types.IncomeBasisNet,
			DsrTiers: []types.DsrTier{
				{IncomeThreshold: 0, MaxDsrPercent: 55},
				{IncomeThreshold: 10000, MaxDsrPercent: 70},
			},
			MinIncomeByProduct: map[types.ProductType]float64{
				types.ProductPersonalLoan: 5000,
				types.ProductMortgage:     5000,
				types.ProductCreditCard:   4000,
				types.ProductBusinessLoan: 8000,
			},
			LoanLimits: types.LoanLimits{AbsoluteMax: 2_500_000, IncomeMultiplier: 12, MaxLtvPercent: 85, CreditLimitMultiplier: 4},
			InterestRateRange: map[types.ProductType]types.RateRange{
				types.ProductPersonalLoan: {Min: 5.5, Max: 11.5},
				types.ProductMortgage:     {Min: 4.0, Max: 4.6},
				types.ProductCreditCard:   {Min: 15, Max: 18},
				types.ProductBusinessLoan: {Min: 5.0, Max: 8.0},
			},
			Eligibility: types.EligibilityRules{MinAge: 21, MaxAge: 65, MinEmploymentMonths: 12, MinBusinessAgeMonths: 36},
			Recognition: types.SpecialRecognition{SelfEmployed: 0.9, Rental: 0.85, Foreign: 0.8},
		},
	}
}
