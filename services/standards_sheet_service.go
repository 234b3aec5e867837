package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"loanbackend/types"
	"loanbackend/utils/helpers"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Column keys recognized in a bank standards workbook. Headers are matched
// loosely by regex so that sheets exported from different sources still
// parse.
var standardsHeaderPatterns = map[string][]string{
	"Bank ID":              {`bank\s*(id|code)`},
	"Bank Name":            {`bank\s*name`, `^name$`},
	"Income Basis":         {`income\s*basis`},
	"DSR Tiers":            {`dsr\s*tiers?`},
	"Min Income Personal":  {`min.*income.*personal`},
	"Min Income Mortgage":  {`min.*income.*(mortgage|home)`},
	"Min Income Card":      {`min.*income.*(credit|card)`},
	"Min Income Business":  {`min.*income.*business`},
	"Absolute Max":         {`absolute\s*max`, `max\s*loan\s*amount`},
	"Income Multiplier":    {`income\s*multiplier`},
	"Max LTV":              {`ltv`},
	"Credit Limit Mult":    {`credit\s*limit\s*mult`},
	"Rate Personal":        {`personal.*rate`},
	"Rate Mortgage":        {`(mortgage|home).*rate`},
	"Rate Card":            {`card.*rate`},
	"Rate Business":        {`business.*rate`},
	"Min Age":              {`min\s*age`},
	"Max Age":              {`max\s*age`},
	"Min Employment":       {`min\s*employment`, `employment\s*tenure`},
	"Min Business Age":     {`business\s*age`},
	"SE Recognition":       {`self.?employed.*(recognition|factor)`},
	"Rental Recognition":   {`rental.*(recognition|factor)`},
	"Foreign Recognition":  {`foreign.*(recognition|factor)`},
	"Civil Servant Only":   {`civil\s*servant`},
}

// ParseStandardsWorkbook reads a bank standards table from an XLSX file on
// disk. Used at startup when BANK_STANDARDS_XLSX is set.
func ParseStandardsWorkbook(path string) ([]types.BankStandard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer file.Close()
	return ParseStandardsReader(file)
}

// ParseStandardsReader parses a bank standards workbook from a stream. The
// first sheet row whose cells match the Bank ID pattern is taken as the
// header; every following non-empty row becomes one BankStandard.
func ParseStandardsReader(reader io.Reader) ([]types.BankStandard, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("could not read workbook: %w", err)
	}
	defer f.Close()

	var table []types.BankStandard
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			zap.L().Error("Error reading rows from sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}

		headerFound := false
		headerMap := make(map[string]int)
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}

			if !headerFound {
				for _, cell := range row {
					if helpers.MatchHeader(cell, standardsHeaderPatterns["Bank ID"]) {
						headerFound = true
						for i, headerCell := range row {
							for key, patterns := range standardsHeaderPatterns {
								if helpers.MatchHeader(headerCell, patterns) {
									headerMap[key] = i
									break
								}
							}
						}
						break
					}
				}
				continue
			}

			bank := bankFromRow(row, headerMap)
			if bank.BankID == "" {
				continue
			}
			table = append(table, bank)
		}
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("workbook contains no bank standards rows")
	}
	return table, nil
}

func bankFromRow(row []string, headerMap map[string]int) types.BankStandard {
	cell := func(key string) string {
		idx, ok := headerMap[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	basis := types.IncomeBasis(strings.ToUpper(cell("Income Basis")))

	bank := types.BankStandard{
		BankID:      strings.ToUpper(cell("Bank ID")),
		Name:        cell("Bank Name"),
		IncomeBasis: basis,
		DsrTiers:    parseTiers(cell("DSR Tiers")),
		MinIncomeByProduct: map[types.ProductType]float64{
			types.ProductPersonalLoan: helpers.ParseCellFloat(cell("Min Income Personal")),
			types.ProductMortgage:     helpers.ParseCellFloat(cell("Min Income Mortgage")),
			types.ProductCreditCard:   helpers.ParseCellFloat(cell("Min Income Card")),
			types.ProductBusinessLoan: helpers.ParseCellFloat(cell("Min Income Business")),
		},
		LoanLimits: types.LoanLimits{
			AbsoluteMax:           helpers.ParseCellFloat(cell("Absolute Max")),
			IncomeMultiplier:      helpers.ParseCellFloat(cell("Income Multiplier")),
			MaxLtvPercent:         helpers.ParseCellFloat(cell("Max LTV")),
			CreditLimitMultiplier: helpers.ParseCellFloat(cell("Credit Limit Mult")),
		},
		InterestRateRange: map[types.ProductType]types.RateRange{
			types.ProductPersonalLoan: parseRateRange(cell("Rate Personal")),
			types.ProductMortgage:     parseRateRange(cell("Rate Mortgage")),
			types.ProductCreditCard:   parseRateRange(cell("Rate Card")),
			types.ProductBusinessLoan: parseRateRange(cell("Rate Business")),
		},
		Eligibility: types.EligibilityRules{
			MinAge:               helpers.ParseCellInt(cell("Min Age")),
			MaxAge:               helpers.ParseCellInt(cell("Max Age")),
			MinEmploymentMonths:  helpers.ParseCellInt(cell("Min Employment")),
			MinBusinessAgeMonths: helpers.ParseCellInt(cell("Min Business Age")),
			CivilServantOnly:     parseBoolCell(cell("Civil Servant Only")),
		},
		Recognition: types.SpecialRecognition{
			SelfEmployed: helpers.ParseCellFloat(cell("SE Recognition")),
			Rental:       helpers.ParseCellFloat(cell("Rental Recognition")),
			Foreign:      helpers.ParseCellFloat(cell("Foreign Recognition")),
		},
	}
	return bank
}

// parseTiers decodes a tier cell of the form "0:60; 5000:70; 10000:75"
// (threshold:maxDsrPercent pairs).
func parseTiers(cellValue string) []types.DsrTier {
	var tiers []types.DsrTier
	for _, pair := range strings.Split(cellValue, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		tiers = append(tiers, types.DsrTier{
			IncomeThreshold: helpers.ParseCellFloat(parts[0]),
			MaxDsrPercent:   helpers.ParseCellFloat(parts[1]),
		})
	}
	return tiers
}

// parseRateRange decodes "6.5-14.5" or a single "7.5" (min == max).
func parseRateRange(cellValue string) types.RateRange {
	cellValue = strings.TrimSpace(cellValue)
	if cellValue == "" {
		return types.RateRange{}
	}
	parts := strings.SplitN(cellValue, "-", 2)
	min := helpers.ParseCellFloat(parts[0])
	max := min
	if len(parts) == 2 {
		max = helpers.ParseCellFloat(parts[1])
	}
	return types.RateRange{Min: min, Max: max}
}

func parseBoolCell(cellValue string) bool {
	switch helpers.NormalizeString(cellValue) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}
