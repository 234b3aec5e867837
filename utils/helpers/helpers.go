package helpers

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// NormalizeString lowercases and trims a header cell for matching.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchHeader reports whether a cell matches any of the given regex
// patterns after normalization. Used by the standards workbook parser.
func MatchHeader(cellValue string, patterns []string) bool {
	normalizedValue := NormalizeString(cellValue)
	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, normalizedValue)
		if matched {
			return true
		}
	}
	return false
}

// ParseCellFloat converts a spreadsheet cell to a float64. Commas and the
// "RM" prefix are stripped; a trailing "%" is stripped without rescaling,
// since percentages stay in 0-100 form throughout the public contract.
// Unparseable cells yield 0.
func ParseCellFloat(value string) float64 {
	cleanStr := strings.ReplaceAll(value, ",", "")
	cleanStr = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cleanStr), "RM"))
	cleanStr = strings.TrimSuffix(cleanStr, "%")
	cleanStr = strings.TrimSpace(cleanStr)

	if cleanStr == "" {
		return 0.0
	}

	f, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		zap.L().Error("Error converting cell to float64", zap.String("cell", value), zap.Error(err))
		return 0.0
	}
	return f
}

// ParseCellInt converts a spreadsheet cell to an int, tolerating the same
// formatting as ParseCellFloat.
func ParseCellInt(value string) int {
	return int(math.Round(ParseCellFloat(value)))
}

// RoundTo2 rounds a monetary or percentage figure to 2 decimals.
func RoundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}

// GetIncomeSegment buckets a monthly income into the B40/M40/T20 household
// segments used in the recommendation payloads.
func GetIncomeSegment(monthlyIncome float64) string {
	if monthlyIncome >= 15000 {
		return "T20"
	} else if monthlyIncome >= 5000 {
		return "M40"
	} else if monthlyIncome > 0 {
		return "B40"
	}
	return "Unknown Segment"
}
