package helpers

import (
	"testing"
)

func TestMatchHeader_NonMatchingPattern(t *testing.T) {
	cellValue := "Random Header"
	patterns := []string{`max\s*dsr`}
	result := MatchHeader(cellValue, patterns)
	if result {
		t.Errorf("Expected false, got %v", result)
	}
}

func TestMatchHeader_Matching(t *testing.T) {
	cellValue := "  Max DSR (%) "
	patterns := []string{`max\s*dsr`}
	if !MatchHeader(cellValue, patterns) {
		t.Errorf("Expected true for %q", cellValue)
	}
}

func TestParseCellFloat_WithCommas(t *testing.T) {
	input := "1,234.56"
	expected := 1234.56
	result := ParseCellFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestParseCellFloat_Percentage(t *testing.T) {
	input := "70%"
	expected := 70.0
	result := ParseCellFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestParseCellFloat_RinggitPrefix(t *testing.T) {
	input := "RM 3,000"
	expected := 3000.0
	result := ParseCellFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestParseCellFloat_NonNumeric(t *testing.T) {
	input := "abc"
	expected := 0.0
	result := ParseCellFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestNormalizeString(t *testing.T) {
	input := "  HeLLo WoRLd  "
	expected := "hello world"
	result := NormalizeString(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestRoundTo2(t *testing.T) {
	input := 1980.00499
	expected := 1980.00
	result := RoundTo2(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestGetIncomeSegment(t *testing.T) {
	cases := []struct {
		income   float64
		expected string
	}{
		{3000, "B40"},
		{6000, "M40"},
		{20000, "T20"},
		{0, "Unknown Segment"},
	}
	for _, c := range cases {
		result := GetIncomeSegment(c.income)
		if result != c.expected {
			t.Errorf("income %v: Expected %v, got %v", c.income, c.expected, result)
		}
	}
}
