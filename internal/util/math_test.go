package util

import (
	"math"
	"testing"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		expr     string
		expected float64
	}{
		{"2+3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"-5 + 3", -2},
		{"-(2 + 3)", -5},
		{"1.5 * 2", 3},
		{"100", 100},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := EvalArithmetic(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestEvalArithmeticErrors(t *testing.T) {
	exprs := []string{
		"",
		"2 +",
		"(2 + 3",
		"1 / 0",
		"5 % 0",
		"two plus two",
		"2 ** 3",
		"1; 2",
	}

	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			if _, err := EvalArithmetic(expr); err == nil {
				t.Errorf("expected an error for %q", expr)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{5, "5"},
		{-3, "-3"},
		{2.5, "2.5"},
		{20, "20"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.value); got != tt.expected {
			t.Errorf("FormatNumber(%v): expected %q, got %q", tt.value, tt.expected, got)
		}
	}
}
