package core

import (
	"math"
	"testing"
)

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("mean %v", mean)
	}
	if math.Abs(std-2.0) > 1e-9 {
		t.Fatalf("population std should be 2, got %v", std)
	}

	mean, std = CalculateMeanStd([]float64{3.5})
	if mean != 3.5 || std != 0 {
		t.Fatalf("single sample: mean %v std %v", mean, std)
	}

	mean, std = CalculateMeanStd(nil)
	if mean != 0 || std != 0 {
		t.Fatalf("empty input: mean %v std %v", mean, std)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct{ v, lo, hi, want float64 }{
		{5, 0, 10, 5},
		{-3, 0, 10, 0},
		{42, 0, 10, 10},
	}
	for _, tc := range cases {
		if got := Clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("Clamp(%v, %v, %v) = %v, want %v", tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(3.14159); got != 3.14 {
		t.Fatalf("Round2 %v", got)
	}
	if got := Round2(-1.2345); got != -1.23 {
		t.Fatalf("Round2 negative %v", got)
	}
}
