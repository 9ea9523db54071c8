package options

import (
	"math"
	"testing"
)

func TestComputeGreeksCallDeltaBounds(t *testing.T) {
	g := ComputeGreeks(100, 100, 30, DefaultRiskFreeRate, 0.40, true)
	if g.Delta <= 0 || g.Delta >= 1 {
		t.Fatalf("call delta %v outside (0,1)", g.Delta)
	}
	// ATM call delta hovers just above 0.5.
	if g.Delta < 0.45 || g.Delta > 0.65 {
		t.Fatalf("ATM call delta %v implausible", g.Delta)
	}
	if g.Gamma <= 0 || g.Vega <= 0 {
		t.Fatalf("gamma/vega must be positive: %+v", g)
	}
	if g.Theta >= 0 {
		t.Fatalf("long option theta should be negative, got %v", g.Theta)
	}
}

func TestComputeGreeksPutDeltaBounds(t *testing.T) {
	g := ComputeGreeks(100, 100, 30, DefaultRiskFreeRate, 0.40, false)
	if g.Delta >= 0 || g.Delta <= -1 {
		t.Fatalf("put delta %v outside (-1,0)", g.Delta)
	}
	if g.Rho >= 0 {
		t.Fatalf("put rho should be negative, got %v", g.Rho)
	}
}

func TestComputeGreeksPutCallDeltaParity(t *testing.T) {
	call := ComputeGreeks(100, 105, 45, DefaultRiskFreeRate, 0.35, true)
	put := ComputeGreeks(100, 105, 45, DefaultRiskFreeRate, 0.35, false)

	if math.Abs(call.Delta-put.Delta-1.0) > 1e-9 {
		t.Fatalf("delta parity violated: call %v put %v", call.Delta, put.Delta)
	}
	if math.Abs(call.Gamma-put.Gamma) > 1e-12 {
		t.Fatalf("gamma should match across call/put: %v vs %v", call.Gamma, put.Gamma)
	}
	if math.Abs(call.Vega-put.Vega) > 1e-12 {
		t.Fatalf("vega should match across call/put: %v vs %v", call.Vega, put.Vega)
	}
}

func TestComputeGreeksMoneynessExtremes(t *testing.T) {
	deepITM := ComputeGreeks(100, 50, 30, DefaultRiskFreeRate, 0.30, true)
	if deepITM.Delta < 0.95 {
		t.Fatalf("deep ITM call delta should approach 1, got %v", deepITM.Delta)
	}
	deepOTM := ComputeGreeks(100, 200, 30, DefaultRiskFreeRate, 0.30, true)
	if deepOTM.Delta > 0.05 {
		t.Fatalf("deep OTM call delta should approach 0, got %v", deepOTM.Delta)
	}
}

func TestComputeGreeksDegenerateInputs(t *testing.T) {
	for _, g := range []struct {
		name string
		got  float64
	}{
		{"expired", ComputeGreeks(100, 100, 0, DefaultRiskFreeRate, 0.40, true).Delta},
		{"negative dte", ComputeGreeks(100, 100, -3, DefaultRiskFreeRate, 0.40, true).Delta},
		{"zero spot", ComputeGreeks(0, 100, 30, DefaultRiskFreeRate, 0.40, true).Delta},
		{"zero iv", ComputeGreeks(100, 100, 30, DefaultRiskFreeRate, 0, true).Delta},
	} {
		if g.got != 0 {
			t.Fatalf("%s: expected zero Greeks, got delta %v", g.name, g.got)
		}
	}
}
