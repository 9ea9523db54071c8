package options

import (
	"testing"

	"confluence-engine/src/models"
)

func chainWithATMIV(iv float64) *models.MOptionsChain {
	return &models.MOptionsChain{
		Calls: []models.MOptionContract{
			{Strike: 100, ImpliedVolatility: iv},
			{Strike: 102, ImpliedVolatility: iv},
			{Strike: 150, ImpliedVolatility: 3.0}, // far OTM, excluded from the ATM band
		},
		Puts: []models.MOptionContract{
			{Strike: 98, ImpliedVolatility: iv},
		},
	}
}

func TestComputeIVRankHighIVSellsPremium(t *testing.T) {
	got := ComputeIVRank(chainWithATMIV(0.80), 100)
	if got.AvgATMIV != 0.80 {
		t.Fatalf("ATM IV average %v, want 0.80", got.AvgATMIV)
	}
	if got.Rank != 85 {
		t.Fatalf("IV 0.80 should rank 85, got %v", got.Rank)
	}
	if got.Signal != "sell_premium" {
		t.Fatalf("rank 85 should signal sell_premium, got %s", got.Signal)
	}
}

func TestComputeIVRankLowIVBuysPremium(t *testing.T) {
	got := ComputeIVRank(chainWithATMIV(0.22), 100)
	if got.Rank != 25 {
		t.Fatalf("IV 0.22 should rank 25, got %v", got.Rank)
	}
	if got.Signal != "buy_premium" {
		t.Fatalf("rank 25 should signal buy_premium, got %s", got.Signal)
	}
}

func TestComputeIVRankMidIVNeutral(t *testing.T) {
	got := ComputeIVRank(chainWithATMIV(0.45), 100)
	if got.Rank != 55 {
		t.Fatalf("IV 0.45 should rank 55, got %v", got.Rank)
	}
	if got.Signal != "neutral" {
		t.Fatalf("rank 55 should stay neutral, got %s", got.Signal)
	}
}

func TestComputeIVRankNoATMData(t *testing.T) {
	chain := &models.MOptionsChain{
		Calls: []models.MOptionContract{{Strike: 150, ImpliedVolatility: 0.5}},
	}
	got := ComputeIVRank(chain, 100)
	if got.Rank != 0 || got.Signal != "neutral" {
		t.Fatalf("no ATM strikes should yield the zero read: %+v", got)
	}
}
