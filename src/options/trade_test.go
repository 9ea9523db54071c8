package options

import (
	"testing"

	"confluence-engine/src/models"
)

func TestComputeTradeLevelsFromForecast(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		Price:             100,
		ForecastDirection: "bullish",
		TargetPrice:       103,
		StopPrice:         98,
		ATR:               2,
	}
	got := ComputeTradeLevels(snap)
	if got.Entry != 100 || got.Target != 103 || got.Stop != 98 {
		t.Fatalf("levels %+v", got)
	}
	if got.RiskReward != 1.5 {
		t.Fatalf("risk:reward should be 1.5, got %v", got.RiskReward)
	}
}

func TestComputeTradeLevelsTargetSanityFallback(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		Price:             100,
		ForecastDirection: "bullish",
		TargetPrice:       130, // 30% away, bad data
		StopPrice:         98,
	}
	got := ComputeTradeLevels(snap)
	if got.Target != 102 {
		t.Fatalf("out-of-range target should fall back to 2%%, got %v", got.Target)
	}
}

func TestComputeTradeLevelsStopFallbackToATR(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		Price:             100,
		ForecastDirection: "bullish",
		TargetPrice:       103,
		StopPrice:         105, // stop above entry on a long: invalid
		ATR:               2,
	}
	got := ComputeTradeLevels(snap)
	if got.Stop != 97 {
		t.Fatalf("invalid stop should rebuild from 1.5x ATR, got %v", got.Stop)
	}

	snap.ATR = 0
	got = ComputeTradeLevels(snap)
	if got.Stop != 98.5 {
		t.Fatalf("missing ATR should fall back to 1%% of price, got %v", got.Stop)
	}
}

func TestComputeTradeLevelsNeutralForecast(t *testing.T) {
	snap := &models.MConfluenceSnapshot{Price: 100, ForecastDirection: "neutral"}
	got := ComputeTradeLevels(snap)
	if got.Entry != 100 || got.Target != 0 || got.Stop != 0 {
		t.Fatalf("neutral forecast should produce entry only: %+v", got)
	}
}

func TestComputeGradeTopSetup(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		ActiveCount:    7,
		DirectionScore: 100,
		ClusterCount:   3,
		ForecastConf:   100,
	}
	oi := models.MOpenInterestAnalysis{
		Sentiment:      "bullish",
		MaxPainValid:   true,
		MaxPainDistPct: 1.0,
	}
	letter, score := ComputeGrade(snap, oi, "bullish")
	if letter != "A+" {
		t.Fatalf("top setup should grade A+, got %s (%.1f)", letter, score)
	}
	if score != 105 {
		t.Fatalf("expected the full 105 points, got %v", score)
	}
}

func TestComputeGradeOIConflictPenalty(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		ActiveCount:    7,
		DirectionScore: 100,
		ClusterCount:   3,
		ForecastConf:   100,
	}
	aligned := models.MOpenInterestAnalysis{Sentiment: "bullish"}
	opposed := models.MOpenInterestAnalysis{Sentiment: "bearish"}

	_, alignedScore := ComputeGrade(snap, aligned, "bullish")
	_, opposedScore := ComputeGrade(snap, opposed, "bullish")
	if alignedScore-opposedScore != 30 {
		t.Fatalf("alignment swing should be 30 points, got %v", alignedScore-opposedScore)
	}
}

func TestComputeGradeWeakSetup(t *testing.T) {
	snap := &models.MConfluenceSnapshot{ActiveCount: 1, DirectionScore: 5, ForecastConf: 20}
	letter, score := ComputeGrade(snap, models.MOpenInterestAnalysis{}, "neutral")
	if letter != "F" {
		t.Fatalf("thin setup should grade F, got %s (%.1f)", letter, score)
	}
}

func TestGradeLetterBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{95, "A+"}, {90, "A+"}, {85, "A"}, {75, "B"}, {60, "C"}, {45, "D"}, {10, "F"},
	}
	for _, tc := range cases {
		if got := gradeLetter(tc.score); got != tc.want {
			t.Fatalf("gradeLetter(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
