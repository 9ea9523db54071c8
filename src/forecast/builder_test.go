package forecast

import (
	"testing"

	"confluence-engine/src/learning"
	"confluence-engine/src/models"
)

func TestBuildNeutralProfileFollowsLiveDirection(t *testing.T) {
	b := NewBuilder(nil)
	profile := learning.NeutralProfile("TEST", 50, 1_800_000_000)
	composite := models.MCompositeScore{DirectionScore: 50, Confidence: 60, ActiveCount: 2}

	f := b.Build("TEST", profile, composite, nil, 100.0, 2.0, nil)
	if f == nil {
		t.Fatal("expected a forecast")
	}
	// Neutral base rate contributes nothing: 0.6*50 = 30 -> bullish.
	if f.Direction != "bullish" {
		t.Fatalf("expected bullish, got %s", f.Direction)
	}
	if f.ExpectedMovePct != 2.0 {
		t.Fatalf("no learned magnitude should fall back to 2%%, got %v", f.ExpectedMovePct)
	}
	if f.TargetPrice != 102 {
		t.Fatalf("target %v", f.TargetPrice)
	}
	if f.StopPrice != 97 {
		t.Fatalf("stop should sit 1.5 ATR below entry, got %v", f.StopPrice)
	}
	if f.Confidence < 10 || f.Confidence > 95 {
		t.Fatalf("confidence %v out of range", f.Confidence)
	}
}

func TestBuildLearnedStackBias(t *testing.T) {
	b := NewBuilder(nil)
	profile := &models.MSymbolLearning{
		Symbol:       "TEST",
		TotalEvents:  40,
		PerTimeframe: map[string]*models.MTimeframeLearning{},
		PerStack: map[int]*models.MStackStats{
			5: {StackSize: 5, Events: 20, UpCount: 17, UpRate: 0.85, AvgMovePct8: 1.8},
		},
	}
	composite := models.MCompositeScore{DirectionScore: 10, Confidence: 55, ActiveCount: 5}

	f := b.Build("TEST", profile, composite, nil, 100.0, 1.0, nil)
	// 0.6*10 + 0.4*(0.85-0.5)*200 = 6 + 28 = 34 -> bullish from history.
	if f.Direction != "bullish" {
		t.Fatalf("strong historical up rate should tilt bullish, got %s", f.Direction)
	}
	if f.BasisEvents != 20 {
		t.Fatalf("basis events %d", f.BasisEvents)
	}
	if f.ExpectedMovePct != 1.8 {
		t.Fatalf("expected move should come from the stack bucket, got %v", f.ExpectedMovePct)
	}
	// Historical edge adds confidence on top of the live read.
	if f.Confidence <= 55 {
		t.Fatalf("historical edge should raise confidence, got %v", f.Confidence)
	}
}

func TestBuildRejectsOutOfRangeMagnitude(t *testing.T) {
	b := NewBuilder(nil)
	profile := &models.MSymbolLearning{
		Symbol:       "TEST",
		PerTimeframe: map[string]*models.MTimeframeLearning{},
		PerStack: map[int]*models.MStackStats{
			5: {StackSize: 5, Events: 10, UpRate: 0.9, AvgMovePct8: 45.0}, // poisoned
		},
	}
	composite := models.MCompositeScore{DirectionScore: 60, Confidence: 70, ActiveCount: 5}

	f := b.Build("TEST", profile, composite, nil, 100.0, 1.0, nil)
	if f.ExpectedMovePct != 2.0 {
		t.Fatalf("45%% learned move must fall back to 2%%, got %v", f.ExpectedMovePct)
	}
}

func TestBuildNeutralDirectionHasNoTarget(t *testing.T) {
	b := NewBuilder(nil)
	composite := models.MCompositeScore{DirectionScore: 0, Confidence: 30}

	f := b.Build("TEST", nil, composite, nil, 100.0, 2.0, nil)
	if f.Direction != "neutral" {
		t.Fatalf("expected neutral, got %s", f.Direction)
	}
	if f.TargetPrice != 100 || f.StopPrice != 0 {
		t.Fatalf("neutral forecast should not carry a trade: %+v", f)
	}
}

func TestBuildTimeHorizon(t *testing.T) {
	b := NewBuilder(nil)
	composite := models.MCompositeScore{DirectionScore: 0, Confidence: 30}

	cases := []struct {
		mtc  float64
		want string
	}{
		{10, "1h"},
		{45, "2h"},
		{90, "4h"},
		{500, "8h"},
	}
	for _, tc := range cases {
		active := []models.MDecompressionPull{{TimeframeID: "1h", Active: true, MinutesToClose: tc.mtc}}
		f := b.Build("TEST", nil, composite, active, 100.0, 1.0, nil)
		if f.TimeHorizon != tc.want {
			t.Fatalf("mtc %v: horizon %s, want %s", tc.mtc, f.TimeHorizon, tc.want)
		}
	}

	// Recorded outcomes override the close schedule.
	outcomes := &models.MOutcomeStats{Trades: 10, WinRate: 60, AvgTimeToMoveMinutes: 25}
	active := []models.MDecompressionPull{{TimeframeID: "1h", Active: true, MinutesToClose: 500}}
	f := b.Build("TEST", nil, composite, active, 100.0, 1.0, outcomes)
	if f.TimeHorizon != "1h" {
		t.Fatalf("observed 25-minute moves should shrink the horizon, got %s", f.TimeHorizon)
	}
}

func TestBuildOutcomeBlend(t *testing.T) {
	b := NewBuilder(nil)
	composite := models.MCompositeScore{DirectionScore: 40, Confidence: 80, ActiveCount: 2}
	outcomes := &models.MOutcomeStats{Trades: 12, WinRate: 40}

	f := b.Build("TEST", nil, composite, nil, 100.0, 1.0, outcomes)
	// (80 + 40) / 2 = 60.
	if f.Confidence != 60 {
		t.Fatalf("outcome blend should average to 60, got %v", f.Confidence)
	}
}

func TestBuildInvalidPrice(t *testing.T) {
	b := NewBuilder(nil)
	if f := b.Build("TEST", nil, models.MCompositeScore{}, nil, 0, 1.0, nil); f != nil {
		t.Fatal("zero price must yield no forecast")
	}
}
