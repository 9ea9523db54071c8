package analysis

import (
	"testing"

	"confluence-engine/src/models"
)

func TestDirectionLabelThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{16, "bullish"},
		{15, "neutral"},
		{0, "neutral"},
		{-15, "neutral"},
		{-16, "bearish"},
		{100, "bullish"},
		{-100, "bearish"},
	}
	for _, tc := range cases {
		if got := DirectionLabel(tc.score); got != tc.want {
			t.Fatalf("DirectionLabel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestComputeCompositeStrongStack(t *testing.T) {
	// Five aligned timeframes closing together, all pulling up hard.
	pulls := []models.MDecompressionPull{
		activePull("5m", 3, 9, "up"),
		activePull("15m", 4, 9, "up"),
		activePull("30m", 5, 9, "up"),
		activePull("1h", 6, 9, "up"),
		activePull("2h", 7, 9, "up"),
	}
	clusters := BuildClusters(pulls, 5)

	got := ComputeComposite(pulls, clusters, models.MCandleCloseConfluence{}, 100.0, DefaultCompositeConfig())

	if got.DirectionLabel != "bullish" {
		t.Fatalf("all-up stack should read bullish, got %s", got.DirectionLabel)
	}
	if got.DirectionScore < 99 {
		t.Fatalf("unanimous direction should score ~100, got %.2f", got.DirectionScore)
	}
	if got.SignalStrength != "strong" {
		t.Fatalf("expected strong signal, got %s (confidence %.1f)", got.SignalStrength, got.Confidence)
	}
	if got.ActiveCount != 5 {
		t.Fatalf("active count %d", got.ActiveCount)
	}

	wantBanners := map[string]bool{}
	for _, b := range got.Banners {
		wantBanners[b] = true
	}
	for _, b := range []string{"MEGA CONFLUENCE", "EXTREME BULLISH", "PRICE MAGNET", "HIGH CONFIDENCE"} {
		if !wantBanners[b] {
			t.Fatalf("missing banner %q in %v", b, got.Banners)
		}
	}
}

func TestComputeCompositeConfidenceBounds(t *testing.T) {
	// Nothing active: confidence still clamps to the floor.
	got := ComputeComposite(nil, nil, models.MCandleCloseConfluence{}, 100.0, DefaultCompositeConfig())
	if got.Confidence < 10 || got.Confidence > 95 {
		t.Fatalf("confidence %v outside [10,95]", got.Confidence)
	}
	if got.DirectionLabel != "neutral" {
		t.Fatalf("empty input should be neutral, got %s", got.DirectionLabel)
	}

	// Maximal input plus boost still clamps to the ceiling.
	pulls := []models.MDecompressionPull{
		activePull("5m", 3, 10, "up"),
		activePull("15m", 3, 10, "up"),
		activePull("30m", 4, 10, "up"),
		activePull("1h", 4, 10, "up"),
		activePull("2h", 5, 10, "up"),
		activePull("4h", 5, 10, "up"),
	}
	clusters := BuildClusters(pulls, 5)
	cc := models.MCandleCloseConfluence{Boost: 15}
	got = ComputeComposite(pulls, clusters, cc, 100.0, DefaultCompositeConfig())
	if got.Confidence > 95 {
		t.Fatalf("confidence %v exceeds ceiling", got.Confidence)
	}
}

func TestComputeCompositeMixedDirections(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 3, 8, "up"),
		activePull("15m", 4, 8, "down"),
	}
	for i := range pulls {
		if pulls[i].Direction == "down" {
			pulls[i].MidLevel = 99.5
			pulls[i].DistancePct = -0.5
		}
	}
	clusters := BuildClusters(pulls, 5)
	got := ComputeComposite(pulls, clusters, models.MCandleCloseConfluence{}, 100.0, DefaultCompositeConfig())

	// 15m carries slightly more hierarchy weight than 5m; the net lean is
	// mild, nowhere near the unanimous extremes.
	if got.DirectionScore >= 99 || got.DirectionScore <= -99 {
		t.Fatalf("mixed directions should not be unanimous: %.2f", got.DirectionScore)
	}
}

func TestCandleCloseBoostRaisesConfidence(t *testing.T) {
	pulls := []models.MDecompressionPull{
		activePull("5m", 3, 6, "up"),
		activePull("15m", 4, 6, "up"),
		activePull("30m", 5, 6, "up"),
	}
	clusters := BuildClusters(pulls, 5)

	base := ComputeComposite(pulls, clusters, models.MCandleCloseConfluence{}, 100.0, DefaultCompositeConfig())
	boosted := ComputeComposite(pulls, clusters, models.MCandleCloseConfluence{Boost: 10}, 100.0, DefaultCompositeConfig())

	if boosted.Confidence <= base.Confidence {
		t.Fatalf("boost should raise confidence: %.1f vs %.1f", boosted.Confidence, base.Confidence)
	}
}
