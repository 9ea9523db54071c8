package learning

import (
	"math"
	"testing"

	"confluence-engine/src/models"
)

func syntheticBars(n int) []models.MBar {
	bars := make([]models.MBar, 0, n)
	start := int64(1_700_000_100) // aligned to the 5m grid
	for i := 0; i < n; i++ {
		mid := 100.0 + 5.0*math.Sin(float64(i)/20.0)
		bars = append(bars, models.MBar{
			Timestamp: start + int64(i)*300,
			Open:      mid - 0.1,
			High:      mid + 0.6,
			Low:       mid - 0.6,
			Close:     mid + 0.1,
			Volume:    1000,
		})
	}
	return bars
}

func TestBuildNeutralOnThinHistory(t *testing.T) {
	bt := NewBacktester(5, 12, nil)
	profile, events := bt.Build("THIN", syntheticBars(120), 5, 1_800_000_000)

	if !profile.Neutral {
		t.Fatal("under 200 bars must yield the neutral profile")
	}
	if profile.BarsAnalyzed != 120 {
		t.Fatalf("bars analyzed %d", profile.BarsAnalyzed)
	}
	if profile.HotZone.UpRate != 0.5 || profile.WithCluster.UpRate != 0.5 {
		t.Fatalf("neutral profile should carry 50/50 rates: %+v", profile)
	}
	if len(events) != 0 {
		t.Fatalf("neutral profile should record no events, got %d", len(events))
	}
}

func TestBuildAggregatesEvents(t *testing.T) {
	bt := NewBacktester(5, 12, nil)
	profile, events := bt.Build("FULL", syntheticBars(2000), 5, 1_800_000_000)

	if profile.Neutral {
		t.Fatal("2000 bars should learn a real profile")
	}
	if profile.BarsAnalyzed != 2000 {
		t.Fatalf("bars analyzed %d", profile.BarsAnalyzed)
	}
	if profile.TotalEvents != len(events) {
		t.Fatalf("event count mismatch: profile %d vs recorded %d", profile.TotalEvents, len(events))
	}
	if profile.BuiltAt != 1_800_000_000 {
		t.Fatalf("built at %d", profile.BuiltAt)
	}

	for bucket, st := range profile.PerStack {
		if bucket < 5 || bucket > 9 {
			t.Fatalf("stack bucket %d outside 5..9", bucket)
		}
		if st.Events > 0 && (st.UpRate < 0 || st.UpRate > 1) {
			t.Fatalf("bucket %d up rate %v out of range", bucket, st.UpRate)
		}
		if st.Events > 0 && st.AvgMovePct8 < 0 {
			t.Fatalf("bucket %d mean magnitude %v negative", bucket, st.AvgMovePct8)
		}
		if st.StdMovePct8 < 0 || math.IsNaN(st.StdMovePct8) {
			t.Fatalf("bucket %d magnitude dispersion %v invalid", bucket, st.StdMovePct8)
		}
		if st.Events == 1 && st.StdMovePct8 != 0 {
			t.Fatalf("single-event bucket %d should have zero dispersion, got %v", bucket, st.StdMovePct8)
		}
	}
	for id, tf := range profile.PerTimeframe {
		if tf.Events == 0 {
			continue
		}
		if tf.UpRate < 0 || tf.UpRate > 1 {
			t.Fatalf("%s up rate %v out of range", id, tf.UpRate)
		}
		if r := tf.BounceRate + tf.BreakRate; math.Abs(r-1.0) > 1e-9 {
			t.Fatalf("%s bounce+break should partition events, got %v", id, r)
		}
	}

	for _, ev := range events {
		if ev.Symbol != "FULL" {
			t.Fatalf("event symbol %s", ev.Symbol)
		}
		if math.IsNaN(ev.MovePct8) || math.IsNaN(ev.MovePct24) {
			t.Fatal("event move percentages must be finite")
		}
		if ev.StackSize < 5 && !ev.HotZone && ev.ClusterCount < 2 {
			t.Fatalf("recorded event fails every trigger: %+v", ev)
		}
	}
}

func TestNeutralProfileShape(t *testing.T) {
	p := NeutralProfile("X", 42, 1_800_000_000)
	if !p.Neutral || p.Symbol != "X" || p.BarsAnalyzed != 42 {
		t.Fatalf("unexpected neutral profile: %+v", p)
	}
	if p.PerTimeframe == nil || p.PerStack == nil {
		t.Fatal("neutral profile maps must be allocated")
	}
}
