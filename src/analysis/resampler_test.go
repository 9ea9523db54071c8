package analysis

import (
	"testing"

	"confluence-engine/src/models"
)

func makeBars(start int64, stepSec int64, n int) []models.MBar {
	bars := make([]models.MBar, 0, n)
	for i := 0; i < n; i++ {
		base := 100.0 + float64(i)
		bars = append(bars, models.MBar{
			Timestamp: start + int64(i)*stepSec,
			Open:      base,
			High:      base + 1.0,
			Low:       base - 1.0,
			Close:     base + 0.5,
			Volume:    10,
		})
	}
	return bars
}

func TestResampleAggregatesBuckets(t *testing.T) {
	// 12 five-minute bars into 15-minute buckets: 4 buckets of 3.
	bars := makeBars(1_700_000_100, 300, 12)
	out := Resample(bars, 15)

	if len(out) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(out))
	}

	first := out[0]
	if first.Open != bars[0].Open {
		t.Fatalf("bucket open should come from first bar: %v", first.Open)
	}
	if first.Close != bars[2].Close {
		t.Fatalf("bucket close should come from last bar: %v", first.Close)
	}
	if first.High != bars[2].High {
		t.Fatalf("bucket high mismatch: %v", first.High)
	}
	if first.Low != bars[0].Low {
		t.Fatalf("bucket low mismatch: %v", first.Low)
	}
	if first.Timestamp%900 != 0 {
		t.Fatalf("bucket timestamp not aligned: %d", first.Timestamp)
	}
}

func TestResampleConservesVolume(t *testing.T) {
	bars := makeBars(1_700_000_100, 300, 50)

	total := 0.0
	for _, b := range bars {
		total += b.Volume
	}

	for _, target := range []float64{5, 15, 60, 240} {
		sum := 0.0
		for _, b := range Resample(bars, target) {
			sum += b.Volume
		}
		if sum != total {
			t.Fatalf("volume not conserved at %v minutes: got %v want %v", target, sum, total)
		}
	}
}

func TestResampleSameWidthIsNoOp(t *testing.T) {
	bars := makeBars(1_700_000_100, 300, 20)
	out := Resample(bars, 5)

	if len(out) != len(bars) {
		t.Fatalf("same-width resample changed bar count: %d vs %d", len(out), len(bars))
	}
	for i := range out {
		if out[i].Close != bars[i].Close || out[i].Volume != bars[i].Volume {
			t.Fatalf("bar %d mutated by same-width resample", i)
		}
	}
}

func TestResampleEmptyInput(t *testing.T) {
	if out := Resample(nil, 15); len(out) != 0 {
		t.Fatalf("expected empty output for nil input, got %d bars", len(out))
	}
	if out := Resample(makeBars(0, 300, 5), 0); len(out) != 0 {
		t.Fatalf("expected empty output for zero width, got %d bars", len(out))
	}
}

func TestResampleKeepsChronologicalOrder(t *testing.T) {
	bars := makeBars(1_700_000_100, 300, 100)
	out := Resample(bars, 30)
	for i := 1; i < len(out); i++ {
		if out[i].Timestamp <= out[i-1].Timestamp {
			t.Fatalf("bars out of order at %d", i)
		}
	}
}
