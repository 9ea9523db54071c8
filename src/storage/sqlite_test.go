package storage

import (
	"math"
	"path/filepath"
	"testing"

	"confluence-engine/src/learning"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

func newTestDB(t *testing.T) *AsyncSQLiteDB {
	t.Helper()

	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "storage_test.db"),
		},
	}
	db, err := NewAsyncSQLiteDB(cfg, logger.NewLogger("ERROR", "test"))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOutcomeStatsAggregation(t *testing.T) {
	db := newTestDB(t)

	if err := db.RecordTradeOutcome("AAPL", true, 2.0, 30); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordTradeOutcome("AAPL", true, -3.0, 60); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := db.RecordTradeOutcome("AAPL", false, 1.0, 90); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, err := db.OutcomeStats("AAPL")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats == nil {
		t.Fatal("expected aggregates for a recorded symbol")
	}
	if stats.Trades != 3 {
		t.Fatalf("trades %d", stats.Trades)
	}
	// Two wins in three trades on the 0..100 scale.
	if math.Abs(stats.WinRate-66.666) > 0.01 {
		t.Fatalf("win rate %v", stats.WinRate)
	}
	// Magnitudes average as absolute values.
	if math.Abs(stats.AvgMovePercent-2.0) > 1e-9 {
		t.Fatalf("avg move %v", stats.AvgMovePercent)
	}
	if math.Abs(stats.AvgTimeToMoveMinutes-60) > 1e-9 {
		t.Fatalf("avg time %v", stats.AvgTimeToMoveMinutes)
	}
}

func TestOutcomeStatsUnknownSymbol(t *testing.T) {
	db := newTestDB(t)

	stats, err := db.OutcomeStats("NOPE")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats != nil {
		t.Fatalf("no recorded trades should yield nil aggregates, got %+v", stats)
	}
}

func TestLearningProfileRoundTrip(t *testing.T) {
	db := newTestDB(t)

	in := learning.NeutralProfile("TSLA", 250, 1_800_000_000)
	if err := db.SaveLearningProfile(in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := db.LoadLearningProfile("TSLA")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out == nil {
		t.Fatal("expected the stored profile back")
	}
	if out.Symbol != "TSLA" || out.BarsAnalyzed != 250 || out.BuiltAt != 1_800_000_000 || !out.Neutral {
		t.Fatalf("profile mangled in round trip: %+v", out)
	}

	// Upsert replaces, never duplicates.
	in2 := learning.NeutralProfile("TSLA", 500, 1_800_000_600)
	if err := db.SaveLearningProfile(in2); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err = db.LoadLearningProfile("TSLA")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.BarsAnalyzed != 500 || out.BuiltAt != 1_800_000_600 {
		t.Fatalf("upsert should replace the stored row: %+v", out)
	}
}

func TestLoadLearningProfileAbsent(t *testing.T) {
	db := newTestDB(t)

	out, err := db.LoadLearningProfile("NOPE")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != nil {
		t.Fatalf("absent profile should be (nil, nil), got %+v", out)
	}
}
