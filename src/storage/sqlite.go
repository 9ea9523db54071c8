package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"confluence-engine/src/logger"
	"confluence-engine/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	queries := []string{
		`CREATE TABLE IF NOT EXISTS confluence_events (
			symbol TEXT,
			timestamp INTEGER,
			stack_size INTEGER,
			hot_zone INTEGER,
			cluster_count INTEGER,
			price REAL,
			move_pct_8 REAL,
			move_pct_24 REAL,
			PRIMARY KEY (symbol, timestamp)
		);`,
		`CREATE TABLE IF NOT EXISTS learning_profiles (
			symbol TEXT PRIMARY KEY,
			profile TEXT,
			built_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS trade_outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT,
			win INTEGER,
			move_pct REAL,
			time_to_move_minutes REAL,
			recorded_at INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trade_outcomes_symbol ON trade_outcomes(symbol);`,
	}
	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// SaveConfluenceEvents replaces a symbol's recorded backtest events.
func (d *AsyncSQLiteDB) SaveConfluenceEvents(symbol string, events []models.MConfluenceEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM confluence_events WHERE symbol = ?", symbol); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO confluence_events (symbol, timestamp, stack_size, hot_zone, cluster_count, price, move_pct_8, move_pct_24)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		hotZone := 0
		if e.HotZone {
			hotZone = 1
		}
		if _, err := stmt.Exec(symbol, e.Timestamp, e.StackSize, hotZone, e.ClusterCount, e.Price, e.MovePct8, e.MovePct24); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

// SaveLearningProfile upserts a symbol's aggregated profile as JSON.
func (d *AsyncSQLiteDB) SaveLearningProfile(profile *models.MSymbolLearning) error {
	if profile == nil {
		return nil
	}
	blob, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = d.DB.Exec(`
		INSERT INTO learning_profiles (symbol, profile, built_at)
		VALUES (?, ?, ?)
		ON CONFLICT (symbol) DO UPDATE SET
			profile = excluded.profile,
			built_at = excluded.built_at
	`, profile.Symbol, string(blob), profile.BuiltAt)
	return err
}

// -----------------------------------------------------------------------------

// LoadLearningProfile returns the stored profile, or nil when none exists.
func (d *AsyncSQLiteDB) LoadLearningProfile(symbol string) (*models.MSymbolLearning, error) {
	var blob string
	err := d.DB.QueryRow("SELECT profile FROM learning_profiles WHERE symbol = ?", symbol).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var profile models.MSymbolLearning
	if err := json.Unmarshal([]byte(blob), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RecordTradeOutcome(symbol string, win bool, movePct, timeToMoveMinutes float64) error {
	winInt := 0
	if win {
		winInt = 1
	}
	_, err := d.DB.Exec(`
		INSERT INTO trade_outcomes (symbol, win, move_pct, time_to_move_minutes, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, symbol, winInt, movePct, timeToMoveMinutes, time.Now().UTC().Unix())
	return err
}

// -----------------------------------------------------------------------------

// OutcomeStats aggregates recorded trade outcomes. (nil, nil) when the
// symbol has no history yet.
func (d *AsyncSQLiteDB) OutcomeStats(symbol string) (*models.MOutcomeStats, error) {
	row := d.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(win), 0), COALESCE(AVG(ABS(move_pct)), 0), COALESCE(AVG(time_to_move_minutes), 0)
		FROM trade_outcomes WHERE symbol = ?
	`, symbol)

	var trades int
	var winRate, avgMove, avgTime float64
	if err := row.Scan(&trades, &winRate, &avgMove, &avgTime); err != nil {
		return nil, err
	}
	if trades == 0 {
		return nil, nil
	}
	return &models.MOutcomeStats{
		Symbol:               symbol,
		Trades:               trades,
		WinRate:              winRate * 100.0,
		AvgMovePercent:       avgMove,
		AvgTimeToMoveMinutes: avgTime,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
