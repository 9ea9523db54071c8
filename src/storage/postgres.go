package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"confluence-engine/src/logger"
	"confluence-engine/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type AsyncPostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncPostgresDB(cfg *models.MConfig, log *logger.Logger) (*AsyncPostgresDB, error) {
	return &AsyncPostgresDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncPostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		return err
	}
	d.DB = db

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncPostgresDB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS confluence_events (
			symbol TEXT,
			timestamp BIGINT,
			stack_size INT,
			hot_zone BOOLEAN,
			cluster_count INT,
			price DOUBLE PRECISION,
			move_pct_8 DOUBLE PRECISION,
			move_pct_24 DOUBLE PRECISION,
			PRIMARY KEY (symbol, timestamp)
		);`,
		`CREATE TABLE IF NOT EXISTS learning_profiles (
			symbol TEXT PRIMARY KEY,
			profile JSONB,
			built_at BIGINT
		);`,
		`CREATE TABLE IF NOT EXISTS trade_outcomes (
			id BIGSERIAL PRIMARY KEY,
			symbol TEXT,
			win BOOLEAN,
			move_pct DOUBLE PRECISION,
			time_to_move_minutes DOUBLE PRECISION,
			recorded_at BIGINT
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

func (d *AsyncPostgresDB) SaveConfluenceEvents(symbol string, events []models.MConfluenceEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM confluence_events WHERE symbol = $1", symbol); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO confluence_events (symbol, timestamp, stack_size, hot_zone, cluster_count, price, move_pct_8, move_pct_24)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(symbol, e.Timestamp, e.StackSize, e.HotZone, e.ClusterCount, e.Price, e.MovePct8, e.MovePct24); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncPostgresDB) SaveLearningProfile(profile *models.MSymbolLearning) error {
	if profile == nil {
		return nil
	}
	blob, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = d.DB.Exec(`
		INSERT INTO learning_profiles (symbol, profile, built_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO UPDATE SET
			profile = EXCLUDED.profile,
			built_at = EXCLUDED.built_at
	`, profile.Symbol, string(blob), profile.BuiltAt)
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncPostgresDB) LoadLearningProfile(symbol string) (*models.MSymbolLearning, error) {
	var blob string
	err := d.DB.QueryRow("SELECT profile FROM learning_profiles WHERE symbol = $1", symbol).Scan(&blob)
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

func (d *AsyncPostgresDB) RecordTradeOutcome(symbol string, win bool, movePct, timeToMoveMinutes float64) error {
	_, err := d.DB.Exec(`
		INSERT INTO trade_outcomes (symbol, win, move_pct, time_to_move_minutes, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, symbol, win, movePct, timeToMoveMinutes, time.Now().UTC().Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncPostgresDB) OutcomeStats(symbol string) (*models.MOutcomeStats, error) {
	row := d.DB.QueryRow(`
		SELECT COUNT(*),
			COALESCE(AVG(CASE WHEN win THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(AVG(ABS(move_pct)), 0),
			COALESCE(AVG(time_to_move_minutes), 0)
		FROM trade_outcomes WHERE symbol = $1
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

func (d *AsyncPostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
