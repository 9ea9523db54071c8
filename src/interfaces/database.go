package interfaces

import "confluence-engine/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for the learning/outcome store.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveConfluenceEvents persists backtested confluence events for a symbol,
	// replacing any previously stored set.
	SaveConfluenceEvents(symbol string, events []models.MConfluenceEvent) error

	// -----------------------------------------------------------------------------

	// SaveLearningProfile persists a freshly built per-symbol profile.
	SaveLearningProfile(profile *models.MSymbolLearning) error

	// -----------------------------------------------------------------------------

	// LoadLearningProfile returns the stored profile, or nil when absent.
	LoadLearningProfile(symbol string) (*models.MSymbolLearning, error)

	// -----------------------------------------------------------------------------

	// RecordTradeOutcome appends one resolved trade for outcome statistics.
	RecordTradeOutcome(symbol string, win bool, movePct float64, timeToMoveMinutes float64) error

	// -----------------------------------------------------------------------------

	// Close releases the underlying connection.
	Close() error
}

// -----------------------------------------------------------------------------
// IOutcomeStore is the optional trade-outcome contract: callers report
// resolved trades back through it and the forecast builder reads the
// aggregates. Absence of data is (nil, nil).
// -----------------------------------------------------------------------------

type IOutcomeStore interface {

	// RecordTradeOutcome appends one resolved trade.
	RecordTradeOutcome(symbol string, win bool, movePct float64, timeToMoveMinutes float64) error

	// -----------------------------------------------------------------------------

	// OutcomeStats aggregates the recorded trades for a symbol.
	OutcomeStats(symbol string) (*models.MOutcomeStats, error)
}
