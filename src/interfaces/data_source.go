package interfaces

import "confluence-engine/src/models"

// -----------------------------------------------------------------------------
// IBarSource is the contract for historical bar and live quote retrieval.
// Implementations must surface rate limits and unknown symbols as the typed
// errors in helpers, never as silent empty results.
// -----------------------------------------------------------------------------

type IBarSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchBars retrieves the ordered OHLCV history for a symbol at the
	// given base interval (e.g. "5m", "1h", "1d").
	FetchBars(symbol string, interval string, isCrypto bool) ([]models.MBar, error)

	// -----------------------------------------------------------------------------

	// FetchQuote retrieves the latest traded price. isCrypto selects the
	// provider's crypto symbol mapping. The boolean is false when no live
	// quote is available; callers fall back to the last bar close then.
	FetchQuote(symbol string, isCrypto bool) (float64, bool, error)

	// -----------------------------------------------------------------------------

	// SupportsCrypto reports whether the source can serve 24/7 markets.
	SupportsCrypto() bool
}

// -----------------------------------------------------------------------------
// IOptionsSource is the contract for options chain snapshots.
// -----------------------------------------------------------------------------

type IOptionsSource interface {

	// FetchOptionsChain retrieves the chain for a symbol. expiration may be
	// empty, in which case the source picks the nearest listed expiration.
	FetchOptionsChain(symbol string, expiration string) (*models.MOptionsChain, error)
}
