package data_source

import (
	"fmt"
	"time"

	"confluence-engine/src/helpers"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Source manager: ordered failover across bar sources. Stocks try Yahoo
// first (no API quota), crypto tries Alpha Vantage first. A provider
// answer below the sanity floor counts as a failure, not a result.
// -----------------------------------------------------------------------------

// minSaneBars rejects truncated series that would poison resampling.
const minSaneBars = 10

// retryBaseDelay is deliberately short: the network layer already paces
// its own HTTP retries, this level only re-drives parse-stage failures.
const retryBaseDelay = 500 * time.Millisecond

type SourceManager struct {
	stockOrder  []interfaces.IBarSource
	cryptoOrder []interfaces.IBarSource
	options     interfaces.IOptionsSource
	retries     int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSourceManager(yahoo *YahooSource, av *AlphaVantageSource, retries int, logLevel string) *SourceManager {
	if retries <= 0 {
		retries = 1
	}
	m := &SourceManager{
		retries: retries,
		Logger:  logger.NewLogger(logLevel, "SourceManager"),
	}
	if yahoo != nil {
		m.stockOrder = append(m.stockOrder, yahoo)
		m.cryptoOrder = append(m.cryptoOrder, yahoo)
	}
	if av != nil {
		m.stockOrder = append(m.stockOrder, av)
		m.cryptoOrder = append([]interfaces.IBarSource{av}, m.cryptoOrder...)
		m.options = av
	}
	return m
}

// -----------------------------------------------------------------------------

func (m *SourceManager) Name() string { return "manager" }

func (m *SourceManager) SupportsCrypto() bool { return true }

// -----------------------------------------------------------------------------

func (m *SourceManager) order(isCrypto bool) []interfaces.IBarSource {
	if isCrypto {
		return m.cryptoOrder
	}
	return m.stockOrder
}

// -----------------------------------------------------------------------------

// FetchBars walks the failover order, retrying each source on transient
// failures before moving on. Not-found is terminal immediately: the next
// provider will not know the symbol either.
func (m *SourceManager) FetchBars(symbol, interval string, isCrypto bool) ([]models.MBar, error) {
	var lastErr error
	for _, src := range m.order(isCrypto) {
		if isCrypto && !src.SupportsCrypto() {
			continue
		}
		res, err := helpers.RetryWithBackoff(fmt.Sprintf("%s bars for %s", src.Name(), symbol), m.retries, retryBaseDelay,
			func() (interface{}, error) {
				return src.FetchBars(symbol, interval, isCrypto)
			})
		if err != nil {
			if helpers.IsSymbolNotFound(err) {
				return nil, err
			}
			m.Logger.Warning("%s: source %s failed: %v", symbol, src.Name(), err)
			lastErr = err
			continue
		}
		bars, _ := res.([]models.MBar)
		if len(bars) < minSaneBars {
			m.Logger.Warning("%s: source %s returned only %d bars, trying next", symbol, src.Name(), len(bars))
			lastErr = helpers.NewUpstreamError(symbol, nil)
			continue
		}
		return bars, nil
	}
	if lastErr == nil {
		lastErr = helpers.NewUpstreamError(symbol, nil)
	}
	return nil, lastErr
}

// -----------------------------------------------------------------------------

// FetchQuote walks the stock order for quotes regardless of asset class:
// the secondary provider has no crypto quote endpoint, so Yahoo leads and
// serves crypto through its pair mapping. A not-found is only terminal for
// stocks; for crypto the next source may still resolve the pair.
func (m *SourceManager) FetchQuote(symbol string, isCrypto bool) (float64, bool, error) {
	var lastErr error
	for _, src := range m.stockOrder {
		res, err := helpers.RetryWithBackoff(fmt.Sprintf("%s quote for %s", src.Name(), symbol), m.retries, retryBaseDelay,
			func() (interface{}, error) {
				price, open, err := src.FetchQuote(symbol, isCrypto)
				if err != nil {
					return nil, err
				}
				return quoteResult{price: price, open: open}, nil
			})
		if err != nil {
			if helpers.IsSymbolNotFound(err) && !isCrypto {
				return 0, false, err
			}
			m.Logger.Warning("%s: quote from %s failed: %v", symbol, src.Name(), err)
			lastErr = err
			continue
		}
		q, _ := res.(quoteResult)
		return q.price, q.open, nil
	}
	if lastErr == nil {
		lastErr = helpers.NewUpstreamError(symbol, nil)
	}
	return 0, false, lastErr
}

type quoteResult struct {
	price float64
	open  bool
}

// -----------------------------------------------------------------------------

// FetchOptionsChain has no failover: only one provider carries chains.
func (m *SourceManager) FetchOptionsChain(symbol, expiration string) (*models.MOptionsChain, error) {
	if m.options == nil {
		return nil, helpers.NewUpstreamError(symbol, nil)
	}
	return m.options.FetchOptionsChain(symbol, expiration)
}
