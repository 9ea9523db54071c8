package data_source

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"confluence-engine/src/helpers"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
	"confluence-engine/src/network"
)

// -----------------------------------------------------------------------------
// Alpha Vantage source: OHLCV history, quotes and the realtime options
// chain. The provider signals rate limiting with a "Note"/"Information"
// payload and unknown symbols with "Error Message"; the two must map to
// different error types so callers can back off instead of giving up.
// -----------------------------------------------------------------------------

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

type AlphaVantageSource struct {
	APIKey  string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAlphaVantageSource(apiKey string, netMgr interfaces.INetworkManager, logLevel string) *AlphaVantageSource {
	return &AlphaVantageSource{
		APIKey:  apiKey,
		Network: netMgr,
		Logger:  logger.NewLogger(logLevel, "AlphaVantageSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

func (s *AlphaVantageSource) SupportsCrypto() bool { return true }

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) query(symbol string, params map[string]string) (map[string]json.RawMessage, error) {
	params["apikey"] = s.APIKey
	body, err := s.Network.Get(alphaVantageBaseURL, params)
	if err != nil {
		if errors.Is(err, network.ErrRateLimited) {
			return nil, helpers.NewRateLimitError(symbol, err)
		}
		return nil, helpers.NewUpstreamError(symbol, err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("json unmarshal failed: %w", err))
	}

	// Provider-level signals arrive as 200 OK with a sentinel key.
	if note, ok := payload["Note"]; ok {
		return nil, helpers.NewRateLimitError(symbol, fmt.Errorf("alpha vantage note: %s", string(note)))
	}
	if info, ok := payload["Information"]; ok {
		return nil, helpers.NewRateLimitError(symbol, fmt.Errorf("alpha vantage information: %s", string(info)))
	}
	if _, ok := payload["Error Message"]; ok {
		return nil, helpers.NewSymbolNotFoundError(symbol)
	}
	return payload, nil
}

// -----------------------------------------------------------------------------

// FetchBars pulls intraday or daily OHLCV history.
func (s *AlphaVantageSource) FetchBars(symbol, interval string, isCrypto bool) ([]models.MBar, error) {
	params := map[string]string{"symbol": symbol, "outputsize": "full"}
	var seriesKey string

	switch {
	case isCrypto && interval == "1d":
		params["function"] = "DIGITAL_CURRENCY_DAILY"
		params["market"] = "USD"
		seriesKey = "Time Series (Digital Currency Daily)"
	case isCrypto:
		params["function"] = "CRYPTO_INTRADAY"
		params["market"] = "USD"
		params["interval"] = avInterval(interval)
		seriesKey = fmt.Sprintf("Time Series Crypto (%s)", avInterval(interval))
	case interval == "1d":
		params["function"] = "TIME_SERIES_DAILY"
		seriesKey = "Time Series (Daily)"
	default:
		params["function"] = "TIME_SERIES_INTRADAY"
		params["interval"] = avInterval(interval)
		seriesKey = fmt.Sprintf("Time Series (%s)", avInterval(interval))
	}

	payload, err := s.query(symbol, params)
	if err != nil {
		return nil, err
	}

	raw, ok := payload[seriesKey]
	if !ok {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("missing series %q in response", seriesKey))
	}
	return s.parseSeries(symbol, raw, interval == "1d")
}

// -----------------------------------------------------------------------------

// avInterval maps internal interval ids to the provider's spelling.
func avInterval(interval string) string {
	switch interval {
	case "1m":
		return "1min"
	case "5m":
		return "5min"
	case "15m":
		return "15min"
	case "30m":
		return "30min"
	case "1h":
		return "60min"
	default:
		return "5min"
	}
}

// -----------------------------------------------------------------------------

func (s *AlphaVantageSource) parseSeries(symbol string, raw json.RawMessage, daily bool) ([]models.MBar, error) {
	var series map[string]map[string]string
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("series unmarshal failed: %w", err))
	}

	layout := "2006-01-02 15:04:05"
	if daily {
		layout = "2006-01-02"
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}

	bars := make([]models.MBar, 0, len(series))
	for stamp, fields := range series {
		t, err := time.ParseInLocation(layout, stamp, loc)
		if err != nil {
			s.Logger.Debug("%s: unparseable timestamp %q", symbol, stamp)
			continue
		}

		bar := models.MBar{
			Timestamp: t.Unix(),
			Open:      avField(fields, "1. open"),
			High:      avField(fields, "2. high"),
			Low:       avField(fields, "3. low"),
			Close:     avField(fields, "4. close"),
			Volume:    avField(fields, "5. volume"),
		}
		if bar.Close <= 0 {
			continue
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

	if len(bars) == 0 {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("empty series"))
	}
	s.Logger.Debug("%s: fetched %d bars", symbol, len(bars))
	return bars, nil
}

func avField(fields map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(fields[key], 64)
	if err != nil {
		return 0
	}
	return v
}

// -----------------------------------------------------------------------------

// FetchQuote returns the last price. The provider carries no session
// state, so market-open is approximated from the latest trading day.
// GLOBAL_QUOTE is equities-only; crypto quotes come from the other source.
func (s *AlphaVantageSource) FetchQuote(symbol string, isCrypto bool) (float64, bool, error) {
	if isCrypto {
		return 0, false, helpers.NewUpstreamError(symbol, fmt.Errorf("no crypto quote endpoint"))
	}
	payload, err := s.query(symbol, map[string]string{"function": "GLOBAL_QUOTE", "symbol": symbol})
	if err != nil {
		return 0, false, err
	}

	raw, ok := payload["Global Quote"]
	if !ok {
		return 0, false, helpers.NewUpstreamError(symbol, fmt.Errorf("missing quote in response"))
	}
	var quote map[string]string
	if err := json.Unmarshal(raw, &quote); err != nil {
		return 0, false, helpers.NewUpstreamError(symbol, fmt.Errorf("quote unmarshal failed: %w", err))
	}

	price := avField(quote, "05. price")
	if price <= 0 {
		return 0, false, helpers.NewSymbolNotFoundError(symbol)
	}

	marketOpen := quote["07. latest trading day"] == time.Now().UTC().Format("2006-01-02")
	return price, marketOpen, nil
}

// -----------------------------------------------------------------------------

// FetchOptionsChain pulls the realtime options chain, optionally filtered
// to one expiration.
func (s *AlphaVantageSource) FetchOptionsChain(symbol, expiration string) (*models.MOptionsChain, error) {
	payload, err := s.query(symbol, map[string]string{
		"function":       "REALTIME_OPTIONS",
		"symbol":         symbol,
		"require_greeks": "true",
	})
	if err != nil {
		return nil, err
	}

	raw, ok := payload["data"]
	if !ok {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("missing options data in response"))
	}

	var rows []map[string]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("options unmarshal failed: %w", err))
	}

	chain := &models.MOptionsChain{
		Symbol:             symbol,
		Calls:              []models.MOptionContract{},
		Puts:               []models.MOptionContract{},
		SelectedExpiration: expiration,
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, row := range rows {
		exp := row["expiration"]
		if expiration != "" && exp != expiration {
			continue
		}

		contract := models.MOptionContract{
			ContractID:        row["contractID"],
			Type:              row["type"],
			Strike:            avField(row, "strike"),
			Expiration:        exp,
			Last:              avField(row, "last"),
			Bid:               avField(row, "bid"),
			Ask:               avField(row, "ask"),
			Volume:            avField(row, "volume"),
			OpenInterest:      avField(row, "open_interest"),
			ImpliedVolatility: avField(row, "implied_volatility"),
			Delta:             avField(row, "delta"),
			Gamma:             avField(row, "gamma"),
			Theta:             avField(row, "theta"),
			Vega:              avField(row, "vega"),
		}
		if expDate, err := time.Parse("2006-01-02", exp); err == nil {
			contract.DTE = int(expDate.Sub(today).Hours() / 24)
		}

		switch contract.Type {
		case "call":
			chain.Calls = append(chain.Calls, contract)
		case "put":
			chain.Puts = append(chain.Puts, contract)
		}
	}

	if len(chain.Calls) == 0 && len(chain.Puts) == 0 {
		return nil, helpers.NewUpstreamError(symbol, fmt.Errorf("empty options chain"))
	}
	s.Logger.Debug("%s: fetched chain with %d calls / %d puts", symbol, len(chain.Calls), len(chain.Puts))
	return chain, nil
}
