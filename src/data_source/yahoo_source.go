package data_source

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"confluence-engine/src/helpers"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
	"confluence-engine/src/network"
)

// -----------------------------------------------------------------------------
// Yahoo Finance chart source. No API key, but intraday depth is capped, so
// the interval decides the request range.
// -----------------------------------------------------------------------------

type YahooSource struct {
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooSource(netMgr interfaces.INetworkManager, logLevel string) *YahooSource {
	return &YahooSource{
		Network: netMgr,
		Logger:  logger.NewLogger(logLevel, "YahooSource"),
	}
}

// -----------------------------------------------------------------------------

func (s *YahooSource) Name() string { return "yahoo" }

func (s *YahooSource) SupportsCrypto() bool { return true }

// -----------------------------------------------------------------------------

// rangeForInterval: Yahoo caps intraday history depth per granularity.
func rangeForInterval(interval string) string {
	switch interval {
	case "1m":
		return "7d"
	case "5m", "15m", "30m":
		return "60d"
	case "1h":
		return "730d"
	default:
		return "2y"
	}
}

// -----------------------------------------------------------------------------

// FetchBars pulls OHLCV history at the given interval.
func (s *YahooSource) FetchBars(symbol, interval string, isCrypto bool) ([]models.MBar, error) {
	querySymbol := symbol
	if isCrypto && !strings.Contains(symbol, "-") {
		querySymbol = symbol + "-USD"
	}

	params := map[string]string{
		"interval":       interval,
		"range":          rangeForInterval(interval),
		"includePrePost": "false",
	}
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", querySymbol)

	body, err := s.Network.Get(url, params)
	if err != nil {
		if errors.Is(err, network.ErrRateLimited) {
			return nil, helpers.NewRateLimitError(symbol, err)
		}
		return nil, helpers.NewUpstreamError(symbol, err)
	}

	bars, _, _, err := s.parseChart(symbol, body)
	return bars, err
}

// -----------------------------------------------------------------------------

// FetchQuote returns the latest traded price and whether the regular
// session is currently open. Crypto symbols get the same -USD pair
// mapping as FetchBars.
func (s *YahooSource) FetchQuote(symbol string, isCrypto bool) (float64, bool, error) {
	querySymbol := symbol
	if isCrypto && !strings.Contains(symbol, "-") {
		querySymbol = symbol + "-USD"
	}
	params := map[string]string{"interval": "1m", "range": "1d", "includePrePost": "false"}
	url := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", querySymbol)

	body, err := s.Network.Get(url, params)
	if err != nil {
		if errors.Is(err, network.ErrRateLimited) {
			return 0, false, helpers.NewRateLimitError(symbol, err)
		}
		return 0, false, helpers.NewUpstreamError(symbol, err)
	}

	_, price, open, err := s.parseChart(symbol, body)
	if err != nil {
		return 0, false, err
	}
	return price, open, nil
}

// -----------------------------------------------------------------------------

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				RegularMarketTime    int64   `json:"regularMarketTime"`
				CurrentTradingPeriod struct {
					Regular struct {
						Start int64 `json:"start"`
						End   int64 `json:"end"`
					} `json:"regular"`
				} `json:"currentTradingPeriod"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooSource) parseChart(symbol string, data []byte) ([]models.MBar, float64, bool, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, 0, false, helpers.NewUpstreamError(symbol, fmt.Errorf("json unmarshal failed: %w", err))
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, 0, false, helpers.NewSymbolNotFoundError(symbol)
		}
		return nil, 0, false, helpers.NewUpstreamError(symbol,
			fmt.Errorf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, 0, false, helpers.NewSymbolNotFoundError(symbol)
	}

	result := resp.Chart.Result[0]
	meta := result.Meta
	now := time.Now().Unix()
	marketOpen := now >= meta.CurrentTradingPeriod.Regular.Start && now < meta.CurrentTradingPeriod.Regular.End

	if len(result.Indicators.Quote) == 0 {
		return nil, meta.RegularMarketPrice, marketOpen, nil
	}
	quote := result.Indicators.Quote[0]

	if len(result.Timestamp) != len(quote.Close) ||
		len(result.Timestamp) != len(quote.Open) ||
		len(result.Timestamp) != len(quote.High) ||
		len(result.Timestamp) != len(quote.Low) ||
		len(result.Timestamp) != len(quote.Volume) {
		return nil, 0, false, helpers.NewUpstreamError(symbol, fmt.Errorf("data alignment error"))
	}

	bars := make([]models.MBar, 0, len(result.Timestamp))
	for i := range result.Timestamp {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		if *quote.Close[i] <= 0 || *quote.Volume[i] < 0 {
			s.Logger.Debug("%s: skipping invalid point close=%f volume=%f", symbol, *quote.Close[i], *quote.Volume[i])
			continue
		}
		bars = append(bars, models.MBar{
			Timestamp: result.Timestamp[i],
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    *quote.Volume[i],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })

	s.Logger.Debug("%s: fetched %d valid bars", symbol, len(bars))
	return bars, meta.RegularMarketPrice, marketOpen, nil
}
