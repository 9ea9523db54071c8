package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"confluence-engine/src/analysis"
	"confluence-engine/src/analysis/core"
	"confluence-engine/src/config"
	"confluence-engine/src/data_source"
	"confluence-engine/src/forecast"
	"confluence-engine/src/helpers"
	"confluence-engine/src/interfaces"
	"confluence-engine/src/learning"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
	"confluence-engine/src/options"
	"confluence-engine/src/timeframe"
	"confluence-engine/src/utils"
)

// -----------------------------------------------------------------------------
// Engine is the facade over the whole pipeline. One HierarchicalScan is
// sequential: history, quote, resample, pulls, clusters, candle-close
// confluence, composite, learning, forecast. An OptionsScan runs the same
// pipeline and layers the options analysis on top via the confluence
// snapshot boundary.
// -----------------------------------------------------------------------------

const atrPeriod = 14

// ErrNoOutcomeStore is returned when outcome recording is requested but no
// store was configured.
var ErrNoOutcomeStore = errors.New("no outcome store configured")

type Engine struct {
	Config     *config.Config
	Sources    *data_source.SourceManager
	Learning   *learning.Store
	Forecaster *forecast.Builder
	Options    *options.SetupBuilder
	Outcomes   interfaces.IOutcomeStore
	BarCache   *utils.MemoryManager
	Errors     *helpers.ErrorHandler
	Logger     *logger.Logger

	scansCompleted atomic.Int64
	lastScanMs     atomic.Int64
}

// -----------------------------------------------------------------------------

func NewEngine(cfg *config.Config, sources *data_source.SourceManager, store *learning.Store, outcomes interfaces.IOutcomeStore) *Engine {
	return &Engine{
		Config:     cfg,
		Sources:    sources,
		Learning:   store,
		Forecaster: forecast.NewBuilder(logger.NewLogger(cfg.LogLevel, "ForecastBuilder")),
		Options:    options.NewSetupBuilder(cfg.Engine.Options, logger.NewLogger(cfg.LogLevel, "OptionsSetup")),
		Outcomes:   outcomes,
		BarCache:   utils.NewMemoryManager(helpers.GetRecommendedMemoryLimit(), 40000, cfg.LogLevel),
		Errors:     helpers.NewErrorHandler(cfg.LogLevel),
		Logger:     logger.NewLogger(cfg.LogLevel, "Engine"),
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) isCrypto(symbol string) bool {
	for _, s := range e.Config.DataSource.CryptoSymbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

func (e *Engine) baseInterval() (string, float64) {
	minutes := e.Config.Engine.BaseIntervalMinutes
	switch minutes {
	case 1:
		return "1m", 1
	case 15:
		return "15m", 15
	case 30:
		return "30m", 30
	case 60:
		return "1h", 60
	default:
		return "5m", 5
	}
}

// -----------------------------------------------------------------------------

// HierarchicalScan runs the full confluence pipeline for one symbol.
func (e *Engine) HierarchicalScan(ctx context.Context, symbol string) (*models.MScanResult, error) {
	started := time.Now()
	now := started.UTC()
	isCrypto := e.isCrypto(symbol)
	interval, baseMinutes := e.baseInterval()

	// 1. History. A live fetch refreshes the cache; an outage falls back
	// to the last cached series instead of failing the scan.
	bars, err := e.Sources.FetchBars(symbol, interval, isCrypto)
	if err != nil {
		if cached := e.BarCache.GetBars(symbol); len(cached) > 0 && !helpers.IsSymbolNotFound(err) {
			e.Logger.Warning("%s: history fetch failed, using %d cached bars: %v", symbol, len(cached), err)
			bars = cached
		} else {
			e.Errors.Handle(err, "history fetch "+symbol)
			return nil, err
		}
	} else {
		e.BarCache.StoreBars(symbol, bars)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Live quote, falling back to the last close.
	price, quoteOpen, err := e.Sources.FetchQuote(symbol, isCrypto)
	if err != nil || price <= 0 {
		price = bars[len(bars)-1].Close
		e.Logger.Debug("%s: quote unavailable, using last close %.2f", symbol, price)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Session state and close calculator.
	cal := timeframe.GetCalendar(symbol, e.Logger)
	closes := timeframe.NewCloseCalculator(cal, e.Config.Exchange.CloseHour, e.Config.Exchange.CloseMinute, e.Logger)
	marketOpen := isCrypto || quoteOpen || cal.IsOpenOnMinute(now)

	// 4. Resample the base series to every registry timeframe.
	barsByTF := make(map[string][]models.MBar)
	for _, spec := range timeframe.All() {
		if spec.Minutes < baseMinutes {
			continue
		}
		barsByTF[spec.ID] = analysis.Resample(bars, spec.Minutes)
	}

	// 5..7. Pulls, clusters, candle-close confluence.
	pullAnalyzer := analysis.NewPullAnalyzer(closes, e.Config.Engine.ProximityThresholdPct)
	pulls := pullAnalyzer.AnalyzeAll(now, barsByTF, price, marketOpen)
	clusters := analysis.BuildClusters(pulls, e.Config.Engine.ClusterWindowMinutes)
	candleClose := analysis.NewCandleCloseCalculator(closes, e.Config.Engine.ClusterWindowMinutes).Compute(now)

	// 8. Composite.
	composite := analysis.ComputeComposite(pulls, clusters, candleClose, price, analysis.CompositeConfig{
		ClusterWeight: e.Config.Engine.ClusterConfidenceWeight,
		DecompWeight:  e.Config.Engine.DecompConfidenceWeight,
	})

	// 9..10. Learning profile and forecast.
	profile := e.Learning.Profile(symbol, bars, baseMinutes, now)
	atr := core.ATR(bars, atrPeriod)

	var outcomeStats *models.MOutcomeStats
	if e.Outcomes != nil {
		if stats, err := e.Outcomes.OutcomeStats(symbol); err == nil {
			outcomeStats = stats
		}
	}
	fcast := e.Forecaster.Build(symbol, profile, composite, analysis.ActivePulls(pulls), price, atr, outcomeStats)

	result := &models.MScanResult{
		Symbol:       symbol,
		IsCrypto:     isCrypto,
		CurrentPrice: price,
		MarketOpen:   marketOpen,
		Timeframes:   timeframe.IDs(),
		Pulls:        pulls,
		MidLevels:    analysis.MidLevels(pulls),
		Clusters:     clusters,
		CandleClose:  candleClose,
		Composite:    composite,
		Forecast:     fcast,
		GeneratedAt:  now.Unix(),
		ElapsedMs:    time.Since(started).Milliseconds(),
	}

	e.scansCompleted.Add(1)
	e.lastScanMs.Store(result.ElapsedMs)
	e.Logger.Info("%s: scan complete in %dms (%s, confidence %.1f, %d active)",
		symbol, result.ElapsedMs, composite.DirectionLabel, composite.Confidence, composite.ActiveCount)
	return result, nil
}

// -----------------------------------------------------------------------------

// Snapshot derives the stable boundary value handed to the options layer.
func (e *Engine) Snapshot(scan *models.MScanResult) *models.MConfluenceSnapshot {
	snap := &models.MConfluenceSnapshot{
		Symbol:            scan.Symbol,
		Price:             scan.CurrentPrice,
		Direction:         scan.Composite.DirectionLabel,
		DirectionScore:    scan.Composite.DirectionScore,
		Confidence:        scan.Composite.Confidence,
		SignalStrength:    scan.Composite.SignalStrength,
		ActiveCount:       scan.Composite.ActiveCount,
		ClusterCount:      len(scan.Clusters),
		DominantRatio:     scan.Composite.DominantRatio,
		DecompressingMids: []models.MMidLevel{},
		ClusterLevels:     []float64{},
	}

	for _, p := range scan.Pulls {
		if p.Active && p.MidLevel > 0 {
			snap.DecompressingMids = append(snap.DecompressingMids, models.MMidLevel{
				TimeframeID: p.TimeframeID,
				Level:       p.MidLevel,
				DistancePct: p.DistancePct,
			})
		}
	}

	if main := analysis.MainCluster(scan.Clusters); main != nil {
		snap.MainClusterSize = main.MemberCount
		for _, id := range main.TimeframeIDs {
			for _, p := range scan.Pulls {
				if p.TimeframeID == id && p.MidLevel > 0 {
					snap.ClusterLevels = append(snap.ClusterLevels, p.MidLevel)
				}
			}
		}
	}

	snap.ATR = core.ATR(e.BarCache.GetLatestBars(scan.Symbol, atrPeriod*8), atrPeriod)
	if scan.Forecast != nil {
		snap.ForecastDirection = scan.Forecast.Direction
		snap.ForecastConf = scan.Forecast.Confidence
		snap.TargetPrice = scan.Forecast.TargetPrice
		snap.StopPrice = scan.Forecast.StopPrice
	}
	return snap
}

// -----------------------------------------------------------------------------

// OptionsScan runs the confluence pipeline and the options layer on top.
func (e *Engine) OptionsScan(ctx context.Context, symbol, scanMode string) (*models.MOptionsSetup, *models.MScanResult, error) {
	scan, err := e.HierarchicalScan(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	chain, err := e.Sources.FetchOptionsChain(symbol, "")
	if err != nil {
		e.Errors.Handle(err, "options chain "+symbol)
		return nil, scan, err
	}

	setup := e.Options.Build(e.Snapshot(scan), chain, scanMode, time.Now().UTC())
	return setup, scan, nil
}

// -----------------------------------------------------------------------------

// LearningProfile exposes the learning store for the API layer; rebuild
// forces a fresh backtest over newly fetched history.
func (e *Engine) LearningProfile(ctx context.Context, symbol string, rebuild bool) (*models.MSymbolLearning, error) {
	interval, baseMinutes := e.baseInterval()

	if !rebuild {
		if cached := e.Learning.Cached(symbol); cached != nil {
			return cached, nil
		}
	}

	bars, err := e.Sources.FetchBars(symbol, interval, e.isCrypto(symbol))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.BarCache.StoreBars(symbol, bars)

	if rebuild {
		return e.Learning.Rebuild(symbol, bars, baseMinutes, time.Now().UTC()), nil
	}
	return e.Learning.Profile(symbol, bars, baseMinutes, time.Now().UTC()), nil
}

// -----------------------------------------------------------------------------

// RecordOutcome stores one resolved trade and returns the updated
// aggregates for the symbol.
func (e *Engine) RecordOutcome(symbol string, win bool, movePct, timeToMoveMinutes float64) (*models.MOutcomeStats, error) {
	if e.Outcomes == nil {
		return nil, ErrNoOutcomeStore
	}
	if err := e.Outcomes.RecordTradeOutcome(symbol, win, movePct, timeToMoveMinutes); err != nil {
		e.Errors.Handle(err, "record outcome "+symbol)
		return nil, err
	}
	return e.Outcomes.OutcomeStats(symbol)
}

// -----------------------------------------------------------------------------

// Metrics reports per-process scan counters.
func (e *Engine) Metrics() models.MScanMetrics {
	return models.MScanMetrics{
		ScansCompleted:  e.scansCompleted.Load(),
		ScanErrors:      e.Errors.Count(),
		LastScanMs:      e.lastScanMs.Load(),
		LearningRebuild: e.Learning.RebuildCount(),
		CachedSymbols:   e.BarCache.SymbolCount(),
		MemoryMB:        e.BarCache.GetProcessMemoryMB(),
	}
}
