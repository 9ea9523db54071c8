package learning

import (
	"math"

	"confluence-engine/src/analysis"
	"confluence-engine/src/analysis/core"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
	"confluence-engine/src/timeframe"
)

// -----------------------------------------------------------------------------
// Historical backtester: walks a symbol's full history, re-detects past
// confluence events and aggregates their outcomes into the per-symbol
// learning profile. Historical close timing uses fixed-width bucket math;
// reconstructing years of exchange-calendar state buys nothing at this
// granularity.
// -----------------------------------------------------------------------------

const (
	// MinHistoryBars is the floor below which a symbol gets the neutral
	// default profile instead of a learned one.
	MinHistoryBars = 200

	lookAheadShort = 8
	lookAheadLong  = 24
	atrPeriod      = 14
)

type Backtester struct {
	ClusterWindowMinutes float64
	StepBars             int
	Logger               *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBacktester(clusterWindow float64, stepBars int, log *logger.Logger) *Backtester {
	if clusterWindow <= 0 {
		clusterWindow = 5
	}
	if stepBars <= 0 {
		stepBars = 12
	}
	return &Backtester{ClusterWindowMinutes: clusterWindow, StepBars: stepBars, Logger: log}
}

// -----------------------------------------------------------------------------

// Build runs the full-history scan. bars is the base-interval series; it
// is resampled to every registry timeframe wider than the base. Returns
// the aggregated profile plus the raw recorded events for persistence.
func (bt *Backtester) Build(symbol string, bars []models.MBar, baseMinutes float64, builtAt int64) (*models.MSymbolLearning, []models.MConfluenceEvent) {
	if len(bars) < MinHistoryBars {
		if bt.Logger != nil {
			bt.Logger.Info("%s: only %d bars of history, returning neutral profile", symbol, len(bars))
		}
		return NeutralProfile(symbol, len(bars), builtAt), nil
	}

	specs := usableSpecs(baseMinutes)
	resampled := make(map[string][]models.MBar, len(specs))
	cursors := make(map[string]int, len(specs))
	for _, spec := range specs {
		resampled[spec.ID] = analysis.Resample(bars, spec.Minutes)
		cursors[spec.ID] = 0
	}

	atrs := rollingATR(bars, atrPeriod)

	profile := newEmptyProfile(symbol, len(bars), builtAt)
	events := make([]models.MConfluenceEvent, 0, 64)
	stackMoves := make(map[int][]float64)

	start := atrPeriod * 2
	for t := start; t+lookAheadLong < len(bars); t += bt.StepBars {
		ts := bars[t].Timestamp
		price := bars[t].Close
		if price <= 0 {
			continue
		}

		// Advance per-timeframe cursors to the last resampled bar at or
		// before this step.
		for id, series := range resampled {
			i := cursors[id]
			for i+1 < len(series) && series[i+1].Timestamp <= ts {
				i++
			}
			cursors[id] = i
		}

		snap := bt.snapshotAt(ts, price, specs, resampled, cursors, atrs[t])
		if snap.stack < 5 && !snap.hotZone && snap.midClusters < 2 {
			continue
		}

		move8 := core.ChangePercent(bars[t+lookAheadShort].Close, price)
		move24 := core.ChangePercent(bars[t+lookAheadLong].Close, price)

		events = append(events, models.MConfluenceEvent{
			Symbol:       symbol,
			Timestamp:    ts,
			StackSize:    snap.stack,
			HotZone:      snap.hotZone,
			ClusterCount: snap.midClusters,
			Price:        price,
			MovePct8:     move8,
			MovePct24:    move24,
		})

		bt.accumulate(profile, snap, bars, t, price, move8, move24, stackMoves)
	}

	for bucket, moves := range stackMoves {
		if st := profile.PerStack[bucket]; st != nil {
			st.AvgMovePct8, st.StdMovePct8 = core.CalculateMeanStd(moves)
		}
	}

	finalizeProfile(profile)
	if bt.Logger != nil {
		bt.Logger.Info("%s: learned from %d confluence events over %d bars", symbol, profile.TotalEvents, len(bars))
	}
	return profile, events
}

// -----------------------------------------------------------------------------

// stepSnapshot is the confluence state recomputed at one historical step.
type stepSnapshot struct {
	stack        int
	hotZone      bool
	midClusters  int
	decompByTF   map[string]decompState
	hasMainGroup bool
}

type decompState struct {
	mid       float64
	towardMid int // +1 price below mid, -1 above, 0 at it
}

// -----------------------------------------------------------------------------

// snapshotAt recomputes stack size, hot-zone membership and mid-level
// clustering at a single historical instant.
func (bt *Backtester) snapshotAt(ts int64, price float64, specs []models.MTimeframeSpec, resampled map[string][]models.MBar, cursors map[string]int, atr float64) stepSnapshot {
	snap := stepSnapshot{decompByTF: make(map[string]decompState)}

	closeOffsets := make([]float64, 0, len(specs))
	mids := make([]float64, 0, len(specs))

	for _, spec := range specs {
		widthSec := int64(spec.Minutes * 60)
		if widthSec <= 0 {
			continue
		}
		sinceClose := float64(ts%widthSec) / 60.0
		toClose := spec.Minutes - sinceClose

		inDecomp := spec.DecompStart > 0 && toClose > 0 && toClose <= spec.DecompStart
		inPostClose := sinceClose <= spec.PostCloseMinutes
		inPreClose := spec.HasPreClose() && toClose <= spec.PreCloseStart && toClose >= spec.PreCloseEnd

		if inDecomp || inPostClose || inPreClose {
			snap.stack++
		}
		if toClose <= bt.ClusterWindowMinutes*2 {
			closeOffsets = append(closeOffsets, toClose)
		}

		series := resampled[spec.ID]
		i := cursors[spec.ID]
		if i < 1 || len(series) < 2 {
			continue
		}
		mid := series[i-1].Mid()
		mids = append(mids, mid)

		if inDecomp {
			state := decompState{mid: mid}
			switch {
			case mid > price:
				state.towardMid = 1
			case mid < price:
				state.towardMid = -1
			}
			snap.decompByTF[spec.ID] = state
		}
	}

	// Hot zone: three or more closes landing within the cluster window.
	snap.hotZone = maxWithinWindow(closeOffsets, bt.ClusterWindowMinutes) >= 3

	// Mid-level clustering: pairs of levels within one ATR of each other.
	if atr > 0 {
		for i := 0; i < len(mids); i++ {
			for j := i + 1; j < len(mids); j++ {
				if math.Abs(mids[i]-mids[j]) <= atr {
					snap.midClusters++
				}
			}
		}
	}

	return snap
}

// -----------------------------------------------------------------------------

// accumulate folds one event into the running profile tallies. Stack-bucket
// 8-bar magnitudes are collected as samples so mean and dispersion come out
// of one pass at the end.
func (bt *Backtester) accumulate(profile *models.MSymbolLearning, snap stepSnapshot, bars []models.MBar, t int, price, move8, move24 float64, stackMoves map[int][]float64) {
	profile.TotalEvents++
	up := move8 > 0

	// Per-timeframe decompression outcomes, with mid-level bounce/break.
	p8 := bars[t+lookAheadShort].Close
	for id, state := range snap.decompByTF {
		tf := profile.PerTimeframe[id]
		if tf == nil {
			tf = &models.MTimeframeLearning{TimeframeID: id}
			profile.PerTimeframe[id] = tf
		}
		tf.Events++
		if up {
			tf.UpCount++
		} else {
			tf.DownCount++
		}
		tf.AvgMovePct += math.Abs(move8)

		// Break: price traded through the mid-level within the short
		// horizon. Bounce: it stayed on its side.
		beforeSide := sideOf(price, state.mid)
		afterSide := sideOf(p8, state.mid)
		if beforeSide != 0 && afterSide != 0 && beforeSide != afterSide {
			tf.BreakRate++
		} else {
			tf.BounceRate++
		}
	}

	// Stack-size buckets 5..9, 9 meaning ">= 9".
	if snap.stack >= 5 {
		bucket := snap.stack
		if bucket > 9 {
			bucket = 9
		}
		st := profile.PerStack[bucket]
		if st == nil {
			st = &models.MStackStats{StackSize: bucket}
			profile.PerStack[bucket] = st
		}
		st.Events++
		if up {
			st.UpCount++
		}
		st.AvgMovePct24 += math.Abs(move24)
		stackMoves[bucket] = append(stackMoves[bucket], math.Abs(move8))
	}

	if snap.hotZone {
		profile.HotZone.Events++
		if up {
			profile.HotZone.UpCount++
		}
		profile.HotZone.AvgMovePct += math.Abs(move8)
	}

	if snap.midClusters >= 2 {
		profile.WithCluster.Events++
		if up {
			profile.WithCluster.UpCount++
		}
		profile.WithCluster.AvgMovePct += math.Abs(move8)
	} else {
		profile.WithoutCluster.Events++
		if up {
			profile.WithoutCluster.UpCount++
		}
		profile.WithoutCluster.AvgMovePct += math.Abs(move8)
	}
}

// -----------------------------------------------------------------------------

func sideOf(price, level float64) int {
	switch {
	case price > level:
		return 1
	case price < level:
		return -1
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------

// maxWithinWindow returns the largest count of values that fall inside one
// shared window of the given width.
func maxWithinWindow(values []float64, window float64) int {
	best := 0
	for i := range values {
		count := 0
		for j := range values {
			if math.Abs(values[j]-values[i]) <= window {
				count++
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// usableSpecs keeps the timeframes at least as wide as the base interval.
func usableSpecs(baseMinutes float64) []models.MTimeframeSpec {
	specs := make([]models.MTimeframeSpec, 0, 24)
	for _, spec := range timeframe.All() {
		if spec.Minutes >= baseMinutes {
			specs = append(specs, spec)
		}
	}
	return specs
}

// -----------------------------------------------------------------------------

// rollingATR precomputes the Wilder ATR ending at every bar index.
func rollingATR(bars []models.MBar, period int) []float64 {
	out := make([]float64, len(bars))
	if len(bars) < 2 {
		return out
	}

	atr := 0.0
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr := math.Max(hl, math.Max(hc, lc))

		if i <= period {
			atr += tr
			out[i] = atr / float64(i)
			continue
		}
		if i == period+1 {
			atr /= float64(period)
		}
		atr = (atr*float64(period-1) + tr) / float64(period)
		out[i] = atr
	}
	return out
}

// -----------------------------------------------------------------------------

// newEmptyProfile allocates a profile ready for accumulation.
func newEmptyProfile(symbol string, barCount int, builtAt int64) *models.MSymbolLearning {
	return &models.MSymbolLearning{
		Symbol:       symbol,
		BarsAnalyzed: barCount,
		PerTimeframe: make(map[string]*models.MTimeframeLearning),
		PerStack:     make(map[int]*models.MStackStats),
		BuiltAt:      builtAt,
	}
}

// -----------------------------------------------------------------------------

// NeutralProfile is the 50/50 default for symbols with too little history.
func NeutralProfile(symbol string, barCount int, builtAt int64) *models.MSymbolLearning {
	p := newEmptyProfile(symbol, barCount, builtAt)
	p.Neutral = true
	p.HotZone.UpRate = 0.5
	p.WithCluster.UpRate = 0.5
	p.WithoutCluster.UpRate = 0.5
	return p
}

// -----------------------------------------------------------------------------

// finalizeProfile converts tallies into rates and averages.
func finalizeProfile(p *models.MSymbolLearning) {
	for _, tf := range p.PerTimeframe {
		if tf.Events == 0 {
			continue
		}
		n := float64(tf.Events)
		tf.UpRate = float64(tf.UpCount) / n
		tf.AvgMovePct /= n
		tf.BounceRate /= n
		tf.BreakRate /= n
	}
	for _, st := range p.PerStack {
		if st.Events == 0 {
			continue
		}
		n := float64(st.Events)
		st.UpRate = float64(st.UpCount) / n
		st.AvgMovePct24 /= n
	}
	finalizeSplit(&p.HotZone)
	finalizeSplit(&p.WithCluster)
	finalizeSplit(&p.WithoutCluster)
}

func finalizeSplit(s *models.MOutcomeSplit) {
	if s.Events == 0 {
		s.UpRate = 0.5
		return
	}
	n := float64(s.Events)
	s.UpRate = float64(s.UpCount) / n
	s.AvgMovePct /= n
}
