package options

import (
	"time"

	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Setup builder: runs the whole options layer off the confluence snapshot
// and one chain fetch. Built fresh per request, never cached.
// -----------------------------------------------------------------------------

type SetupBuilder struct {
	Weights      models.MOptionsWeights
	RiskFreeRate float64
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSetupBuilder(weights models.MOptionsWeights, log *logger.Logger) *SetupBuilder {
	return &SetupBuilder{Weights: weights, RiskFreeRate: DefaultRiskFreeRate, Logger: log}
}

// -----------------------------------------------------------------------------

// Build assembles the full trade recommendation. The snapshot is the only
// view of the confluence engine this layer gets.
func (b *SetupBuilder) Build(snapshot *models.MConfluenceSnapshot, chain *models.MOptionsChain, scanMode string, now time.Time) *models.MOptionsSetup {
	if snapshot == nil || chain == nil {
		return nil
	}

	b.EnrichGreeks(chain, snapshot.Price)

	oi := AnalyzeOpenInterest(chain, snapshot.Price)
	unusual := DetectUnusual(chain, snapshot.Price)
	ivRank := ComputeIVRank(chain, snapshot.Price)
	strikes := SelectStrikes(chain, snapshot)
	expiration := SelectExpiration(chain, scanMode, snapshot.ActiveCount)
	levels := ComputeTradeLevels(snapshot)
	composite := ComputeComposite(snapshot, unusual, oi, ivRank, levels, b.Weights)

	direction := b.finalDirection(snapshot, composite)
	grade, gradeScore := ComputeGrade(snapshot, oi, direction)
	strategy := RecommendStrategy(direction, composite.Confidence, ivRank, strikes, expiration)

	if b.Logger != nil {
		b.Logger.Info("%s: options setup %s grade %s (score %.1f, %d conflicts)",
			snapshot.Symbol, direction, grade, gradeScore, len(composite.Conflicts))
	}

	return &models.MOptionsSetup{
		Symbol:      snapshot.Symbol,
		Direction:   direction,
		Grade:       grade,
		GradeScore:  gradeScore,
		Strikes:     strikes,
		Expiration:  expiration,
		OpenInt:     oi,
		Unusual:     unusual,
		IVRank:      ivRank,
		Composite:   composite,
		Strategy:    strategy,
		Levels:      levels,
		GeneratedAt: now.Unix(),
	}
}

// -----------------------------------------------------------------------------

// finalDirection: the composite wins when it is confident enough, two or
// more recorded conflicts force neutral, otherwise fall back to the raw
// confluence direction.
func (b *SetupBuilder) finalDirection(snapshot *models.MConfluenceSnapshot, composite models.MOptionsComposite) string {
	if len(composite.Conflicts) >= 2 {
		return "neutral"
	}
	if composite.Confidence >= 50 {
		return composite.Direction
	}
	return snapshot.Direction
}

// -----------------------------------------------------------------------------

// EnrichGreeks fills in Black-Scholes Greeks on contracts the provider
// returned without them.
func (b *SetupBuilder) EnrichGreeks(chain *models.MOptionsChain, spot float64) {
	rate := b.RiskFreeRate
	if rate <= 0 {
		rate = DefaultRiskFreeRate
	}
	fill := func(contracts []models.MOptionContract, isCall bool) {
		for i := range contracts {
			c := &contracts[i]
			if c.Delta != 0 || c.Gamma != 0 {
				continue
			}
			g := ComputeGreeks(spot, c.Strike, c.DTE, rate, c.ImpliedVolatility, isCall)
			c.Delta = g.Delta
			c.Gamma = g.Gamma
			c.Theta = g.Theta
			c.Vega = g.Vega
		}
	}
	fill(chain.Calls, true)
	fill(chain.Puts, false)
}
