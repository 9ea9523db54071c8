package options

import (
	"fmt"
	"math"
	"sort"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Strike selection: at-the-money, the nearest mid-level cluster and the
// nearest actively-decompressing mid-level, each snapped to a listed strike.
// -----------------------------------------------------------------------------

// SelectStrikes picks the candidate strikes for the setup.
func SelectStrikes(chain *models.MOptionsChain, snapshot *models.MConfluenceSnapshot) models.MStrikeSelection {
	out := models.MStrikeSelection{
		Strikes:   []float64{},
		Rationale: []string{},
	}
	if chain == nil || snapshot == nil || snapshot.Price <= 0 {
		return out
	}

	listed := listedStrikes(chain)
	if len(listed) == 0 {
		return out
	}

	add := func(strike float64, why string) {
		for _, s := range out.Strikes {
			if s == strike {
				return
			}
		}
		out.Strikes = append(out.Strikes, strike)
		out.Rationale = append(out.Rationale, why)
	}

	out.ATMStrike = nearestStrike(listed, snapshot.Price)
	add(out.ATMStrike, fmt.Sprintf("at-the-money vs spot %.2f", snapshot.Price))

	if level, ok := nearestLevel(snapshot.ClusterLevels, snapshot.Price); ok {
		out.ClusterLevel = level
		strike := nearestStrike(listed, level)
		add(strike, fmt.Sprintf("nearest mid-level cluster at %.2f", level))
	}

	if level, ok := nearestMid(snapshot.DecompressingMids, snapshot.Price); ok {
		out.DecompLevel = level
		strike := nearestStrike(listed, level)
		add(strike, fmt.Sprintf("decompressing mid-level at %.2f", level))
	}

	sort.Float64s(out.Strikes)
	return out
}

// -----------------------------------------------------------------------------

func listedStrikes(chain *models.MOptionsChain) []float64 {
	set := make(map[float64]struct{})
	for _, c := range chain.Calls {
		if c.Strike > 0 {
			set[c.Strike] = struct{}{}
		}
	}
	for _, p := range chain.Puts {
		if p.Strike > 0 {
			set[p.Strike] = struct{}{}
		}
	}
	out := make([]float64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}

// -----------------------------------------------------------------------------

func nearestStrike(strikes []float64, target float64) float64 {
	best := strikes[0]
	bestDist := math.Abs(strikes[0] - target)
	for _, s := range strikes[1:] {
		if d := math.Abs(s - target); d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best
}

// -----------------------------------------------------------------------------

func nearestLevel(levels []float64, price float64) (float64, bool) {
	best := 0.0
	bestDist := math.Inf(1)
	for _, l := range levels {
		if l <= 0 {
			continue
		}
		if d := math.Abs(l - price); d < bestDist {
			best = l
			bestDist = d
		}
	}
	return best, best > 0
}

// -----------------------------------------------------------------------------

func nearestMid(mids []models.MMidLevel, price float64) (float64, bool) {
	best := 0.0
	bestDist := math.Inf(1)
	for _, m := range mids {
		if m.Level <= 0 {
			continue
		}
		if d := math.Abs(m.Level - price); d < bestDist {
			best = m.Level
			bestDist = d
		}
	}
	return best, best > 0
}
