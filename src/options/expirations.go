package options

import (
	"sort"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Expiration selection: each scan mode targets a DTE, and the listed
// expiration closest to it wins. Heavy short-dated decompression boosts
// conviction in near expirations.
// -----------------------------------------------------------------------------

// scanModeDTE maps scan mode to the target days-to-expiration.
var scanModeDTE = map[string]int{
	"scalp":    1,
	"day":      3,
	"swing":    14,
	"position": 45,
	"leap":     180,
}

const (
	defaultScanMode    = "swing"
	decompBoostCount   = 3
	decompBoostMaxDTE  = 5
	decompBoostPoints  = 15.0
	baseExpConfidence  = 60.0
	maxClosenessPoints = 25.0
)

// -----------------------------------------------------------------------------

// SelectExpiration picks the chain expiration matching the scan mode.
// decompCount is the number of actively decompressing timeframes.
func SelectExpiration(chain *models.MOptionsChain, scanMode string, decompCount int) models.MExpirationSelection {
	target, ok := scanModeDTE[scanMode]
	if !ok {
		scanMode = defaultScanMode
		target = scanModeDTE[defaultScanMode]
	}
	out := models.MExpirationSelection{ScanMode: scanMode, TargetDTE: target}
	if chain == nil {
		return out
	}

	type exp struct {
		date string
		dte  int
	}
	seen := make(map[string]int)
	collect := func(contracts []models.MOptionContract) {
		for _, c := range contracts {
			if c.Expiration != "" && c.DTE >= 0 {
				seen[c.Expiration] = c.DTE
			}
		}
	}
	collect(chain.Calls)
	collect(chain.Puts)
	if len(seen) == 0 {
		return out
	}

	expirations := make([]exp, 0, len(seen))
	for date, dte := range seen {
		expirations = append(expirations, exp{date: date, dte: dte})
	}
	sort.Slice(expirations, func(i, j int) bool { return expirations[i].dte < expirations[j].dte })

	best := expirations[0]
	bestDist := absInt(best.dte - target)
	for _, e := range expirations[1:] {
		if d := absInt(e.dte - target); d < bestDist {
			best = e
			bestDist = d
		}
	}

	out.Expiration = best.date
	out.DTE = best.dte

	// Confidence degrades with distance from the target DTE.
	closeness := maxClosenessPoints
	if target > 0 {
		closeness = maxClosenessPoints * (1.0 - core.Clamp(float64(bestDist)/float64(target), 0, 1))
	}
	confidence := baseExpConfidence + closeness

	if decompCount >= decompBoostCount && out.DTE <= decompBoostMaxDTE {
		confidence += decompBoostPoints
		out.Boosted = true
	}
	out.Confidence = core.Round2(core.Clamp(confidence, 0, 100))
	return out
}

// -----------------------------------------------------------------------------

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
