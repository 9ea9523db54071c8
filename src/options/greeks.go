package options

import (
	"math"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Black-Scholes Greeks. Closed-form, no dividend yield. Conventions: theta
// is per calendar day, vega and rho per 1% move in vol / rates.
// -----------------------------------------------------------------------------

// DefaultRiskFreeRate is used when no rate feed is wired.
const DefaultRiskFreeRate = 0.05

// -----------------------------------------------------------------------------

// ComputeGreeks evaluates delta/gamma/theta/vega/rho for one contract.
// Expired or degenerate inputs return all-zero Greeks.
func ComputeGreeks(spot, strike float64, dte int, rate, iv float64, isCall bool) models.MGreeks {
	if dte <= 0 || spot <= 0 || strike <= 0 || iv <= 0 {
		return models.MGreeks{}
	}

	t := float64(dte) / 365.0
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (rate+iv*iv/2.0)*t) / (iv * sqrtT)
	d2 := d1 - iv*sqrtT

	discount := math.Exp(-rate * t)
	pdfD1 := normPDF(d1)

	g := models.MGreeks{
		Gamma: pdfD1 / (spot * iv * sqrtT),
		Vega:  spot * pdfD1 * sqrtT / 100.0,
	}

	if isCall {
		g.Delta = normCDF(d1)
		g.Theta = (-spot*pdfD1*iv/(2.0*sqrtT) - rate*strike*discount*normCDF(d2)) / 365.0
		g.Rho = strike * t * discount * normCDF(d2) / 100.0
	} else {
		g.Delta = normCDF(d1) - 1.0
		g.Theta = (-spot*pdfD1*iv/(2.0*sqrtT) + rate*strike*discount*normCDF(-d2)) / 365.0
		g.Rho = -strike * t * discount * normCDF(-d2) / 100.0
	}
	return g
}

// -----------------------------------------------------------------------------

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2.0) / math.Sqrt(2.0*math.Pi)
}
