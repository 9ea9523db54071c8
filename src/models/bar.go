package models

// MBar represents one aggregated OHLCV candle. Timestamp is the bucket
// start in unix seconds. Bars are immutable once emitted by the resampler.
type MBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Mid returns the 50% level of the bar.
func (b MBar) Mid() float64 {
	return (b.High + b.Low) / 2.0
}
