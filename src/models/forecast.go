package models

// MForecast is the directional prediction emitted by the forecast builder.
type MForecast struct {
	Symbol          string   `json:"symbol"`
	Direction       string   `json:"direction"`  // bullish, bearish, neutral
	Confidence      float64  `json:"confidence"` // 0..100
	ExpectedMovePct float64  `json:"expected_move_pct"`
	TargetPrice     float64  `json:"target_price"`
	StopPrice       float64  `json:"stop_price"`
	TimeHorizon     string   `json:"time_horizon"` // "1h", "2h", "4h", "8h"
	BasisEvents     int      `json:"basis_events"` // historical events backing the bias
	Notes           []string `json:"notes,omitempty"`
}
