package models

// MMidLevel is a timeframe's prior-bar midpoint, the magnetic "50% level".
type MMidLevel struct {
	TimeframeID string  `json:"timeframe_id"`
	Level       float64 `json:"level"`
	DistancePct float64 `json:"distance_pct"` // signed percent distance from current price to the level
}

// MDecompressionPull is the per-timeframe pull state for one evaluation.
// Ephemeral, recomputed per request.
type MDecompressionPull struct {
	TimeframeID    string  `json:"timeframe_id"`
	Label          string  `json:"label"`
	Active         bool    `json:"active"`
	ProximityMode  bool    `json:"proximity_mode"` // true when computed in market-closed mode
	MinutesToClose float64 `json:"minutes_to_close"`
	MidLevel       float64 `json:"mid_level"`
	DistancePct    float64 `json:"distance_pct"`
	Direction      string  `json:"direction"` // "up", "down", "none"
	Strength       float64 `json:"strength"`  // 0..10
}

// MTemporalCluster groups timeframes whose closes fall within the
// clustering window. Only the main cluster drives downstream weighting.
type MTemporalCluster struct {
	CenterMinutes float64  `json:"center_minutes"` // minutes until the cluster's earliest close
	TimeframeIDs  []string `json:"timeframe_ids"`
	MemberCount   int      `json:"member_count"`
	Intensity     string   `json:"intensity"` // low, moderate, strong, very_strong, explosive
	Score         float64  `json:"score"`     // 0..100
	IsMain        bool     `json:"is_main"`
}
