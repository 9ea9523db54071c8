package models

// MTimeframeLearning aggregates decompression outcomes for one timeframe
// over a symbol's backtested history.
type MTimeframeLearning struct {
	TimeframeID string  `json:"timeframe_id"`
	Events      int     `json:"events"`
	UpCount     int     `json:"up_count"`
	DownCount   int     `json:"down_count"`
	UpRate      float64 `json:"up_rate"` // 0..1
	AvgMovePct  float64 `json:"avg_move_pct"`
	BounceRate  float64 `json:"bounce_rate"` // price respected the mid-level
	BreakRate   float64 `json:"break_rate"`  // price traded through it
}

// MStackStats buckets outcomes by simultaneous-timeframe stack size.
// Buckets run 5..9 where 9 means ">= 9".
type MStackStats struct {
	StackSize    int     `json:"stack_size"`
	Events       int     `json:"events"`
	UpCount      int     `json:"up_count"`
	UpRate       float64 `json:"up_rate"`
	AvgMovePct8  float64 `json:"avg_move_pct_8"` // 8 bars ahead
	StdMovePct8  float64 `json:"std_move_pct_8"` // dispersion of the 8-bar move
	AvgMovePct24 float64 `json:"avg_move_pct_24"` // 24 bars ahead
}

// MOutcomeSplit is a simple directional outcome tally.
type MOutcomeSplit struct {
	Events     int     `json:"events"`
	UpCount    int     `json:"up_count"`
	UpRate     float64 `json:"up_rate"`
	AvgMovePct float64 `json:"avg_move_pct"`
}

// MSymbolLearning is the per-symbol learned profile. It persists across
// requests in process memory and is rebuilt whenever a fresh history scan
// runs. Neutral is set when history was too thin to learn from.
type MSymbolLearning struct {
	Symbol         string                         `json:"symbol"`
	TotalEvents    int                            `json:"total_events"`
	BarsAnalyzed   int                            `json:"bars_analyzed"`
	Neutral        bool                           `json:"neutral"`
	PerTimeframe   map[string]*MTimeframeLearning `json:"per_timeframe"`
	PerStack       map[int]*MStackStats           `json:"per_stack"`
	HotZone        MOutcomeSplit                  `json:"hot_zone"`
	WithCluster    MOutcomeSplit                  `json:"with_cluster"`
	WithoutCluster MOutcomeSplit                  `json:"without_cluster"`
	BuiltAt        int64                          `json:"built_at"`
}

// MTradeOutcome is one resolved trade reported back through the API.
type MTradeOutcome struct {
	Win               bool    `json:"win"`
	MovePct           float64 `json:"move_pct"`
	TimeToMoveMinutes float64 `json:"time_to_move_minutes"`
}

// MOutcomeStats is the contract of the optional external outcome store.
type MOutcomeStats struct {
	Symbol               string  `json:"symbol"`
	Trades               int     `json:"trades"`
	WinRate              float64 `json:"win_rate"` // 0..100
	AvgMovePercent       float64 `json:"avg_move_percent"`
	AvgTimeToMoveMinutes float64 `json:"avg_time_to_move_minutes"`
}

// MConfluenceEvent is one recorded historical confluence occurrence,
// persisted by the storage layer for offline inspection.
type MConfluenceEvent struct {
	Symbol       string  `json:"symbol"`
	Timestamp    int64   `json:"timestamp"`
	StackSize    int     `json:"stack_size"`
	HotZone      bool    `json:"hot_zone"`
	ClusterCount int     `json:"cluster_count"`
	Price        float64 `json:"price"`
	MovePct8     float64 `json:"move_pct_8"`
	MovePct24    float64 `json:"move_pct_24"`
}
