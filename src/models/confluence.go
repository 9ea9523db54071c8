package models

// MUpcomingClose is one entry of the forward-looking close schedule.
type MUpcomingClose struct {
	TimeframeID    string  `json:"timeframe_id"`
	MinutesToClose float64 `json:"minutes_to_close"`
	Weight         float64 `json:"weight"`
}

// MCandleCloseConfluence scores how many and how significant upcoming
// timeframe closes coincide, independent of open decompression windows.
type MCandleCloseConfluence struct {
	UpcomingCloses []MUpcomingClose `json:"upcoming_closes"`
	ClusterCount   int              `json:"cluster_count"` // members of the densest upcoming window
	WindowMinutes  float64          `json:"window_minutes"`
	Score          float64          `json:"score"` // 0..100
	Tier           string           `json:"tier"`  // none, low, moderate, high, extreme
	Boost          float64          `json:"boost"` // confidence boost applied downstream (0..15)
}

// MCompositeScore is the blended directional result of one evaluation.
type MCompositeScore struct {
	DirectionScore     float64  `json:"direction_score"` // -100..100
	DirectionLabel     string   `json:"direction_label"` // bullish, bearish, neutral
	ClusterScore       float64  `json:"cluster_score"`   // 0..100
	DecompressionScore float64  `json:"decompression_score"`
	Confidence         float64  `json:"confidence"` // 10..95
	SignalStrength     string   `json:"signal_strength"`
	DominantRatio      float64  `json:"dominant_ratio"`
	ActiveCount        int      `json:"active_count"`
	Banners            []string `json:"banners"`
}

// MScanResult is the full hierarchical scan output for one symbol.
// Plain structured data with no behavior.
type MScanResult struct {
	Symbol       string                 `json:"symbol"`
	IsCrypto     bool                   `json:"is_crypto"`
	CurrentPrice float64                `json:"current_price"`
	MarketOpen   bool                   `json:"market_open"`
	Timeframes   []string               `json:"timeframes"`
	Pulls        []MDecompressionPull   `json:"pulls"`
	MidLevels    []MMidLevel            `json:"mid_levels"`
	Clusters     []MTemporalCluster     `json:"clusters"`
	CandleClose  MCandleCloseConfluence `json:"candle_close"`
	Composite    MCompositeScore        `json:"composite"`
	Forecast     *MForecast             `json:"forecast,omitempty"`
	GeneratedAt  int64                  `json:"generated_at"`
	ElapsedMs    int64                  `json:"elapsed_ms"`
}

// MConfluenceSnapshot is the stable boundary value handed from the
// confluence engine to the options layer. The options layer never reaches
// into confluence internals beyond this struct.
type MConfluenceSnapshot struct {
	Symbol            string      `json:"symbol"`
	Price             float64     `json:"price"`
	Direction         string      `json:"direction"`
	DirectionScore    float64     `json:"direction_score"`
	Confidence        float64     `json:"confidence"`
	SignalStrength    string      `json:"signal_strength"`
	ActiveCount       int         `json:"active_count"`
	ClusterCount      int         `json:"cluster_count"`
	MainClusterSize   int         `json:"main_cluster_size"`
	DominantRatio     float64     `json:"dominant_ratio"`
	DecompressingMids []MMidLevel `json:"decompressing_mids"`
	ClusterLevels     []float64   `json:"cluster_levels"` // mid-levels of clustered timeframes
	ATR               float64     `json:"atr"`
	ForecastDirection string      `json:"forecast_direction"`
	ForecastConf      float64     `json:"forecast_confidence"`
	TargetPrice       float64     `json:"target_price"`
	StopPrice         float64     `json:"stop_price"`
}
