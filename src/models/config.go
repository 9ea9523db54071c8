package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Exchange   MExchangeConfig   `yaml:"exchange"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Engine     MEngineConfig     `yaml:"engine"`
}

type MExchangeConfig struct {
	MIC         string `yaml:"mic"`          // ISO 10383 market identifier, e.g. "xnys"
	CloseHour   int    `yaml:"close_hour"`   // exchange-local close hour (16 for NYSE)
	CloseMinute int    `yaml:"close_minute"` // exchange-local close minute
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	AlphaVantageKey string   `yaml:"alpha_vantage_key"`
	HistoryYears    int      `yaml:"history_years"`
	CryptoSymbols   []string `yaml:"crypto_symbols"` // symbols treated as 24/7 markets
}

// MEngineConfig carries the scoring constants of the confluence engine.
// The blend weights are stated constants with no documented calibration
// source, so they are configurable rather than hard-coded.
type MEngineConfig struct {
	BaseIntervalMinutes     float64         `yaml:"base_interval_minutes"`
	ClusterWindowMinutes    float64         `yaml:"cluster_window_minutes"`
	ClusterConfidenceWeight float64         `yaml:"cluster_confidence_weight"` // default 0.55
	DecompConfidenceWeight  float64         `yaml:"decomp_confidence_weight"`  // default 0.45
	ProximityThresholdPct   float64         `yaml:"proximity_threshold_pct"`   // default 1.5
	LearningMaxAgeMinutes   int             `yaml:"learning_max_age_minutes"`
	LearningStepBars        int             `yaml:"learning_step_bars"`
	ScanHistorySize         int             `yaml:"scan_history_size"`
	Options                 MOptionsWeights `yaml:"options_weights"`
}

// MOptionsWeights are the fixed cross-signal weights of the options
// composite scorer (defaults 0.25/0.20/0.20/0.15/0.10/0.10).
type MOptionsWeights struct {
	UnusualActivity float64 `yaml:"unusual_activity"`
	OpenInterest    float64 `yaml:"open_interest"`
	TimeConfluence  float64 `yaml:"time_confluence"`
	IVEnvironment   float64 `yaml:"iv_environment"`
	MaxPain         float64 `yaml:"max_pain"`
	RiskReward      float64 `yaml:"risk_reward"`
}
