package models

// MOptionContract is one contract row of an options chain snapshot.
type MOptionContract struct {
	ContractID        string  `json:"contract_id"`
	Type              string  `json:"type"` // "call" or "put"
	Strike            float64 `json:"strike"`
	Expiration        string  `json:"expiration"` // YYYY-MM-DD
	DTE               int     `json:"dte"`
	Last              float64 `json:"last"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            float64 `json:"volume"`
	OpenInterest      float64 `json:"open_interest"`
	ImpliedVolatility float64 `json:"implied_volatility"` // decimal, 0.45 = 45%
	Delta             float64 `json:"delta"`
	Gamma             float64 `json:"gamma"`
	Theta             float64 `json:"theta"`
	Vega              float64 `json:"vega"`
}

// MOptionsChain is a chain snapshot for one symbol.
type MOptionsChain struct {
	Symbol             string            `json:"symbol"`
	Calls              []MOptionContract `json:"calls"`
	Puts               []MOptionContract `json:"puts"`
	SelectedExpiration string            `json:"selected_expiration"`
}

// MGreeks holds Black-Scholes sensitivities for one contract.
type MGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// MOpenInterestAnalysis summarizes chain positioning near spot.
type MOpenInterestAnalysis struct {
	TotalCallOI    float64 `json:"total_call_oi"`
	TotalPutOI     float64 `json:"total_put_oi"`
	PutCallRatio   float64 `json:"put_call_ratio"`
	Sentiment      string  `json:"sentiment"` // bullish, bearish, neutral
	MaxPain        float64 `json:"max_pain"`
	MaxPainValid   bool    `json:"max_pain_valid"` // false when the search result was rejected as bad data
	MaxPainDistPct float64 `json:"max_pain_dist_pct"`
}

// MUnusualFlag marks a single strike with unusual volume.
type MUnusualFlag struct {
	ContractID    string  `json:"contract_id"`
	Type          string  `json:"type"`
	Strike        float64 `json:"strike"`
	Volume        float64 `json:"volume"`
	OpenInterest  float64 `json:"open_interest"`
	VolumeOIRatio float64 `json:"volume_oi_ratio"`
	Premium       float64 `json:"premium"`
}

// MUnusualActivity aggregates flagged strikes into a smart-money read.
type MUnusualActivity struct {
	Flags           []MUnusualFlag `json:"flags"`
	BullishPremium  float64        `json:"bullish_premium"`
	BearishPremium  float64        `json:"bearish_premium"`
	SmartMoney      string         `json:"smart_money"` // bullish, bearish, neutral
	AlertTier       string         `json:"alert_tier"`  // high, moderate, low, none
	MaxVolumeOIRate float64        `json:"max_volume_oi_ratio"`
}

// MIVRank approximates IV rank from absolute ATM IV bands, since no
// 52-week IV history is available from the chain snapshot alone.
type MIVRank struct {
	AvgATMIV   float64 `json:"avg_atm_iv"`
	Rank       float64 `json:"rank"` // 0..100
	Percentile float64 `json:"percentile"`
	Signal     string  `json:"signal"` // sell_premium, buy_premium, neutral
}

// MStrikeSelection lists the candidate strikes and why they were chosen.
type MStrikeSelection struct {
	ATMStrike    float64   `json:"atm_strike"`
	ClusterLevel float64   `json:"cluster_level"` // 0 when no cluster level nearby
	DecompLevel  float64   `json:"decomp_level"`  // 0 when nothing is decompressing
	Strikes      []float64 `json:"strikes"`
	Rationale    []string  `json:"rationale"`
}

// MExpirationSelection is the chosen expiration for the scan mode.
type MExpirationSelection struct {
	ScanMode   string  `json:"scan_mode"`
	TargetDTE  int     `json:"target_dte"`
	Expiration string  `json:"expiration"`
	DTE        int     `json:"dte"`
	Confidence float64 `json:"confidence"`
	Boosted    bool    `json:"boosted"` // decompression-count boost applied
}

// MTradeLevels are concrete entry/stop/target prices for the setup.
type MTradeLevels struct {
	Entry      float64 `json:"entry"`
	Stop       float64 `json:"stop"`
	Target     float64 `json:"target"`
	RiskReward float64 `json:"risk_reward"`
}

// MOptionsComposite is the fixed-weight cross-signal score.
type MOptionsComposite struct {
	Score      float64            `json:"score"` // normalized -100..100
	Direction  string             `json:"direction"`
	Confidence float64            `json:"confidence"`
	Components map[string]float64 `json:"components"`
	Conflicts  []string           `json:"conflicts"`
}

// MStrategyRecommendation is a defined-risk options structure suggestion.
type MStrategyRecommendation struct {
	Name        string   `json:"name"`
	Legs        []string `json:"legs"`
	Rationale   string   `json:"rationale"`
	DefinedRisk bool     `json:"defined_risk"`
}

// MOptionsSetup is the full per-request options trade recommendation.
// Built fresh per request, never cached.
type MOptionsSetup struct {
	Symbol      string                  `json:"symbol"`
	Direction   string                  `json:"direction"`
	Grade       string                  `json:"grade"` // A+ .. F
	GradeScore  float64                 `json:"grade_score"`
	Strikes     MStrikeSelection        `json:"strikes"`
	Expiration  MExpirationSelection    `json:"expiration"`
	OpenInt     MOpenInterestAnalysis   `json:"open_interest"`
	Unusual     MUnusualActivity        `json:"unusual_activity"`
	IVRank      MIVRank                 `json:"iv_rank"`
	Composite   MOptionsComposite       `json:"composite"`
	Strategy    MStrategyRecommendation `json:"strategy"`
	Levels      MTradeLevels            `json:"levels"`
	GeneratedAt int64                   `json:"generated_at"`
}
