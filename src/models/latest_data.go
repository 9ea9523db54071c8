package models

// MLatestData is the payload pushed to websocket subscribers after each
// completed scan.
type MLatestData struct {
	Type      string       `json:"type"` // "INITIAL" or "SCAN"
	Scan      *MScanResult `json:"scan,omitempty"`
	Timestamp int64        `json:"timestamp"`
	Metrics   MScanMetrics `json:"metrics"`
}

// MSubscribeCommand is the client -> server websocket control message.
type MSubscribeCommand struct {
	Command string   `json:"command"` // "subscribe"
	Symbols []string `json:"symbols"` // empty = all symbols
}

// MScanMetrics tracks per-process scan counters for the status endpoint.
type MScanMetrics struct {
	ScansCompleted  int64   `json:"scans_completed"`
	ScanErrors      int64   `json:"scan_errors"`
	LastScanMs      int64   `json:"last_scan_ms"`
	LearningRebuild int64   `json:"learning_rebuilds"`
	CachedSymbols   int     `json:"cached_symbols"`
	MemoryMB        float64 `json:"memory_mb"`
}
