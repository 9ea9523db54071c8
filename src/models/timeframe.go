package models

// MTimeframeSpec is one immutable entry of the timeframe registry.
// All windows and offsets are in minutes.
type MTimeframeSpec struct {
	ID               string  `json:"id"`    // e.g. "5m", "4h", "2D", "1M"
	Label            string  `json:"label"` // display label
	Minutes          float64 `json:"minutes"`
	PostCloseMinutes float64 `json:"post_close_minutes"` // observation window after a close
	PreCloseStart    float64 `json:"pre_close_start"`    // anticipatory window opens this many minutes before close (0 = none)
	PreCloseEnd      float64 `json:"pre_close_end"`      // anticipatory window ends this many minutes before close
	DecompStart      float64 `json:"decomp_start"`       // decompression window opens this many minutes before close
}

// HasPreClose reports whether the spec defines an anticipatory window.
func (s MTimeframeSpec) HasPreClose() bool {
	return s.PreCloseStart > 0
}
