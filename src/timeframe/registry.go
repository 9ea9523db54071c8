package timeframe

import (
	"sort"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Registry: the static catalogue of timeframe definitions, 5 minutes to one
// year. All entries are immutable; windows and offsets are in minutes.
// PreCloseStart/PreCloseEnd bound the anticipatory window before a close;
// DecompStart is where the decompression window opens. It never exceeds
// PreCloseStart where both exist.
// -----------------------------------------------------------------------------

var registry = []models.MTimeframeSpec{
	// Intraday: fixed-width bucket closes.
	{ID: "5m", Label: "5 Min", Minutes: 5, PostCloseMinutes: 2, DecompStart: 2},
	{ID: "10m", Label: "10 Min", Minutes: 10, PostCloseMinutes: 3, DecompStart: 3},
	{ID: "15m", Label: "15 Min", Minutes: 15, PostCloseMinutes: 4, DecompStart: 4},
	{ID: "20m", Label: "20 Min", Minutes: 20, PostCloseMinutes: 5, DecompStart: 5},
	{ID: "30m", Label: "30 Min", Minutes: 30, PostCloseMinutes: 6, DecompStart: 8},
	{ID: "45m", Label: "45 Min", Minutes: 45, PostCloseMinutes: 8, DecompStart: 10},
	{ID: "1h", Label: "1 Hour", Minutes: 60, PostCloseMinutes: 10, PreCloseStart: 15, PreCloseEnd: 0, DecompStart: 12},
	{ID: "90m", Label: "90 Min", Minutes: 90, PostCloseMinutes: 12, PreCloseStart: 20, PreCloseEnd: 0, DecompStart: 15},
	{ID: "2h", Label: "2 Hour", Minutes: 120, PostCloseMinutes: 15, PreCloseStart: 25, PreCloseEnd: 0, DecompStart: 20},
	{ID: "3h", Label: "3 Hour", Minutes: 180, PostCloseMinutes: 15, PreCloseStart: 30, PreCloseEnd: 0, DecompStart: 25},
	{ID: "4h", Label: "4 Hour", Minutes: 240, PostCloseMinutes: 20, PreCloseStart: 35, PreCloseEnd: 0, DecompStart: 30},
	{ID: "6h", Label: "6 Hour", Minutes: 360, PostCloseMinutes: 20, PreCloseStart: 40, PreCloseEnd: 0, DecompStart: 35},
	{ID: "8h", Label: "8 Hour", Minutes: 480, PostCloseMinutes: 25, PreCloseStart: 45, PreCloseEnd: 0, DecompStart: 40},

	// Daily and above: closes anchor to the exchange close on the cycle's
	// last trading day.
	{ID: "1D", Label: "Daily", Minutes: 1440, PostCloseMinutes: 30, PreCloseStart: 60, PreCloseEnd: 0, DecompStart: 45},
	{ID: "2D", Label: "2 Day", Minutes: 2880, PostCloseMinutes: 30, PreCloseStart: 60, PreCloseEnd: 0, DecompStart: 50},
	{ID: "3D", Label: "3 Day", Minutes: 4320, PostCloseMinutes: 35, PreCloseStart: 70, PreCloseEnd: 0, DecompStart: 55},
	{ID: "4D", Label: "4 Day", Minutes: 5760, PostCloseMinutes: 35, PreCloseStart: 70, PreCloseEnd: 0, DecompStart: 60},
	{ID: "5D", Label: "5 Day", Minutes: 7200, PostCloseMinutes: 40, PreCloseStart: 75, PreCloseEnd: 0, DecompStart: 60},
	{ID: "6D", Label: "6 Day", Minutes: 8640, PostCloseMinutes: 40, PreCloseStart: 75, PreCloseEnd: 0, DecompStart: 60},
	{ID: "7D", Label: "7 Day", Minutes: 10080, PostCloseMinutes: 40, PreCloseStart: 80, PreCloseEnd: 0, DecompStart: 65},
	{ID: "1W", Label: "Weekly", Minutes: 10080, PostCloseMinutes: 45, PreCloseStart: 90, PreCloseEnd: 0, DecompStart: 70},
	{ID: "2W", Label: "2 Week", Minutes: 20160, PostCloseMinutes: 45, PreCloseStart: 90, PreCloseEnd: 0, DecompStart: 75},
	{ID: "3W", Label: "3 Week", Minutes: 30240, PostCloseMinutes: 50, PreCloseStart: 100, PreCloseEnd: 0, DecompStart: 80},
	{ID: "4W", Label: "4 Week", Minutes: 40320, PostCloseMinutes: 50, PreCloseStart: 100, PreCloseEnd: 0, DecompStart: 85},
	{ID: "1M", Label: "Monthly", Minutes: 43200, PostCloseMinutes: 60, PreCloseStart: 120, PreCloseEnd: 0, DecompStart: 90},
	{ID: "2M", Label: "2 Month", Minutes: 86400, PostCloseMinutes: 60, PreCloseStart: 120, PreCloseEnd: 0, DecompStart: 90},
	{ID: "3M", Label: "Quarterly", Minutes: 129600, PostCloseMinutes: 75, PreCloseStart: 150, PreCloseEnd: 0, DecompStart: 100},
	{ID: "4M", Label: "4 Month", Minutes: 172800, PostCloseMinutes: 75, PreCloseStart: 150, PreCloseEnd: 0, DecompStart: 100},
	{ID: "6M", Label: "6 Month", Minutes: 259200, PostCloseMinutes: 90, PreCloseStart: 180, PreCloseEnd: 0, DecompStart: 110},
	{ID: "9M", Label: "9 Month", Minutes: 388800, PostCloseMinutes: 90, PreCloseStart: 180, PreCloseEnd: 0, DecompStart: 110},
	{ID: "12M", Label: "Yearly", Minutes: 518400, PostCloseMinutes: 120, PreCloseStart: 240, PreCloseEnd: 0, DecompStart: 120},
}

var registryByID map[string]models.MTimeframeSpec

func init() {
	registryByID = make(map[string]models.MTimeframeSpec, len(registry))
	for _, spec := range registry {
		registryByID[spec.ID] = spec
	}
}

// -----------------------------------------------------------------------------

// All returns every timeframe spec ordered from shortest to longest.
func All() []models.MTimeframeSpec {
	out := make([]models.MTimeframeSpec, len(registry))
	copy(out, registry)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minutes < out[j].Minutes
	})
	return out
}

// -----------------------------------------------------------------------------

// Get looks up a spec by id.
func Get(id string) (models.MTimeframeSpec, bool) {
	spec, ok := registryByID[id]
	return spec, ok
}

// -----------------------------------------------------------------------------

// IDs returns all registry ids in catalogue order.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for _, spec := range registry {
		ids = append(ids, spec.ID)
	}
	return ids
}

// -----------------------------------------------------------------------------

// HierarchyWeight returns the directional-scoring weight of a timeframe.
// Larger timeframes dominate: 5m carries 1.0, monthly carries 5.0.
func HierarchyWeight(id string) float64 {
	if w, ok := hierarchyWeights[id]; ok {
		return w
	}
	// Unlisted ids sit between their neighbours; default to a mid weight.
	return 2.0
}

var hierarchyWeights = map[string]float64{
	"5m":  1.0,
	"10m": 1.1,
	"15m": 1.2,
	"20m": 1.3,
	"30m": 1.4,
	"45m": 1.5,
	"1h":  1.8,
	"90m": 1.9,
	"2h":  2.0,
	"3h":  2.2,
	"4h":  2.4,
	"6h":  2.6,
	"8h":  2.8,
	"1D":  3.0,
	"2D":  3.1,
	"3D":  3.2,
	"4D":  3.3,
	"5D":  3.4,
	"6D":  3.5,
	"7D":  3.6,
	"1W":  3.8,
	"2W":  4.0,
	"3W":  4.2,
	"4W":  4.4,
	"1M":  5.0,
	"2M":  5.0,
	"3M":  5.0,
	"4M":  5.0,
	"6M":  5.0,
	"9M":  5.0,
	"12M": 5.0,
}
