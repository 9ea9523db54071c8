package analysis

import (
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Bar resampling: aggregates an ordered base-interval OHLCV series into a
// coarser timeframe with fixed-width time buckets. Resampling a series to
// its own bucket width is a no-op, and bars are never reordered.
// -----------------------------------------------------------------------------

// Resample aggregates bars into buckets of targetMinutes. Each bucket's
// timestamp is floor(ts/width)*width. Empty input returns an empty series.
func Resample(bars []models.MBar, targetMinutes float64) []models.MBar {
	if len(bars) == 0 || targetMinutes <= 0 {
		return []models.MBar{}
	}

	widthSec := int64(targetMinutes * 60)
	out := make([]models.MBar, 0, len(bars))

	var cur models.MBar
	var curBucket int64 = -1

	for _, b := range bars {
		bucket := (b.Timestamp / widthSec) * widthSec
		if bucket != curBucket {
			if curBucket >= 0 {
				out = append(out, cur)
			}
			curBucket = bucket
			cur = models.MBar{
				Timestamp: bucket,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
			continue
		}

		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}

	if curBucket >= 0 {
		out = append(out, cur)
	}
	return out
}
