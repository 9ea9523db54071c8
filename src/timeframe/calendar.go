package timeframe

import (
	"time"

	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// CloseCalculator answers "how many minutes until this timeframe's candle
// closes". Intraday timeframes (<= 8h) close on fixed-width UTC buckets.
// Daily and above anchor to the exchange close instant on the cycle's last
// trading day, DST-aware through the exchange calendar's timezone.
// -----------------------------------------------------------------------------

type CloseCalculator struct {
	Cal         *TradingCalendar
	CloseHour   int
	CloseMinute int
	Logger      *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCloseCalculator(cal *TradingCalendar, closeHour, closeMinute int, log *logger.Logger) *CloseCalculator {
	if closeHour == 0 && closeMinute == 0 {
		closeHour = 16
	}
	return &CloseCalculator{
		Cal:         cal,
		CloseHour:   closeHour,
		CloseMinute: closeMinute,
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------
// Cycle rule table. Each multi-unit cycle maps to a (unit, period) pair and
// one generic modulo-since-epoch evaluator handles all of them, instead of
// one hand-written branch per timeframe.
// -----------------------------------------------------------------------------

type cycleUnit int

const (
	unitDays cycleUnit = iota
	unitWeeks
	unitMonths
)

type cycleRule struct {
	unit   cycleUnit
	period int
}

var cycleRules = map[string]cycleRule{
	"1D":  {unitDays, 1},
	"2D":  {unitDays, 2},
	"3D":  {unitDays, 3},
	"4D":  {unitDays, 4},
	"5D":  {unitDays, 5},
	"6D":  {unitDays, 6},
	"7D":  {unitDays, 7},
	"1W":  {unitWeeks, 1},
	"2W":  {unitWeeks, 2},
	"3W":  {unitWeeks, 3},
	"4W":  {unitWeeks, 4},
	"1M":  {unitMonths, 1},
	"2M":  {unitMonths, 2},
	"3M":  {unitMonths, 3},
	"4M":  {unitMonths, 4},
	"6M":  {unitMonths, 6},
	"9M":  {unitMonths, 9},
	"12M": {unitMonths, 12},
}

// cycleEpoch anchors all modulo arithmetic. 2000-01-03 is a Monday, so week
// cycles align naturally and day cycles share one origin.
const epochYear, epochMonth, epochDay = 2000, time.January, 3

// -----------------------------------------------------------------------------

// MinutesUntilClose returns minutes until the timeframe's next close, or
// ok=false when the spec is unusable. An unknown daily-plus id degrades to
// naive fixed-width bucket math rather than failing.
func (c *CloseCalculator) MinutesUntilClose(now time.Time, spec models.MTimeframeSpec) (float64, bool) {
	if spec.Minutes <= 0 {
		return 0, false
	}

	if spec.Minutes <= 480 {
		return c.fixedWidthMinutes(now, spec.Minutes), true
	}

	rule, ok := cycleRules[spec.ID]
	if !ok {
		if c.Logger != nil {
			c.Logger.Debug("No cycle rule for timeframe %s, using fixed-width fallback", spec.ID)
		}
		return c.fixedWidthMinutes(now, spec.Minutes), true
	}

	closeAt := c.nextCycleClose(now, rule)
	return closeAt.Sub(now).Minutes(), true
}

// -----------------------------------------------------------------------------

// fixedWidthMinutes: simple bucket boundaries since the unix epoch.
func (c *CloseCalculator) fixedWidthMinutes(now time.Time, minutes float64) float64 {
	widthSec := int64(minutes * 60)
	rem := now.Unix() % widthSec
	return float64(widthSec-rem) / 60.0
}

// -----------------------------------------------------------------------------

// nextCycleClose finds the first cycle-boundary close instant after now.
func (c *CloseCalculator) nextCycleClose(now time.Time, rule cycleRule) time.Time {
	loc := c.Cal.Timezone
	if loc == nil {
		loc = time.UTC
	}
	nowLoc := now.In(loc)
	epoch := time.Date(epochYear, epochMonth, epochDay, 0, 0, 0, 0, loc)

	// Daily is the simplest: close on the next trading day's close instant,
	// skipping weekends and holidays forward.
	if rule.unit == unitDays && rule.period == 1 {
		day := midnight(nowLoc)
		for i := 0; i < 14; i++ {
			if c.Cal.IsTradingDay(day) {
				closeAt := c.closeOn(day)
				if closeAt.After(now) {
					return closeAt
				}
			}
			day = day.AddDate(0, 0, 1)
		}
		return c.closeOn(day)
	}

	// Generic modulo evaluation: find the current cycle index, take the
	// cycle's boundary day, roll weekend/holiday boundaries back to the
	// last trading day, and advance one cycle whenever the resulting close
	// already passed.
	for advance := 0; advance < 3; advance++ {
		var boundary time.Time

		switch rule.unit {
		case unitDays:
			days := daysBetween(epoch, midnight(nowLoc))
			k := days/rule.period + advance
			boundary = epoch.AddDate(0, 0, (k+1)*rule.period-1)

		case unitWeeks:
			weeks := daysBetween(epoch, midnight(nowLoc)) / 7
			k := weeks/rule.period + advance
			lastWeekStart := epoch.AddDate(0, 0, ((k+1)*rule.period-1)*7)
			// Friday anchors every week cycle.
			boundary = lastWeekStart.AddDate(0, 0, 4)

		case unitMonths:
			months := int(nowLoc.Year()-epochYear)*12 + int(nowLoc.Month()-epochMonth)
			k := months/rule.period + advance
			lastMonth := time.Date(epochYear, epochMonth, 1, 0, 0, 0, 0, loc).AddDate(0, (k+1)*rule.period-1, 0)
			boundary = lastDayOfMonth(lastMonth)
		}

		boundary = c.rollBackToTradingDay(boundary)
		closeAt := c.closeOn(boundary)
		if closeAt.After(now) {
			return closeAt
		}
	}

	// Unreachable for sane inputs; return the next day close as a floor.
	return c.closeOn(midnight(nowLoc).AddDate(0, 0, 1))
}

// -----------------------------------------------------------------------------

// closeOn builds the exchange close instant on the given calendar day.
func (c *CloseCalculator) closeOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.CloseHour, c.CloseMinute, 0, 0, day.Location())
}

// -----------------------------------------------------------------------------

// rollBackToTradingDay moves a Saturday/Sunday or holiday boundary back to
// the preceding trading day (a month ending on Saturday closes on Friday).
func (c *CloseCalculator) rollBackToTradingDay(day time.Time) time.Time {
	for i := 0; i < 10; i++ {
		if c.Cal.IsTradingDay(day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// -----------------------------------------------------------------------------

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. Both are midnights in the
// same location; the half-day rounding absorbs DST offsets.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours()/24 + 0.5)
}

// lastDayOfMonth returns the final calendar day of t's month.
func lastDayOfMonth(t time.Time) time.Time {
	firstNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstNext.AddDate(0, 0, -1)
}
