package timeframe

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"confluence-engine/src/logger"
)

// TradingCalendar wraps scmhub/calendar for trading-day and session checks.
// The library carries exchange holidays and the exchange timezone, which is
// what makes daily-and-above close anchoring DST-correct.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar resolves the exchange calendar for a symbol. US listings map
// to NYSE; suffixed symbols map to their home exchange MIC.
func GetCalendar(symbol string, log *logger.Logger) *TradingCalendar {
	mic := "xnys"
	switch {
	case strings.HasSuffix(symbol, ".L"):
		mic = "xlon"
	case strings.HasSuffix(symbol, ".PA"):
		mic = "xpar"
	case strings.HasSuffix(symbol, ".DE"):
		mic = "xfra"
	case strings.HasSuffix(symbol, ".AS"):
		mic = "xams"
	case strings.HasSuffix(symbol, ".MI"):
		mic = "xmil"
	case strings.HasSuffix(symbol, ".SW"):
		mic = "xswx"
	case strings.HasSuffix(symbol, ".TO"):
		mic = "xtse"
	case strings.HasSuffix(symbol, ".T"):
		mic = "xtks"
	case strings.HasSuffix(symbol, ".HK"):
		mic = "xhkg"
	case strings.HasSuffix(symbol, ".AX"):
		mic = "xasx"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		if log != nil {
			log.Warning("Failed to load calendar for MIC '%s' and fallback 'xnys'. Using simple Mon-Fri fallback.", mic)
		}
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour := t.Hour()
		minute := t.Minute()
		// 9:30 - 16:00 local exchange time
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}
