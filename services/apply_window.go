package services

import (
	"fmt"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/config"
)

// TradingWindow is the daily bidding window of the exchange.
type TradingWindow struct {
	Location    *time.Location
	OpenHour    int
	OpenMinute  int
	CloseHour   int
	CloseMinute int
}

// DefaultTradingWindow is 10:00 to 16:00 IST.
func DefaultTradingWindow() TradingWindow {
	return TradingWindow{
		Location:  istLocation,
		OpenHour:  10,
		CloseHour: 16,
	}
}

// NewTradingWindow builds a window from the market configuration.
func NewTradingWindow(cfg config.MarketConfig) (TradingWindow, error) {
	openHour, openMinute, err := config.ParseClock(cfg.ApplyOpen)
	if err != nil {
		return TradingWindow{}, fmt.Errorf("apply open: %w", err)
	}
	closeHour, closeMinute, err := config.ParseClock(cfg.ApplyClose)
	if err != nil {
		return TradingWindow{}, fmt.Errorf("apply close: %w", err)
	}

	return TradingWindow{
		Location:    LoadMarketLocation(cfg.Timezone),
		OpenHour:    openHour,
		OpenMinute:  openMinute,
		CloseHour:   closeHour,
		CloseMinute: closeMinute,
	}, nil
}

// CanApply reports whether a bid can be placed at now: from the opening cutoff
// on the start date through the closing cutoff on the end date, both inclusive.
//
// This is finer than the day-level Open status. An issue can be Open for the
// whole close date while CanApply is already false after 16:00, and any
// actionable "Apply" affordance must follow CanApply.
func (w TradingWindow) CanApply(startDate, endDate *time.Time, now time.Time) bool {
	if startDate == nil || endDate == nil {
		return false
	}

	loc := w.Location
	if loc == nil {
		loc = istLocation
	}

	openInstant := atClock(*startDate, w.OpenHour, w.OpenMinute, loc)
	closeInstant := atClock(*endDate, w.CloseHour, w.CloseMinute, loc)

	return !now.Before(openInstant) && !now.After(closeInstant)
}

// CanApply checks the default IST trading window.
func CanApply(startDate, endDate *time.Time, now time.Time) bool {
	return DefaultTradingWindow().CanApply(startDate, endDate, now)
}
