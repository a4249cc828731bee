package services

import (
	"time"

	"github.com/sirupsen/logrus"
)

// MarketTimezone is the IANA zone of the Indian exchanges.
const MarketTimezone = "Asia/Kolkata"

// istLocation is resolved once; countdown deadlines are always computed in it,
// whatever the host zone is.
var istLocation = LoadMarketLocation(MarketTimezone)

// LoadMarketLocation loads an IANA zone. When the tz database is not available
// on the host and the zone is Asia/Kolkata, a fixed +05:30 zone is used instead
// (India has no daylight saving time).
func LoadMarketLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}

	if name == MarketTimezone {
		logrus.WithFields(logrus.Fields{
			"component": "MarketClock",
			"timezone":  name,
		}).Warn("tz database unavailable, using fixed IST offset")
		return time.FixedZone("IST", 5*60*60+30*60)
	}

	logrus.WithFields(logrus.Fields{
		"component": "MarketClock",
		"timezone":  name,
		"error":     err,
	}).Warn("Unknown timezone, falling back to IST")
	return LoadMarketLocation(MarketTimezone)
}

// civilDay reduces t to its calendar date, as written in t's own location.
// The result is midnight UTC so that two civil days compare correctly.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isDateOnly reports whether t carries no time of day: midnight at a zero
// offset, which is what "2006-01-02" parses to.
func isDateOnly(t time.Time) bool {
	_, offset := t.Zone()
	hour, minute, second := t.Clock()
	return offset == 0 && hour == 0 && minute == 0 && second == 0 && t.Nanosecond() == 0
}

// marketDay returns the civil date of a lifecycle date on the calendar of loc.
// Date-only values already name a civil date and are kept as written. Any other
// instant, such as "2024-01-03T18:30:00Z", is read in loc first.
func marketDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = istLocation
	}
	if !isDateOnly(t) {
		t = t.In(loc)
	}
	return civilDay(t)
}

// MarketDate is the IST civil date of a lifecycle date, as midnight UTC.
func MarketDate(t time.Time) time.Time {
	return marketDay(t, istLocation)
}

// atClock returns the instant at hour:minute on the market date of date, in loc.
func atClock(date time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := marketDay(date, loc).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}
