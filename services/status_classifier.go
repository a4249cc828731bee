package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
)

// Granularity selects how the reference instant is compared with lifecycle dates.
type Granularity int

const (
	// GranularityDay strips time of day from both sides. Used for badges,
	// listings and status filters.
	GranularityDay Granularity = iota
	// GranularityInstant compares raw instants. Used by the admin form's live
	// derived fields.
	GranularityInstant
)

func (g Granularity) String() string {
	switch g {
	case GranularityDay:
		return "day"
	case GranularityInstant:
		return "instant"
	default:
		return "unknown"
	}
}

// ParseGranularity accepts "day" or "instant". An empty value means day.
func ParseGranularity(value string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "day":
		return GranularityDay, nil
	case "instant":
		return GranularityInstant, nil
	default:
		return GranularityDay, fmt.Errorf("unknown granularity %q", value)
	}
}

// ClassifyStatus derives the lifecycle status of an issue from its dates.
//
// Rules are evaluated in priority order and the first match wins: Listed,
// Allotted, Closed, Open, Upcoming. A missing date never gates its tier and
// never fails. Dates are not checked for chronological consistency, so
// contradictory input is classified best-effort.
//
// Upcoming is also the answer when no date is known at all; callers must treat
// it as indeterminate rather than validated.
//
// With GranularityDay, now and every timestamped date are converted into loc
// and reduced to their civil date; date-only values are taken as written. With
// GranularityInstant, loc is ignored.
func ClassifyStatus(dates models.IPODates, now time.Time, granularity Granularity, loc *time.Location) models.IPOStatus {
	if dates.IsEmpty() {
		return models.StatusUpcoming
	}

	ref := now
	normalize := func(t time.Time) time.Time { return t }
	if granularity == GranularityDay {
		if loc == nil {
			loc = istLocation
		}
		ref = civilDay(now.In(loc))
		normalize = func(t time.Time) time.Time { return marketDay(t, loc) }
	}

	var openDay, closeDay, allotmentDay, listingDay time.Time
	if dates.Open != nil {
		openDay = normalize(*dates.Open)
	}
	if dates.Close != nil {
		closeDay = normalize(*dates.Close)
	}
	if dates.Allotment != nil {
		allotmentDay = normalize(*dates.Allotment)
	}
	if dates.Listing != nil {
		listingDay = normalize(*dates.Listing)
	}

	switch {
	case dates.Listing != nil && !ref.Before(listingDay):
		return models.StatusListed
	case dates.Allotment != nil && !ref.Before(allotmentDay) &&
		(dates.Listing == nil || ref.Before(listingDay)):
		return models.StatusAllotted
	case dates.Close != nil && ref.After(closeDay) &&
		(dates.Allotment == nil || ref.Before(allotmentDay)):
		return models.StatusClosed
	case dates.Open != nil && dates.Close != nil &&
		!ref.Before(openDay) && !ref.After(closeDay):
		return models.StatusOpen
	case dates.Open != nil && ref.Before(openDay):
		return models.StatusUpcoming
	}

	return models.StatusUpcoming
}
