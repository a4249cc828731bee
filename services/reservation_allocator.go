package services

import "github.com/fenilmodi00/ipo-dashboard/models"

// ResolveTotalIssueShares picks the total issue share count in priority order:
// issue breakdown total, then issue size, then the sum of shares offered over
// enabled reservations. A source counts only when it is positive. The second
// return value is false when no positive total could be found.
func ResolveTotalIssueShares(reservations []models.Reservation, breakdown models.IssueBreakdown, size models.IssueSize) (int64, bool) {
	if breakdown.Total.Shares != nil && *breakdown.Total.Shares > 0 {
		return *breakdown.Total.Shares, true
	}
	if size.Shares != nil && *size.Shares > 0 {
		return *size.Shares, true
	}

	var sum int64
	for _, r := range reservations {
		if r.Enabled && r.SharesOffered != nil {
			sum += *r.SharesOffered
		}
	}
	return sum, sum > 0
}

// AllocateReservations returns a copy of reservations with Percentage set to
// each enabled category's share of the total issue, rounded to 2 decimals.
// Disabled entries, entries without shares and an unknown total get a blank
// percentage.
func AllocateReservations(reservations []models.Reservation, breakdown models.IssueBreakdown, size models.IssueSize) []models.Reservation {
	if reservations == nil {
		return nil
	}

	total, ok := ResolveTotalIssueShares(reservations, breakdown, size)

	allocated := make([]models.Reservation, len(reservations))
	for i, r := range reservations {
		r.Percentage = nil
		if ok && r.Enabled && r.SharesOffered != nil {
			r.Percentage = percentOf(*r.SharesOffered, total)
		}
		allocated[i] = r
	}
	return allocated
}
