package services

import "github.com/fenilmodi00/ipo-dashboard/models"

// indexReservations keys reservations by normalized category. The first entry
// for a category wins.
func indexReservations(reservations []models.Reservation) map[string]models.Reservation {
	index := make(map[string]models.Reservation, len(reservations))
	for _, r := range reservations {
		key := CategoryKey(r.Category)
		if _, exists := index[key]; !exists {
			index[key] = r
		}
	}
	return index
}

// effectiveOffered is the publicly subscribable pool of a category. For QIB the
// anchor allocation is removed, since anchor shares are allotted before the
// issue opens.
func effectiveOffered(category models.SubscriptionCategory, anchors map[string]models.Reservation) (int64, bool) {
	if category.SharesOffered == nil {
		return 0, false
	}

	offered := *category.SharesOffered
	if CategoryKey(category.Category) == categoryQIB {
		if qib, ok := anchors[categoryQIB]; ok && qib.AnchorShares != nil {
			offered -= *qib.AnchorShares
		}
		if offered < 0 {
			offered = 0
		}
	}
	return offered, true
}

// isSubscribable reports whether a category takes part in open bidding.
// Disabled categories and the market maker quota never do.
func isSubscribable(category models.SubscriptionCategory) bool {
	return category.Enabled && CategoryKey(category.Category) != categoryMarketMaker
}

// AggregateSubscription computes per-category and total subscription multiples.
//
// Every input row is kept in the result; rows that are disabled or belong to
// the market maker carry blank derived fields and add nothing to the totals.
// Totals sum numerators and denominators separately before dividing, so small
// categories do not skew the overall multiple.
func AggregateSubscription(categories []models.SubscriptionCategory, reservations []models.Reservation) models.Subscription {
	var result models.Subscription
	if categories == nil {
		return result
	}

	anchors := indexReservations(reservations)
	result.Categories = make([]models.SubscriptionCategory, len(categories))

	var totalOffered, totalApplied int64
	included := 0

	for i, category := range categories {
		category.EffectiveOffered = nil
		category.Times = nil

		if isSubscribable(category) {
			included++

			offered, known := effectiveOffered(category, anchors)
			if known {
				category.EffectiveOffered = int64Ptr(offered)
				totalOffered += offered
			}
			if category.AppliedShares != nil {
				totalApplied += *category.AppliedShares
				if known {
					category.Times = ratio(*category.AppliedShares, offered)
				}
			}
		}

		result.Categories[i] = category
	}

	if included > 0 {
		result.TotalOffered = int64Ptr(totalOffered)
		result.TotalApplied = int64Ptr(totalApplied)
		result.TotalTimes = ratio(totalApplied, totalOffered)
	}
	return result
}
