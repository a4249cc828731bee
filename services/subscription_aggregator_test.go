package services

import (
	"testing"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAggregateSubscriptionQIBAnchor(t *testing.T) {
	reservations := []models.Reservation{
		{Category: "QIB", Enabled: true, SharesOffered: sharesPtr(1000), AnchorShares: sharesPtr(400)},
	}
	categories := []models.SubscriptionCategory{
		{Category: "qib", Enabled: true, SharesOffered: sharesPtr(1000), AppliedShares: sharesPtr(900)},
	}

	got := AggregateSubscription(categories, reservations)

	row := got.Categories[0]
	if row.EffectiveOffered == nil || *row.EffectiveOffered != 600 {
		t.Fatalf("effective offered = %v, want 600", row.EffectiveOffered)
	}
	assertFloatPtr(t, "times", row.Times, floatPtr(1.5))
	assertFloatPtr(t, "total times", got.TotalTimes, floatPtr(1.5))
}

func TestAggregateSubscriptionExclusions(t *testing.T) {
	categories := []models.SubscriptionCategory{
		{Category: "Retail", Enabled: true, SharesOffered: sharesPtr(100), AppliedShares: sharesPtr(250)},
		{Category: "Market Maker", Enabled: true, SharesOffered: sharesPtr(50), AppliedShares: sharesPtr(50)},
		{Category: "Employee", Enabled: false, SharesOffered: sharesPtr(10), AppliedShares: sharesPtr(90)},
		{Category: "NII", Enabled: true, SharesOffered: sharesPtr(300), AppliedShares: sharesPtr(150)},
	}

	got := AggregateSubscription(categories, nil)
	if len(got.Categories) != 4 {
		t.Fatalf("got %d rows, want 4", len(got.Categories))
	}

	assertFloatPtr(t, "retail", got.Categories[0].Times, floatPtr(2.5))
	assertFloatPtr(t, "market maker", got.Categories[1].Times, nil)
	assertFloatPtr(t, "employee", got.Categories[2].Times, nil)
	assertFloatPtr(t, "nii", got.Categories[3].Times, floatPtr(0.5))

	if got.TotalOffered == nil || *got.TotalOffered != 400 {
		t.Errorf("total offered = %v, want 400", got.TotalOffered)
	}
	if got.TotalApplied == nil || *got.TotalApplied != 400 {
		t.Errorf("total applied = %v, want 400", got.TotalApplied)
	}
	// ratio of sums, not average of ratios (which would be 1.5)
	assertFloatPtr(t, "total times", got.TotalTimes, floatPtr(1))
}

func TestAggregateSubscriptionBlankInputs(t *testing.T) {
	got := AggregateSubscription([]models.SubscriptionCategory{
		{Category: "Retail", Enabled: true, SharesOffered: sharesPtr(100)},
		{Category: "NII", Enabled: true, SharesOffered: sharesPtr(0), AppliedShares: sharesPtr(10)},
	}, nil)

	assertFloatPtr(t, "no applied", got.Categories[0].Times, nil)
	assertFloatPtr(t, "zero offered", got.Categories[1].Times, nil)
	assertFloatPtr(t, "total", got.TotalTimes, floatPtr(0.1))

	empty := AggregateSubscription([]models.SubscriptionCategory{{Category: "Market Maker", Enabled: true}}, nil)
	if empty.TotalOffered != nil || empty.TotalTimes != nil {
		t.Error("totals should be blank when no category is included")
	}
}

func TestAggregateSubscriptionAnchorFloor(t *testing.T) {
	reservations := []models.Reservation{{Category: "QIB", AnchorShares: sharesPtr(2000)}}
	got := AggregateSubscription([]models.SubscriptionCategory{
		{Category: "QIB", Enabled: true, SharesOffered: sharesPtr(1000), AppliedShares: sharesPtr(10)},
	}, reservations)

	if got.Categories[0].EffectiveOffered == nil || *got.Categories[0].EffectiveOffered != 0 {
		t.Errorf("effective offered = %v, want 0", got.Categories[0].EffectiveOffered)
	}
	assertFloatPtr(t, "times", got.Categories[0].Times, nil)
}

func TestAggregateSubscriptionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("total applied equals the sum over included rows", prop.ForAll(
		func(offered, applied []int64) bool {
			n := len(offered)
			if len(applied) < n {
				n = len(applied)
			}
			categories := make([]models.SubscriptionCategory, n)
			var want int64
			for i := 0; i < n; i++ {
				enabled := i%3 != 0
				categories[i] = models.SubscriptionCategory{
					Category:      "Retail",
					Enabled:       enabled,
					SharesOffered: sharesPtr(offered[i]),
					AppliedShares: sharesPtr(applied[i]),
				}
				if enabled {
					want += applied[i]
				}
			}

			got := AggregateSubscription(categories, nil)
			if len(got.Categories) != n {
				return false
			}
			if got.TotalApplied == nil {
				return want == 0
			}
			return *got.TotalApplied == want
		},
		gen.SliceOf(gen.Int64Range(1, 1_000_000)),
		gen.SliceOf(gen.Int64Range(0, 1_000_000)),
	))

	properties.TestingRun(t)
}
