package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
)

const sampleDocument = `{
	"id": "2b7e1d3c-6a8f-4a5e-9b1c-0d2e3f4a5b6c",
	"stockId": "ACME",
	"name": "Acme Industries Ltd",
	"dates": {"open": "2024-01-01", "close": "2024-01-03", "allotment": null, "listing": "TBA"},
	"priceBand": {"min": 95, "max": "₹100"},
	"lotSize": 150,
	"gmp": {"current": 20, "percent": 99},
	"reservations": [
		{"category": "QIB", "sharesOffered": "1,000", "anchorShares": 400, "percentage": 77},
		{"category": "Employee", "enabled": false, "sharesOffered": 10}
	],
	"subscription": {
		"categories": [
			{"category": "QIB", "sharesOffered": 1000, "appliedShares": 900},
			{"category": "Market Maker", "enabled": true, "sharesOffered": 50}
		]
	},
	"issueBreakdown": {"total": {"shares": 2000}},
	"issueSize": {"shares": null}
}`

func TestDecodeIPODocument(t *testing.T) {
	ipo, err := DecodeIPODocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeIPODocument: %v", err)
	}

	if ipo.ID.String() != "2b7e1d3c-6a8f-4a5e-9b1c-0d2e3f4a5b6c" || ipo.StockID != "ACME" {
		t.Errorf("identity = %s/%s", ipo.ID, ipo.StockID)
	}
	if ipo.Dates.Open == nil || !ipo.Dates.Open.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("open date = %v", ipo.Dates.Open)
	}
	if ipo.Dates.Allotment != nil || ipo.Dates.Listing != nil {
		t.Error("null and placeholder dates should be absent")
	}
	assertFloatPtr(t, "price min", ipo.PriceBand.Min, floatPtr(95))
	assertFloatPtr(t, "price max", ipo.PriceBand.Max, floatPtr(100))
	if ipo.LotSize == nil || *ipo.LotSize != 150 {
		t.Errorf("lot size = %v", ipo.LotSize)
	}
	assertFloatPtr(t, "gmp current", ipo.GMP.Current, floatPtr(20))
	assertFloatPtr(t, "gmp percent ignored", ipo.GMP.Percent, nil)

	if len(ipo.Reservations) != 2 {
		t.Fatalf("reservations = %d", len(ipo.Reservations))
	}
	if !ipo.Reservations[0].Enabled || ipo.Reservations[1].Enabled {
		t.Error("enabled should default to true and honour an explicit false")
	}
	if ipo.Reservations[0].SharesOffered == nil || *ipo.Reservations[0].SharesOffered != 1000 {
		t.Errorf("formatted shares = %v", ipo.Reservations[0].SharesOffered)
	}
	assertFloatPtr(t, "reservation percentage ignored", ipo.Reservations[0].Percentage, nil)

	if len(ipo.Subscription.Categories) != 2 || ipo.Subscription.Categories[1].AppliedShares != nil {
		t.Errorf("subscription categories = %+v", ipo.Subscription.Categories)
	}
	if ipo.IssueBreakdown.Total.Shares == nil || *ipo.IssueBreakdown.Total.Shares != 2000 {
		t.Errorf("issue breakdown = %v", ipo.IssueBreakdown.Total.Shares)
	}
	if ipo.IssueSize.Shares != nil {
		t.Error("null issue size should be absent")
	}
}

func TestDecodeIPODocumentThroughEngine(t *testing.T) {
	ipo, err := DecodeIPODocument([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeIPODocument: %v", err)
	}

	annotated := NewDefaultIPOEngine().Annotate(ipo, istAt(2024, time.January, 2, 12, 0))
	if annotated.Status != "Open" {
		t.Errorf("status = %s", annotated.Status)
	}
	assertFloatPtr(t, "gmp percent", annotated.GMP.Percent, floatPtr(20))
	assertFloatPtr(t, "qib percentage", annotated.Reservations[0].Percentage, floatPtr(50))
	assertFloatPtr(t, "qib times", annotated.Subscription.Categories[0].Times, floatPtr(1.5))
	assertFloatPtr(t, "min investment", annotated.MinInvestment, floatPtr(15000))
}

func TestDecodeIPODocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
	}{
		{"malformed json", `{"name": `, "MALFORMED_DOCUMENT"},
		{"bad id", `{"id": "not-a-uuid"}`, "INVALID_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeIPODocument([]byte(tt.doc))
			serviceErr, ok := shared.AsServiceError(err)
			if !ok || serviceErr.Code != tt.code {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDecodeIPODocumentMinimal(t *testing.T) {
	ipo, err := DecodeIPODocument([]byte(`{"name": "Bare"}`))
	if err != nil {
		t.Fatalf("DecodeIPODocument: %v", err)
	}
	if !ipo.Dates.IsEmpty() || ipo.PriceBand.Max != nil || ipo.Reservations != nil {
		t.Errorf("unexpected values in minimal document: %+v", ipo)
	}
}

func TestDecodeIPODocumentUTCTimestamps(t *testing.T) {
	// midnight IST written as UTC instants, as JavaScript clients serialize dates
	doc := `{"dates": {"open": "2023-12-31T18:30:00.000Z", "close": "2024-01-03T18:30:00.000Z"}}`
	ipo, err := DecodeIPODocument([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeIPODocument: %v", err)
	}

	if got := MarketDate(*ipo.Dates.Close).Format("2006-01-02"); got != "2024-01-04" {
		t.Errorf("close market date = %s, want 2024-01-04", got)
	}
	if err := ValidateTimeline(ipo.Dates); err != nil {
		t.Errorf("ValidateTimeline: %v", err)
	}

	now := istAt(2024, time.January, 4, 12, 0)
	if got := ClassifyStatus(ipo.Dates, now, GranularityDay, istLocation); got != models.StatusOpen {
		t.Errorf("status = %s, want Open", got)
	}
	if got := ClassifyStatus(ipo.Dates, istAt(2024, time.January, 1, 9, 0), GranularityDay, istLocation); got != models.StatusOpen {
		t.Errorf("status on open date = %s, want Open", got)
	}

	countdown := CalculateCountdown(*ipo.Dates.Close, now)
	if countdown.IsExpired || countdown.Formatted != "Closes in 4h 0m" {
		t.Errorf("countdown = %+v, want Closes in 4h 0m", countdown)
	}

	if !CanApply(ipo.Dates.Open, ipo.Dates.Close, now) {
		t.Error("bidding should be open at 12:00 IST on the close date")
	}
	if !CanApply(ipo.Dates.Open, ipo.Dates.Close, istAt(2024, time.January, 1, 10, 0)) {
		t.Error("bidding should open at 10:00 IST on the open date")
	}
	if CanApply(ipo.Dates.Open, ipo.Dates.Close, istAt(2024, time.January, 4, 16, 1)) {
		t.Error("bidding should be closed after 16:00 IST on the close date")
	}
}

func TestDecodeIPODocumentExponentNumbers(t *testing.T) {
	doc := `{
		"priceBand": {"min": 9.5e1, "max": 1e2},
		"lotSize": 1.5E+02,
		"gmp": {"current": 20},
		"issueBreakdown": {"total": {"shares": 1.2E+06}},
		"issueSize": {"shares": 1.25e1}
	}`
	ipo, err := DecodeIPODocument([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeIPODocument: %v", err)
	}

	assertFloatPtr(t, "price min", ipo.PriceBand.Min, floatPtr(95))
	assertFloatPtr(t, "price max", ipo.PriceBand.Max, floatPtr(100))
	if ipo.LotSize == nil || *ipo.LotSize != 150 {
		t.Errorf("lot size = %v", ipo.LotSize)
	}
	if ipo.IssueBreakdown.Total.Shares == nil || *ipo.IssueBreakdown.Total.Shares != 1200000 {
		t.Errorf("issue breakdown = %v", ipo.IssueBreakdown.Total.Shares)
	}
	if ipo.IssueSize.Shares != nil {
		t.Errorf("fractional share count should be blank, got %d", *ipo.IssueSize.Shares)
	}

	annotated := NewDefaultIPOEngine().Annotate(ipo, istAt(2024, time.January, 2, 12, 0))
	assertFloatPtr(t, "gmp percent", annotated.GMP.Percent, floatPtr(20))
}
