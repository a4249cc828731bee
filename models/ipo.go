package models

import (
	"time"

	"github.com/google/uuid"
)

type IPO struct {
	// Primary identification
	ID      uuid.UUID `json:"id"`
	StockID string    `json:"stock_id"`
	Name    string    `json:"name"`
	Slug    *string   `json:"slug,omitempty"`

	// Timeline (civil dates, no ordering enforced)
	Dates IPODates `json:"dates"`

	// Pricing
	PriceBand PriceBand `json:"price_band"`
	LotSize   *int      `json:"lot_size,omitempty"`

	GMP GMP `json:"gmp"`

	Reservations   []Reservation  `json:"reservations,omitempty"`
	Subscription   Subscription   `json:"subscription"`
	IssueBreakdown IssueBreakdown `json:"issue_breakdown"`
	IssueSize      IssueSize      `json:"issue_size"`

	// Derived on every evaluation, never authoritative input
	Status        IPOStatus `json:"status"`
	MinInvestment *float64  `json:"min_investment,omitempty"`

	// Audit fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *string   `json:"created_by,omitempty"`
}

// IPODates holds the four lifecycle dates of an issue. Any of them may be absent.
type IPODates struct {
	Open      *time.Time `json:"open"`
	Close     *time.Time `json:"close"`
	Allotment *time.Time `json:"allotment"`
	Listing   *time.Time `json:"listing"`
}

// IsEmpty reports whether no lifecycle date is known.
func (d IPODates) IsEmpty() bool {
	return d.Open == nil && d.Close == nil && d.Allotment == nil && d.Listing == nil
}

// PriceBand is the bid price range; Max is the cap price used for percentage math.
type PriceBand struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// GMP carries the grey market premium input and its derived figures.
type GMP struct {
	Current         *float64 `json:"current"`
	Percent         *float64 `json:"percent"`
	EstListingPrice *float64 `json:"est_listing_price"`
}

type Reservation struct {
	Category      string   `json:"category"`
	Enabled       bool     `json:"enabled"`
	SharesOffered *int64   `json:"shares_offered"`
	AnchorShares  *int64   `json:"anchor_shares,omitempty"`
	Percentage    *float64 `json:"percentage"`
}

type SubscriptionCategory struct {
	Category         string   `json:"category"`
	Enabled          bool     `json:"enabled"`
	SharesOffered    *int64   `json:"shares_offered"`
	AppliedShares    *int64   `json:"applied_shares"`
	EffectiveOffered *int64   `json:"effective_offered,omitempty"`
	Times            *float64 `json:"times"`
}

// Subscription holds per-category bids and the derived totals.
type Subscription struct {
	Categories   []SubscriptionCategory `json:"categories,omitempty"`
	TotalOffered *int64                 `json:"total_offered"`
	TotalApplied *int64                 `json:"total_applied"`
	TotalTimes   *float64               `json:"total_times"`
}

type IssueBreakdown struct {
	Total IssueTotal `json:"total"`
}

type IssueTotal struct {
	Shares *int64 `json:"shares"`
}

type IssueSize struct {
	Shares *int64 `json:"shares"`
}
