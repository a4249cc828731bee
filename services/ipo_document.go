package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/google/uuid"
)

// ipoDocument is the raw record shape supplied by the persistence/API layer.
// Dates arrive as ISO strings or null and numbers as JSON numbers, though
// formatted strings ("₹1,250") are tolerated. Derived fields that may be present
// in the document (gmp.percent, reservation percentage, times) are ignored.
type ipoDocument struct {
	ID      string `json:"id"`
	StockID string `json:"stockId"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`

	Dates struct {
		Open      json.RawMessage `json:"open"`
		Close     json.RawMessage `json:"close"`
		Allotment json.RawMessage `json:"allotment"`
		Listing   json.RawMessage `json:"listing"`
	} `json:"dates"`

	PriceBand struct {
		Min json.RawMessage `json:"min"`
		Max json.RawMessage `json:"max"`
	} `json:"priceBand"`

	LotSize json.RawMessage `json:"lotSize"`

	GMP struct {
		Current json.RawMessage `json:"current"`
	} `json:"gmp"`

	Reservations []struct {
		Category      string          `json:"category"`
		Enabled       *bool           `json:"enabled"`
		SharesOffered json.RawMessage `json:"sharesOffered"`
		AnchorShares  json.RawMessage `json:"anchorShares"`
	} `json:"reservations"`

	Subscription struct {
		Categories []struct {
			Category      string          `json:"category"`
			Enabled       *bool           `json:"enabled"`
			SharesOffered json.RawMessage `json:"sharesOffered"`
			AppliedShares json.RawMessage `json:"appliedShares"`
		} `json:"categories"`
	} `json:"subscription"`

	IssueBreakdown struct {
		Total struct {
			Shares json.RawMessage `json:"shares"`
		} `json:"total"`
	} `json:"issueBreakdown"`

	IssueSize struct {
		Shares json.RawMessage `json:"shares"`
	} `json:"issueSize"`
}

// IPODocumentDecoder turns raw documents into models.IPO values.
type IPODocumentDecoder struct {
	utility *UtilityService
}

func NewIPODocumentDecoder(utility *UtilityService) *IPODocumentDecoder {
	if utility == nil {
		utility = NewUtilityService()
	}
	return &IPODocumentDecoder{utility: utility}
}

// DecodeIPODocument decodes a raw document with a fresh decoder.
func DecodeIPODocument(data []byte) (models.IPO, error) {
	return NewIPODocumentDecoder(nil).Decode(data)
}

// Decode parses a raw document. Only malformed JSON and a malformed id are
// errors; unreadable values degrade to absent fields.
func (d *IPODocumentDecoder) Decode(data []byte) (models.IPO, error) {
	start := time.Now()

	var doc ipoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		d.utility.RecordOperation("decode_ipo_document", false, time.Since(start))
		return models.IPO{}, shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"MALFORMED_DOCUMENT",
			"ipo document is not valid JSON",
			"ipo-engine",
			"decode_document",
			false,
			err,
		)
	}

	ipo := models.IPO{
		StockID: strings.TrimSpace(doc.StockID),
		Name:    strings.TrimSpace(doc.Name),
		Slug:    d.utility.NormalizeString(doc.Slug),
	}

	if id := strings.TrimSpace(doc.ID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			d.utility.RecordOperation("decode_ipo_document", false, time.Since(start))
			return models.IPO{}, shared.NewServiceError(
				shared.ErrorCategoryValidation,
				"INVALID_ID",
				"ipo id is not a valid UUID",
				"ipo-engine",
				"decode_document",
				false,
				err,
			)
		}
		ipo.ID = parsed
	}

	ipo.Dates = models.IPODates{
		Open:      d.date(doc.Dates.Open),
		Close:     d.date(doc.Dates.Close),
		Allotment: d.date(doc.Dates.Allotment),
		Listing:   d.date(doc.Dates.Listing),
	}
	ipo.PriceBand = models.PriceBand{
		Min: d.number(doc.PriceBand.Min),
		Max: d.number(doc.PriceBand.Max),
	}
	if lot := d.shares(doc.LotSize); lot != nil {
		size := int(*lot)
		ipo.LotSize = &size
	}
	ipo.GMP.Current = d.number(doc.GMP.Current)

	for _, r := range doc.Reservations {
		ipo.Reservations = append(ipo.Reservations, models.Reservation{
			Category:      strings.TrimSpace(r.Category),
			Enabled:       r.Enabled == nil || *r.Enabled,
			SharesOffered: d.shares(r.SharesOffered),
			AnchorShares:  d.shares(r.AnchorShares),
		})
	}
	for _, c := range doc.Subscription.Categories {
		ipo.Subscription.Categories = append(ipo.Subscription.Categories, models.SubscriptionCategory{
			Category:      strings.TrimSpace(c.Category),
			Enabled:       c.Enabled == nil || *c.Enabled,
			SharesOffered: d.shares(c.SharesOffered),
			AppliedShares: d.shares(c.AppliedShares),
		})
	}

	ipo.IssueBreakdown.Total.Shares = d.shares(doc.IssueBreakdown.Total.Shares)
	ipo.IssueSize.Shares = d.shares(doc.IssueSize.Shares)

	d.utility.RecordOperation("decode_ipo_document", true, time.Since(start))
	return ipo, nil
}

// text returns the raw value as text: the string content for JSON strings, the
// literal for numbers, and "" for null or missing values.
func (d *IPODocumentDecoder) text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}

func (d *IPODocumentDecoder) date(raw json.RawMessage) *time.Time {
	return d.utility.ParseDate(d.text(raw))
}

// jsonNumber parses raw when it is a JSON number literal, exponent forms
// included. ok is false for strings, null and missing values.
func jsonNumber(raw json.RawMessage) (value *float64, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return nil, false
	}
	parsed, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, true
	}
	return &parsed, true
}

func (d *IPODocumentDecoder) number(raw json.RawMessage) *float64 {
	if value, ok := jsonNumber(raw); ok {
		return value
	}
	return d.utility.ParseNumericValueAsFloat(d.text(raw))
}

func (d *IPODocumentDecoder) shares(raw json.RawMessage) *int64 {
	if value, ok := jsonNumber(raw); ok {
		return d.utility.WholeShareCount(value)
	}
	return d.utility.ParseShareCount(d.text(raw))
}
