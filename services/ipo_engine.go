package services

import (
	"fmt"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/config"
	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/sirupsen/logrus"
)

// IPOEngine turns raw IPO records into display-ready records. It holds no
// per-record state: every call recomputes status and derived metrics from the
// inputs of the record it is given.
type IPOEngine struct {
	location       *time.Location
	window         TradingWindow
	serviceMetrics *shared.ServiceMetrics
}

// NewIPOEngine creates an engine that classifies days and gates applications
// in the given trading window.
func NewIPOEngine(window TradingWindow) *IPOEngine {
	if window.Location == nil {
		window.Location = istLocation
	}
	return &IPOEngine{
		location:       window.Location,
		window:         window,
		serviceMetrics: shared.NewServiceMetrics("IPO_Engine"),
	}
}

// NewDefaultIPOEngine uses the IST 10:00-16:00 window.
func NewDefaultIPOEngine() *IPOEngine {
	return NewIPOEngine(DefaultTradingWindow())
}

// NewIPOEngineFromConfig builds an engine from the market configuration.
func NewIPOEngineFromConfig(cfg config.MarketConfig) (*IPOEngine, error) {
	window, err := NewTradingWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build trading window: %w", err)
	}
	return NewIPOEngine(window), nil
}

// Location returns the market location used for day-level classification.
func (e *IPOEngine) Location() *time.Location {
	return e.location
}

// Annotate returns a copy of ipo with day-granular status and all derived
// fields recomputed. The input is not modified.
func (e *IPOEngine) Annotate(ipo models.IPO, now time.Time) models.IPO {
	return e.AnnotateWithGranularity(ipo, now, GranularityDay)
}

// AnnotateWithGranularity is Annotate with an explicit status granularity.
func (e *IPOEngine) AnnotateWithGranularity(ipo models.IPO, now time.Time, granularity Granularity) models.IPO {
	start := time.Now()

	annotated := ipo
	annotated.Status = ClassifyStatus(ipo.Dates, now, granularity, e.location)
	annotated.GMP = CalculateGMPMetrics(ipo.PriceBand, ipo.GMP)
	annotated.MinInvestment = CalculateMinInvestment(ipo.PriceBand, ipo.LotSize)
	annotated.Reservations = AllocateReservations(ipo.Reservations, ipo.IssueBreakdown, ipo.IssueSize)
	annotated.Subscription = AggregateSubscription(ipo.Subscription.Categories, ipo.Reservations)

	e.serviceMetrics.RecordRequest(true, time.Since(start))
	e.serviceMetrics.IncrementCustomCounter("status_" + string(annotated.Status))

	logrus.WithFields(logrus.Fields{
		"component":   "IPOEngine",
		"stock_id":    ipo.StockID,
		"status":      annotated.Status,
		"granularity": granularity.String(),
	}).Debug("Annotated IPO record")

	return annotated
}

// AnnotateAll annotates each record independently.
func (e *IPOEngine) AnnotateAll(ipos []models.IPO, now time.Time) []models.IPO {
	annotated := make([]models.IPO, len(ipos))
	for i, ipo := range ipos {
		annotated[i] = e.Annotate(ipo, now)
	}
	return annotated
}

// FilterByStatus keeps the records whose day-granular status is status.
// The input records are annotated on the way.
func (e *IPOEngine) FilterByStatus(ipos []models.IPO, status models.IPOStatus, now time.Time) []models.IPO {
	filtered := make([]models.IPO, 0, len(ipos))
	for _, ipo := range ipos {
		annotated := e.Annotate(ipo, now)
		if annotated.Status == status {
			filtered = append(filtered, annotated)
		}
	}
	return filtered
}

// CanApply gates the Apply action on the trading window of the record.
func (e *IPOEngine) CanApply(ipo models.IPO, now time.Time) bool {
	return e.window.CanApply(ipo.Dates.Open, ipo.Dates.Close, now)
}

// Countdown returns the close countdown, or false when no close date is known.
func (e *IPOEngine) Countdown(ipo models.IPO, now time.Time) (models.Countdown, bool) {
	if ipo.Dates.Close == nil {
		return models.Countdown{}, false
	}
	return CalculateCountdown(*ipo.Dates.Close, now), true
}

// CountdownSubjects lists the records that have a close date, for a live ticker.
func (e *IPOEngine) CountdownSubjects(ipos []models.IPO) []CountdownSubject {
	subjects := make([]CountdownSubject, 0, len(ipos))
	for _, ipo := range ipos {
		if ipo.Dates.Close == nil {
			continue
		}
		subjects = append(subjects, CountdownSubject{ID: ipo.ID.String(), CloseDate: *ipo.Dates.Close})
	}
	return subjects
}

// GetServiceMetrics returns the current engine metrics
func (e *IPOEngine) GetServiceMetrics() *shared.ServiceMetrics {
	return e.serviceMetrics
}
