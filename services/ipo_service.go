package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// IPOAuditLogger writes structured audit entries for record ingestion
type IPOAuditLogger struct {
	serviceName string
}

// NewIPOAuditLogger creates a new audit logger
func NewIPOAuditLogger() *IPOAuditLogger {
	return &IPOAuditLogger{
		serviceName: "ipo-service",
	}
}

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	Timestamp   time.Time              `json:"timestamp"`
	ServiceName string                 `json:"service_name"`
	Operation   string                 `json:"operation"`
	EntityType  string                 `json:"entity_type"`
	EntityID    string                 `json:"entity_id"`
	UserID      *string                `json:"user_id,omitempty"`
	Success     bool                   `json:"success"`
	ErrorMsg    *string                `json:"error_msg,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// LogIPOCreation logs an ingestion attempt
func (a *IPOAuditLogger) LogIPOCreation(ipo *models.IPO, userID *string, err error) {
	entry := AuditEntry{
		Timestamp:   time.Now(),
		ServiceName: a.serviceName,
		Operation:   "CREATE",
		EntityType:  "IPO",
		EntityID:    ipo.StockID,
		UserID:      userID,
		Success:     err == nil,
		Metadata: map[string]interface{}{
			"ipo_id":       ipo.ID.String(),
			"company_name": ipo.Name,
			"reservations": len(ipo.Reservations),
			"categories":   len(ipo.Subscription.Categories),
		},
	}
	if err != nil {
		msg := err.Error()
		entry.ErrorMsg = &msg
	}

	a.logAuditEntry(entry)
}

func (a *IPOAuditLogger) logAuditEntry(entry AuditEntry) {
	logFields := logrus.Fields{
		"audit_timestamp": entry.Timestamp,
		"service_name":    entry.ServiceName,
		"operation":       entry.Operation,
		"entity_type":     entry.EntityType,
		"entity_id":       entry.EntityID,
		"success":         entry.Success,
	}

	if entry.UserID != nil {
		logFields["user_id"] = *entry.UserID
	}
	if entry.ErrorMsg != nil {
		logFields["error_msg"] = *entry.ErrorMsg
	}
	for key, value := range entry.Metadata {
		logFields["meta_"+key] = value
	}

	if entry.Success {
		logrus.WithFields(logFields).Info("Audit log entry")
	} else {
		logrus.WithFields(logFields).Warn("Audit log entry - operation failed")
	}
}

// IPOService serves annotated IPO records. Records come from the repository
// raw; every read runs them through the engine against the caller's clock.
type IPOService struct {
	repository     IPORepository
	engine         *IPOEngine
	utility        *UtilityService
	auditLogger    *IPOAuditLogger
	serviceMetrics *shared.ServiceMetrics
}

func NewIPOService(repository IPORepository, engine *IPOEngine) *IPOService {
	if engine == nil {
		engine = NewDefaultIPOEngine()
	}
	return &IPOService{
		repository:     repository,
		engine:         engine,
		utility:        NewUtilityService(),
		auditLogger:    NewIPOAuditLogger(),
		serviceMetrics: shared.NewServiceMetrics("IPO_Service"),
	}
}

// Engine returns the engine used for annotation
func (s *IPOService) Engine() *IPOEngine {
	return s.engine
}

// GetIPOs returns every record annotated at now. A non-empty status keeps
// only the records classified with that status; "all" and "" keep everything.
func (s *IPOService) GetIPOs(ctx context.Context, status string, now time.Time) ([]models.IPO, error) {
	start := time.Now()

	var filter models.IPOStatus
	if status != "" && status != "all" {
		parsed, err := models.ParseIPOStatus(status)
		if err != nil {
			s.RecordServiceOperation("get_ipos", false, time.Since(start))
			return nil, shared.NewServiceError(
				shared.ErrorCategoryValidation,
				"INVALID_STATUS",
				err.Error(),
				"ipo-service",
				"get_ipos",
				false,
				err,
			)
		}
		filter = parsed
	}

	ipos, err := s.repository.ListIPOs(ctx)
	if err != nil {
		s.RecordServiceOperation("get_ipos", false, time.Since(start))
		return nil, fmt.Errorf("failed to list IPOs: %w", err)
	}

	var result []models.IPO
	if filter == "" {
		result = s.engine.AnnotateAll(ipos, now)
	} else {
		result = s.engine.FilterByStatus(ipos, filter, now)
	}

	s.RecordServiceOperation("get_ipos", true, time.Since(start))
	logrus.WithFields(logrus.Fields{
		"component": "IPOService",
		"status":    status,
		"count":     len(result),
	}).Debug("Served IPO list")

	return result, nil
}

// GetIPOByID returns the record annotated at now, or a not_found error
func (s *IPOService) GetIPOByID(ctx context.Context, id string, now time.Time) (*models.IPO, error) {
	ipo, err := s.getRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	annotated := s.engine.Annotate(*ipo, now)
	return &annotated, nil
}

// GetCountdown returns the close countdown of a record at now
func (s *IPOService) GetCountdown(ctx context.Context, id string, now time.Time) (models.Countdown, error) {
	ipo, err := s.getRaw(ctx, id)
	if err != nil {
		return models.Countdown{}, err
	}
	countdown, ok := s.engine.Countdown(*ipo, now)
	if !ok {
		return models.Countdown{}, shared.NewServiceError(
			shared.ErrorCategoryNotFound,
			"NO_CLOSE_DATE",
			"ipo has no close date",
			"ipo-service",
			"get_countdown",
			false,
			nil,
		)
	}
	return countdown, nil
}

// ApplyWindow reports whether the Apply action is allowed at now, together
// with the day-level status of the record.
type ApplyWindow struct {
	CanApply bool             `json:"can_apply"`
	Status   models.IPOStatus `json:"status"`
}

func (s *IPOService) GetApplyWindow(ctx context.Context, id string, now time.Time) (ApplyWindow, error) {
	ipo, err := s.getRaw(ctx, id)
	if err != nil {
		return ApplyWindow{}, err
	}
	return ApplyWindow{
		CanApply: s.engine.CanApply(*ipo, now),
		Status:   ClassifyStatus(ipo.Dates, now, GranularityDay, s.engine.Location()),
	}, nil
}

// GetCountdownSubjects resolves ids into ticker subjects. An empty id list
// selects every record that is currently Open.
func (s *IPOService) GetCountdownSubjects(ctx context.Context, ids []string, now time.Time) ([]CountdownSubject, error) {
	if len(ids) == 0 {
		open, err := s.GetIPOs(ctx, string(models.StatusOpen), now)
		if err != nil {
			return nil, err
		}
		return s.engine.CountdownSubjects(open), nil
	}

	ipos := make([]models.IPO, 0, len(ids))
	for _, id := range ids {
		ipo, err := s.getRaw(ctx, id)
		if err != nil {
			return nil, err
		}
		ipos = append(ipos, *ipo)
	}
	return s.engine.CountdownSubjects(ipos), nil
}

// Evaluate annotates a record that is not stored
func (s *IPOService) Evaluate(ipo models.IPO, now time.Time, granularity Granularity) models.IPO {
	start := time.Now()
	annotated := s.engine.AnnotateWithGranularity(ipo, now, granularity)
	s.RecordServiceOperation("evaluate", true, time.Since(start))
	return annotated
}

// CreateIPO validates the timeline and stores the raw inputs of ipo.
// Derived fields are cleared before storage.
func (s *IPOService) CreateIPO(ctx context.Context, ipo *models.IPO) error {
	start := time.Now()

	if err := ValidateTimeline(ipo.Dates); err != nil {
		s.auditLogger.LogIPOCreation(ipo, ipo.CreatedBy, err)
		s.RecordServiceOperation("create_ipo", false, time.Since(start))
		return err
	}

	if ipo.ID == uuid.Nil {
		ipo.ID = uuid.New()
	}
	if ipo.Slug == nil || *ipo.Slug == "" {
		slug := s.utility.GenerateSlug(ipo.Name)
		ipo.Slug = &slug
	}
	stripDerived(ipo)

	err := s.repository.CreateIPO(ctx, ipo)
	s.auditLogger.LogIPOCreation(ipo, ipo.CreatedBy, err)
	s.RecordServiceOperation("create_ipo", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to create IPO: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"ipo_id":   ipo.ID,
		"ipo_name": ipo.Name,
		"stock_id": ipo.StockID,
	}).Info("IPO created successfully")

	return nil
}

func (s *IPOService) getRaw(ctx context.Context, id string) (*models.IPO, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryValidation,
			"INVALID_ID",
			"ipo id is not a valid UUID",
			"ipo-service",
			"get_ipo",
			false,
			err,
		)
	}

	ipo, err := s.repository.GetIPOByID(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to load IPO %s: %w", id, err)
	}
	if ipo == nil {
		return nil, shared.NewServiceError(
			shared.ErrorCategoryNotFound,
			"IPO_NOT_FOUND",
			"IPO not found",
			"ipo-service",
			"get_ipo",
			false,
			nil,
		)
	}
	return ipo, nil
}

func stripDerived(ipo *models.IPO) {
	ipo.Status = ""
	ipo.MinInvestment = nil
	ipo.GMP.Percent = nil
	ipo.GMP.EstListingPrice = nil
	for i := range ipo.Reservations {
		ipo.Reservations[i].Percentage = nil
	}
	for i := range ipo.Subscription.Categories {
		ipo.Subscription.Categories[i].EffectiveOffered = nil
		ipo.Subscription.Categories[i].Times = nil
	}
	ipo.Subscription.TotalOffered = nil
	ipo.Subscription.TotalApplied = nil
	ipo.Subscription.TotalTimes = nil
}

// GetServiceMetrics returns the current service metrics
func (s *IPOService) GetServiceMetrics() *shared.ServiceMetrics {
	return s.serviceMetrics
}

// RecordServiceOperation records a service operation with metrics tracking
func (s *IPOService) RecordServiceOperation(operationName string, success bool, processingTime time.Duration) {
	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequest(success, processingTime)
		s.serviceMetrics.IncrementCustomCounter(operationName)
	}
}
