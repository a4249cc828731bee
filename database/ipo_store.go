package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const ipoColumns = `id, stock_id, name, slug, open_date, close_date, allotment_date, listing_date,
	price_min, price_max, lot_size, gmp_current, reservations, subscription_categories,
	issue_total_shares, issue_size_shares, created_at, updated_at, created_by`

// storedReservation and storedCategory are the JSONB shapes of the input
// columns. Derived values are never written.
type storedReservation struct {
	Category      string `json:"category"`
	Enabled       bool   `json:"enabled"`
	SharesOffered *int64 `json:"shares_offered,omitempty"`
	AnchorShares  *int64 `json:"anchor_shares,omitempty"`
}

type storedCategory struct {
	Category      string `json:"category"`
	Enabled       bool   `json:"enabled"`
	SharesOffered *int64 `json:"shares_offered,omitempty"`
	AppliedShares *int64 `json:"applied_shares,omitempty"`
}

// RetryConfig holds retry configuration for database operations
type RetryConfig struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

var _ services.IPORepository = (*IPOStore)(nil)

// IPOStore persists raw IPO records in the ipo_records table.
type IPOStore struct {
	db                 *sql.DB
	retry              RetryConfig
	slowQueryThreshold time.Duration
	dbMetrics          *shared.DatabaseMetrics
}

func NewIPOStore(db *sql.DB, config *shared.DatabaseConfig) *IPOStore {
	threshold := shared.NewDefaultUnifiedConfiguration().Database.SlowQueryThreshold
	if config != nil && config.SlowQueryThreshold > 0 {
		threshold = config.SlowQueryThreshold
	}
	return &IPOStore{
		db:                 db,
		retry:              DefaultRetryConfig(),
		slowQueryThreshold: threshold,
		dbMetrics:          shared.NewDatabaseMetrics(),
	}
}

func (s *IPOStore) ListIPOs(ctx context.Context) ([]models.IPO, error) {
	query := `SELECT ` + ipoColumns + ` FROM ipo_records ORDER BY open_date DESC NULLS LAST, stock_id`

	var ipos []models.IPO
	err := s.executeWithRetry(ctx, "list_ipos", func() error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		ipos = ipos[:0]
		for rows.Next() {
			ipo, err := scanIPO(rows)
			if err != nil {
				return err
			}
			ipos = append(ipos, ipo)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, s.classify(err, "list_ipos")
	}
	return ipos, nil
}

func (s *IPOStore) GetIPOByID(ctx context.Context, id uuid.UUID) (*models.IPO, error) {
	query := `SELECT ` + ipoColumns + ` FROM ipo_records WHERE id = $1`

	var ipo models.IPO
	found := true
	err := s.executeWithRetry(ctx, "get_ipo", func() error {
		var err error
		ipo, err = scanIPO(s.db.QueryRowContext(ctx, query, id))
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return nil, s.classify(err, "get_ipo")
	}
	if !found {
		return nil, nil
	}
	return &ipo, nil
}

func (s *IPOStore) CreateIPO(ctx context.Context, ipo *models.IPO) error {
	if ipo.ID == uuid.Nil {
		ipo.ID = uuid.New()
	}

	reservations, categories, err := encodeJSONColumns(ipo)
	if err != nil {
		return shared.NewServiceError(shared.ErrorCategoryProcessing, "ENCODE_FAILED",
			"failed to encode ipo json columns", "ipo-store", "create_ipo", false, err)
	}

	var lotSize *int64
	if ipo.LotSize != nil {
		v := int64(*ipo.LotSize)
		lotSize = &v
	}

	query := `INSERT INTO ipo_records (id, stock_id, name, slug, open_date, close_date, allotment_date,
		listing_date, price_min, price_max, lot_size, gmp_current, reservations, subscription_categories,
		issue_total_shares, issue_size_shares, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at`

	err = s.executeWithRetry(ctx, "create_ipo", func() error {
		return s.db.QueryRowContext(ctx, query,
			ipo.ID, ipo.StockID, ipo.Name, ipo.Slug,
			dateArg(ipo.Dates.Open), dateArg(ipo.Dates.Close), dateArg(ipo.Dates.Allotment), dateArg(ipo.Dates.Listing),
			ipo.PriceBand.Min, ipo.PriceBand.Max, lotSize, ipo.GMP.Current,
			reservations, categories,
			ipo.IssueBreakdown.Total.Shares, ipo.IssueSize.Shares, ipo.CreatedBy,
		).Scan(&ipo.CreatedAt, &ipo.UpdatedAt)
	})
	if err != nil {
		return s.classify(err, "create_ipo")
	}

	logrus.WithFields(logrus.Fields{
		"component": "IPOStore",
		"ipo_id":    ipo.ID,
		"stock_id":  ipo.StockID,
	}).Debug("Inserted IPO record")
	return nil
}

// GetDatabaseMetrics returns the store's query metrics with fresh pool stats
func (s *IPOStore) GetDatabaseMetrics() *shared.DatabaseMetrics {
	s.dbMetrics.SetConnectionPoolStats(ConnectionStatsMap(s.db.Stats()))
	return s.dbMetrics
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIPO(row rowScanner) (models.IPO, error) {
	var ipo models.IPO
	var lotSize *int64
	var reservations, categories []byte

	err := row.Scan(
		&ipo.ID, &ipo.StockID, &ipo.Name, &ipo.Slug,
		&ipo.Dates.Open, &ipo.Dates.Close, &ipo.Dates.Allotment, &ipo.Dates.Listing,
		&ipo.PriceBand.Min, &ipo.PriceBand.Max, &lotSize, &ipo.GMP.Current,
		&reservations, &categories,
		&ipo.IssueBreakdown.Total.Shares, &ipo.IssueSize.Shares,
		&ipo.CreatedAt, &ipo.UpdatedAt, &ipo.CreatedBy,
	)
	if err != nil {
		return models.IPO{}, err
	}

	if lotSize != nil && *lotSize <= math.MaxInt32 {
		v := int(*lotSize)
		ipo.LotSize = &v
	}

	if err := decodeJSONColumns(&ipo, reservations, categories); err != nil {
		return models.IPO{}, fmt.Errorf("failed to decode json columns of %s: %w", ipo.ID, err)
	}
	return ipo, nil
}

func encodeJSONColumns(ipo *models.IPO) (string, string, error) {
	reservations := make([]storedReservation, 0, len(ipo.Reservations))
	for _, r := range ipo.Reservations {
		reservations = append(reservations, storedReservation{
			Category:      r.Category,
			Enabled:       r.Enabled,
			SharesOffered: r.SharesOffered,
			AnchorShares:  r.AnchorShares,
		})
	}
	categories := make([]storedCategory, 0, len(ipo.Subscription.Categories))
	for _, c := range ipo.Subscription.Categories {
		categories = append(categories, storedCategory{
			Category:      c.Category,
			Enabled:       c.Enabled,
			SharesOffered: c.SharesOffered,
			AppliedShares: c.AppliedShares,
		})
	}

	r, err := json.Marshal(reservations)
	if err != nil {
		return "", "", err
	}
	c, err := json.Marshal(categories)
	if err != nil {
		return "", "", err
	}
	return string(r), string(c), nil
}

func decodeJSONColumns(ipo *models.IPO, reservations, categories []byte) error {
	if len(reservations) > 0 {
		var stored []storedReservation
		if err := json.Unmarshal(reservations, &stored); err != nil {
			return err
		}
		for _, r := range stored {
			ipo.Reservations = append(ipo.Reservations, models.Reservation{
				Category:      r.Category,
				Enabled:       r.Enabled,
				SharesOffered: r.SharesOffered,
				AnchorShares:  r.AnchorShares,
			})
		}
	}
	if len(categories) > 0 {
		var stored []storedCategory
		if err := json.Unmarshal(categories, &stored); err != nil {
			return err
		}
		for _, c := range stored {
			ipo.Subscription.Categories = append(ipo.Subscription.Categories, models.SubscriptionCategory{
				Category:      c.Category,
				Enabled:       c.Enabled,
				SharesOffered: c.SharesOffered,
				AppliedShares: c.AppliedShares,
			})
		}
	}
	return nil
}

// dateArg keeps only the civil date of t for a DATE column
func dateArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return services.MarketDate(*t).Format("2006-01-02")
}

// executeWithRetry runs operation with exponential backoff on retryable errors
func (s *IPOStore) executeWithRetry(ctx context.Context, name string, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(s.retry.BaseDelay) *
				math.Pow(s.retry.BackoffFactor, float64(attempt-1)))
			if delay > s.retry.MaxDelay {
				delay = s.retry.MaxDelay
			}

			logrus.WithFields(logrus.Fields{
				"operation": name,
				"attempt":   attempt,
				"delay":     delay,
				"error":     lastErr,
			}).Warn("Retrying database operation")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		startTime := time.Now()
		err := operation()
		duration := time.Since(startTime)
		slow := duration > s.slowQueryThreshold
		s.dbMetrics.RecordQuery(err == nil, duration, slow)

		if slow {
			logrus.WithFields(logrus.Fields{
				"operation": name,
				"duration":  duration,
				"attempt":   attempt,
			}).Warn("Slow database query detected")
		}

		if err == nil {
			return nil
		}

		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"operation":   name,
		"max_retries": s.retry.MaxRetries,
		"final_error": lastErr,
	}).Error("Database operation failed after all retries")

	return fmt.Errorf("database operation failed after %d retries: %w", s.retry.MaxRetries, lastErr)
}

// isRetryable treats connection exceptions, transaction rollbacks and
// operator interventions as transient.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "40", "57":
			return true
		default:
			return false
		}
	}
	return shared.IsRetryableError(err)
}

func (s *IPOStore) classify(err error, operation string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return shared.NewServiceError(
			shared.ErrorCategoryConflict,
			"DUPLICATE_IPO",
			"ipo with the same id or stock id already exists",
			"ipo-store",
			operation,
			false,
			err,
		)
	}
	return shared.NewServiceError(
		shared.ErrorCategoryDatabase,
		"QUERY_FAILED",
		fmt.Sprintf("database %s failed", operation),
		"ipo-store",
		operation,
		isRetryable(err),
		err,
	)
}
