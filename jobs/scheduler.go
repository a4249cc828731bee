package jobs

import (
	"fmt"

	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// metricsSummaryCron logs metric summaries at the top of every hour
const metricsSummaryCron = "0 0 * * * *"

// Scheduler runs the background jobs on cron expressions with a seconds field.
type Scheduler struct {
	Cron    *cron.Cron
	Refresh *CacheRefreshJob
	Metrics []*shared.ServiceMetrics

	// Database and HTTP are optional; nil trackers are skipped in summaries.
	Database *shared.DatabaseMetrics
	HTTP     *shared.HTTPMetrics
}

func NewScheduler(refresh *CacheRefreshJob, metrics ...*shared.ServiceMetrics) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Refresh: refresh,
		Metrics: metrics,
	}
}

// RegisterAll registers the cache refresh and the metrics summary.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if s.Refresh != nil {
		if _, err := s.Cron.AddFunc(refreshCron, func() { s.Refresh.Run() }); err != nil {
			return fmt.Errorf("register cache refresh: %w", err)
		}
	}
	if _, err := s.Cron.AddFunc(metricsSummaryCron, s.logMetrics); err != nil {
		return fmt.Errorf("register metrics summary: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.WithField("entries", len(s.Cron.Entries())).Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("Scheduler stopped")
}

// TrackRequestMetrics adds the store's query metrics and the API's request
// metrics to the hourly summary.
func (s *Scheduler) TrackRequestMetrics(database *shared.DatabaseMetrics, http *shared.HTTPMetrics) *Scheduler {
	s.Database = database
	s.HTTP = http
	return s
}

func (s *Scheduler) logMetrics() {
	for _, m := range s.Metrics {
		if m != nil {
			m.LogSummary()
		}
	}
	if s.Database != nil {
		s.Database.LogDatabaseSummary()
	}
	if s.HTTP != nil {
		s.HTTP.LogHTTPSummary()
	}
}
