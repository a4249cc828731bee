package jobs

import (
	"context"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/sirupsen/logrus"
)

// CacheRefreshJob reloads raw records into the cache and logs how the
// current list classifies, so that stale or inconsistent data shows up in
// the logs before users see it.
type CacheRefreshJob struct {
	Cache      *services.CachedIPORepository
	IPOService *services.IPOService
	Timeout    time.Duration
	Now        func() time.Time
}

func NewCacheRefreshJob(cache *services.CachedIPORepository, ipoService *services.IPOService) *CacheRefreshJob {
	return &CacheRefreshJob{
		Cache:      cache,
		IPOService: ipoService,
		Timeout:    2 * time.Minute,
		Now:        time.Now,
	}
}

// Run performs one refresh and returns the number of records per status.
func (j *CacheRefreshJob) Run() map[models.IPOStatus]int {
	logrus.Info("Starting Cache Refresh Job")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	if j.Cache != nil {
		count, err := j.Cache.Warmup(ctx)
		if err != nil {
			logrus.WithError(err).Error("Cache Refresh Job failed to warm up cache")
			return nil
		}
		logrus.WithField("records", count).Debug("IPO cache warmed up")
	}

	ipos, err := j.IPOService.GetIPOs(ctx, "all", j.Now())
	if err != nil {
		logrus.WithError(err).Error("Cache Refresh Job failed to list IPOs")
		return nil
	}

	counts := make(map[models.IPOStatus]int, len(models.AllStatuses))
	missingClose := 0
	for _, ipo := range ipos {
		counts[ipo.Status]++
		if ipo.Dates.Open != nil && ipo.Dates.Close == nil {
			missingClose++
		}
		if err := services.ValidateTimeline(ipo.Dates); err != nil {
			logrus.WithFields(logrus.Fields{
				"ipo_id":   ipo.ID,
				"stock_id": ipo.StockID,
				"error":    err.Error(),
			}).Warn("Stored IPO has an inconsistent timeline")
		}
	}

	fields := logrus.Fields{
		"total":    len(ipos),
		"duration": time.Since(start),
	}
	for _, status := range models.AllStatuses {
		fields[string(status)] = counts[status]
	}
	if missingClose > 0 {
		fields["open_without_close"] = missingClose
	}
	logrus.WithFields(fields).Info("Cache Refresh Job completed")

	return counts
}
