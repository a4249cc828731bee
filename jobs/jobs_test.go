package jobs

import (
	"testing"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/services"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func civil(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func newRefreshJob(t *testing.T) (*CacheRefreshJob, *services.CacheService) {
	t.Helper()

	repository := services.NewMemoryIPORepository(
		models.IPO{StockID: "A", Dates: models.IPODates{Open: civil("2024-01-01"), Close: civil("2024-01-03")}},
		models.IPO{StockID: "B", Dates: models.IPODates{Open: civil("2024-02-01"), Close: civil("2024-02-03")}},
		models.IPO{StockID: "C", Dates: models.IPODates{Listing: civil("2023-12-20")}},
		models.IPO{StockID: "D", Dates: models.IPODates{Open: civil("2024-01-05"), Close: civil("2024-01-01")}},
	)
	cache := services.NewCacheServiceWithConfig(time.Minute, 10)
	t.Cleanup(cache.Close)
	cached := services.NewCachedIPORepository(repository, cache)

	job := NewCacheRefreshJob(cached, services.NewIPOService(cached, nil))
	job.Now = func() time.Time {
		return time.Date(2024, time.January, 2, 12, 0, 0, 0, time.FixedZone("IST", 5*60*60+30*60))
	}
	return job, cache
}

func TestCacheRefreshJobRun(t *testing.T) {
	job, cache := newRefreshJob(t)

	counts := job.Run()
	require.NotNil(t, counts)
	assert.Equal(t, 1, counts[models.StatusOpen])
	assert.Equal(t, 1, counts[models.StatusListed])
	// D has an inverted timeline: its close date has passed, so it reads as Closed
	assert.Equal(t, 1, counts[models.StatusClosed])
	assert.Equal(t, 1, counts[models.StatusUpcoming])

	assert.Greater(t, cache.Size(), 0)
}

func TestSchedulerRegisterAll(t *testing.T) {
	job, _ := newRefreshJob(t)

	scheduler := NewScheduler(job, shared.NewServiceMetrics("test"))
	require.NoError(t, scheduler.RegisterAll("0 */5 * * * *"))
	assert.Len(t, scheduler.Cron.Entries(), 2)

	scheduler.Start()
	scheduler.Stop()
}

func TestSchedulerRejectsInvalidCron(t *testing.T) {
	job, _ := newRefreshJob(t)

	scheduler := NewScheduler(job)
	assert.Error(t, scheduler.RegisterAll("every five minutes"))
}

func TestSchedulerWithoutRefreshJob(t *testing.T) {
	scheduler := NewScheduler(nil)
	require.NoError(t, scheduler.RegisterAll("not used"))
	assert.Len(t, scheduler.Cron.Entries(), 1)
	scheduler.logMetrics()
}

func TestSchedulerLogsRequestMetrics(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	queries := shared.NewDatabaseMetrics()
	queries.RecordQuery(true, 5*time.Millisecond, false)
	requests := shared.NewHTTPMetrics()
	requests.RecordHTTPRequest(false, 503, time.Millisecond, "Service Unavailable", false)

	service := shared.NewServiceMetrics("test")
	service.RecordRequest(false, time.Millisecond)

	scheduler := NewScheduler(nil, service).TrackRequestMetrics(queries, requests)
	scheduler.logMetrics()

	messages := map[string]logrus.Fields{}
	for _, entry := range hook.AllEntries() {
		messages[entry.Message] = entry.Data
	}
	require.Contains(t, messages, "Service metrics summary")
	require.Contains(t, messages, "Database metrics summary")
	require.Contains(t, messages, "HTTP metrics summary")
	assert.Equal(t, 100.0, messages["Service metrics summary"]["failure_rate"])
	assert.EqualValues(t, 1, messages["Database metrics summary"]["total_queries"])
	assert.EqualValues(t, 1, messages["HTTP metrics summary"]["failed_requests"])
}
