package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/google/uuid"
)

var (
	openID     = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	upcomingID = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	listedID   = uuid.MustParse("33333333-3333-4333-8333-333333333333")
)

func seedIPOs() []models.IPO {
	return []models.IPO{
		{
			ID:        openID,
			StockID:   "OPEN",
			Name:      "Open Co",
			Dates:     models.IPODates{Open: day("2024-01-01"), Close: day("2024-01-03")},
			PriceBand: models.PriceBand{Max: floatPtr(100)},
			GMP:       models.GMP{Current: floatPtr(20)},
		},
		{
			ID:      upcomingID,
			StockID: "SOON",
			Name:    "Soon Co",
			Dates:   models.IPODates{Open: day("2024-02-01"), Close: day("2024-02-03")},
		},
		{
			ID:      listedID,
			StockID: "DONE",
			Name:    "Done Co",
			Dates:   models.IPODates{Open: day("2023-12-01"), Close: day("2023-12-03"), Listing: day("2023-12-08")},
		},
	}
}

func newTestService() *IPOService {
	return NewIPOService(NewMemoryIPORepository(seedIPOs()...), nil)
}

func TestIPOServiceGetIPOs(t *testing.T) {
	service := newTestService()
	now := istAt(2024, time.January, 2, 12, 0)

	all, err := service.GetIPOs(context.Background(), "all", now)
	if err != nil {
		t.Fatalf("GetIPOs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}

	open, err := service.GetIPOs(context.Background(), "open", now)
	if err != nil {
		t.Fatalf("GetIPOs(open): %v", err)
	}
	if len(open) != 1 || open[0].ID != openID || open[0].Status != models.StatusOpen {
		t.Errorf("open records = %+v", open)
	}
	assertFloatPtr(t, "annotated gmp percent", open[0].GMP.Percent, floatPtr(20))

	listed, _ := service.GetIPOs(context.Background(), "Listed", now)
	if len(listed) != 1 || listed[0].ID != listedID {
		t.Errorf("listed records = %+v", listed)
	}
}

func TestIPOServiceGetIPOsInvalidStatus(t *testing.T) {
	_, err := newTestService().GetIPOs(context.Background(), "pending", time.Now())
	if !shared.IsCategory(err, shared.ErrorCategoryValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestIPOServiceStatusFollowsClock(t *testing.T) {
	service := newTestService()

	before, _ := service.GetIPOByID(context.Background(), openID.String(), istAt(2024, time.January, 3, 12, 0))
	after, _ := service.GetIPOByID(context.Background(), openID.String(), istAt(2024, time.January, 4, 12, 0))
	if before.Status != models.StatusOpen || after.Status != models.StatusClosed {
		t.Errorf("statuses = %s, %s; want Open, Closed", before.Status, after.Status)
	}
}

func TestIPOServiceGetIPOByIDErrors(t *testing.T) {
	service := newTestService()

	_, err := service.GetIPOByID(context.Background(), "nope", time.Now())
	if !shared.IsCategory(err, shared.ErrorCategoryValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	_, err = service.GetIPOByID(context.Background(), uuid.NewString(), time.Now())
	if !shared.IsCategory(err, shared.ErrorCategoryNotFound) {
		t.Errorf("expected not_found error, got %v", err)
	}
}

func TestIPOServiceCountdownAndApplyWindow(t *testing.T) {
	service := newTestService()
	now := istAt(2024, time.January, 3, 14, 0)

	countdown, err := service.GetCountdown(context.Background(), openID.String(), now)
	if err != nil {
		t.Fatalf("GetCountdown: %v", err)
	}
	if countdown.Formatted != "Closes in 2h 0m" {
		t.Errorf("countdown = %+v", countdown)
	}

	window, err := service.GetApplyWindow(context.Background(), openID.String(), now)
	if err != nil {
		t.Fatalf("GetApplyWindow: %v", err)
	}
	if !window.CanApply || window.Status != models.StatusOpen {
		t.Errorf("window = %+v", window)
	}

	late, _ := service.GetApplyWindow(context.Background(), openID.String(), istAt(2024, time.January, 3, 17, 0))
	if late.CanApply || late.Status != models.StatusOpen {
		t.Errorf("after cutoff window = %+v, want Open without apply", late)
	}
}

func TestIPOServiceCountdownWithoutCloseDate(t *testing.T) {
	repo := NewMemoryIPORepository(models.IPO{ID: openID, StockID: "NODATE"})
	_, err := NewIPOService(repo, nil).GetCountdown(context.Background(), openID.String(), time.Now())
	if !shared.IsCategory(err, shared.ErrorCategoryNotFound) {
		t.Errorf("expected not_found error, got %v", err)
	}
}

func TestIPOServiceCountdownSubjects(t *testing.T) {
	service := newTestService()
	now := istAt(2024, time.January, 2, 12, 0)

	subjects, err := service.GetCountdownSubjects(context.Background(), nil, now)
	if err != nil {
		t.Fatalf("GetCountdownSubjects: %v", err)
	}
	if len(subjects) != 1 || subjects[0].ID != openID.String() {
		t.Errorf("default subjects = %+v", subjects)
	}

	subjects, err = service.GetCountdownSubjects(context.Background(), []string{upcomingID.String(), listedID.String()}, now)
	if err != nil || len(subjects) != 2 {
		t.Errorf("explicit subjects = %+v, %v", subjects, err)
	}
}

func TestIPOServiceCreateIPO(t *testing.T) {
	repo := NewMemoryIPORepository()
	service := NewIPOService(repo, nil)

	ipo := &models.IPO{
		StockID: "NEW",
		Name:    "New Listing Ltd",
		Dates:   models.IPODates{Open: day("2024-03-01"), Close: day("2024-03-05")},
		GMP:     models.GMP{Current: floatPtr(5), Percent: floatPtr(99)},
		Status:  models.StatusListed,
	}
	if err := service.CreateIPO(context.Background(), ipo); err != nil {
		t.Fatalf("CreateIPO: %v", err)
	}
	if ipo.ID == uuid.Nil || ipo.Slug == nil || *ipo.Slug != "new-listing" {
		t.Errorf("id/slug not assigned: %s %v", ipo.ID, ipo.Slug)
	}

	stored, _ := repo.GetIPOByID(context.Background(), ipo.ID)
	if stored == nil || stored.Status != "" || stored.GMP.Percent != nil {
		t.Errorf("derived fields were stored: %+v", stored)
	}

	err := service.CreateIPO(context.Background(), &models.IPO{StockID: "NEW", Name: "Again"})
	if !shared.IsCategory(err, shared.ErrorCategoryConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestIPOServiceCreateIPORejectsTimeline(t *testing.T) {
	repo := NewMemoryIPORepository()
	err := NewIPOService(repo, nil).CreateIPO(context.Background(), &models.IPO{
		StockID: "BAD",
		Dates:   models.IPODates{Open: day("2024-03-05"), Close: day("2024-03-01")},
	})

	var serviceErr *shared.ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code != "INVALID_TIMELINE" {
		t.Fatalf("expected INVALID_TIMELINE, got %v", err)
	}
	if all, _ := repo.ListIPOs(context.Background()); len(all) != 0 {
		t.Error("rejected record was stored")
	}
}

func TestIPOServiceCachedRepositoryInvalidation(t *testing.T) {
	cache := NewCacheServiceWithConfig(time.Minute, 10)
	defer cache.Close()
	cached := NewCachedIPORepository(NewMemoryIPORepository(seedIPOs()...), cache)
	service := NewIPOService(cached, nil)
	now := istAt(2024, time.January, 2, 12, 0)

	if all, _ := service.GetIPOs(context.Background(), "", now); len(all) != 3 {
		t.Fatalf("got %d records", len(all))
	}
	if err := service.CreateIPO(context.Background(), &models.IPO{StockID: "FRESH", Name: "Fresh"}); err != nil {
		t.Fatalf("CreateIPO: %v", err)
	}
	if all, _ := service.GetIPOs(context.Background(), "", now); len(all) != 4 {
		t.Errorf("cache served stale list: %d records", len(all))
	}
}

func TestIPOServiceEvaluate(t *testing.T) {
	service := newTestService()
	closeAt := istAt(2024, time.January, 3, 10, 0)
	ipo := models.IPO{Dates: models.IPODates{Open: day("2024-01-01"), Close: &closeAt}}
	now := istAt(2024, time.January, 3, 12, 0)

	if got := service.Evaluate(ipo, now, GranularityDay).Status; got != models.StatusOpen {
		t.Errorf("day evaluation = %s", got)
	}
	if got := service.Evaluate(ipo, now, GranularityInstant).Status; got != models.StatusClosed {
		t.Errorf("instant evaluation = %s", got)
	}
}
