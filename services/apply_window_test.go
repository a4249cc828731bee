package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/config"
)

func TestCanApply(t *testing.T) {
	start := day("2024-01-01")
	end := day("2024-01-03")

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before opening cutoff", istAt(2024, time.January, 1, 9, 59), false},
		{"at opening cutoff", istAt(2024, time.January, 1, 10, 0), true},
		{"after opening cutoff", istAt(2024, time.January, 1, 10, 1), true},
		{"middle day evening", istAt(2024, time.January, 2, 22, 0), true},
		{"at closing cutoff", istAt(2024, time.January, 3, 16, 0), true},
		{"after closing cutoff", istAt(2024, time.January, 3, 16, 1), false},
		{"same instant in UTC", time.Date(2024, time.January, 3, 10, 29, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanApply(start, end, tt.now); got != tt.want {
				t.Errorf("CanApply at %s = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestCanApplyMissingDates(t *testing.T) {
	now := istAt(2024, time.January, 2, 12, 0)
	if CanApply(nil, day("2024-01-03"), now) {
		t.Error("missing start date should not allow applying")
	}
	if CanApply(day("2024-01-01"), nil, now) {
		t.Error("missing end date should not allow applying")
	}
}

func TestNewTradingWindow(t *testing.T) {
	window, err := NewTradingWindow(config.MarketConfig{Timezone: "UTC", ApplyOpen: "09:15", ApplyClose: "15:30"})
	if err != nil {
		t.Fatalf("NewTradingWindow: %v", err)
	}
	if window.OpenHour != 9 || window.OpenMinute != 15 || window.CloseHour != 15 || window.CloseMinute != 30 {
		t.Errorf("unexpected window %+v", window)
	}

	start, end := day("2024-01-01"), day("2024-01-01")
	if !window.CanApply(start, end, time.Date(2024, time.January, 1, 9, 15, 0, 0, time.UTC)) {
		t.Error("configured opening cutoff should be inclusive")
	}
	if window.CanApply(start, end, time.Date(2024, time.January, 1, 15, 31, 0, 0, time.UTC)) {
		t.Error("configured closing cutoff should be enforced")
	}

	if _, err := NewTradingWindow(config.MarketConfig{ApplyOpen: "10am", ApplyClose: "16:00"}); err == nil {
		t.Error("expected error for malformed open clock")
	}
}
