package services

import (
	"fmt"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/fenilmodi00/ipo-dashboard/shared"
)

// TimelineViolation describes two present dates that are out of order.
type TimelineViolation struct {
	Earlier string `json:"earlier"`
	Later   string `json:"later"`
	Message string `json:"message"`
}

// ValidateTimeline enforces open <= close <= allotment <= listing over the dates
// that are present, comparing civil dates. It is meant for the ingestion
// boundary; ClassifyStatus never calls it and keeps classifying inconsistent
// records best-effort.
func ValidateTimeline(dates models.IPODates) error {
	ordered := []struct {
		name string
		date *time.Time
	}{
		{"open", dates.Open},
		{"close", dates.Close},
		{"allotment", dates.Allotment},
		{"listing", dates.Listing},
	}

	var violations []TimelineViolation
	prevName := ""
	var prev time.Time

	for _, field := range ordered {
		if field.date == nil {
			continue
		}
		current := MarketDate(*field.date)
		if prevName != "" && current.Before(prev) {
			violations = append(violations, TimelineViolation{
				Earlier: prevName,
				Later:   field.name,
				Message: fmt.Sprintf("%s date %s is before %s date %s",
					field.name, current.Format("2006-01-02"), prevName, prev.Format("2006-01-02")),
			})
		}
		prevName = field.name
		prev = current
	}

	if len(violations) == 0 {
		return nil
	}

	return shared.NewServiceError(
		shared.ErrorCategoryValidation,
		"INVALID_TIMELINE",
		violations[0].Message,
		"ipo-engine",
		"validate_timeline",
		false,
		nil,
	).WithDetails(violations)
}
