package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/shared"
	"github.com/sirupsen/logrus"
)

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberRegex       = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	slugInvalidRegex  = regexp.MustCompile(`[^a-z0-9]+`)
	slugHyphensRegex  = regexp.MustCompile(`-+`)
	currencySymbolsRx = regexp.MustCompile(`[₹$,]`)
)

// UtilityService provides the text and value normalization used when raw IPO
// documents enter the system
type UtilityService struct {
	serviceMetrics *shared.ServiceMetrics
}

// NewUtilityService creates a new utility service instance
func NewUtilityService() *UtilityService {
	return &UtilityService{
		serviceMetrics: shared.NewServiceMetrics("Utility_Service"),
	}
}

// NormalizeTextContent cleans and standardizes text content for consistent processing
func (s *UtilityService) NormalizeTextContent(text string) string {
	if text == "" {
		return ""
	}

	text = strings.TrimSpace(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")

	// Remove common currency symbols and prefixes
	text = strings.ReplaceAll(text, "₹", "")
	text = strings.ReplaceAll(text, "Rs.", "")
	text = strings.ReplaceAll(text, "Rs ", "")

	return strings.TrimSpace(text)
}

// ParseDate parses a lifecycle date. ISO dates ("2006-01-02") and RFC 3339
// timestamps are accepted first, then the display formats used on IPO pages.
// Placeholders such as "TBA" yield nil.
func (s *UtilityService) ParseDate(dateStr string) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" || s.IsNotAvailable(dateStr) {
		return nil
	}

	formats := []string{
		"2006-01-02",
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"Mon, Jan 2, 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"02-01-2006",
		"02/01/2006",
		"02 Jan 2006",
		"2-Jan-06",
	}

	for _, format := range formats {
		t, err := time.Parse(format, dateStr)
		if err == nil {
			return &t
		}
	}

	logrus.WithFields(logrus.Fields{
		"component": "UtilityService",
		"value":     dateStr,
	}).Debug("Unparseable date treated as absent")
	return nil
}

// ParseNumericValueAsFloat extracts a signed number from formatted text such as
// "₹1,250.50" or "-12". Returns nil for placeholders and anything not numeric.
func (s *UtilityService) ParseNumericValueAsFloat(numericText string) *float64 {
	if numericText == "" || s.IsNotAvailable(numericText) {
		return nil
	}

	cleaned := s.NormalizeTextContent(numericText)
	cleaned = currencySymbolsRx.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if !numberRegex.MatchString(cleaned) {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// ParseShareCount parses a whole share quantity such as "1,20,000".
func (s *UtilityService) ParseShareCount(text string) *int64 {
	return s.WholeShareCount(s.ParseNumericValueAsFloat(text))
}

// WholeShareCount converts a parsed value to a share count. Fractional values
// and values outside the int64 range yield nil.
func (s *UtilityService) WholeShareCount(value *float64) *int64 {
	if value == nil || *value != math.Trunc(*value) {
		return nil
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
	if *value >= math.MaxInt64 || *value < math.MinInt64 {
		return nil
	}
	count := int64(*value)
	return &count
}

// NormalizeString normalizes empty strings to nil
func (s *UtilityService) NormalizeString(str string) *string {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	return &str
}

// IsNotAvailable checks if a value indicates "not available"
// Detects placeholders like "TBA", "To Be Announced", "N/A", etc.
func (s *UtilityService) IsNotAvailable(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))

	notAvailableValues := []string{
		"tba",
		"to be announced",
		"tbd",
		"n/a",
		"na",
		"not available",
		"awaited",
		"--",
		"-",
		"",
		"nil",
		"null",
	}

	for _, na := range notAvailableValues {
		if text == na {
			return true
		}
	}

	return false
}

// GenerateSlug creates URL-friendly identifiers from a company name
func (s *UtilityService) GenerateSlug(text string) string {
	if text == "" {
		return ""
	}

	slug := strings.ToLower(strings.TrimSpace(text))

	suffixes := []string{" ltd.", " ltd", " limited", " pvt.", " pvt", " private", " ipo"}
	for _, suffix := range suffixes {
		slug = strings.TrimSuffix(slug, suffix)
	}

	slug = slugInvalidRegex.ReplaceAllString(slug, "-")
	slug = slugHyphensRegex.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// GetServiceMetrics returns the current service metrics
func (s *UtilityService) GetServiceMetrics() *shared.ServiceMetrics {
	return s.serviceMetrics
}

// RecordOperation records a utility service operation with metrics tracking
func (s *UtilityService) RecordOperation(operationName string, success bool, processingTime time.Duration) {
	if s.serviceMetrics != nil {
		s.serviceMetrics.RecordRequest(success, processingTime)
		s.serviceMetrics.IncrementCustomCounter(operationName)
	}
}
