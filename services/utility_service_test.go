package services

import (
	"math"
	"testing"
	"time"
)

func TestParseNumericValueAsFloat(t *testing.T) {
	utility := NewUtilityService()

	tests := []struct {
		input string
		want  *float64
	}{
		{"₹1,250.50", floatPtr(1250.5)},
		{"Rs. 95", floatPtr(95)},
		{"-12", floatPtr(-12)},
		{"42", floatPtr(42)},
		{"TBA", nil},
		{"--", nil},
		{"12 lakh", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assertFloatPtr(t, tt.input, utility.ParseNumericValueAsFloat(tt.input), tt.want)
		})
	}
}

func TestParseShareCount(t *testing.T) {
	utility := NewUtilityService()

	if got := utility.ParseShareCount("1,20,000"); got == nil || *got != 120000 {
		t.Errorf("ParseShareCount(1,20,000) = %v", got)
	}
	if got := utility.ParseShareCount("12.5"); got != nil {
		t.Errorf("fractional share count should be blank, got %d", *got)
	}
	if got := utility.ParseShareCount("N/A"); got != nil {
		t.Errorf("placeholder should be blank, got %d", *got)
	}
}

func TestWholeShareCountRange(t *testing.T) {
	utility := NewUtilityService()

	if got := utility.WholeShareCount(floatPtr(math.Pow(2, 63))); got != nil {
		t.Errorf("2^63 should be out of range, got %d", *got)
	}
	if got := utility.ParseShareCount("9223372036854775807"); got != nil {
		t.Errorf("MaxInt64 text rounds to 2^63 and should be blank, got %d", *got)
	}
	if got := utility.WholeShareCount(floatPtr(-math.Pow(2, 63))); got == nil || *got != math.MinInt64 {
		t.Errorf("-2^63 = %v, want MinInt64", got)
	}
	if got := utility.WholeShareCount(floatPtr(1 << 53)); got == nil || *got != 1<<53 {
		t.Errorf("2^53 = %v", got)
	}
	if got := utility.WholeShareCount(nil); got != nil {
		t.Errorf("nil value should be blank, got %d", *got)
	}
}

func TestParseDate(t *testing.T) {
	utility := NewUtilityService()
	want := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-01-02", "Jan 2, 2024", "Tue, Jan 2, 2024", "02-01-2024", "02 Jan 2024"} {
		got := utility.ParseDate(input)
		if got == nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %s", input, got, want)
		}
	}

	rfc := utility.ParseDate("2024-01-02T22:00:00+05:30")
	if rfc == nil || rfc.Day() != 2 {
		t.Errorf("RFC 3339 date should keep its own civil day, got %v", rfc)
	}

	for _, input := range []string{"", "TBA", "To Be Announced", "soon"} {
		if got := utility.ParseDate(input); got != nil {
			t.Errorf("ParseDate(%q) = %v, want nil", input, got)
		}
	}
}

func TestGenerateSlug(t *testing.T) {
	utility := NewUtilityService()

	tests := map[string]string{
		"Tata Technologies Ltd.":      "tata-technologies",
		"Ideaforge Technology Limited": "ideaforge-technology",
		"  ABC & Sons IPO ":           "abc-sons",
		"":                            "",
	}
	for input, want := range tests {
		if got := utility.GenerateSlug(input); got != want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeString(t *testing.T) {
	utility := NewUtilityService()
	if utility.NormalizeString("   ") != nil {
		t.Error("blank string should normalize to nil")
	}
	if got := utility.NormalizeString(" slug "); got == nil || *got != "slug" {
		t.Errorf("NormalizeString = %v", got)
	}
}
