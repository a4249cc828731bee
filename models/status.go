package models

import (
	"fmt"
	"strings"
)

// IPOStatus is the lifecycle state of an issue.
type IPOStatus string

const (
	StatusUpcoming IPOStatus = "Upcoming"
	StatusOpen     IPOStatus = "Open"
	StatusClosed   IPOStatus = "Closed"
	StatusAllotted IPOStatus = "Allotted"
	StatusListed   IPOStatus = "Listed"
)

// AllStatuses lists the lifecycle states in forward order.
var AllStatuses = []IPOStatus{StatusUpcoming, StatusOpen, StatusClosed, StatusAllotted, StatusListed}

// Rank returns the position of s in the lifecycle, or -1 for an unknown value.
func (s IPOStatus) Rank() int {
	for i, st := range AllStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseIPOStatus matches a status name case-insensitively.
func ParseIPOStatus(value string) (IPOStatus, error) {
	for _, st := range AllStatuses {
		if strings.EqualFold(string(st), strings.TrimSpace(value)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown ipo status %q", value)
}

// Countdown is the time remaining until the daily close cutoff.
type Countdown struct {
	Hours     int64  `json:"hours"`
	Minutes   int64  `json:"minutes"`
	Seconds   int64  `json:"seconds"`
	IsExpired bool   `json:"is_expired"`
	Formatted string `json:"formatted"`
}
