package model

import "time"

// PollResult is the outcome of one guard cycle, consumed by sensors.
type PollResult struct {
	CycleID         string      `json:"cycleId"`
	DashboardsCount int         `json:"dashboardsCount"`
	GuestUsersCount int         `json:"guestUsersCount"`
	Violations      []Violation `json:"violations"`
	LastCheck       time.Time   `json:"lastCheck"`
}
