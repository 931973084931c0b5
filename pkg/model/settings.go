package model

// ActionMode selects what happens when a violation is found.
type ActionMode string

const (
	ActionNotify ActionMode = "notify"
	ActionRevoke ActionMode = "revoke"
)

// GuestDetection selects how guest accounts are identified.
type GuestDetection string

const (
	GuestNonAdmin      GuestDetection = "non_admin"
	GuestSpecificUsers GuestDetection = "specific_users"
)

// Settings is the guard configuration as stored by the host.
type Settings struct {
	ActionMode        ActionMode     `json:"actionMode" yaml:"action_mode"`
	GuestDetection    GuestDetection `json:"guestDetection" yaml:"guest_detection"`
	GuestUsers        []string       `json:"guestUsers" yaml:"guest_users"`
	IgnoredDashboards []string       `json:"ignoredDashboards" yaml:"ignored_dashboards"`
	CheckInterval     int            `json:"checkInterval" yaml:"check_interval"` // seconds
}
