package guard

import (
	"time"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/model"
)

// Sensor is the presentation state of one guard sensor.
type Sensor struct {
	UniqueID   string         `json:"uniqueId"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	State      *int           `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Sensors renders the three guard sensors from the last result. Counts are nil
// before the first successful cycle; the violation count is then 0.
func Sensors(res model.PollResult, ok bool) []Sensor {
	var dashboards, guests *int
	violations := 0
	attrs := map[string]any{}
	if ok {
		dashboards = intPtr(res.DashboardsCount)
		guests = intPtr(res.GuestUsersCount)
		violations = len(res.Violations)
		list := res.Violations
		if list == nil {
			list = []model.Violation{}
		}
		attrs["violations"] = list
		attrs["last_check"] = res.LastCheck.Format(time.RFC3339)
	}
	return []Sensor{
		{
			UniqueID: config.Domain + "_dashboards_count",
			Name:     "Monitored Dashboards",
			Icon:     "mdi:view-dashboard",
			State:    dashboards,
		},
		{
			UniqueID: config.Domain + "_guest_users_count",
			Name:     "Guest Users",
			Icon:     "mdi:account-group",
			State:    guests,
		},
		{
			UniqueID:   config.Domain + "_violations",
			Name:       "Access Violations",
			Icon:       "mdi:alert-circle",
			State:      intPtr(violations),
			Attributes: attrs,
		},
	}
}

func intPtr(v int) *int { return &v }
