package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-dashboard-guard/pkg/model"
)

func TestSensors_BeforeFirstCycle(t *testing.T) {
	s := Sensors(model.PollResult{}, false)
	require.Len(t, s, 3)
	assert.Nil(t, s[0].State)
	assert.Nil(t, s[1].State)
	require.NotNil(t, s[2].State)
	assert.Equal(t, 0, *s[2].State)
	assert.Empty(t, s[2].Attributes)
}

func TestSensors_WithResult(t *testing.T) {
	check := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	res := model.PollResult{
		DashboardsCount: 4,
		GuestUsersCount: 2,
		Violations:      []model.Violation{testViolation()},
		LastCheck:       check,
	}
	s := Sensors(res, true)
	assert.Equal(t, "guest_dashboard_guard_dashboards_count", s[0].UniqueID)
	assert.Equal(t, 4, *s[0].State)
	assert.Equal(t, 2, *s[1].State)
	assert.Equal(t, 1, *s[2].State)
	assert.Equal(t, "2026-03-01T12:00:00Z", s[2].Attributes["last_check"])
	assert.Len(t, s[2].Attributes["violations"], 1)
}
