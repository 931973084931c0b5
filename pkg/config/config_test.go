package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guest-dashboard-guard/pkg/model"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, model.ActionNotify, s.ActionMode)
	assert.Equal(t, model.GuestNonAdmin, s.GuestDetection)
	assert.Equal(t, 60, s.CheckInterval)
	require.NoError(t, Validate(s))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*model.Settings) {}},
		{name: "revoke", mutate: func(s *model.Settings) { s.ActionMode = model.ActionRevoke }},
		{name: "specific users", mutate: func(s *model.Settings) { s.GuestDetection = model.GuestSpecificUsers }},
		{name: "min interval", mutate: func(s *model.Settings) { s.CheckInterval = 10 }},
		{name: "max interval", mutate: func(s *model.Settings) { s.CheckInterval = 3600 }},
		{name: "interval too small", mutate: func(s *model.Settings) { s.CheckInterval = 9 }, wantErr: true},
		{name: "interval too large", mutate: func(s *model.Settings) { s.CheckInterval = 3601 }, wantErr: true},
		{name: "unknown action", mutate: func(s *model.Settings) { s.ActionMode = "delete" }, wantErr: true},
		{name: "unknown detection", mutate: func(s *model.Settings) { s.GuestDetection = "everyone" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := Validate(s)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInterval(t *testing.T) {
	assert.Equal(t, 90*time.Second, Interval(model.Settings{CheckInterval: 90}))
	assert.Equal(t, 60*time.Second, Interval(model.Settings{}))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GUARD_ACTION_MODE", "revoke")
	t.Setenv("GUARD_GUEST_DETECTION", "specific_users")
	t.Setenv("GUARD_GUEST_USERS", "g1, g2,,")
	t.Setenv("GUARD_IGNORED_DASHBOARDS", "map")
	t.Setenv("GUARD_CHECK_INTERVAL", "120")

	s, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, model.ActionRevoke, s.ActionMode)
	assert.Equal(t, model.GuestSpecificUsers, s.GuestDetection)
	assert.Equal(t, []string{"g1", "g2"}, s.GuestUsers)
	assert.Equal(t, []string{"map"}, s.IgnoredDashboards)
	assert.Equal(t, 120, s.CheckInterval)
}

func TestFromEnv_BadInterval(t *testing.T) {
	t.Setenv("GUARD_CHECK_INTERVAL", "soon")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a ,b"))
}
