package main

import (
	"github.com/spf13/pflag"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/model"
)

// settingsFlags override GUARD_* variables when set on the command line.
type settingsFlags struct {
	flags             *pflag.FlagSet
	actionMode        string
	guestDetection    string
	guestUsers        []string
	ignoredDashboards []string
	checkInterval     int
}

func (s *settingsFlags) register(fs *pflag.FlagSet) {
	s.flags = fs
	fs.StringVar(&s.actionMode, "action-mode", string(model.ActionNotify), "Action on violation: notify, revoke")
	fs.StringVar(&s.guestDetection, "guest-detection", string(model.GuestNonAdmin), "Guest detection: non_admin, specific_users")
	fs.StringSliceVar(&s.guestUsers, "guest-users", nil, "Guest user IDs for specific_users detection")
	fs.StringSliceVar(&s.ignoredDashboards, "ignore", nil, "Dashboard keys to skip")
	fs.IntVar(&s.checkInterval, "check-interval", config.DefaultCheckInterval, "Seconds between checks (10-3600)")
}

// resolve reads the environment and applies explicitly set flags on top.
func (s *settingsFlags) resolve() (model.Settings, error) {
	settings, err := config.FromEnv()
	if err != nil {
		return settings, err
	}
	if s.changed("action-mode") {
		settings.ActionMode = model.ActionMode(s.actionMode)
	}
	if s.changed("guest-detection") {
		settings.GuestDetection = model.GuestDetection(s.guestDetection)
	}
	if s.changed("guest-users") {
		settings.GuestUsers = s.guestUsers
	}
	if s.changed("ignore") {
		settings.IgnoredDashboards = s.ignoredDashboards
	}
	if s.changed("check-interval") {
		settings.CheckInterval = s.checkInterval
	}
	return settings, config.Validate(settings)
}

func (s *settingsFlags) changed(name string) bool {
	if s.flags == nil {
		return false
	}
	f := s.flags.Lookup(name)
	return f != nil && f.Changed
}
