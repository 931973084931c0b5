package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"guest-dashboard-guard/pkg/model"
)

const (
	// Domain prefixes notification IDs and metric names.
	Domain = "guest_dashboard_guard"

	DefaultCheckInterval = 60
	MinCheckInterval     = 10
	MaxCheckInterval     = 3600
)

var ErrInvalidConfig = errors.New("invalid config")

// Default returns the settings a fresh install starts with.
func Default() model.Settings {
	return model.Settings{
		ActionMode:     model.ActionNotify,
		GuestDetection: model.GuestNonAdmin,
		CheckInterval:  DefaultCheckInterval,
	}
}

// Validate checks enum fields and the interval range.
func Validate(s model.Settings) error {
	switch s.ActionMode {
	case model.ActionNotify, model.ActionRevoke:
	default:
		return fmt.Errorf("%w: action_mode %q", ErrInvalidConfig, s.ActionMode)
	}
	switch s.GuestDetection {
	case model.GuestNonAdmin, model.GuestSpecificUsers:
	default:
		return fmt.Errorf("%w: guest_detection %q", ErrInvalidConfig, s.GuestDetection)
	}
	if s.CheckInterval < MinCheckInterval || s.CheckInterval > MaxCheckInterval {
		return fmt.Errorf("%w: check_interval %d outside [%d, %d]", ErrInvalidConfig, s.CheckInterval, MinCheckInterval, MaxCheckInterval)
	}
	return nil
}

// Interval converts the configured check interval to a duration.
func Interval(s model.Settings) time.Duration {
	if s.CheckInterval <= 0 {
		return DefaultCheckInterval * time.Second
	}
	return time.Duration(s.CheckInterval) * time.Second
}

// FromEnv reads settings from GUARD_* variables, loading .env first if present.
// Env:
//
//	GUARD_ACTION_MODE, GUARD_GUEST_DETECTION, GUARD_GUEST_USERS (comma separated),
//	GUARD_IGNORED_DASHBOARDS (comma separated), GUARD_CHECK_INTERVAL (seconds)
func FromEnv() (model.Settings, error) {
	_ = LoadDotEnv()
	s := Default()
	if v := os.Getenv("GUARD_ACTION_MODE"); v != "" {
		s.ActionMode = model.ActionMode(v)
	}
	if v := os.Getenv("GUARD_GUEST_DETECTION"); v != "" {
		s.GuestDetection = model.GuestDetection(v)
	}
	s.GuestUsers = SplitList(os.Getenv("GUARD_GUEST_USERS"))
	s.IgnoredDashboards = SplitList(os.Getenv("GUARD_IGNORED_DASHBOARDS"))
	if v := os.Getenv("GUARD_CHECK_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("%w: GUARD_CHECK_INTERVAL: %v", ErrInvalidConfig, err)
		}
		s.CheckInterval = n
	}
	return s, Validate(s)
}

// Getenv returns the variable or def when unset.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadDotEnv loads .env from the working directory when it exists.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
