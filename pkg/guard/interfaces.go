package guard

import (
	"context"
	"errors"

	"guest-dashboard-guard/pkg/model"
)

// ErrSourceAbsent is returned by a registry when a dashboard source is not loaded.
var ErrSourceAbsent = errors.New("dashboard source absent")

// UserDirectory lists host accounts.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]model.User, error)
}

// DashboardRegistry exposes the host's dashboard sources. Any method may
// return ErrSourceAbsent.
type DashboardRegistry interface {
	// LovelaceDashboards returns storage and YAML mode dashboards.
	LovelaceDashboards(ctx context.Context) ([]model.LovelaceDashboard, error)
	// LegacyDashboards returns the dict-based store used by older hosts.
	LegacyDashboards(ctx context.Context) ([]model.LovelaceDashboard, error)
	// Panels returns the frontend panel registry.
	Panels(ctx context.Context) ([]model.Panel, error)
}

// VisibilityLookup is implemented by registries that keep visibility apart
// from the dashboard config. A nil result with a nil error means the registry
// has no override and the dashboard config's own visibility applies.
type VisibilityLookup interface {
	Visibility(ctx context.Context, key string) (*model.Visibility, error)
}

// NotificationSink delivers persistent notifications. Delivering a
// notification whose ID already exists replaces it.
type NotificationSink interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Revoker removes guest access from a dashboard. It reports whether the
// dashboard is now locked down.
type Revoker interface {
	RevokeAccess(ctx context.Context, dashboardKey string) bool
}

// AuditLog records guard decisions.
type AuditLog interface {
	AppendAudit(model.AuditEntry) error
}
