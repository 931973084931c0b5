package store

import (
	"context"
	"errors"

	"guest-dashboard-guard/pkg/model"
)

// ErrNotFound is returned when dismissing an unknown notification.
var ErrNotFound = errors.New("not found")

// Store is the guard's own state: settings and the audit trail.
type Store interface {
	GetSettings() (model.Settings, error)
	UpdateSettings(model.Settings) error
	AppendAudit(model.AuditEntry) error
	ListAudit(limit int) ([]model.AuditEntry, error)
}

// NotificationStore keeps persistent notifications keyed by ID. Notify with an
// existing ID replaces the stored notification.
type NotificationStore interface {
	Notify(ctx context.Context, n model.Notification) error
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	DismissNotification(ctx context.Context, id string) error
}
