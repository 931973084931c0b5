package guard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/model"
)

const notificationTitle = "Guest Dashboard Guard Alert"

// NotificationID is stable per dashboard so repeated alerts replace each other.
func NotificationID(dashboardKey string) string {
	return config.Domain + "_" + dashboardKey
}

// Handler reports violations and, in revoke mode, tries to lock dashboards down.
type Handler struct {
	logger  *zap.Logger
	sink    NotificationSink
	revoker Revoker
	audit   AuditLog
	now     func() time.Time
}

// NewHandler builds a Handler. A nil revoker falls back to StubRevoker; audit may be nil.
func NewHandler(sink NotificationSink, revoker Revoker, audit AuditLog, logger *zap.Logger) *Handler {
	logger = logger.Named("handler")
	if revoker == nil {
		revoker = NewStubRevoker(logger)
	}
	return &Handler{
		logger:  logger,
		sink:    sink,
		revoker: revoker,
		audit:   audit,
		now:     time.Now,
	}
}

// Handle emits one notification per violation. Delivery failures are logged.
func (h *Handler) Handle(ctx context.Context, violations []model.Violation, mode model.ActionMode) {
	for _, v := range violations {
		var revoked *bool
		if mode == model.ActionRevoke {
			ok := h.revoker.RevokeAccess(ctx, v.Dashboard)
			revoked = &ok
			revokeTotal.WithLabelValues(resultLabel(ok)).Inc()
			h.record("revoke", v.Dashboard, resultLabel(ok))
		}

		n := model.Notification{
			ID:        NotificationID(v.Dashboard),
			Title:     notificationTitle,
			Message:   ComposeMessage(v, revoked),
			CreatedAt: h.now(),
		}
		if h.sink != nil {
			if err := h.sink.Notify(ctx, n); err != nil {
				notificationsTotal.WithLabelValues("failed").Inc()
				h.logger.Error("Failed to deliver notification", zap.String("id", n.ID), zap.Error(err))
			} else {
				notificationsTotal.WithLabelValues("sent").Inc()
			}
		}

		h.logger.Warn("Dashboard guest access violation detected",
			zap.String("dashboard", v.Dashboard),
			zap.String("title", v.Title),
			zap.String("kind", string(v.Kind)),
			zap.Strings("guests", v.AffectedGuests))
		h.record("violation", v.Dashboard, v.Issue)
	}
}

func (h *Handler) record(action, target, detail string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.AppendAudit(model.AuditEntry{
		Actor:     config.Domain,
		Action:    action,
		Target:    target,
		Detail:    detail,
		Timestamp: h.now(),
	}); err != nil {
		h.logger.Debug("Audit append failed", zap.Error(err))
	}
}

// ComposeMessage renders the notification body. revoked is nil in notify
// mode and holds the revoke outcome otherwise.
func ComposeMessage(v model.Violation, revoked *bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard '%s' (%s) has a guest access issue:\n\n", v.Title, v.Dashboard)
	fmt.Fprintf(&b, "%s\n\n", v.Issue)
	fmt.Fprintf(&b, "Guest users affected: %d", len(v.AffectedGuests))
	switch {
	case revoked == nil:
		b.WriteString("\n\nPlease review the dashboard permissions in Settings → Dashboards.")
	case *revoked:
		b.WriteString("\n\nAttempting to revoke guest access...")
		b.WriteString("\n✓ Guest access has been revoked successfully.")
	default:
		b.WriteString("\n\nAttempting to revoke guest access...")
		b.WriteString("\n✗ Failed to automatically revoke access. Please review dashboard permissions manually.")
	}
	return b.String()
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// StubRevoker is the revoke capability until the host exposes a dashboard
// configuration write API. It never succeeds.
type StubRevoker struct {
	logger *zap.Logger
}

func NewStubRevoker(logger *zap.Logger) *StubRevoker {
	return &StubRevoker{logger: logger}
}

// RevokeAccess always returns false.
func (r *StubRevoker) RevokeAccess(_ context.Context, dashboardKey string) bool {
	r.logger.Info("Would revoke guest access from dashboard (not implemented yet)", zap.String("dashboard", dashboardKey))
	return false
}
