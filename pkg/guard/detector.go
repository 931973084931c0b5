package guard

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/model"
)

// Detector flags dashboards reachable by guests.
//
// Each dashboard key is evaluated once per Detector: after the first check the
// key is tracked and skipped on later cycles, even if its visibility changes.
// Callers serialize access; Detector holds no lock.
type Detector struct {
	logger  *zap.Logger
	tracked map[string]struct{}
}

func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{
		logger:  logger.Named("detector"),
		tracked: make(map[string]struct{}),
	}
}

// Detect evaluates the dashboards not seen before and returns violations in
// enumeration order.
func (d *Detector) Detect(dashboards []model.Dashboard, guests GuestSet) []model.Violation {
	var violations []model.Violation
	for _, db := range dashboards {
		key := db.Key()
		if _, seen := d.tracked[key]; seen {
			continue
		}
		d.tracked[key] = struct{}{}
		if v, ok := d.check(db, guests); ok {
			violations = append(violations, v)
		}
	}
	return violations
}

func (d *Detector) check(db model.Dashboard, guests GuestSet) (model.Violation, bool) {
	key := db.Key()
	if db.RequireAdmin {
		d.logger.Debug("Dashboard requires admin, skipping check", zap.String("key", key), zap.String("title", db.Title))
		return model.Violation{}, false
	}
	vis := db.Visibility
	if vis == nil || vis.VisibleToAll {
		return model.Violation{
			Dashboard:      key,
			Title:          titleOrKey(db),
			Kind:           model.IssueDefaultVisible,
			Issue:          "Dashboard is visible to all users by default",
			AffectedGuests: guests.Sorted(),
		}, true
	}
	affected := guests.Intersect(vis.VisibleUsers)
	if len(affected) == 0 {
		return model.Violation{}, false
	}
	return model.Violation{
		Dashboard:      key,
		Title:          titleOrKey(db),
		Kind:           model.IssueExplicitGuestAccess,
		Issue:          fmt.Sprintf("Guest users have explicit access: %d user(s)", len(affected)),
		AffectedGuests: affected,
	}, true
}

// Tracked returns the keys already evaluated, sorted.
func (d *Detector) Tracked() []string {
	out := make([]string, 0, len(d.tracked))
	for k := range d.tracked {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset forgets every tracked key so the next cycle re-evaluates all dashboards.
func (d *Detector) Reset() {
	d.tracked = make(map[string]struct{})
}

func titleOrKey(db model.Dashboard) string {
	if db.Title == "" {
		return db.Key()
	}
	return db.Title
}
