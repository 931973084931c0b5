package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/model"
)

// lovelaceDefaultPath is the URL path the host uses for the home dashboard.
const lovelaceDefaultPath = "lovelace"

// Panel labels, presentation only.
const (
	LabelAddon     = "Add-on"
	LabelSettings  = "Settings"
	LabelAdminTool = "Admin Tool"
	LabelPanel     = "Panel"
)

// Enumerator builds the dashboard list for one cycle.
type Enumerator struct {
	logger   *zap.Logger
	registry DashboardRegistry
}

func NewEnumerator(registry DashboardRegistry, logger *zap.Logger) *Enumerator {
	return &Enumerator{logger: logger.Named("enumerator"), registry: registry}
}

// Enumerate returns the deduplicated dashboards minus the ignored keys.
// It never fails and never returns an empty list.
func (e *Enumerator) Enumerate(ctx context.Context, ignored []string) []model.Dashboard {
	var dashboards []model.Dashboard

	lovelace, err := e.readLovelace(ctx, "lovelace", e.registry.LovelaceDashboards)
	if errors.Is(err, ErrSourceAbsent) {
		lovelace, err = e.readLovelace(ctx, "legacy", e.registry.LegacyDashboards)
	}
	if err != nil && !errors.Is(err, ErrSourceAbsent) {
		e.logger.Error("Error getting Lovelace dashboards", zap.Error(err))
	}
	for _, d := range lovelace {
		dashboards = append(dashboards, fromLovelace(d))
	}

	panels, err := e.readPanels(ctx)
	if err != nil && !errors.Is(err, ErrSourceAbsent) {
		e.logger.Error("Error getting frontend panels", zap.Error(err))
	}
	for _, p := range panels {
		if containsPath(dashboards, normalizePath(p.URLPath)) {
			continue
		}
		dashboards = append(dashboards, fromPanel(p))
		e.logger.Debug("Added frontend panel",
			zap.String("key", p.URLPath),
			zap.String("title", p.Title),
			zap.String("component", p.ComponentName))
	}

	dashboards = e.dedupe(dashboards)
	dashboards = e.filterIgnored(dashboards, ignored)

	if len(dashboards) == 0 {
		e.logger.Warn("No dashboards detected, adding default dashboard")
		dashboards = append(dashboards, model.Dashboard{
			Title: "Home",
			Mode:  model.ModeStorage,
			Kind:  model.KindLovelace,
		})
	}

	if lookup, ok := e.registry.(VisibilityLookup); ok {
		for i := range dashboards {
			vis, err := lookup.Visibility(ctx, dashboards[i].Key())
			if err != nil {
				e.logger.Debug("Could not get dashboard visibility",
					zap.String("key", dashboards[i].Key()), zap.Error(err))
				dashboards[i].Visibility = nil
				continue
			}
			// nil without error means no override; keep the config's block
			if vis != nil {
				dashboards[i].Visibility = vis
			}
		}
	}

	titles := make([]string, 0, len(dashboards))
	for _, d := range dashboards {
		titles = append(titles, d.Title)
	}
	e.logger.Info("Detected dashboards", zap.Int("count", len(dashboards)), zap.Strings("titles", titles))
	return dashboards
}

func (e *Enumerator) readLovelace(ctx context.Context, source string, read func(context.Context) ([]model.LovelaceDashboard, error)) (out []model.LovelaceDashboard, err error) {
	defer recoverSource(e.logger, source, &err)
	out, err = read(ctx)
	if err == nil {
		e.logger.Debug("Read Lovelace source", zap.String("source", source), zap.Int("count", len(out)))
	}
	return out, err
}

func (e *Enumerator) readPanels(ctx context.Context) (out []model.Panel, err error) {
	defer recoverSource(e.logger, "panels", &err)
	return e.registry.Panels(ctx)
}

func recoverSource(logger *zap.Logger, source string, err *error) {
	if r := recover(); r != nil {
		logger.Error("Dashboard source panicked", zap.String("source", source), zap.Any("panic", r))
		*err = fmt.Errorf("source %s: %v", source, r)
	}
}

func (e *Enumerator) dedupe(in []model.Dashboard) []model.Dashboard {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Dashboard, 0, len(in))
	for _, d := range in {
		if _, ok := seen[d.Key()]; ok {
			e.logger.Debug("Skipping duplicate dashboard", zap.String("key", d.Key()), zap.String("title", d.Title))
			continue
		}
		seen[d.Key()] = struct{}{}
		out = append(out, d)
	}
	return out
}

func (e *Enumerator) filterIgnored(in []model.Dashboard, ignored []string) []model.Dashboard {
	if len(ignored) == 0 {
		return in
	}
	skip := make(map[string]struct{}, len(ignored))
	for _, k := range ignored {
		skip[k] = struct{}{}
	}
	out := in[:0]
	for _, d := range in {
		if _, ok := skip[d.Key()]; ok {
			e.logger.Debug("Ignoring dashboard", zap.String("key", d.Key()), zap.String("title", d.Title))
			continue
		}
		out = append(out, d)
	}
	return out
}

// normalizePath maps the host's home dashboard path to the empty path.
func normalizePath(path string) string {
	if path == lovelaceDefaultPath {
		return ""
	}
	return path
}

func fromLovelace(d model.LovelaceDashboard) model.Dashboard {
	path := normalizePath(d.URLPath)
	title := d.URLPath
	if t, ok := d.Config["title"].(string); ok && t != "" {
		title = t
	}
	mode := model.DashboardMode(d.Mode)
	if mode == "" {
		mode = model.ModeStorage
	}
	return model.Dashboard{
		URLPath:      path,
		Title:        title,
		Mode:         mode,
		Kind:         model.KindLovelace,
		RequireAdmin: d.RequireAdmin,
		Visibility:   VisibilityFromConfig(d.Config),
	}
}

func fromPanel(p model.Panel) model.Dashboard {
	title := p.Title
	if title == "" {
		title = p.URLPath
	}
	return model.Dashboard{
		URLPath:      p.URLPath,
		Title:        title,
		Mode:         model.ModePanel,
		Kind:         model.KindFrontendPanel,
		Component:    p.ComponentName,
		Label:        PanelLabel(p),
		RequireAdmin: p.RequireAdmin,
	}
}

func containsPath(dashboards []model.Dashboard, path string) bool {
	for _, d := range dashboards {
		if d.URLPath == path {
			return true
		}
	}
	return false
}

// PanelLabel classifies a panel for display.
func PanelLabel(p model.Panel) string {
	switch {
	case p.ComponentName == "hassio" || p.ComponentName == "app" || strings.HasPrefix(p.URLPath, "hassio"):
		return LabelAddon
	case p.ComponentName == "config":
		return LabelSettings
	case p.RequireAdmin:
		return LabelAdminTool
	default:
		return LabelPanel
	}
}

// VisibilityFromConfig reads the "visibility" block of a dashboard config.
// A missing or empty block yields nil; visible_to_all defaults to true.
func VisibilityFromConfig(cfg map[string]any) *model.Visibility {
	raw, ok := cfg["visibility"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	vis := &model.Visibility{VisibleToAll: true}
	if v, ok := raw["visible_to_all"].(bool); ok {
		vis.VisibleToAll = v
	}
	switch users := raw["visible_users"].(type) {
	case []string:
		vis.VisibleUsers = append(vis.VisibleUsers, users...)
	case []any:
		for _, u := range users {
			if s, ok := u.(string); ok {
				vis.VisibleUsers = append(vis.VisibleUsers, s)
			}
		}
	}
	return vis
}
