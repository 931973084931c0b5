package model

// DashboardMode describes where a dashboard's configuration lives.
type DashboardMode string

const (
	ModeStorage DashboardMode = "storage"
	ModeYAML    DashboardMode = "yaml"
	ModePanel   DashboardMode = "panel"
)

// DashboardKind distinguishes Lovelace dashboards from plain frontend panels.
type DashboardKind string

const (
	KindLovelace      DashboardKind = "lovelace"
	KindFrontendPanel DashboardKind = "frontend_panel"
)

// DefaultDashboardKey is the key used for the home dashboard, which has no URL path.
const DefaultDashboardKey = "default"

// Dashboard is a normalized view of a dashboard or panel, rebuilt every poll cycle.
type Dashboard struct {
	URLPath      string        `json:"urlPath,omitempty" yaml:"url_path,omitempty"` // empty => home dashboard
	Title        string        `json:"title"`
	Mode         DashboardMode `json:"mode"`
	Kind         DashboardKind `json:"type"`
	Component    string        `json:"componentName,omitempty"`
	Label        string        `json:"label,omitempty"` // presentation only
	RequireAdmin bool          `json:"requireAdmin"`
	Visibility   *Visibility   `json:"visibility,omitempty"`
}

// Key returns the dashboard identifier used for tracking and notifications.
func (d Dashboard) Key() string {
	if d.URLPath == "" {
		return DefaultDashboardKey
	}
	return d.URLPath
}

// Visibility is the access-control configuration of a dashboard.
// A nil *Visibility means the dashboard is visible to every user.
type Visibility struct {
	VisibleToAll bool     `json:"visibleToAll" yaml:"visible_to_all"`
	VisibleUsers []string `json:"visibleUsers,omitempty" yaml:"visible_users,omitempty"`
}
