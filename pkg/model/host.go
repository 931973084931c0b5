package model

// LovelaceDashboard is a dashboard as registered with the host's Lovelace store.
// Config carries the raw dashboard config (title, visibility, views...).
type LovelaceDashboard struct {
	URLPath      string         `json:"urlPath" yaml:"url_path"`
	Mode         string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	RequireAdmin bool           `json:"requireAdmin,omitempty" yaml:"require_admin,omitempty"`
	Config       map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Panel is a top-level frontend navigation entry.
type Panel struct {
	URLPath       string `json:"urlPath" yaml:"url_path"`
	Title         string `json:"title,omitempty" yaml:"title,omitempty"`
	ComponentName string `json:"componentName,omitempty" yaml:"component_name,omitempty"`
	RequireAdmin  bool   `json:"requireAdmin,omitempty" yaml:"require_admin,omitempty"`
}
