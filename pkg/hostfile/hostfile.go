// Package hostfile reads host state from a YAML snapshot.
//
// Example:
//
//	users:
//	  - {id: owner, name: Owner, is_admin: true}
//	  - {id: g1, name: Guest}
//	lovelace:
//	  - url_path: lovelace
//	    config: {title: Home}
//	panels:
//	  - {url_path: map, title: Map, component_name: map}
//	visibility:
//	  map: {visible_to_all: false, visible_users: [owner]}
//
// A missing lovelace, legacy or panels key means the source is absent.
package hostfile

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

// Snapshot is the on-disk layout.
type Snapshot struct {
	Users      []model.User                `yaml:"users"`
	Lovelace   *[]model.LovelaceDashboard  `yaml:"lovelace"`
	Legacy     *[]model.LovelaceDashboard  `yaml:"legacy"`
	Panels     *[]model.Panel              `yaml:"panels"`
	Visibility map[string]model.Visibility `yaml:"visibility"`
}

// Registry serves a snapshot file, reloading it when its mtime changes.
type Registry struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	snap    Snapshot
}

func New(path string) *Registry {
	return &Registry{path: path}
}

// Parse decodes a snapshot document.
func Parse(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse host snapshot: %w", err)
	}
	return s, nil
}

// ReadFile reads and parses the snapshot at path.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read host snapshot: %w", err)
	}
	return Parse(data)
}

func (r *Registry) load() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, err := os.Stat(r.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stat host snapshot: %w", err)
	}
	if !st.ModTime().After(r.modTime) && !r.modTime.IsZero() {
		return r.snap, nil
	}
	snap, err := ReadFile(r.path)
	if err != nil {
		return Snapshot{}, err
	}
	r.snap = snap
	r.modTime = st.ModTime()
	return snap, nil
}

func (r *Registry) ListUsers(_ context.Context) ([]model.User, error) {
	s, err := r.load()
	if err != nil {
		return nil, err
	}
	return s.Users, nil
}

func (r *Registry) LovelaceDashboards(_ context.Context) ([]model.LovelaceDashboard, error) {
	s, err := r.load()
	if err != nil {
		return nil, err
	}
	if s.Lovelace == nil {
		return nil, guard.ErrSourceAbsent
	}
	return *s.Lovelace, nil
}

func (r *Registry) LegacyDashboards(_ context.Context) ([]model.LovelaceDashboard, error) {
	s, err := r.load()
	if err != nil {
		return nil, err
	}
	if s.Legacy == nil {
		return nil, guard.ErrSourceAbsent
	}
	return *s.Legacy, nil
}

func (r *Registry) Panels(_ context.Context) ([]model.Panel, error) {
	s, err := r.load()
	if err != nil {
		return nil, err
	}
	if s.Panels == nil {
		return nil, guard.ErrSourceAbsent
	}
	return *s.Panels, nil
}

// Visibility prefers the visibility section, then the dashboard's own config.
func (r *Registry) Visibility(_ context.Context, key string) (*model.Visibility, error) {
	s, err := r.load()
	if err != nil {
		return nil, err
	}
	if v, ok := s.Visibility[key]; ok {
		return &v, nil
	}
	for _, src := range []*[]model.LovelaceDashboard{s.Lovelace, s.Legacy} {
		if src == nil {
			continue
		}
		for _, d := range *src {
			k := d.URLPath
			if k == "" || k == "lovelace" {
				k = model.DefaultDashboardKey
			}
			if k == key {
				return guard.VisibilityFromConfig(d.Config), nil
			}
		}
	}
	return nil, nil
}
