package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

// MemoryStore is an in-memory host: users, dashboard sources, visibility,
// notifications, settings and audit. Intended for dev/demo and tests.
type MemoryStore struct {
	mu             sync.RWMutex
	users          map[string]model.User
	lovelace       []model.LovelaceDashboard
	lovelaceLoaded bool
	legacy         []model.LovelaceDashboard
	legacyLoaded   bool
	panels         []model.Panel
	panelsLoaded   bool
	visibility     map[string]model.Visibility
	notifications  map[string]model.Notification
	audit          []model.AuditEntry
	settings       model.Settings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		visibility:    make(map[string]model.Visibility),
		notifications: make(map[string]model.Notification),
		settings:      config.Default(),
	}
}

func (m *MemoryStore) UpsertUser(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	m.users[u.ID] = u
}

func (m *MemoryStore) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// ListUsers returns users ordered by ID.
func (m *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetLovelace marks the storage source as loaded with the given dashboards.
func (m *MemoryStore) SetLovelace(ds []model.LovelaceDashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lovelace = append([]model.LovelaceDashboard(nil), ds...)
	m.lovelaceLoaded = true
}

// UpsertLovelace adds or replaces one storage dashboard by URL path.
func (m *MemoryStore) UpsertLovelace(d model.LovelaceDashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lovelaceLoaded = true
	for i := range m.lovelace {
		if m.lovelace[i].URLPath == d.URLPath {
			m.lovelace[i] = d
			return
		}
	}
	m.lovelace = append(m.lovelace, d)
}

func (m *MemoryStore) SetLegacy(ds []model.LovelaceDashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legacy = append([]model.LovelaceDashboard(nil), ds...)
	m.legacyLoaded = true
}

func (m *MemoryStore) SetPanels(ps []model.Panel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panels = append([]model.Panel(nil), ps...)
	m.panelsLoaded = true
}

// SetVisibility overrides the visibility of a dashboard key.
func (m *MemoryStore) SetVisibility(key string, v model.Visibility) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visibility[key] = v
}

func (m *MemoryStore) LovelaceDashboards(_ context.Context) ([]model.LovelaceDashboard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.lovelaceLoaded {
		return nil, guard.ErrSourceAbsent
	}
	return append([]model.LovelaceDashboard(nil), m.lovelace...), nil
}

func (m *MemoryStore) LegacyDashboards(_ context.Context) ([]model.LovelaceDashboard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.legacyLoaded {
		return nil, guard.ErrSourceAbsent
	}
	return append([]model.LovelaceDashboard(nil), m.legacy...), nil
}

func (m *MemoryStore) Panels(_ context.Context) ([]model.Panel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.panelsLoaded {
		return nil, guard.ErrSourceAbsent
	}
	return append([]model.Panel(nil), m.panels...), nil
}

// Visibility returns the override for key, else the visibility block of the
// matching Lovelace dashboard config.
func (m *MemoryStore) Visibility(_ context.Context, key string) (*model.Visibility, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.visibility[key]; ok {
		return &v, nil
	}
	for _, src := range [][]model.LovelaceDashboard{m.lovelace, m.legacy} {
		for _, d := range src {
			if dashboardKey(d.URLPath) == key {
				return guard.VisibilityFromConfig(d.Config), nil
			}
		}
	}
	return nil, nil
}

func dashboardKey(urlPath string) string {
	if urlPath == "" || urlPath == "lovelace" {
		return model.DefaultDashboardKey
	}
	return urlPath
}

func (m *MemoryStore) Notify(_ context.Context, n model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications[n.ID] = n
	return nil
}

// ListNotifications returns notifications oldest first.
func (m *MemoryStore) ListNotifications(_ context.Context) ([]model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DismissNotification(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[id]; !ok {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	delete(m.notifications, id)
	return nil
}

func (m *MemoryStore) AppendAudit(entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	m.audit = append(m.audit, entry)
	if len(m.audit) > 500 {
		m.audit = m.audit[len(m.audit)-500:]
	}
	return nil
}

// ListAudit returns the newest limit entries, oldest first.
func (m *MemoryStore) ListAudit(limit int) ([]model.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.audit) {
		limit = len(m.audit)
	}
	return append([]model.AuditEntry(nil), m.audit[len(m.audit)-limit:]...), nil
}

func (m *MemoryStore) GetSettings() (model.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MemoryStore) UpdateSettings(s model.Settings) error {
	if err := config.Validate(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}
