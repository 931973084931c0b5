package guard

import (
	"context"
	"errors"
	"sync"

	"guest-dashboard-guard/pkg/model"
)

type fakeRegistry struct {
	lovelace    []model.LovelaceDashboard
	lovelaceErr error
	legacy      []model.LovelaceDashboard
	legacyErr   error
	legacyCalls int
	panels      []model.Panel
	panelsErr   error
	panicPanels bool
}

func (f *fakeRegistry) LovelaceDashboards(context.Context) ([]model.LovelaceDashboard, error) {
	return f.lovelace, f.lovelaceErr
}

func (f *fakeRegistry) LegacyDashboards(context.Context) ([]model.LovelaceDashboard, error) {
	f.legacyCalls++
	return f.legacy, f.legacyErr
}

func (f *fakeRegistry) Panels(context.Context) ([]model.Panel, error) {
	if f.panicPanels {
		panic("panel registry exploded")
	}
	return f.panels, f.panelsErr
}

// absentRegistry reports every source as absent.
func absentRegistry() *fakeRegistry {
	return &fakeRegistry{
		lovelaceErr: ErrSourceAbsent,
		legacyErr:   ErrSourceAbsent,
		panelsErr:   ErrSourceAbsent,
	}
}

type lookupRegistry struct {
	*fakeRegistry
	vis map[string]*model.Visibility
	err map[string]error
}

func (l *lookupRegistry) Visibility(_ context.Context, key string) (*model.Visibility, error) {
	if err := l.err[key]; err != nil {
		return nil, err
	}
	return l.vis[key], nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users []model.User
	err   error
	calls int
}

func (f *fakeUsers) ListUsers(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.users, f.err
}

func (f *fakeUsers) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeSink struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (f *fakeSink) Notify(_ context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeSink) notifications() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.sent...)
}

type fakeRevoker struct {
	ok   bool
	keys []string
}

func (f *fakeRevoker) RevokeAccess(_ context.Context, key string) bool {
	f.keys = append(f.keys, key)
	return f.ok
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (f *fakeAudit) AppendAudit(e model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

var errBoom = errors.New("boom")
