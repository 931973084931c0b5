package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/model"
)

// Options wires a Coordinator to the host.
type Options struct {
	Users    UserDirectory
	Registry DashboardRegistry
	Sink     NotificationSink
	Revoker  Revoker  // optional, defaults to StubRevoker
	Audit    AuditLog // optional
	Settings model.Settings
}

// Coordinator runs guard cycles on a fixed interval and keeps the last good result.
type Coordinator struct {
	logger     *zap.Logger
	users      UserDirectory
	enumerator *Enumerator
	detector   *Detector
	handler    *Handler
	audit      AuditLog

	cycleMu sync.Mutex // one cycle at a time; guards detector

	mu        sync.RWMutex
	settings  model.Settings
	data      *model.PollResult
	lastErr   error
	listeners []func(model.PollResult)

	trigger  chan struct{}
	reconfig chan struct{}
	now      func() time.Time
}

// New validates the settings and builds a Coordinator.
func New(opts Options, logger *zap.Logger) (*Coordinator, error) {
	if opts.Users == nil || opts.Registry == nil {
		return nil, fmt.Errorf("user directory and dashboard registry are required")
	}
	if err := config.Validate(opts.Settings); err != nil {
		return nil, err
	}
	logger = logger.Named("coordinator")
	return &Coordinator{
		logger:     logger,
		users:      opts.Users,
		enumerator: NewEnumerator(opts.Registry, logger),
		detector:   NewDetector(logger),
		handler:    NewHandler(opts.Sink, opts.Revoker, opts.Audit, logger),
		audit:      opts.Audit,
		settings:   opts.Settings,
		trigger:    make(chan struct{}, 1),
		reconfig:   make(chan struct{}, 1),
		now:        time.Now,
	}, nil
}

// Refresh runs one full cycle. On failure the previous result stays in place.
func (c *Coordinator) Refresh(ctx context.Context) (model.PollResult, error) {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	settings := c.Settings()
	res, err := c.cycle(ctx, settings)
	if err != nil {
		cyclesTotal.WithLabelValues("failed").Inc()
		c.logger.Error("Error fetching dashboard data", zap.Error(err))
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return model.PollResult{}, fmt.Errorf("update failed: %w", err)
	}

	cyclesTotal.WithLabelValues("success").Inc()
	monitoredDashboards.Set(float64(res.DashboardsCount))
	guestUsers.Set(float64(res.GuestUsersCount))
	accessViolations.Set(float64(len(res.Violations)))

	c.mu.Lock()
	c.data = &res
	c.lastErr = nil
	listeners := append(([]func(model.PollResult))(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func (c *Coordinator) cycle(ctx context.Context, settings model.Settings) (model.PollResult, error) {
	if err := ctx.Err(); err != nil {
		return model.PollResult{}, err
	}
	dashboards := c.enumerator.Enumerate(ctx, settings.IgnoredDashboards)

	var users []model.User
	if settings.GuestDetection == model.GuestNonAdmin {
		var err error
		users, err = c.users.ListUsers(ctx)
		if err != nil {
			return model.PollResult{}, fmt.Errorf("list users: %w", err)
		}
	}
	guests := ResolveGuests(users, settings.GuestDetection, settings.GuestUsers)

	violations := c.detector.Detect(dashboards, guests)
	if len(violations) > 0 {
		c.handler.Handle(ctx, violations, settings.ActionMode)
	}

	return model.PollResult{
		CycleID:         uuid.NewString(),
		DashboardsCount: len(dashboards),
		GuestUsersCount: len(guests),
		Violations:      violations,
		LastCheck:       c.now(),
	}, nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (c *Coordinator) Run(ctx context.Context) {
	interval := config.Interval(c.Settings())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	c.logger.Info("Coordinator started", zap.Duration("interval", interval))

	_, _ = c.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Coordinator stopped")
			return
		case <-ticker.C:
			_, _ = c.Refresh(ctx)
		case <-c.trigger:
			_, _ = c.Refresh(ctx)
		case <-c.reconfig:
			d := config.Interval(c.Settings())
			ticker.Reset(d)
			c.logger.Info("Check interval updated", zap.Duration("interval", d))
		}
	}
}

// Trigger asks Run for an out-of-band refresh. Extra requests coalesce.
func (c *Coordinator) Trigger() {
	signal(c.trigger)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// UpdateConfig applies new settings, forgets tracked dashboards and re-arms the ticker.
func (c *Coordinator) UpdateConfig(s model.Settings, actor string) error {
	if err := config.Validate(s); err != nil {
		return err
	}
	c.cycleMu.Lock()
	c.detector.Reset()
	c.cycleMu.Unlock()

	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()

	signal(c.reconfig)

	if c.audit != nil {
		_ = c.audit.AppendAudit(model.AuditEntry{
			Actor:     actor,
			Action:    "config_update",
			Target:    config.Domain,
			Detail:    fmt.Sprintf("action=%s detection=%s interval=%ds", s.ActionMode, s.GuestDetection, s.CheckInterval),
			Timestamp: c.now(),
		})
	}
	c.Trigger()
	return nil
}

// AddListener registers fn to receive every successful result.
func (c *Coordinator) AddListener(fn func(model.PollResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Data returns the last successful result.
func (c *Coordinator) Data() (model.PollResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil {
		return model.PollResult{}, false
	}
	return *c.data, true
}

// LastError returns the error of the most recent cycle, nil after a success.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Settings returns the active settings.
func (c *Coordinator) Settings() model.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Tracked returns the dashboard keys already evaluated.
func (c *Coordinator) Tracked() []string {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	return c.detector.Tracked()
}
