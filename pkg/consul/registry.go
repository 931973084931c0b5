// Package consul keeps host dashboard state and guard state in Consul KV.
//
// Layout under the guest-dashboard-guard/ prefix:
//
//	host/users/<id>          model.User
//	host/lovelace/<key>      model.LovelaceDashboard
//	host/legacy/<key>        model.LovelaceDashboard
//	host/panels/<path>       model.Panel
//	host/visibility/<key>    model.Visibility
//	settings                 model.Settings
//	audit/<nanos>-<target>   model.AuditEntry
//
// A dashboard source with no keys (not even its folder key) is absent.
package consul

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	consulapi "github.com/hashicorp/consul/api"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

const (
	rootPrefix       = "guest-dashboard-guard/"
	hostPrefix       = rootPrefix + "host/"
	userPrefix       = hostPrefix + "users/"
	lovelacePrefix   = hostPrefix + "lovelace/"
	legacyPrefix     = hostPrefix + "legacy/"
	panelPrefix      = hostPrefix + "panels/"
	visibilityPrefix = hostPrefix + "visibility/"
	auditPrefix      = rootPrefix + "audit/"
	settingsKey      = rootPrefix + "settings"
)

// KV is the subset of the Consul KV client the registry uses.
type KV interface {
	Get(key string, q *consulapi.QueryOptions) (*consulapi.KVPair, *consulapi.QueryMeta, error)
	List(prefix string, q *consulapi.QueryOptions) (consulapi.KVPairs, *consulapi.QueryMeta, error)
	Put(p *consulapi.KVPair, q *consulapi.WriteOptions) (*consulapi.WriteMeta, error)
}

// Registry is a Consul-backed host registry and guard store.
type Registry struct {
	kv KV
}

// NewClient builds a Consul API client for addr and token.
func NewClient(addr, token string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	if token != "" {
		cfg.Token = token
	}
	return consulapi.NewClient(cfg)
}

func New(cli *consulapi.Client) *Registry {
	return &Registry{kv: cli.KV()}
}

// NewWithKV is used with alternative KV implementations.
func NewWithKV(kv KV) *Registry {
	return &Registry{kv: kv}
}

func (r *Registry) ListUsers(ctx context.Context) ([]model.User, error) {
	pairs, err := r.list(ctx, userPrefix)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := decodeAll[model.User](pairs)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *Registry) LovelaceDashboards(ctx context.Context) ([]model.LovelaceDashboard, error) {
	return r.source(ctx, lovelacePrefix)
}

func (r *Registry) LegacyDashboards(ctx context.Context) ([]model.LovelaceDashboard, error) {
	return r.source(ctx, legacyPrefix)
}

func (r *Registry) Panels(ctx context.Context) ([]model.Panel, error) {
	pairs, err := r.list(ctx, panelPrefix)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, guard.ErrSourceAbsent
	}
	return decodeAll[model.Panel](pairs)
}

func (r *Registry) source(ctx context.Context, prefix string) ([]model.LovelaceDashboard, error) {
	pairs, err := r.list(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, guard.ErrSourceAbsent
	}
	return decodeAll[model.LovelaceDashboard](pairs)
}

// Visibility prefers the visibility/ entry and falls back to the visibility
// block of the matching storage or legacy dashboard config.
func (r *Registry) Visibility(ctx context.Context, key string) (*model.Visibility, error) {
	kv, _, err := r.kv.Get(visibilityPrefix+key, queryOptions(ctx))
	if err != nil {
		return nil, err
	}
	if kv != nil && len(kv.Value) > 0 {
		var v model.Visibility
		if err := json.Unmarshal(kv.Value, &v); err != nil {
			return nil, fmt.Errorf("decode visibility %s: %w", key, err)
		}
		return &v, nil
	}
	for _, read := range []func(context.Context) ([]model.LovelaceDashboard, error){r.LovelaceDashboards, r.LegacyDashboards} {
		ds, err := read(ctx)
		if err != nil {
			continue
		}
		for _, d := range ds {
			if dashboardKey(d.URLPath) == key {
				return guard.VisibilityFromConfig(d.Config), nil
			}
		}
	}
	return nil, nil
}

// PutUser stores a host account.
func (r *Registry) PutUser(u model.User) error {
	return r.put(userPrefix+u.ID, u)
}

// PutLovelace stores a storage-mode dashboard and marks the source present.
func (r *Registry) PutLovelace(d model.LovelaceDashboard) error {
	if err := r.markSource(lovelacePrefix); err != nil {
		return err
	}
	return r.put(lovelacePrefix+dashboardKey(d.URLPath), d)
}

func (r *Registry) PutLegacy(d model.LovelaceDashboard) error {
	if err := r.markSource(legacyPrefix); err != nil {
		return err
	}
	return r.put(legacyPrefix+dashboardKey(d.URLPath), d)
}

func (r *Registry) PutPanel(p model.Panel) error {
	if err := r.markSource(panelPrefix); err != nil {
		return err
	}
	return r.put(panelPrefix+p.URLPath, p)
}

func (r *Registry) PutVisibility(key string, v model.Visibility) error {
	return r.put(visibilityPrefix+key, v)
}

// GetSettings returns the stored settings or the defaults when none exist.
func (r *Registry) GetSettings() (model.Settings, error) {
	kv, _, err := r.kv.Get(settingsKey, nil)
	if err != nil {
		return model.Settings{}, err
	}
	if kv == nil {
		return config.Default(), nil
	}
	var s model.Settings
	if err := json.Unmarshal(kv.Value, &s); err != nil {
		return model.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r *Registry) UpdateSettings(s model.Settings) error {
	if err := config.Validate(s); err != nil {
		return err
	}
	return r.put(settingsKey, s)
}

func (r *Registry) AppendAudit(entry model.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	key := fmt.Sprintf("%s%d-%s", auditPrefix, entry.Timestamp.UnixNano(), entry.Target)
	return r.put(key, entry)
}

// ListAudit returns the newest limit entries, oldest first.
func (r *Registry) ListAudit(limit int) ([]model.AuditEntry, error) {
	pairs, err := r.list(context.Background(), auditPrefix)
	if err != nil {
		return nil, err
	}
	out, err := decodeAll[model.AuditEntry](pairs)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *Registry) put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.kv.Put(&consulapi.KVPair{Key: key, Value: b}, nil)
	return err
}

func (r *Registry) markSource(prefix string) error {
	_, err := r.kv.Put(&consulapi.KVPair{Key: prefix}, nil)
	return err
}

// list returns the pairs under prefix, including the folder key itself.
func (r *Registry) list(ctx context.Context, prefix string) (consulapi.KVPairs, error) {
	pairs, _, err := r.kv.List(prefix, queryOptions(ctx))
	return pairs, err
}

func queryOptions(ctx context.Context) *consulapi.QueryOptions {
	return (&consulapi.QueryOptions{}).WithContext(ctx)
}

// decodeAll skips folder keys and fails on the first undecodable value.
func decodeAll[T any](pairs consulapi.KVPairs) ([]T, error) {
	out := make([]T, 0, len(pairs))
	for _, p := range pairs {
		if len(p.Value) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func dashboardKey(urlPath string) string {
	if urlPath == "" || urlPath == "lovelace" {
		return model.DefaultDashboardKey
	}
	return urlPath
}
