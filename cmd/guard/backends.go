package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/consul"
	"guest-dashboard-guard/pkg/db"
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/hostfile"
	"guest-dashboard-guard/pkg/store"
)

type backendFlags struct {
	host        string
	hostFile    string
	users       string
	consulAddr  string
	consulToken string
}

func (b *backendFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&b.host, "host-backend", config.Getenv("GUARD_HOST_BACKEND", "file"), "Dashboard registry: file, consul, memory")
	fs.StringVar(&b.hostFile, "host-file", config.Getenv("GUARD_HOST_FILE", "host.yaml"), "Host snapshot YAML (file backend, memory seed)")
	fs.StringVar(&b.users, "users-backend", config.Getenv("GUARD_USERS_BACKEND", "host"), "User directory: host, mysql")
	fs.StringVar(&b.consulAddr, "consul-addr", config.Getenv("CONSUL_HTTP_ADDR", "127.0.0.1:8500"), "Consul address")
	fs.StringVar(&b.consulToken, "consul-token", config.Getenv("CONSUL_HTTP_TOKEN", ""), "Consul ACL token")
}

// backends is the host wiring shared by every command.
type backends struct {
	Users    guard.UserDirectory
	Registry guard.DashboardRegistry
	Store    store.Store
	// MySQL is set when users come from the database.
	MySQL *db.Users
	// Consul is set for the consul host backend.
	Consul *consul.Registry
	// Memory is set for the memory host backend; it also keeps notifications.
	Memory *store.MemoryStore
}

func openBackends(b backendFlags, logger *zap.Logger) (*backends, error) {
	out := &backends{}
	switch b.host {
	case "file":
		reg := hostfile.New(b.hostFile)
		out.Users, out.Registry = reg, reg
		out.Memory = store.NewMemoryStore()
		out.Store = out.Memory
	case "memory":
		mem := store.NewMemoryStore()
		if b.hostFile != "" {
			snap, err := hostfile.ReadFile(b.hostFile)
			if err != nil {
				return nil, err
			}
			seedMemory(mem, snap)
		}
		out.Users, out.Registry, out.Store, out.Memory = mem, mem, mem, mem
	case "consul":
		reg, err := openConsul(b)
		if err != nil {
			return nil, err
		}
		out.Users, out.Registry, out.Store, out.Consul = reg, reg, reg, reg
	default:
		return nil, fmt.Errorf("unsupported host backend: %s", b.host)
	}

	switch b.users {
	case "host", "":
	case "mysql":
		gdb, err := db.Init()
		if err != nil {
			return nil, fmt.Errorf("mysql: %w", err)
		}
		out.MySQL = db.NewUsers(gdb)
		out.Users = out.MySQL
	default:
		return nil, fmt.Errorf("unsupported users backend: %s", b.users)
	}
	logger.Info("Backends ready",
		zap.String("host", b.host),
		zap.String("users", b.users))
	return out, nil
}

func openConsul(b backendFlags) (*consul.Registry, error) {
	cli, err := consul.NewClient(b.consulAddr, b.consulToken)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return consul.New(cli), nil
}

func seedMemory(mem *store.MemoryStore, snap hostfile.Snapshot) {
	for _, u := range snap.Users {
		mem.UpsertUser(u)
	}
	if snap.Lovelace != nil {
		mem.SetLovelace(*snap.Lovelace)
	}
	if snap.Legacy != nil {
		mem.SetLegacy(*snap.Legacy)
	}
	if snap.Panels != nil {
		mem.SetPanels(*snap.Panels)
	}
	for key, v := range snap.Visibility {
		mem.SetVisibility(key, v)
	}
}

// newCoordinator builds a coordinator over the backends with the given sink.
// It does not write to the store.
func newCoordinator(be *backends, sink guard.NotificationSink, logger *zap.Logger) (*guard.Coordinator, error) {
	settings, err := overrides.resolve()
	if err != nil {
		return nil, err
	}
	return guard.New(guard.Options{
		Users:    be.Users,
		Registry: be.Registry,
		Sink:     sink,
		Audit:    be.Store,
		Settings: settings,
	}, logger)
}
