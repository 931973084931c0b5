package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/api"
	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/notify"
	"guest-dashboard-guard/pkg/store"
	"guest-dashboard-guard/pkg/version"
)

type serveOptions struct {
	addr     string
	token    string
	login    bool
	notifyDB string
	tls      api.TLSOptions
}

func serveCmd() *cobra.Command {
	var o serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the guard loop and HTTP API",
		Long: `Run guard cycles every check interval and serve sensors, violations,
notifications and the options flow over HTTP.

Examples:
  # Watch a host snapshot file, notifications kept in sqlite
  guard serve --host-file host.yaml --notify-db /var/lib/guard/notify.db

  # Dashboards in Consul, users in MySQL, operator login enabled
  guard serve --host-backend consul --users-backend mysql --login`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", config.Getenv("GUARD_ADDR", ":8080"), "Listen address")
	f.StringVar(&o.token, "token", config.Getenv("GUARD_TOKEN", ""), "Static bootstrap auth token (optional)")
	f.BoolVar(&o.login, "login", false, "Enable operator login (JWT) against the user directory")
	f.StringVar(&o.notifyDB, "notify-db", config.Getenv("GUARD_NOTIFY_DB", ""), "SQLite file for persistent notifications (default in memory)")
	f.StringVar(&o.tls.CertFile, "tls-cert", "", "TLS cert path (enables HTTPS with --tls-key)")
	f.StringVar(&o.tls.KeyFile, "tls-key", "", "TLS key path (enables HTTPS with --tls-cert)")
	f.StringVar(&o.tls.ClientCA, "client-ca", "", "Require and verify client certs using this CA (optional)")
	return cmd
}

func runServe(parent context.Context, o serveOptions) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("Starting guard", zap.String("version", version.String()), zap.String("addr", o.addr))

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackends(backend, logger)
	if err != nil {
		return err
	}

	var notes store.NotificationStore
	if o.notifyDB != "" {
		sq, err := notify.OpenSQLite(ctx, o.notifyDB)
		if err != nil {
			return err
		}
		defer sq.Close()
		notes = sq
	} else {
		if be.Memory == nil {
			be.Memory = store.NewMemoryStore()
		}
		notes = be.Memory
	}

	hub := notify.NewHub(logger)
	defer hub.Close()

	coord, err := newCoordinator(be, notify.Multi{notes, hub}, logger)
	if err != nil {
		return err
	}
	coord.AddListener(hub.PublishResult)
	if err := be.Store.UpdateSettings(coord.Settings()); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}

	deps := api.Deps{
		Coordinator:   coord,
		Store:         be.Store,
		Notifications: notes,
		Users:         be.Users,
		Live:          hub,
		Token:         o.token,
		Logger:        logger,
	}
	if o.login {
		if be.MySQL != nil {
			deps.Credentials = be.MySQL
		} else {
			deps.Credentials = api.DirectoryCredentials{Users: be.Users}
		}
	}
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, deps)

	srv := &http.Server{
		Addr:              o.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if o.tls.Enabled() {
		cfg, err := api.ServerTLSConfig(o.tls)
		if err != nil {
			return err
		}
		srv.TLSConfig = cfg
	}

	go coord.Run(ctx)
	if be.Consul != nil {
		go be.Consul.Watch(ctx, logger, coord.Trigger)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", zap.String("addr", o.addr), zap.Bool("tls", o.tls.Enabled()))
		if o.tls.Enabled() {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
