// Package api exposes the guard over HTTP: sensors, violations,
// notifications, the options flow and a live websocket feed.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"guest-dashboard-guard/pkg/config"
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
	"guest-dashboard-guard/pkg/store"
)

// Deps wires the HTTP handlers.
type Deps struct {
	Coordinator   *guard.Coordinator
	Store         store.Store
	Notifications store.NotificationStore
	Users         guard.UserDirectory
	Credentials   Credentials  // nil disables /api/v1/auth/login and JWT auth
	Live          http.Handler // websocket hub, optional
	Token         string       // static bootstrap token, optional
	Logger        *zap.Logger
}

type server struct {
	Deps
	logger *zap.Logger
	creds  Credentials
	auth   func(r *http.Request) bool
}

// RegisterRoutes wires the HTTP handlers on the provided mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{
		Deps:   d,
		logger: logger.Named("api"),
		creds:  d.Credentials,
		auth:   authFunc(d.Token, d.Credentials != nil),
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/status", s.protect(http.MethodGet, s.handleStatus))
	mux.HandleFunc("/api/v1/violations", s.protect(http.MethodGet, s.handleViolations))
	mux.HandleFunc("/api/v1/notifications", s.protect("", s.handleNotifications))
	mux.HandleFunc("/api/v1/users", s.protect(http.MethodGet, s.handleUsers))
	mux.HandleFunc("/api/v1/config", s.protect("", s.handleConfig))
	mux.HandleFunc("/api/v1/refresh", s.protect(http.MethodPost, s.handleRefresh))
	mux.HandleFunc("/api/v1/audit", s.protect(http.MethodGet, s.handleAudit))
	if s.creds != nil {
		mux.HandleFunc("/api/v1/auth/login", s.handleLogin)
	}
	if d.Live != nil {
		mux.HandleFunc("/ws", s.protect("", d.Live.ServeHTTP))
	}
}

// protect checks auth and, when method is set, the request method.
func (s *server) protect(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.auth(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if method != "" && r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.Coordinator.Data()
	resp := StatusResponse{
		Sensors:  guard.Sensors(res, ok),
		Tracked:  s.Coordinator.Tracked(),
		Settings: s.Coordinator.Settings(),
	}
	if err := s.Coordinator.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleViolations(w http.ResponseWriter, _ *http.Request) {
	res, _ := s.Coordinator.Data()
	out := res.Violations
	if out == nil {
		out = []model.Violation{}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.Notifications == nil {
		http.Error(w, "notifications not configured", http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		list, err := s.Notifications.ListNotifications(r.Context())
		if err != nil {
			s.logger.Error("list notifications failed", zap.Error(err))
			http.Error(w, "failed to list notifications", http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusOK, list)
	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		err := s.Notifications.DismissNotification(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "failed to dismiss notification", http.StatusInternalServerError)
			return
		}
		s.audit(r, "dismiss", id, "")
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleUsers lists the accounts selectable as guests; system accounts are hidden.
func (s *server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("Error getting users", zap.Error(err))
		http.Error(w, "cannot_connect", http.StatusBadGateway)
		return
	}
	out := []UserOption{}
	for _, u := range users {
		if u.SystemGenerated {
			continue
		}
		out = append(out, UserOption{ID: u.ID, Name: u.DisplayName(), IsAdmin: u.IsAdmin})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, s.Coordinator.Settings())
	case http.MethodPut:
		settings := s.Coordinator.Settings()
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := config.Validate(settings); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if s.Store != nil {
			if err := s.Store.UpdateSettings(settings); err != nil {
				s.logger.Error("persist settings failed", zap.Error(err))
				http.Error(w, "failed to persist settings", http.StatusInternalServerError)
				return
			}
		}
		actor, _ := caller(r, s.Token, s.creds != nil)
		if actor == "" {
			actor = "api"
		}
		if err := s.Coordinator.UpdateConfig(settings, actor); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.writeJSON(w, http.StatusOK, settings)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	res, err := s.Coordinator.Refresh(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.audit(r, "refresh", config.Domain, res.CycleID)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		s.writeJSON(w, http.StatusOK, []model.AuditEntry{})
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.Store.ListAudit(limit)
	if err != nil {
		http.Error(w, "failed to list audit", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *server) audit(r *http.Request, action, target, detail string) {
	if s.Store == nil {
		return
	}
	actor, _ := caller(r, s.Token, s.creds != nil)
	if actor == "" {
		actor = "api"
	}
	_ = s.Store.AppendAudit(model.AuditEntry{Actor: actor, Action: action, Target: target, Detail: detail})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}
