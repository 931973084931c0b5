package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"guest-dashboard-guard/pkg/auth"
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

const tokenTTL = 24 * time.Hour

// Credentials looks operators up by name for login.
type Credentials interface {
	FindUser(ctx context.Context, name string) (model.User, bool, error)
}

// DirectoryCredentials serves login from any user directory.
type DirectoryCredentials struct {
	Users guard.UserDirectory
}

func (d DirectoryCredentials) FindUser(ctx context.Context, name string) (model.User, bool, error) {
	users, err := d.Users.ListUsers(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range users {
		if u.Name == name || u.ID == name {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}

// authFunc accepts the static bootstrap token (X-Auth-Token or Bearer) or an
// admin JWT. With no token and no login configured every request passes.
func authFunc(token string, jwtEnabled bool) func(r *http.Request) bool {
	if token == "" && !jwtEnabled {
		return func(_ *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		_, ok := caller(r, token, jwtEnabled)
		return ok
	}
}

// caller names the authenticated principal for the audit trail.
func caller(r *http.Request, token string, jwtEnabled bool) (string, bool) {
	h := r.Header.Get("X-Auth-Token")
	if h == "" {
		authz := r.Header.Get("Authorization")
		if strings.HasPrefix(authz, "Bearer ") {
			h = strings.TrimPrefix(authz, "Bearer ")
		}
	}
	if h == "" {
		return "", token == "" && !jwtEnabled
	}
	if token != "" && h == token {
		return "token", true
	}
	if jwtEnabled {
		if claims, err := auth.Parse(h); err == nil && claims.Admin {
			return claims.Username, true
		}
	}
	return "", false
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	user, ok, err := s.creds.FindUser(r.Context(), req.Username)
	if err != nil {
		s.logger.Error("credential lookup failed", zap.Error(err))
		http.Error(w, "login unavailable", http.StatusInternalServerError)
		return
	}
	if !ok || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsAdmin {
		http.Error(w, "admin required", http.StatusForbidden)
		return
	}
	token, err := auth.Generate(user.ID, user.DisplayName(), true, tokenTTL)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	s.logger.Info("operator logged in", zap.String("user", user.ID))
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresIn: int(tokenTTL / time.Second)})
}
