package api

import (
	"guest-dashboard-guard/pkg/guard"
	"guest-dashboard-guard/pkg/model"
)

// StatusResponse is the sensor view plus coordinator health.
type StatusResponse struct {
	Sensors   []guard.Sensor `json:"sensors"`
	LastError string         `json:"lastError,omitempty"`
	Tracked   []string       `json:"trackedDashboards"`
	Settings  model.Settings `json:"settings"`
}

// UserOption is one entry of the guest user picker.
type UserOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}
