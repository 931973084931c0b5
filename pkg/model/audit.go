package model

import "time"

// AuditEntry captures a guard decision or an operator action.
type AuditEntry struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"` // violation/revoke/config_update/refresh
	Target    string    `json:"target"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
