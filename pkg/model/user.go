package model

import "time"

// User is a host account. Guests are derived from this list every cycle.
type User struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Name            string    `gorm:"size:128" json:"name" yaml:"name"`
	IsAdmin         bool      `json:"isAdmin" yaml:"is_admin"`
	SystemGenerated bool      `json:"systemGenerated" yaml:"system_generated"`
	PasswordHash    string    `json:"-" yaml:"password_hash,omitempty"`
	CreatedAt       time.Time `json:"createdAt" yaml:"-"`
}

// DisplayName falls back to the ID for accounts without a name.
func (u User) DisplayName() string {
	if u.Name == "" {
		return u.ID
	}
	return u.Name
}
