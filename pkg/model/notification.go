package model

import "time"

// Notification is a persistent alert shown to administrators.
// ID is stable per dashboard so a repeat replaces the previous one.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
