package model

// IssueKind classifies why a dashboard is reachable by guests.
type IssueKind string

const (
	IssueDefaultVisible      IssueKind = "default_visible"
	IssueExplicitGuestAccess IssueKind = "explicit_guest_access"
)

// Violation is a dashboard reachable by at least one guest.
type Violation struct {
	Dashboard      string    `json:"dashboard"`
	Title          string    `json:"title"`
	Kind           IssueKind `json:"kind"`
	Issue          string    `json:"issue"`
	AffectedGuests []string  `json:"guestUsersAffected"`
}
