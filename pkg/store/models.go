package store

import (
	"database/sql"
	"errors"
	"time"
)

// Sentinel errors shared by all store methods.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("already exists")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// User is an account that owns leads, tags, teams and everything else.
type User struct {
	ID           int
	Email        string
	PasswordHash string
	Credits      int
	CreatedAt    time.Time
}

// Lead is a CRM lead owned by a single user. Status is one of the
// configured pipeline stages; ownership never changes after creation.
type Lead struct {
	ID        int
	UserID    int
	Name      string
	Email     string
	Status    string
	CreatedAt time.Time
}

// Activity is an immutable, timestamped free-text record of a user action.
type Activity struct {
	ID        int
	UserID    int
	Action    string
	CreatedAt time.Time
}

// Transition is a structured stage-change event for a lead. FromStatus is
// empty for the initial stage; ToStatus is empty when the lead was deleted.
type Transition struct {
	ID         int
	LeadID     int
	UserID     int
	LeadName   string
	FromStatus string
	ToStatus   string
	OccurredAt time.Time
}

// Tag is a per-user label assignable to leads.
type Tag struct {
	ID        int
	UserID    int
	Name      string
	CreatedAt time.Time
}

// Note is a free-text note attached to a lead.
type Note struct {
	ID        int
	LeadID    int
	UserID    int
	Content   string
	CreatedAt time.Time
}

// Team groups users for shared CRM access.
type Team struct {
	ID        int
	OwnerID   int
	Name      string
	CreatedAt time.Time
}

// TeamMember is a user's membership in a team.
type TeamMember struct {
	ID        int
	TeamID    int
	UserID    int
	Role      string
	InvitedAt time.Time
	JoinedAt  *time.Time
}

// TeamInvite is a pending invitation identified by an opaque UUID token.
type TeamInvite struct {
	ID         string
	TeamID     int
	Email      string
	Role       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

// Comment is a discussion entry on a lead, broadcast to watchers in realtime.
type Comment struct {
	ID        int
	LeadID    int
	UserID    int
	Content   string
	CreatedAt time.Time
}

// nullableString maps empty strings to SQL NULL on write.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
