// Package models defines the core data structures for users, wish items,
// and the event configuration, plus the shared error taxonomy.
package models

import "errors"

// Role identifies the privilege level of a user.
type Role string

const (
	// RoleAdmin may manage users, items, and event details.
	RoleAdmin Role = "admin"
	// RoleUser may claim and return items and answer the RSVP prompt.
	RoleUser Role = "user"
)

// User represents an application user with credentials and RSVP state.
type User struct {
	// Username is the unique login name and primary key.
	Username string `json:"username"`
	// Password is stored and compared as-is. Kept plaintext for parity
	// with the data this service migrates; a known weakness.
	Password string `json:"password"`
	// Role determines admin privileges. New users default to RoleUser.
	Role Role `json:"role"`
	// Coming is the RSVP state. False means "not yet confirmed", which
	// re-prompts the RSVP screen on the next login.
	Coming bool `json:"coming"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Item is a single wish-list entry.
type Item struct {
	// ID is the unique identifier assigned by the store on creation.
	ID string `json:"id"`
	// Name is the item title, required and non-empty.
	Name string `json:"name"`
	// Details holds optional free-text information.
	Details string `json:"details"`
	// ClaimedBy lists claimant usernames in claim order. A username
	// appears at most once.
	ClaimedBy []string `json:"claimedBy"`
}

// Claimed reports whether username appears in the item's claim list.
func (i Item) Claimed(username string) bool {
	for _, u := range i.ClaimedBy {
		if u == username {
			return true
		}
	}
	return false
}

// EventConfig is the single-row event description record.
type EventConfig struct {
	// Details is the free text shown to all users, replaced wholesale
	// on admin edit.
	Details string `json:"details"`
}

// Session carries the identity of a signed-in user.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Coming   bool   `json:"coming"`
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

var (
	// ErrInvalidCredentials is returned on login failure. The same error
	// covers both an unknown username and a wrong password so callers
	// cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation is returned when a required field is empty or
	// otherwise unusable. Views abort the operation silently.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the target of an update or delete no
	// longer exists. Treated as a silent no-op by callers.
	ErrNotFound = errors.New("not found")

	// ErrNameConflict is returned when a rename target username is
	// already taken.
	ErrNameConflict = errors.New("name already taken")
)
