package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the subset of the account record the ledger needs. Accounts are created and verified elsewhere.
type User struct {
	ID            uuid.UUID  `json:"id"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	WithdrawalPin *string    `json:"-"` // bcrypt hash
	IsVerified    bool       `json:"is_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// FullName renders the name the way it appears on transfer narrations: last name first.
func (u *User) FullName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// HasPin reports whether a withdrawal PIN has been set.
func (u *User) HasPin() bool {
	return u.WithdrawalPin != nil && *u.WithdrawalPin != ""
}
