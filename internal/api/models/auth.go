package models

import (
	"github.com/breezyday/breezyday/internal/auth"
)

// Account is the public view of a user account.
type Account struct {
	UserID      string     `json:"userId"`
	Email       string     `json:"email"`
	CreatedAt   Timestamp  `json:"createdAt"`
	LastLoginAt *Timestamp `json:"lastLoginAt,omitempty"`
}

// NewAccount converts a user.
func NewAccount(u *auth.User) Account {
	return Account{
		UserID:      u.ID,
		Email:       u.Email,
		CreatedAt:   Timestamp(u.CreatedAt),
		LastLoginAt: TimestampPtr(u.LastLoginAt),
	}
}

// Registered is the body of a successful registration.
type Registered struct {
	Message string  `json:"message"`
	User    Account `json:"user"`
}
