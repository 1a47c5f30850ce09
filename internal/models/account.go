package models

import (
	"time"
)

type Account struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	Name                string
	Department          string
	Position            string
	Phone               string
	Active              bool // False until approved outside development
	Locked              bool // Set when failed attempts reach the configured threshold
	FailedLoginAttempts int
	PasswordExpired     bool
	LastLoginAt         *time.Time
	Roles               []Role
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasRole reports whether the account holds the named role.
func (a *Account) HasRole(name string) bool {
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// RoleNames returns the names of the account's roles, for token claims.
func (a *Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}
