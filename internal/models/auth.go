package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the JWT claims carried by access and refresh tokens.
// Access tokens bind the account's profile snapshot and role names;
// refresh tokens bind only the username (Subject) with Type = "refresh".
type TokenClaims struct {
	Type       string   `json:"type"`
	Username   string   `json:"username"`
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Department string   `json:"department,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}
