package models

// Canonical role names. Roles are reference data seeded by migration;
// lower priority means higher privilege.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

type Role struct {
	ID          string
	Name        string
	Priority    int
	Description string
}
