package domain

import (
	"strings"
	"time"
)

// Role tags a category of platform functionality.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleCenterManager Role = "center_manager"
	RoleTrainer       Role = "trainer"
	RoleLearner       Role = "learner"
	RoleJobSeeker     Role = "job_seeker"
	RoleEnterprise    Role = "enterprise"
)

// AllRoles lists every known role.
var AllRoles = []Role{
	RoleAdministrator,
	RoleCenterManager,
	RoleTrainer,
	RoleLearner,
	RoleJobSeeker,
	RoleEnterprise,
}

// Valid reports whether r is part of the fixed role enumeration.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Subject is a registered identity capable of authenticating.
type Subject struct {
	ID         string
	Email      string
	SecretHash string
	Roles      []Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasRole reports whether roles contains role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases a login handle.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DedupeRoles drops duplicate and unknown roles while keeping first-seen order.
func DedupeRoles(roles []Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		if !r.Valid() || HasRole(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
