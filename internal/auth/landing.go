package auth

import "github.com/spec-kit/academy-auth/internal/domain"

// DefaultLandingPath is used when no role in the set has a destination.
const DefaultLandingPath = "/"

type landing struct {
	role domain.Role
	path string
}

// landingPriority is ordered from highest to lowest priority.
var landingPriority = []landing{
	{role: domain.RoleAdministrator, path: "/admin/dashboard"},
	{role: domain.RoleCenterManager, path: "/center/dashboard"},
	{role: domain.RoleTrainer, path: "/trainer/dashboard"},
	{role: domain.RoleLearner, path: "/learner/dashboard"},
	{role: domain.RoleJobSeeker, path: "/candidate/dashboard"},
	{role: domain.RoleEnterprise, path: "/enterprise/dashboard"},
}

// ResolveLandingPath picks the destination of the highest-priority role present in roles.
// The result does not depend on the order of roles.
func ResolveLandingPath(roles []domain.Role) string {
	for _, candidate := range landingPriority {
		if domain.HasRole(roles, candidate.role) {
			return candidate.path
		}
	}
	return DefaultLandingPath
}
