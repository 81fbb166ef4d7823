package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTeacher    UserRole = "TEACHER"
	RoleParent     UserRole = "PARENT"
	RoleStudent    UserRole = "STUDENT"
)

// CanActForOthers reports whether the role may manage another member's missions.
func (r UserRole) CanActForOthers() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher, RoleParent:
		return true
	default:
		return false
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// IsAdmin reports whether the role administers the whole deployment.
func (r UserRole) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
