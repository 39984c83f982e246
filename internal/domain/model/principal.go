package model

// Principal is the authenticated identity derived from a validated access
// token: who is acting, and with which role.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role. Roles are
// normalized at the boundary, so comparison is by value.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
