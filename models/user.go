package models

// Role names recognised by the API.
const (
	RoleAdmin      = "admin"
	RoleGroupAdmin = "subadmin"
	RoleUser       = "user"
)

// UserContext is the caller identity resolved once per request.
type UserContext struct {
	UserID          string   `json:"id"`
	Role            string   `json:"role"`
	PermittedPages  []string `json:"allowed_pages"`
	ManagedGroupIDs []int64  `json:"managed_groups"`
}

// Privileged reports whether the caller bypasses ownership checks.
func (u UserContext) Privileged() bool {
	return u.Role == RoleAdmin
}

// CanAccessPage reports whether the caller may use the named feature.
func (u UserContext) CanAccessPage(page string) bool {
	if u.Privileged() {
		return true
	}
	for _, p := range u.PermittedPages {
		if p == page {
			return true
		}
	}
	return false
}
