package authority

import "strings"

// application roles, stored in user_roles and carried in session perms
const (
	RoleAdmin             = "admin"
	RoleApprover          = "aprovador"
	RoleCostCenterManager = "gestor_centro_custo"
	RoleViewer            = "visualizador"
)

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}

func (c Permissions) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}
