package auth

import (
	"encoding/json"
	"strings"
)

// Role is one of the closed set of roles a user can hold.
type Role string

const (
	RoleUser        Role = "USER"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
)

// ParseRole normalises s ("super_admin", "Super-Admin", "SUPER_ADMIN") and
// reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	switch r {
	case RoleUser, RoleTenantAdmin, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// Roles is a set of roles carried by a user or a session token.
type Roles []Role

// ParseRoles keeps the known roles in values, in order, without duplicates.
func ParseRoles(values ...string) Roles {
	out := make(Roles, 0, len(values))
	for _, v := range values {
		if r, ok := ParseRole(v); ok && !out.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether r is in the set.
func (rs Roles) Has(r Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

// CanProvisionTenants reports whether the holder may create tenants.
func (rs Roles) CanProvisionTenants() bool {
	return rs.Has(RoleSuperAdmin)
}

// Strings returns the roles as plain strings.
func (rs Roles) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}

// UnmarshalJSON accepts either an array of role names or a single name, the
// latter being how older tokens carried the user's metadata role.
// Unknown names are dropped.
func (rs *Roles) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*rs = ParseRoles(many...)
		return nil
	}
	var one *string
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	if one == nil {
		*rs = Roles{}
		return nil
	}
	*rs = ParseRoles(*one)
	return nil
}
