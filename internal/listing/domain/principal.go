package domain

// Principal is the authenticated identity on whose behalf an operation runs.
type Principal struct {
	ID    string
	Role  Role
	Name  string
	Email string
}

// SystemPrincipal is used by unattended jobs that must mutate listings.
// Its id is prefixed so audit logs can tell it from a user.
func SystemPrincipal(name string) Principal {
	return Principal{ID: "system:" + name, Role: RoleSystem, Name: name}
}

// IsElevated reports whether the principal may mutate listings it does not own.
func (p Principal) IsElevated() bool {
	return p.Role == RoleAdmin || p.Role == RoleSystem
}
