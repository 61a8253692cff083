package domain

// RoleKind discriminates the two caller identities the command surface
// accepts. Role checks switch on the kind rather than comparing usernames.
type RoleKind string

const (
	RoleKindTeam  RoleKind = "team"
	RoleKindAdmin RoleKind = "admin"
)

// Role is the authenticated identity attached to every command: either one of
// the enumerated teams, or the administrator.
type Role struct {
	Kind RoleKind `json:"kind"`
	Team TeamID   `json:"team,omitempty"` // set only when Kind == RoleKindTeam
}

// TeamRole returns a team identity for the given team id.
func TeamRole(id TeamID) Role {
	return Role{Kind: RoleKindTeam, Team: id}
}

// AdminRole returns the administrator identity.
func AdminRole() Role {
	return Role{Kind: RoleKindAdmin}
}

// IsAdmin reports whether the role is the administrator.
func (r Role) IsAdmin() bool {
	return r.Kind == RoleKindAdmin
}
