package domain

import "context"

// Role is the resolved role of a verified email.
type Role string

// Exactly one role is produced per email. Group assignment takes precedence
// over host presence for invitation-approval purposes; the admin allow-list
// takes precedence over both.
const (
	RoleAdmin               Role = "admin"
	RoleGroupRepresentative Role = "group_representative"
	RoleHost                Role = "host"
	RoleNone                Role = "none"
)

// Identity is the tagged union produced by the resolver. GroupName is set
// only for RoleGroupRepresentative, HostID only for RoleHost.
type Identity struct {
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	GroupName string `json:"group_name,omitempty"`
	HostID    string `json:"host_id,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// RepresentsGroup reports whether the identity is the representative of the
// named group.
func (i *Identity) RepresentsGroup(groupName string) bool {
	return i.Role == RoleGroupRepresentative && i.GroupName == groupName
}

// IdentityResolver maps a verified email to exactly one Identity. The email
// is lowercased before every lookup. RoleNone callers must be denied all
// mutation capability.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*Identity, error)
}
