package domain

import "time"

// Role is the access tier stored on a user record. The stored role is the
// single source of truth for authorization; token claims are never consulted.
type Role string

const (
	RoleUser      Role = "user"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a raw string into a Role, reporting whether it is one of
// the known tiers.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// User models a registered account. One document per identity, keyed by email.
type User struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Email     string    `json:"email" bson:"email"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Role      Role      `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Principal is the verified identity derived from a bearer credential by the
// identity provider. Email is the only trusted identifier for downstream
// lookups; handlers must never substitute a client-supplied email for it.
type Principal struct {
	// Subject is the provider's stable identifier for the account.
	Subject string
	Email   string
	Name    string
}

// RolePredicate is a named set of roles acceptable for an operation. The gate
// passes a request iff the stored role of the verified principal is a member.
type RolePredicate struct {
	name    string
	allowed map[Role]struct{}
}

// NewRolePredicate builds a predicate accepting exactly the given roles.
func NewRolePredicate(name string, roles ...Role) RolePredicate {
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return RolePredicate{name: name, allowed: allowed}
}

// Allows reports whether the role is a member of the predicate's accepted set.
func (p RolePredicate) Allows(r Role) bool {
	_, ok := p.allowed[r]
	return ok
}

// Name returns the predicate's label, used for logging and metrics.
func (p RolePredicate) Name() string { return p.name }

// The three gate policies used by the routing layer. IsLibrarianOrAdmin and
// IsAdminOrLibrarian accept the same set; both names are kept because call
// sites historically distinguished them.
var (
	IsAdmin            = NewRolePredicate("admin_only", RoleAdmin)
	IsLibrarianOrAdmin = NewRolePredicate("librarian_or_admin", RoleLibrarian, RoleAdmin)
	IsAdminOrLibrarian = NewRolePredicate("admin_or_librarian", RoleAdmin, RoleLibrarian)
)
