package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the closed set of privileges an account can hold.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleUser
	RoleAdmin
)

const (
	roleAdminName = "ADMIN"
	roleUserName  = "USER"
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return roleAdminName
	case RoleUser:
		return roleUserName
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether r is one of the two assignable roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole accepts "ADMIN" / "USER" in any case. The "ROLE_" prefix used by
// older clients is tolerated.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ROLE_")
	switch name {
	case roleAdminName:
		return RoleAdmin, nil
	case roleUserName:
		return RoleUser, nil
	}
	return RoleUnknown, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, r)
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is the set of roles a caller presents.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set, ignoring unknown roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// IsAdmin is the single privilege check used by access decisions.
func (s RoleSet) IsAdmin() bool {
	return s.Has(RoleAdmin)
}
