package domain

// Operation is the kind of request being authorized.
type Operation uint8

const (
	OpRegister Operation = iota + 1
	OpFetchOne
	OpListAll
	OpRemove
)

func (op Operation) String() string {
	switch op {
	case OpRegister:
		return "register"
	case OpFetchOne:
		return "fetch_one"
	case OpListAll:
		return "list_all"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Caller is the authenticated identity behind a request. The zero value is
// the anonymous caller.
type Caller struct {
	Username string
	Roles    RoleSet
}

// Anonymous reports whether no identity was presented.
func (c Caller) Anonymous() bool {
	return c.Username == ""
}

// NewCaller builds a caller holding the given roles.
func NewCaller(username string, roles ...Role) Caller {
	return Caller{Username: username, Roles: NewRoleSet(roles...)}
}
