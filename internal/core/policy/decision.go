// Package policy holds the access control decision point: a pure function of
// (caller, operation, target) that never touches storage.
package policy

import "github.com/99minutos/identity-service/internal/core/domain"

const (
	MsgSelfOrAdmin   = "Access denied: you can only access your own data"
	MsgAdminRequired = "Access denied: administrator role required"
	MsgDenied        = "Access denied"
)

// Decision is the result of evaluating a request. Message is empty when
// Allowed is true.
type Decision struct {
	Allowed bool
	Message string
}

func allow() Decision          { return Decision{Allowed: true} }
func deny(msg string) Decision { return Decision{Message: msg} }

// Denied is the negation of Allowed.
func (d Decision) Denied() bool { return !d.Allowed }

// Decide evaluates the rules in order; the first match wins.
//
//  1. register is open to everyone, including anonymous callers.
//  2. list_all and remove require ADMIN.
//  3. fetch_one requires the caller to be the target, or ADMIN.
//  4. anything else is denied.
func Decide(caller domain.Caller, op domain.Operation, target string) Decision {
	switch op {
	case domain.OpRegister:
		return allow()

	case domain.OpListAll, domain.OpRemove:
		if caller.Roles.IsAdmin() {
			return allow()
		}
		return deny(MsgAdminRequired)

	case domain.OpFetchOne:
		if !caller.Anonymous() && caller.Username == target {
			return allow()
		}
		if caller.Roles.IsAdmin() {
			return allow()
		}
		return deny(MsgSelfOrAdmin)
	}

	return deny(MsgDenied)
}
