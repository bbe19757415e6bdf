package policy

// Reason explains a denial. Reason codes are stable and deterministic: role
// checks run before ownership checks, and an admin short-circuits to Allow
// before anything else, so identical inputs always yield the same code.
type Reason string

const (
	ReasonNotOwner         Reason = "not_owner"
	ReasonNotRecipient     Reason = "not_recipient"
	ReasonRoleNotPermitted Reason = "role_not_permitted"
	ReasonSelfMessage      Reason = "self_message"
)

// Decision is the outcome of an Authorize call. A zero Decision is a denial
// with no reason; use Allow and Deny to construct values.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(r Reason) Decision {
	return Decision{Reason: r}
}

func (d Decision) Denied() bool { return !d.Allowed }

// Err converts a denial into an error value for service-layer plumbing.
// Returns nil when the decision allows.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}
