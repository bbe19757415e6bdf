package policy

import "errors"

// Sentinel errors for invariant and lookup failures. Authorization denials
// are not errors; they are Decision values (see decision.go). These sentinels
// cross the engine boundary so callers can map them to precise responses:
// invariant failures to 400 with the specific cause, ErrNotFound to 404.
var (
	// ErrModuleInactive rejects enrollment into a deactivated module.
	ErrModuleInactive = errors.New("policy: module is not active")

	// ErrAlreadyEnrolled rejects a second simultaneously-active enrollment
	// for the same (student, module) pair.
	ErrAlreadyEnrolled = errors.New("policy: student already enrolled")

	// ErrModuleFull rejects enrollment once active enrollments reach the
	// module's max_students cap.
	ErrModuleFull = errors.New("policy: module is full")

	// ErrNotFound is returned when a referenced entity id does not resolve,
	// including rows that exist but fall outside the caller's scope.
	ErrNotFound = errors.New("policy: entity not found")

	// ErrInvalidFilter is returned by Scope for a caller filter on a field
	// that is not filterable for the kind.
	ErrInvalidFilter = errors.New("policy: filter field not allowed")
)

// DeniedError carries a Decision's reason across error-returning call chains.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string {
	return "policy: denied (" + string(e.Reason) + ")"
}

// DeniedReason extracts the denial reason from an error chain.
func DeniedReason(err error) (Reason, bool) {
	var de *DeniedError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return "", false
}

// IsInvariantErr reports whether err is one of the enrollment invariant
// failures of CheckEnrollment.
func IsInvariantErr(err error) bool {
	return errors.Is(err, ErrModuleInactive) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrModuleFull)
}
