package policy

import (
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// EnrollmentRequest is the snapshot CheckEnrollment evaluates. The caller
// loads it inside whatever transaction or lock makes the check-then-insert
// window race-free; the check itself is pure.
type EnrollmentRequest struct {
	Module *types.Module

	// Existing is the active enrollment row for the (student, module)
	// pair, nil when there is none. Inactive historical rows do not count.
	Existing *types.Enrollment

	// ActiveCount is the module's current number of active enrollments.
	ActiveCount int64
}

// CheckEnrollment validates an enrollment create. Checks run in a fixed
// order and the first failure wins: module active, no duplicate active row,
// capacity. Unenroll needs no re-check; it only flips is_active off.
func CheckEnrollment(req EnrollmentRequest) error {
	if req.Module == nil || !req.Module.IsActive {
		return ErrModuleInactive
	}
	if req.Existing != nil && req.Existing.IsActive {
		return ErrAlreadyEnrolled
	}
	if req.Module.IsFull(req.ActiveCount) {
		return ErrModuleFull
	}
	return nil
}
