package services

import "errors"

// Validation sentinels surfaced by the services layer before anything hits
// storage or the policy engine.
var (
	ErrInvalidSchedule = errors.New("services: session must end after it starts")
	ErrEmptyBody       = errors.New("services: message body is empty")
	ErrEmailTaken      = errors.New("services: email already registered")
	ErrUsernameTaken   = errors.New("services: username already registered")
	ErrWeakPassword    = errors.New("services: password does not meet requirements")
	ErrWrongPassword   = errors.New("services: current password does not match")
	ErrInvalidRole     = errors.New("services: role must be student or teacher")

	// ErrImmutableField rejects updates that try to change a row's anchoring
	// foreign keys (module, student, author). Authorization is decided
	// against the row's current module; letting an update move the row
	// elsewhere would carry that decision into a module the caller was
	// never checked against.
	ErrImmutableField = errors.New("services: field cannot be changed on update")
)
