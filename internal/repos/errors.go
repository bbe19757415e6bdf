package repos

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/campusconnect/campusconnect-backend/internal/policy"
)

// notFound maps storage misses onto the shared taxonomy so callers never see
// driver-level errors for a plain missing row.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.ErrNotFound
	}
	return err
}

// isUniqueViolation detects the partial unique index firing under a
// concurrent enrollment race. The message fallback covers paths where the
// driver error is rewrapped and the pg error code is lost.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
