package policy

import (
	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/types"
)

// Principal is the authenticated actor a request is evaluated for. It is
// passed explicitly on every call; the engine keeps no ambient user state.
type Principal struct {
	ID   uuid.UUID
	Role types.Role
}

func (p Principal) String() string {
	return string(p.Role) + ":" + p.ID.String()
}
