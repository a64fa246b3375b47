package authz

import (
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/types"
)

// Principal is the authenticated identity for the life of one request.
// It is produced from a verified credential and never persisted.
type Principal struct {
	ID   uuid.UUID
	Role types.Role
}

func (p Principal) IsAdmin() bool { return p.Role == types.RoleAdmin }
