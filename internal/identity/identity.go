// Package identity is the boundary to the external identity collaborator. The
// core only ever sees a verified user id, never a credential.
package identity

import (
	"context"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
)

// Resolver turns a request credential into a verified user id.
type Resolver interface {
	ResolveIdentity(ctx context.Context, credential string) (string, error)
}

// Directory holds what the identity side knows about users: display names and
// the denormalized set of groups each user belongs to.
type Directory interface {
	Remember(ctx context.Context, userID, username string) error
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
	AddGroup(ctx context.Context, userID string, group models.GroupRef) error
	User(ctx context.Context, userID string) (models.User, error)
}
