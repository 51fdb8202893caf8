// Package storage declares the persistence contracts shared by the memory,
// PostgreSQL and MongoDB backends.
package storage

import (
	"context"
	"errors"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrAlreadyMember       = errors.New("user already joined group")
	ErrDuplicateInviteCode = errors.New("invite code already in use")
)

// GroupRepository owns groups and their membership lists.
type GroupRepository interface {
	// InsertGroup stores a new group with its founding members. It returns
	// ErrDuplicateInviteCode when the code is taken and writes nothing.
	InsertGroup(ctx context.Context, group models.Group) error

	// AddMemberByCode appends userID to the group holding code as one atomic
	// conditional write. It returns ErrGroupNotFound or ErrAlreadyMember.
	AddMemberByCode(ctx context.Context, code, userID string) (models.Group, error)

	GroupByID(ctx context.Context, id string) (models.Group, error)

	// GroupsByIDs returns the groups that exist among ids, keyed by id.
	// Member lists are not loaded.
	GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error)

	// GroupsForUser lists the user's groups, most recently created first.
	GroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error)
}

// MessageRepository persists anonymous messages. Nothing in it accepts or
// returns a sender.
type MessageRepository interface {
	InsertMessage(ctx context.Context, msg models.Message) error

	// MessagesForReceiver returns the receiver's messages, newest first.
	MessagesForReceiver(ctx context.Context, receiverID string) ([]models.Message, error)
}
