// Package anonmsg routes messages between group members without ever storing
// or exposing who sent them.
//
// The sender id is only used to authorize a send. Once authorization is
// settled, the write path (deliver) takes no sender argument at all, and the
// persisted models.Message has no field that could hold one.
package anonmsg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const unknownGroupName = "Unknown Group"

var validate = validator.New()

// GroupReader is the part of the group store the router needs.
type GroupReader interface {
	GroupByID(ctx context.Context, id string) (models.Group, error)
	GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error)
}

// Notifier pushes inbox events to a receiver's live connections.
type Notifier interface {
	Notify(ctx context.Context, receiverID string, event models.InboxEvent) error
}

type Router struct {
	groups   GroupReader
	messages storage.MessageRepository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewRouter builds a Router. notifier may be nil when live delivery is off.
func NewRouter(groups GroupReader, messages storage.MessageRepository, notifier Notifier, log zerolog.Logger) *Router {
	return &Router{
		groups:   groups,
		messages: messages,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Send authorizes the sender against the group's membership and then stores
// the message for the receiver. Checks run in a fixed order and nothing is
// written unless all of them pass.
func (r *Router) Send(ctx context.Context, senderID, receiverID, groupID, text string) (string, error) {
	if err := r.authorize(ctx, senderID, receiverID, groupID); err != nil {
		return "", err
	}
	if err := validate.Var(text, "required,max=1000"); err != nil || strings.ContainsRune(text, 0) {
		return "", apperr.ErrInvalidMessage
	}
	return r.deliver(ctx, groupID, receiverID, text)
}

func (r *Router) authorize(ctx context.Context, senderID, receiverID, groupID string) error {
	group, err := r.groups.GroupByID(ctx, groupID)
	if errors.Is(err, storage.ErrGroupNotFound) {
		return fmt.Errorf("%w: group not found", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading group: %w", err)
	}
	if !group.HasMember(senderID) {
		return fmt.Errorf("%w: not a member of this group", apperr.ErrForbidden)
	}
	if !group.HasMember(receiverID) {
		return apperr.ErrInvalidReceiver
	}
	if receiverID == senderID {
		return apperr.ErrSelfMessage
	}
	return nil
}

// deliver is the only write path for messages.
func (r *Router) deliver(ctx context.Context, groupID, receiverID, text string) (string, error) {
	msg := models.Message{
		ID:         uuid.NewString(),
		GroupID:    groupID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  r.now().UTC().Truncate(time.Millisecond),
	}
	if err := r.messages.InsertMessage(ctx, msg); err != nil {
		return "", fmt.Errorf("storing message: %w", err)
	}

	if r.notifier != nil {
		event := models.InboxEvent{MessageID: msg.ID, GroupID: msg.GroupID, CreatedAt: msg.CreatedAt}
		if err := r.notifier.Notify(ctx, receiverID, event); err != nil {
			r.log.Warn().Err(err).Msg("inbox notification dropped")
		}
	}
	return msg.ID, nil
}

// GetInbox lists the messages received by userID, newest first, with the
// name and invite code of the group each was sent in.
func (r *Router) GetInbox(ctx context.Context, userID string) ([]models.InboxEntry, error) {
	msgs, err := r.messages.MessagesForReceiver(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading inbox: %w", err)
	}

	groupIDs := lo.Uniq(lo.Map(msgs, func(m models.Message, _ int) string { return m.GroupID }))
	groups, err := r.groups.GroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("loading inbox groups: %w", err)
	}

	entries := make([]models.InboxEntry, 0, len(msgs))
	for _, m := range msgs {
		entry := models.InboxEntry{
			ID:        m.ID,
			Text:      m.Text,
			GroupName: unknownGroupName,
			GroupID:   m.GroupID,
			CreatedAt: m.CreatedAt,
		}
		if g, ok := groups[m.GroupID]; ok {
			entry.GroupName = g.Name
			entry.GroupInviteCode = g.InviteCode
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
