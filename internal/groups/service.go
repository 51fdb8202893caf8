// Package groups implements group creation, joining by invite code and
// membership-scoped reads on top of a storage.GroupRepository.
package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/Vasu1712/hushgroup-backend/internal/invite"
	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// DefaultCodeAttempts bounds how many invite codes CreateGroup tries before
// giving up with apperr.ErrCodeExhausted.
const DefaultCodeAttempts = 5

var validate = validator.New()

type Service struct {
	repo     storage.GroupRepository
	codes    invite.Generator
	dir      identity.Directory
	log      zerolog.Logger
	attempts int
	now      func() time.Time
}

type Option func(*Service)

// WithCodeAttempts overrides DefaultCodeAttempts. Values below 1 are ignored.
func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo storage.GroupRepository, codes invite.Generator, dir identity.Directory, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		codes:    codes,
		dir:      dir,
		log:      log,
		attempts: DefaultCodeAttempts,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGroup validates the name, allocates a unique invite code and stores a
// group whose only member is the founder.
func (s *Service) CreateGroup(ctx context.Context, name, founderID string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required,max=50"); err != nil || strings.ContainsRune(name, 0) {
		return models.Group{}, apperr.Validation("group name must be 1-50 characters")
	}

	group := models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		Members:   []string{founderID},
		CreatedBy: founderID,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return models.Group{}, fmt.Errorf("generating invite code: %w", err)
		}
		group.InviteCode = code

		err = s.repo.InsertGroup(ctx, group)
		if errors.Is(err, storage.ErrDuplicateInviteCode) {
			s.log.Warn().Int("attempt", attempt).Msg("invite code collision, retrying")
			continue
		}
		if err != nil {
			return models.Group{}, fmt.Errorf("creating group: %w", err)
		}

		s.linkUser(ctx, founderID, group)
		return group, nil
	}

	s.log.Error().Int("attempts", s.attempts).Msg("invite code space exhausted")
	return models.Group{}, apperr.ErrCodeExhausted
}

// JoinGroup adds userID to the group behind inviteCode. The store performs the
// membership check and the append as one atomic write.
func (s *Service) JoinGroup(ctx context.Context, inviteCode, userID string) (models.Group, error) {
	code := invite.Normalize(inviteCode)
	if code == "" {
		return models.Group{}, apperr.Validation("invite code is required")
	}

	group, err := s.repo.AddMemberByCode(ctx, code, userID)
	switch {
	case errors.Is(err, storage.ErrGroupNotFound):
		return models.Group{}, fmt.Errorf("%w: invalid invite code", apperr.ErrNotFound)
	case errors.Is(err, storage.ErrAlreadyMember):
		return models.Group{}, apperr.ErrAlreadyMember
	case err != nil:
		return models.Group{}, fmt.Errorf("joining group: %w", err)
	}

	s.linkUser(ctx, userID, group)
	return group, nil
}

// GetGroup returns the group with members resolved to display names. Only
// members may read it.
func (s *Service) GetGroup(ctx context.Context, groupID, requesterID string) (models.GroupDetail, error) {
	group, err := s.repo.GroupByID(ctx, groupID)
	if errors.Is(err, storage.ErrGroupNotFound) {
		return models.GroupDetail{}, fmt.Errorf("%w: group not found", apperr.ErrNotFound)
	}
	if err != nil {
		return models.GroupDetail{}, fmt.Errorf("loading group: %w", err)
	}
	if !group.HasMember(requesterID) {
		return models.GroupDetail{}, fmt.Errorf("%w: not a member of this group", apperr.ErrForbidden)
	}

	names, err := s.dir.DisplayNames(ctx, lo.Uniq(append([]string{group.CreatedBy}, group.Members...)))
	if err != nil {
		return models.GroupDetail{}, fmt.Errorf("resolving member names: %w", err)
	}

	return models.GroupDetail{
		ID:         group.ID,
		Name:       group.Name,
		InviteCode: group.InviteCode,
		Members: lo.Map(group.Members, func(id string, _ int) models.Member {
			return models.Member{ID: id, Username: names[id]}
		}),
		CreatedBy: models.Member{ID: group.CreatedBy, Username: names[group.CreatedBy]},
		CreatedAt: group.CreatedAt,
	}, nil
}

// ListGroupsForUser returns the user's groups, most recently created first.
func (s *Service) ListGroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	groups, err := s.repo.GroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	if groups == nil {
		groups = []models.GroupSummary{}
	}
	return groups, nil
}

// linkUser updates the identity side's back-reference. It trails the store, so
// a failure is logged and the membership stands.
func (s *Service) linkUser(ctx context.Context, userID string, group models.Group) {
	ref := models.GroupRef{ID: group.ID, Name: group.Name, InviteCode: group.InviteCode}
	if err := s.dir.AddGroup(ctx, userID, ref); err != nil {
		s.log.Warn().Err(err).Str("group_id", group.ID).Msg("failed to update user group set")
	}
}
