package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
)

type groupRecord struct {
	group   models.Group
	seq     int64               // creation order, breaks CreatedAt ties
	members map[string]struct{} // set view of group.Members
}

// GroupStore manages groups and memberships in memory. Every mutation happens
// under a single write lock, so check-and-append is atomic.
type GroupStore struct {
	mu        sync.RWMutex
	groups    map[string]*groupRecord // groupID -> record
	codes     map[string]string       // inviteCode -> groupID
	userIndex map[string][]string     // userID -> []groupID
	seq       int64
}

func NewGroupStore() *GroupStore {
	return &GroupStore{
		groups:    make(map[string]*groupRecord),
		codes:     make(map[string]string),
		userIndex: make(map[string][]string),
	}
}

func (s *GroupStore) InsertGroup(ctx context.Context, group models.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.codes[group.InviteCode]; taken {
		return storage.ErrDuplicateInviteCode
	}

	s.seq++
	rec := &groupRecord{
		group:   group,
		seq:     s.seq,
		members: make(map[string]struct{}, len(group.Members)),
	}
	rec.group.Members = slices.Clone(group.Members)
	for _, userID := range group.Members {
		rec.members[userID] = struct{}{}
		s.userIndex[userID] = append(s.userIndex[userID], group.ID)
	}

	s.groups[group.ID] = rec
	s.codes[group.InviteCode] = group.ID
	return nil
}

func (s *GroupStore) AddMemberByCode(ctx context.Context, code, userID string) (models.Group, error) {
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groupID, ok := s.codes[code]
	if !ok {
		return models.Group{}, storage.ErrGroupNotFound
	}
	rec := s.groups[groupID]

	if _, joined := rec.members[userID]; joined {
		return models.Group{}, storage.ErrAlreadyMember
	}

	rec.members[userID] = struct{}{}
	rec.group.Members = append(rec.group.Members, userID)
	s.userIndex[userID] = append(s.userIndex[userID], groupID)

	return copyGroup(rec.group), nil
}

func (s *GroupStore) GroupByID(ctx context.Context, id string) (models.Group, error) {
	if err := ctx.Err(); err != nil {
		return models.Group{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.groups[id]
	if !ok {
		return models.Group{}, storage.ErrGroupNotFound
	}
	return copyGroup(rec.group), nil
}

func (s *GroupStore) GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]models.Group, len(ids))
	for _, id := range ids {
		if rec, ok := s.groups[id]; ok {
			g := rec.group
			g.Members = nil
			found[id] = g
		}
	}
	return found, nil
}

func (s *GroupStore) GroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]*groupRecord, 0, len(s.userIndex[userID]))
	for _, groupID := range s.userIndex[userID] {
		recs = append(recs, s.groups[groupID])
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].group.CreatedAt.Equal(recs[j].group.CreatedAt) {
			return recs[i].group.CreatedAt.After(recs[j].group.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	summaries := make([]models.GroupSummary, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, models.GroupSummary{
			ID:          rec.group.ID,
			Name:        rec.group.Name,
			InviteCode:  rec.group.InviteCode,
			MemberCount: len(rec.group.Members),
			CreatedAt:   rec.group.CreatedAt,
		})
	}
	return summaries, nil
}

// copyGroup detaches the member slice so callers never share the store's backing array.
func copyGroup(g models.Group) models.Group {
	g.Members = slices.Clone(g.Members)
	return g
}
