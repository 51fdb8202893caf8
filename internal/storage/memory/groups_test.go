package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroup(id, code, founder string, createdAt time.Time) models.Group {
	return models.Group{
		ID:         id,
		Name:       "group " + id,
		InviteCode: code,
		Members:    []string{founder},
		CreatedBy:  founder,
		CreatedAt:  createdAt,
	}
}

func TestGroupStore_InsertGroup_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	now := time.Now()

	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", now)))
	err := s.InsertGroup(ctx, newGroup("g2", "AAAA0001", "bob", now))
	assert.ErrorIs(t, err, storage.ErrDuplicateInviteCode)

	_, err = s.GroupByID(ctx, "g2")
	assert.ErrorIs(t, err, storage.ErrGroupNotFound, "rejected group must not be stored")

	groups, err := s.GroupsForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupStore_AddMemberByCode(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", time.Now())))

	g, err := s.AddMemberByCode(ctx, "AAAA0001", "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, g.Members)

	_, err = s.AddMemberByCode(ctx, "AAAA0001", "bob")
	assert.ErrorIs(t, err, storage.ErrAlreadyMember)

	_, err = s.AddMemberByCode(ctx, "FFFFFFFF", "bob")
	assert.ErrorIs(t, err, storage.ErrGroupNotFound)
}

func TestGroupStore_ReturnedGroupIsDetached(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", time.Now())))

	g, err := s.GroupByID(ctx, "g1")
	require.NoError(t, err)
	g.Members[0] = "mallory"

	again, err := s.GroupByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, again.Members)
}

func TestGroupStore_ConcurrentSameUserJoin(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", time.Now())))

	const attempts = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		already   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddMemberByCode(ctx, "AAAA0001", "bob")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, storage.ErrAlreadyMember):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, already)

	g, err := s.GroupByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, g.Members)
}

func TestGroupStore_ConcurrentDistinctJoiners(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "founder", time.Now())))

	const joiners = 64
	var wg sync.WaitGroup
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.AddMemberByCode(ctx, "AAAA0001", fmt.Sprintf("user-%d", n))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	g, err := s.GroupByID(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, g.Members, joiners+1)
	assert.Equal(t, "founder", g.Members[0])
	for i := 0; i < joiners; i++ {
		assert.Contains(t, g.Members, fmt.Sprintf("user-%d", i))
	}
}

func TestGroupStore_GroupsForUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertGroup(ctx, newGroup("old", "AAAA0001", "alice", base)))
	require.NoError(t, s.InsertGroup(ctx, newGroup("new", "AAAA0002", "bob", base.Add(time.Hour))))
	require.NoError(t, s.InsertGroup(ctx, newGroup("mid", "AAAA0003", "alice", base.Add(time.Minute))))
	_, err := s.AddMemberByCode(ctx, "AAAA0002", "alice")
	require.NoError(t, err)

	groups, err := s.GroupsForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "new", groups[0].ID)
	assert.Equal(t, 2, groups[0].MemberCount)
	assert.Equal(t, "mid", groups[1].ID)
	assert.Equal(t, "old", groups[2].ID)
}

func TestGroupStore_GroupsByIDs(t *testing.T) {
	ctx := context.Background()
	s := NewGroupStore()
	require.NoError(t, s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", time.Now())))

	found, err := s.GroupsByIDs(ctx, []string{"g1", "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "AAAA0001", found["g1"].InviteCode)
}

func TestGroupStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewGroupStore()

	err := s.InsertGroup(ctx, newGroup("g1", "AAAA0001", "alice", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.GroupByID(context.Background(), "g1")
	assert.ErrorIs(t, err, storage.ErrGroupNotFound)
}
