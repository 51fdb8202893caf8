package identity

import (
	"context"
	"sync"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/samber/lo"
)

type userRecord struct {
	username string
	groups   []models.GroupRef
}

// MemoryDirectory keeps users in memory. Group refs are appended once per group.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]*userRecord
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]*userRecord)}
}

func (d *MemoryDirectory) record(userID string) *userRecord {
	rec, ok := d.users[userID]
	if !ok {
		rec = &userRecord{}
		d.users[userID] = rec
	}
	return rec
}

func (d *MemoryDirectory) Remember(_ context.Context, userID, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(userID).username = username
	return nil
}

// DisplayNames returns a name for every id; unknown users map to "".
func (d *MemoryDirectory) DisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if rec, ok := d.users[id]; ok {
			names[id] = rec.username
		} else {
			names[id] = ""
		}
	}
	return names, nil
}

func (d *MemoryDirectory) AddGroup(_ context.Context, userID string, group models.GroupRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.record(userID)
	if lo.ContainsBy(rec.groups, func(g models.GroupRef) bool { return g.ID == group.ID }) {
		return nil
	}
	rec.groups = append(rec.groups, group)
	return nil
}

func (d *MemoryDirectory) User(_ context.Context, userID string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u := models.User{ID: userID, Groups: []models.GroupRef{}}
	if rec, ok := d.users[userID]; ok {
		u.Username = rec.username
		u.Groups = append(u.Groups, rec.groups...)
	}
	return u, nil
}
