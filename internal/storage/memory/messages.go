package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
)

type MessageStore struct {
	mu            sync.RWMutex
	messages      []models.Message
	receiverIndex map[string][]int // receiverID -> positions in messages, oldest first
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		receiverIndex: make(map[string][]int),
	}
}

func (s *MessageStore) InsertMessage(ctx context.Context, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	s.receiverIndex[msg.ReceiverID] = append(s.receiverIndex[msg.ReceiverID], len(s.messages)-1)
	return nil
}

func (s *MessageStore) MessagesForReceiver(ctx context.Context, receiverID string) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	positions := s.receiverIndex[receiverID]
	result := make([]models.Message, 0, len(positions))
	for i := len(positions) - 1; i >= 0; i-- {
		result = append(result, s.messages[positions[i]])
	}
	// Concurrent senders may insert slightly out of timestamp order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// All returns every stored record in insertion order. Tests use it to inspect
// the complete persisted state.
func (s *MessageStore) All() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
