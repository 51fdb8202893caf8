package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
)

// MessageStore implements storage.MessageRepository on PostgreSQL.
type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) InsertMessage(ctx context.Context, msg models.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, group_id, receiver_id, message_text, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.GroupID, msg.ReceiverID, msg.Text, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting message: %w", err)
	}
	return nil
}

func (s *MessageStore) MessagesForReceiver(ctx context.Context, receiverID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, group_id, receiver_id, message_text, created_at
		FROM messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC, id
	`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("error getting messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.GroupID, &m.ReceiverID, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}
	return msgs, nil
}
