package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/lib/pq"
)

// UserDirectory implements identity.Directory on PostgreSQL. A user's group
// set is derived from group_members rather than stored separately.
type UserDirectory struct {
	db *sql.DB
}

func NewUserDirectory(db *sql.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Remember(ctx context.Context, userID, username string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO users (id, username) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()
		WHERE users.username IS DISTINCT FROM EXCLUDED.username
	`, userID, username)
	if err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

// DisplayNames maps every requested id to its name, "" when unknown.
func (d *UserDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = ""
	}
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := d.db.QueryContext(ctx, `SELECT id, username FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error getting display names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		names[id] = username
	}
	return names, rows.Err()
}

// AddGroup only makes sure the user row exists; the membership itself is
// already in group_members.
func (d *UserDirectory) AddGroup(ctx context.Context, userID string, _ models.GroupRef) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

// User returns the display name and the groups the user belongs to, in join order.
func (d *UserDirectory) User(ctx context.Context, userID string) (models.User, error) {
	u := models.User{ID: userID, Groups: []models.GroupRef{}}

	err := d.db.QueryRowContext(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&u.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("error getting user: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.invite_code
		FROM group_members m
		JOIN groups g ON g.id = m.group_id
		WHERE m.user_id = $1
		ORDER BY m.position
	`, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("error getting user groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref models.GroupRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.InviteCode); err != nil {
			return models.User{}, fmt.Errorf("error scanning user group: %w", err)
		}
		u.Groups = append(u.Groups, ref)
	}
	if err := rows.Err(); err != nil {
		return models.User{}, fmt.Errorf("error iterating user groups: %w", err)
	}
	return u, nil
}
