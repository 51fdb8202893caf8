package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/Vasu1712/hushgroup-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// GroupStore implements storage.GroupRepository on PostgreSQL.
type GroupStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewGroupStore(db *sql.DB, log zerolog.Logger) *GroupStore {
	return &GroupStore{db: db, log: log}
}

// InsertGroup writes the group row and its founding members in one transaction.
// The invite code uniqueness constraint decides collisions.
func (s *GroupStore) InsertGroup(ctx context.Context, group models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, invite_code, created_by, created_at) VALUES ($1, $2, $3, $4, $5)`,
		group.ID, group.Name, group.InviteCode, group.CreatedBy, group.CreatedAt,
	)
	if isUniqueViolation(err, "groups_invite_code_key") {
		return storage.ErrDuplicateInviteCode
	}
	if err != nil {
		return fmt.Errorf("error inserting group: %w", err)
	}

	for _, userID := range group.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			group.ID, userID, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("error adding founding member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// AddMemberByCode relies on the (group_id, user_id) primary key: ON CONFLICT DO NOTHING
// returns no row when the user already joined, so concurrent joins cannot both succeed.
// The updated group is read back in the same transaction, so a failed read leaves
// no membership behind.
func (s *GroupStore) AddMemberByCode(ctx context.Context, code, userID string) (models.Group, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Group{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO group_members (group_id, user_id)
		SELECT id, $2 FROM groups WHERE invite_code = $1
		ON CONFLICT (group_id, user_id) DO NOTHING
		RETURNING group_id
	`
	var groupID string
	err = tx.QueryRowContext(ctx, query, code, userID).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the code is unknown or the insert hit the conflict.
		var exists bool
		err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE invite_code = $1)`, code).Scan(&exists)
		if err != nil {
			return models.Group{}, fmt.Errorf("error checking invite code: %w", err)
		}
		if !exists {
			return models.Group{}, storage.ErrGroupNotFound
		}
		return models.Group{}, storage.ErrAlreadyMember
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("error joining group: %w", err)
	}

	group, err := loadGroup(ctx, tx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Group{}, fmt.Errorf("error committing transaction: %w", err)
	}

	s.log.Debug().Str("group_id", groupID).Msg("member added")
	return group, nil
}

func (s *GroupStore) GroupByID(ctx context.Context, id string) (models.Group, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Group{}, storage.ErrGroupNotFound
	}
	return loadGroup(ctx, s.db, id)
}

func loadGroup(ctx context.Context, q querier, id string) (models.Group, error) {
	var g models.Group
	err := q.QueryRowContext(ctx,
		`SELECT id, name, invite_code, created_by, created_at FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, storage.ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, fmt.Errorf("error getting group: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY position`, id)
	if err != nil {
		return models.Group{}, fmt.Errorf("error getting group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return models.Group{}, fmt.Errorf("error scanning group member: %w", err)
		}
		g.Members = append(g.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return models.Group{}, fmt.Errorf("error iterating group members: %w", err)
	}
	return g, nil
}

func (s *GroupStore) GroupsByIDs(ctx context.Context, ids []string) (map[string]models.Group, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	found := make(map[string]models.Group, len(valid))
	if len(valid) == 0 {
		return found, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, invite_code, created_by, created_at FROM groups WHERE id = ANY($1::uuid[])`,
		pq.Array(valid),
	)
	if err != nil {
		return nil, fmt.Errorf("error getting groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		found[g.ID] = g
	}
	return found, rows.Err()
}

func (s *GroupStore) GroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	query := `
		SELECT
			g.id, g.name, g.invite_code,
			(SELECT COUNT(*) FROM group_members c WHERE c.group_id = g.id) AS member_count,
			g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC, g.id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting groups for user: %w", err)
	}
	defer rows.Close()

	groups := []models.GroupSummary{}
	for rows.Next() {
		var g models.GroupSummary
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &g.MemberCount, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning group summary: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group summaries: %w", err)
	}
	return groups, nil
}
