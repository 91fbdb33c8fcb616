package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type TempAction struct {
	ID          int64
	GuildID     string
	UserID      string
	ActionType  string
	ModeratorID string
	Reason      string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

var ErrTempActionNotFound = errors.New("temporary action not found")

func (s *Store) AddTempAction(ctx context.Context, a TempAction) (int64, error) {
	if !a.ExpiresAt.After(a.CreatedAt) {
		return 0, fmt.Errorf("temporary action expiry %v is not in the future", a.ExpiresAt)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO temporary_actions (guild_id, user_id, action_type, moderator_id, reason, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.GuildID, a.UserID, a.ActionType, a.ModeratorID, a.Reason, a.ExpiresAt.Unix(), a.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExpiredTempActions returns every row whose expiry is at or before now,
// oldest first.
func (s *Store) ExpiredTempActions(ctx context.Context, now time.Time) ([]TempAction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, action_type, moderator_id, COALESCE(reason, ''), expires_at, created_at
		FROM temporary_actions WHERE expires_at <= ?
		ORDER BY expires_at ASC
	`, now.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []TempAction
	for rows.Next() {
		a, err := scanTempAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (s *Store) GetTempAction(ctx context.Context, id int64) (TempAction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, user_id, action_type, moderator_id, COALESCE(reason, ''), expires_at, created_at
		FROM temporary_actions WHERE id = ?
	`, id)
	a, err := scanTempAction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TempAction{}, ErrTempActionNotFound
		}
		return TempAction{}, err
	}
	return a, nil
}

func (s *Store) RemoveTempAction(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM temporary_actions WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTempAction(row rowScanner) (TempAction, error) {
	var a TempAction
	var expires, created int64
	err := row.Scan(&a.ID, &a.GuildID, &a.UserID, &a.ActionType, &a.ModeratorID, &a.Reason, &expires, &created)
	if err != nil {
		return TempAction{}, err
	}
	a.ExpiresAt = time.Unix(expires, 0)
	a.CreatedAt = time.Unix(created, 0)
	return a, nil
}
