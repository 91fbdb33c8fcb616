package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type LevelRecord struct {
	GuildID     string
	UserID      string
	XP          int64
	Level       int
	LastMessage time.Time
}

var ErrNoLevelData = errors.New("no level data")

func (s *Store) GetLevel(ctx context.Context, guildID, userID string) (LevelRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT xp, level, COALESCE(last_message, 0)
		FROM levels WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	rec := LevelRecord{GuildID: guildID, UserID: userID}
	var last int64
	err := row.Scan(&rec.XP, &rec.Level, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LevelRecord{}, ErrNoLevelData
		}
		return LevelRecord{}, err
	}
	rec.LastMessage = time.Unix(last, 0)
	return rec, nil
}

// AddXP adds gain to the user's cumulative XP, creating the row on first
// gain, and stores the level computed by the caller's curve. Returns the
// new totals.
func (s *Store) AddXP(ctx context.Context, guildID, userID string, gain int64, level func(xp int64) int, now time.Time) (LevelRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LevelRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var xp int64
	row := tx.QueryRowContext(ctx, `SELECT xp FROM levels WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	scanErr := row.Scan(&xp)
	if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		err = scanErr
		return LevelRecord{}, err
	}

	xp += gain
	newLevel := level(xp)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO levels (guild_id, user_id, xp, level, last_message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			xp = excluded.xp,
			level = excluded.level,
			last_message = excluded.last_message
	`, guildID, userID, xp, newLevel, now.Unix())
	if err != nil {
		return LevelRecord{}, err
	}
	if err = tx.Commit(); err != nil {
		return LevelRecord{}, err
	}
	return LevelRecord{GuildID: guildID, UserID: userID, XP: xp, Level: newLevel, LastMessage: now}, nil
}

// SetLevel overwrites the row with an exact level and xp pair.
func (s *Store) SetLevel(ctx context.Context, guildID, userID string, level int, xp int64, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO levels (guild_id, user_id, xp, level, last_message)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			xp = excluded.xp,
			level = excluded.level,
			last_message = excluded.last_message
	`, guildID, userID, xp, level, now.Unix())
	return err
}

func (s *Store) Leaderboard(ctx context.Context, guildID string, limit int) ([]LevelRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, xp, level, COALESCE(last_message, 0)
		FROM levels WHERE guild_id = ?
		ORDER BY xp DESC LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LevelRecord
	for rows.Next() {
		rec := LevelRecord{GuildID: guildID}
		var last int64
		if err := rows.Scan(&rec.UserID, &rec.XP, &rec.Level, &last); err != nil {
			return nil, err
		}
		rec.LastMessage = time.Unix(last, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LevelRank returns the user's 1-based position by XP among guild peers.
func (s *Store) LevelRank(ctx context.Context, guildID, userID string) (rank, total int, err error) {
	rec, err := s.GetLevel(ctx, guildID, userID)
	if err != nil {
		return 0, 0, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM levels WHERE guild_id = ? AND xp > ?
	`, guildID, rec.XP)
	if err := row.Scan(&rank); err != nil {
		return 0, 0, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM levels WHERE guild_id = ?`, guildID)
	if err := row.Scan(&total); err != nil {
		return 0, 0, err
	}
	return rank + 1, total, nil
}
