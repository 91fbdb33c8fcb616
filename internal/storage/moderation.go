package storage

import (
	"context"
	"time"
)

// Mod log action types. AUTO_UNBAN is written by the reconciler with the
// bot's own identity as moderator.
const (
	ActionBan       = "BAN"
	ActionUnban     = "UNBAN"
	ActionTempBan   = "TEMPBAN"
	ActionTempMute  = "TEMPMUTE"
	ActionKick      = "KICK"
	ActionMute      = "MUTE"
	ActionUnmute    = "UNMUTE"
	ActionClear     = "CLEAR"
	ActionMassBan   = "MASSBAN"
	ActionMassKick  = "MASSKICK"
	ActionAutoUnban = "AUTO_UNBAN"
)

type Warning struct {
	ID          int64
	GuildID     string
	UserID      string
	ModeratorID string
	Reason      string
	CreatedAt   time.Time
}

type ModLogEntry struct {
	ID          int64
	GuildID     string
	ActionType  string
	ModeratorID string
	TargetID    string
	Reason      string
	CreatedAt   time.Time
}

func (s *Store) AddWarning(ctx context.Context, w Warning) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, w.GuildID, w.UserID, w.ModeratorID, w.Reason, w.CreatedAt.Unix())
	return err
}

// ListWarnings returns a user's warnings newest first.
func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]Warning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, moderator_id, COALESCE(reason, ''), created_at
		FROM warnings
		WHERE guild_id = ? AND user_id = ?
		ORDER BY created_at DESC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []Warning
	for rows.Next() {
		var w Warning
		var created int64
		if err := rows.Scan(&w.ID, &w.GuildID, &w.UserID, &w.ModeratorID, &w.Reason, &created); err != nil {
			return nil, err
		}
		w.CreatedAt = time.Unix(created, 0)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

func (s *Store) CountWarnings(ctx context.Context, guildID, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) AddModLog(ctx context.Context, entry ModLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mod_logs (guild_id, action_type, moderator_id, target_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.GuildID, entry.ActionType, entry.ModeratorID, entry.TargetID, entry.Reason, entry.CreatedAt.Unix())
	return err
}

func (s *Store) ListModLogs(ctx context.Context, guildID string, since time.Time, limit int) ([]ModLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, action_type, moderator_id, target_id, COALESCE(reason, ''), created_at
		FROM mod_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
	`, guildID, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ModLogEntry
	for rows.Next() {
		var entry ModLogEntry
		var created int64
		if err := rows.Scan(&entry.ID, &entry.GuildID, &entry.ActionType, &entry.ModeratorID, &entry.TargetID, &entry.Reason, &created); err != nil {
			return nil, err
		}
		entry.CreatedAt = time.Unix(created, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
