package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type ActivityCount struct {
	UserID string
	Count  int64
}

type VoiceTotal struct {
	UserID  string
	Seconds int64
}

// RecordMessage bumps the per-user running counter and appends a timestamped
// log row so windowed counts stay queryable.
func (s *Store) RecordMessage(ctx context.Context, guildID, userID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_stats (guild_id, user_id, message_count, last_message_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			message_count = message_count + 1,
			last_message_at = excluded.last_message_at
	`, guildID, userID, now.Unix())
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO message_logs (guild_id, user_id, created_at)
		VALUES (?, ?, ?)
	`, guildID, userID, now.Unix())
	return err
}

func (s *Store) TotalMessages(ctx context.Context, guildID, userID string) (int64, error) {
	var n int64
	row := s.db.QueryRowContext(ctx, `
		SELECT message_count FROM message_stats WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *Store) MessagesSince(ctx context.Context, guildID, userID string, since time.Time) (int64, error) {
	var n int64
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM message_logs
		WHERE guild_id = ? AND user_id = ? AND created_at >= ?
	`, guildID, userID, since.Unix())
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MessageRank returns the user's 1-based position by lifetime message count.
func (s *Store) MessageRank(ctx context.Context, guildID, userID string) (rank, total int, err error) {
	count, err := s.TotalMessages(ctx, guildID, userID)
	if err != nil {
		return 0, 0, err
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM message_stats WHERE guild_id = ? AND message_count > ?
	`, guildID, count)
	if err := row.Scan(&rank); err != nil {
		return 0, 0, err
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message_stats WHERE guild_id = ?`, guildID)
	if err := row.Scan(&total); err != nil {
		return 0, 0, err
	}
	return rank + 1, total, nil
}

func (s *Store) MessageLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]ActivityCount, error) {
	var rows *sql.Rows
	var err error
	if since.IsZero() {
		rows, err = s.db.QueryContext(ctx, `
			SELECT user_id, message_count FROM message_stats
			WHERE guild_id = ? ORDER BY message_count DESC LIMIT ?
		`, guildID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT user_id, COUNT(*) AS n FROM message_logs
			WHERE guild_id = ? AND created_at >= ?
			GROUP BY user_id ORDER BY n DESC LIMIT ?
		`, guildID, since.Unix(), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ActivityCount
	for rows.Next() {
		var c ActivityCount
		if err := rows.Scan(&c.UserID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *Store) RecordActivity(ctx context.Context, guildID, userID, activityType string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (guild_id, user_id, activity_type, created_at)
		VALUES (?, ?, ?, ?)
	`, guildID, userID, activityType, now.Unix())
	return err
}

// StartVoiceSession opens a session row. The returned id closes it later.
func (s *Store) StartVoiceSession(ctx context.Context, guildID, userID string, joined time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO voice_sessions (guild_id, user_id, join_time)
		VALUES (?, ?, ?)
	`, guildID, userID, joined.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EndVoiceSession closes the user's most recent open session. A leave with
// no matching open session is ignored.
func (s *Store) EndVoiceSession(ctx context.Context, guildID, userID string, left time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE voice_sessions
		SET leave_time = ?, duration_seconds = ? - join_time
		WHERE id = (
			SELECT id FROM voice_sessions
			WHERE guild_id = ? AND user_id = ? AND leave_time IS NULL
			ORDER BY join_time DESC LIMIT 1
		)
	`, left.Unix(), left.Unix(), guildID, userID)
	return err
}

func (s *Store) VoiceSeconds(ctx context.Context, guildID, userID string, since time.Time) (int64, error) {
	var total int64
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_seconds), 0) FROM voice_sessions
		WHERE guild_id = ? AND user_id = ? AND leave_time IS NOT NULL AND join_time >= ?
	`, guildID, userID, since.Unix())
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) VoiceLeaderboard(ctx context.Context, guildID string, since time.Time, limit int) ([]VoiceTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COALESCE(SUM(duration_seconds), 0) AS total
		FROM voice_sessions
		WHERE guild_id = ? AND leave_time IS NOT NULL AND join_time >= ?
		GROUP BY user_id ORDER BY total DESC LIMIT ?
	`, guildID, since.Unix(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []VoiceTotal
	for rows.Next() {
		var v VoiceTotal
		if err := rows.Scan(&v.UserID, &v.Seconds); err != nil {
			return nil, err
		}
		totals = append(totals, v)
	}
	return totals, rows.Err()
}
