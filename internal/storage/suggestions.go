package storage

import (
	"context"
	"time"
)

const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionDenied   = "denied"
)

type Suggestion struct {
	ID        int64
	GuildID   string
	UserID    string
	Content   string
	Status    string
	ChannelID string
	MessageID string
	CreatedAt time.Time
}

func (s *Store) CreateSuggestion(ctx context.Context, sg Suggestion) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestions (guild_id, user_id, content, status, channel_id, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sg.GuildID, sg.UserID, sg.Content, SuggestionPending, sg.ChannelID, sg.MessageID, sg.CreatedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSuggestions returns the guild's suggestions newest first.
func (s *Store) ListSuggestions(ctx context.Context, guildID string, limit int) ([]Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, content, status, channel_id, message_id, created_at
		FROM suggestions
		WHERE guild_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var sg Suggestion
		var created int64
		if err := rows.Scan(&sg.ID, &sg.GuildID, &sg.UserID, &sg.Content, &sg.Status, &sg.ChannelID, &sg.MessageID, &created); err != nil {
			return nil, err
		}
		sg.CreatedAt = time.Unix(created, 0)
		suggestions = append(suggestions, sg)
	}
	return suggestions, rows.Err()
}

func (s *Store) SetSuggestionStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE suggestions SET status = ? WHERE id = ?
	`, status, id)
	return err
}
