// Package suggestions lets members propose ideas the community votes on
// with reactions.
package suggestions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

const (
	MinLength = 10
	MaxLength = 1000
)

var (
	ErrTooShort = errors.New("the suggestion is too short")
	ErrTooLong  = errors.New("the suggestion is too long")
)

// Platform posts the public suggestion message and seeds the vote
// reactions.
type Platform interface {
	PostSuggestion(channelID, authorID, content string) (messageID string, err error)
	AddReaction(channelID, messageID, emoji string) error
}

type Service struct {
	platform Platform
	store    *storage.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(platform Platform, store *storage.Store, logger *zap.Logger) *Service {
	return &Service{
		platform: platform,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Submit posts the suggestion to the channel, adds the ✅ and ❌ vote
// reactions, and records it.
func (s *Service) Submit(ctx context.Context, guildID, channelID, userID, content string) (storage.Suggestion, error) {
	content = strings.TrimSpace(content)
	if len(content) < MinLength {
		return storage.Suggestion{}, ErrTooShort
	}
	if len(content) > MaxLength {
		return storage.Suggestion{}, ErrTooLong
	}

	messageID, err := s.platform.PostSuggestion(channelID, userID, content)
	if err != nil {
		return storage.Suggestion{}, fmt.Errorf("post suggestion: %w", err)
	}
	for _, emoji := range []string{"✅", "❌"} {
		if err := s.platform.AddReaction(channelID, messageID, emoji); err != nil {
			s.logger.Warn("vote reaction failed",
				zap.String("message", messageID),
				zap.Error(err))
			break
		}
	}

	sg := storage.Suggestion{
		GuildID:   guildID,
		UserID:    userID,
		Content:   content,
		Status:    storage.SuggestionPending,
		ChannelID: channelID,
		MessageID: messageID,
		CreatedAt: s.now(),
	}
	id, err := s.store.CreateSuggestion(ctx, sg)
	if err != nil {
		return storage.Suggestion{}, err
	}
	sg.ID = id

	s.logger.Info("suggestion posted",
		zap.String("guild", guildID),
		zap.String("user", userID),
		zap.Int64("id", id))
	return sg, nil
}

// List returns the latest suggestions, newest first.
func (s *Service) List(ctx context.Context, guildID string, limit int) ([]storage.Suggestion, error) {
	return s.store.ListSuggestions(ctx, guildID, limit)
}

// Review sets a suggestion's status after the staff decide on it.
func (s *Service) Review(ctx context.Context, id int64, approved bool) error {
	status := storage.SuggestionDenied
	if approved {
		status = storage.SuggestionApproved
	}
	return s.store.SetSuggestionStatus(ctx, id, status)
}

// StatusEmoji maps a stored status to its list marker.
func StatusEmoji(status string) string {
	switch status {
	case storage.SuggestionApproved:
		return "✅"
	case storage.SuggestionDenied:
		return "❌"
	default:
		return "⏳"
	}
}
