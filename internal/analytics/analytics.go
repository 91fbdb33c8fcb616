// Package analytics aggregates member activity for the stats commands and
// the dashboard.
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

const (
	ActivityJoin  = "join"
	ActivityLeave = "leave"
)

type Service struct {
	store  *storage.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store *storage.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RecordMessage is called for every guild message that reaches the bot.
// Failures are logged, never surfaced; stats must not break chat handling.
func (s *Service) RecordMessage(ctx context.Context, guildID, userID string) {
	if err := s.store.RecordMessage(ctx, guildID, userID, s.now()); err != nil {
		s.logger.Warn("message stat write failed", zap.Error(err))
	}
}

func (s *Service) RecordJoin(ctx context.Context, guildID, userID string) {
	if err := s.store.RecordActivity(ctx, guildID, userID, ActivityJoin, s.now()); err != nil {
		s.logger.Warn("join stat write failed", zap.Error(err))
	}
}

func (s *Service) RecordLeave(ctx context.Context, guildID, userID string) {
	if err := s.store.RecordActivity(ctx, guildID, userID, ActivityLeave, s.now()); err != nil {
		s.logger.Warn("leave stat write failed", zap.Error(err))
	}
}

func (s *Service) VoiceJoined(ctx context.Context, guildID, userID string) {
	if _, err := s.store.StartVoiceSession(ctx, guildID, userID, s.now()); err != nil {
		s.logger.Warn("voice session open failed", zap.Error(err))
	}
}

func (s *Service) VoiceLeft(ctx context.Context, guildID, userID string) {
	if err := s.store.EndVoiceSession(ctx, guildID, userID, s.now()); err != nil {
		s.logger.Warn("voice session close failed", zap.Error(err))
	}
}

// UserStats is the activity summary shown by the stats command.
type UserStats struct {
	UserID        string `json:"user_id"`
	TotalMessages int64  `json:"total_messages"`
	MessagesDay   int64  `json:"messages_24h"`
	MessagesWeek  int64  `json:"messages_7d"`
	VoiceSeconds  int64  `json:"voice_seconds_7d"`
	MessageRank   int    `json:"message_rank"`
	RankedOf      int    `json:"ranked_of"`
}

func (s *Service) UserStats(ctx context.Context, guildID, userID string) (UserStats, error) {
	now := s.now()
	stats := UserStats{UserID: userID}

	var err error
	if stats.TotalMessages, err = s.store.TotalMessages(ctx, guildID, userID); err != nil {
		return UserStats{}, err
	}
	if stats.MessagesDay, err = s.store.MessagesSince(ctx, guildID, userID, now.Add(-24*time.Hour)); err != nil {
		return UserStats{}, err
	}
	if stats.MessagesWeek, err = s.store.MessagesSince(ctx, guildID, userID, now.Add(-7*24*time.Hour)); err != nil {
		return UserStats{}, err
	}
	if stats.VoiceSeconds, err = s.store.VoiceSeconds(ctx, guildID, userID, now.Add(-7*24*time.Hour)); err != nil {
		return UserStats{}, err
	}
	if stats.TotalMessages > 0 {
		if stats.MessageRank, stats.RankedOf, err = s.store.MessageRank(ctx, guildID, userID); err != nil {
			return UserStats{}, err
		}
	}
	return stats, nil
}

// Window selects the period for activity leaderboards.
type Window string

const (
	WindowAll  Window = "all"
	WindowDay  Window = "24h"
	WindowWeek Window = "7d"
)

func (s *Service) windowStart(w Window) time.Time {
	switch w {
	case WindowDay:
		return s.now().Add(-24 * time.Hour)
	case WindowWeek:
		return s.now().Add(-7 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

func (s *Service) MessageLeaderboard(ctx context.Context, guildID string, w Window, limit int) ([]storage.ActivityCount, error) {
	return s.store.MessageLeaderboard(ctx, guildID, s.windowStart(w), limit)
}

func (s *Service) VoiceLeaderboard(ctx context.Context, guildID string, w Window, limit int) ([]storage.VoiceTotal, error) {
	start := s.windowStart(w)
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	return s.store.VoiceLeaderboard(ctx, guildID, start, limit)
}
