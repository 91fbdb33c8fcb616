// Package reconciler releases expired temporary punishments and runs the
// scheduled maintenance tasks.
package reconciler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

// Platform is the slice of chat-platform operations the sweep needs.
type Platform interface {
	UnbanMember(guildID, userID string) error
	HasGuild(guildID string) bool
}

type Sweeper struct {
	platform Platform
	store    *storage.Store
	logger   *zap.Logger
	botID    string
	now      func() time.Time
}

func NewSweeper(platform Platform, store *storage.Store, logger *zap.Logger, botID string) *Sweeper {
	return &Sweeper{
		platform: platform,
		store:    store,
		logger:   logger,
		botID:    botID,
		now:      time.Now,
	}
}

func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Sweep processes every expired row once. A failed reversal is logged and
// the row is still removed, so a broken action is never retried forever.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()
	expired, err := s.store.ExpiredTempActions(ctx, now)
	if err != nil {
		return err
	}

	for _, action := range expired {
		s.reverse(ctx, action, now)
		if err := s.store.RemoveTempAction(ctx, action.ID); err != nil {
			s.logger.Error("expired action cleanup failed",
				zap.Int64("id", action.ID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Sweeper) reverse(ctx context.Context, action storage.TempAction, now time.Time) {
	if !s.platform.HasGuild(action.GuildID) {
		s.logger.Warn("dropping action for unknown guild",
			zap.String("guild", action.GuildID),
			zap.Int64("id", action.ID))
		return
	}

	switch action.ActionType {
	case storage.ActionTempBan:
		if err := s.platform.UnbanMember(action.GuildID, action.UserID); err != nil {
			s.logger.Warn("automatic unban failed",
				zap.String("guild", action.GuildID),
				zap.String("user", action.UserID),
				zap.Error(err))
			return
		}
		err := s.store.AddModLog(ctx, storage.ModLogEntry{
			GuildID:     action.GuildID,
			ActionType:  storage.ActionAutoUnban,
			ModeratorID: s.botID,
			TargetID:    action.UserID,
			Reason:      "Temporary ban expired",
			CreatedAt:   now,
		})
		if err != nil {
			s.logger.Error("auto unban log write failed", zap.Error(err))
		}
	case storage.ActionTempMute:
		// timeouts lapse on their own, only the row needs dropping
	default:
		s.logger.Warn("unknown temporary action type",
			zap.String("type", action.ActionType),
			zap.Int64("id", action.ID))
	}
}
