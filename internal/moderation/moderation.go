// Package moderation implements the manual moderator commands.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

// MaxMuteDuration caps timeouts at the platform limit of 28 days.
const MaxMuteDuration = 28 * 24 * time.Hour

const (
	MaxMassBanTargets  = 50
	MaxMassKickTargets = 30
)

var (
	ErrHierarchy      = errors.New("target's role is equal to or higher than yours")
	ErrTooManyTargets = errors.New("too many targets for a batch action")
	ErrNoDuration     = errors.New("a duration is required")
)

// Platform is the slice of chat-platform operations the service drives.
type Platform interface {
	BanMember(guildID, userID, reason string, deleteDays int) error
	UnbanMember(guildID, userID string) error
	KickMember(guildID, userID, reason string) error
	TimeoutMember(guildID, userID string, until time.Time, reason string) error
	ClearTimeout(guildID, userID string) error
	PurgeMessages(channelID string, count int) (int, error)
	DirectMessage(userID, content string) error
}

// Actor identifies the moderator issuing a command, with enough role
// context for the hierarchy gate.
type Actor struct {
	UserID          string
	TopRolePosition int
	IsOwner         bool
}

// Target carries the same role context for the member being acted on.
type Target struct {
	UserID          string
	TopRolePosition int
}

// CheckHierarchy rejects actions against members whose top role is at or
// above the actor's. Guild owners bypass the check.
func CheckHierarchy(actor Actor, target Target) error {
	if actor.IsOwner {
		return nil
	}
	if actor.TopRolePosition <= target.TopRolePosition {
		return ErrHierarchy
	}
	return nil
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

func (s *Service) log(ctx context.Context, guildID, action, moderatorID, targetID, reason string) {
	err := s.store.AddModLog(ctx, storage.ModLogEntry{
		GuildID:     guildID,
		ActionType:  action,
		ModeratorID: moderatorID,
		TargetID:    targetID,
		Reason:      reason,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.logger.Error("mod log write failed",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *Service) Ban(ctx context.Context, guildID string, actor Actor, target Target, reason string, deleteDays int) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	if err := s.platform.BanMember(guildID, target.UserID, reason, deleteDays); err != nil {
		return err
	}
	s.log(ctx, guildID, storage.ActionBan, actor.UserID, target.UserID, reason)
	return nil
}

func (s *Service) Unban(ctx context.Context, guildID string, actor Actor, userID, reason string) error {
	if err := s.platform.UnbanMember(guildID, userID); err != nil {
		return err
	}
	s.log(ctx, guildID, storage.ActionUnban, actor.UserID, userID, reason)
	return nil
}

// TempBan bans and schedules the automatic unban.
func (s *Service) TempBan(ctx context.Context, guildID string, actor Actor, target Target, d time.Duration, reason string) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	if d <= 0 {
		return ErrNoDuration
	}
	if err := s.platform.BanMember(guildID, target.UserID, reason, 0); err != nil {
		return err
	}
	now := s.now()
	_, err := s.store.AddTempAction(ctx, storage.TempAction{
		GuildID:     guildID,
		UserID:      target.UserID,
		ActionType:  storage.ActionTempBan,
		ModeratorID: actor.UserID,
		Reason:      reason,
		ExpiresAt:   now.Add(d),
		CreatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("schedule unban: %w", err)
	}
	s.log(ctx, guildID, storage.ActionTempBan, actor.UserID, target.UserID, reason)
	return nil
}

func (s *Service) Kick(ctx context.Context, guildID string, actor Actor, target Target, reason string) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	if err := s.platform.KickMember(guildID, target.UserID, reason); err != nil {
		return err
	}
	s.log(ctx, guildID, storage.ActionKick, actor.UserID, target.UserID, reason)
	return nil
}

// Mute times the member out for the given duration, capped at the
// platform maximum.
func (s *Service) Mute(ctx context.Context, guildID string, actor Actor, target Target, d time.Duration, reason string) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	if d <= 0 {
		return ErrNoDuration
	}
	if d > MaxMuteDuration {
		d = MaxMuteDuration
	}
	if err := s.platform.TimeoutMember(guildID, target.UserID, s.now().Add(d), reason); err != nil {
		return err
	}
	s.log(ctx, guildID, storage.ActionMute, actor.UserID, target.UserID, reason)
	return nil
}

// TempMute is Mute plus a scheduled expiry row so the sweep can log the
// release.
func (s *Service) TempMute(ctx context.Context, guildID string, actor Actor, target Target, d time.Duration, reason string) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	if d <= 0 {
		return ErrNoDuration
	}
	if d > MaxMuteDuration {
		d = MaxMuteDuration
	}
	if err := s.platform.TimeoutMember(guildID, target.UserID, s.now().Add(d), reason); err != nil {
		return err
	}
	now := s.now()
	_, err := s.store.AddTempAction(ctx, storage.TempAction{
		GuildID:     guildID,
		UserID:      target.UserID,
		ActionType:  storage.ActionTempMute,
		ModeratorID: actor.UserID,
		Reason:      reason,
		ExpiresAt:   now.Add(d),
		CreatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("schedule unmute: %w", err)
	}
	s.log(ctx, guildID, storage.ActionTempMute, actor.UserID, target.UserID, reason)
	return nil
}

func (s *Service) Unmute(ctx context.Context, guildID string, actor Actor, target Target, reason string) error {
	if err := s.platform.ClearTimeout(guildID, target.UserID); err != nil {
		return err
	}
	s.log(ctx, guildID, storage.ActionUnmute, actor.UserID, target.UserID, reason)
	return nil
}

// Warn records the warning and tells the member over DM. Members with
// DMs closed are warned silently.
func (s *Service) Warn(ctx context.Context, guildID string, actor Actor, target Target, reason string) error {
	if err := CheckHierarchy(actor, target); err != nil {
		return err
	}
	err := s.store.AddWarning(ctx, storage.Warning{
		GuildID:     guildID,
		UserID:      target.UserID,
		ModeratorID: actor.UserID,
		Reason:      reason,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return err
	}

	count, err := s.store.CountWarnings(ctx, guildID, target.UserID)
	if err != nil {
		count = 1
	}
	notice := fmt.Sprintf("⚠️ You received a warning.\nReason: %s\nTotal: %d warning(s)", reasonOrDefault(reason), count)
	if err := s.platform.DirectMessage(target.UserID, notice); err != nil {
		s.logger.Debug("warn DM failed", zap.String("user", target.UserID), zap.Error(err))
	}
	return nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return "no reason provided"
	}
	return reason
}

func (s *Service) Warnings(ctx context.Context, guildID, userID string) ([]storage.Warning, error) {
	return s.store.ListWarnings(ctx, guildID, userID)
}

// Clear purges up to count messages from a channel and logs the sweep.
func (s *Service) Clear(ctx context.Context, guildID, channelID string, actor Actor, count int) (int, error) {
	deleted, err := s.platform.PurgeMessages(channelID, count)
	if err != nil {
		return 0, err
	}
	s.log(ctx, guildID, storage.ActionClear, actor.UserID, channelID, fmt.Sprintf("cleared %d messages", deleted))
	return deleted, nil
}

// BatchResult summarizes a mass action.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// MassBan bans up to MaxMassBanTargets user IDs, continuing past
// individual failures.
func (s *Service) MassBan(ctx context.Context, guildID string, actor Actor, userIDs []string, reason string) (BatchResult, error) {
	if len(userIDs) > MaxMassBanTargets {
		return BatchResult{}, ErrTooManyTargets
	}
	var result BatchResult
	for _, id := range userIDs {
		if err := s.platform.BanMember(guildID, id, reason, 0); err != nil {
			s.logger.Warn("mass ban target failed", zap.String("user", id), zap.Error(err))
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	s.log(ctx, guildID, storage.ActionMassBan, actor.UserID, fmt.Sprintf("%d users", result.Succeeded), reason)
	return result, nil
}

// MassKick kicks up to MaxMassKickTargets members, continuing past
// individual failures.
func (s *Service) MassKick(ctx context.Context, guildID string, actor Actor, userIDs []string, reason string) (BatchResult, error) {
	if len(userIDs) > MaxMassKickTargets {
		return BatchResult{}, ErrTooManyTargets
	}
	var result BatchResult
	for _, id := range userIDs {
		if err := s.platform.KickMember(guildID, id, reason); err != nil {
			s.logger.Warn("mass kick target failed", zap.String("user", id), zap.Error(err))
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	s.log(ctx, guildID, storage.ActionMassKick, actor.UserID, fmt.Sprintf("%d users", result.Succeeded), reason)
	return result, nil
}
