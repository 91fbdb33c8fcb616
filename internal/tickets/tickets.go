// Package tickets manages private support channels.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/storage"
)

var (
	ErrAlreadyOpen = errors.New("you already have an open ticket")
	ErrNotATicket  = errors.New("this channel is not a ticket")
)

// Platform is the slice of chat-platform operations ticket management needs.
type Platform interface {
	CreateTicketChannel(guildID, categoryID, userID string) (channelID string, err error)
	RenameChannel(channelID, name string) error
	DeleteChannel(channelID string) error
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

// Open creates a private channel for the member and records the ticket.
// A member can hold at most one open ticket per guild.
func (s *Service) Open(ctx context.Context, guildID, categoryID, userID string) (storage.Ticket, error) {
	_, err := s.store.OpenTicketForUser(ctx, guildID, userID)
	if err == nil {
		return storage.Ticket{}, ErrAlreadyOpen
	}
	if !errors.Is(err, storage.ErrTicketNotFound) {
		return storage.Ticket{}, err
	}

	channelID, err := s.platform.CreateTicketChannel(guildID, categoryID, userID)
	if err != nil {
		return storage.Ticket{}, fmt.Errorf("create ticket channel: %w", err)
	}

	ticket, err := s.store.CreateTicket(ctx, guildID, channelID, userID, s.now())
	if err != nil {
		// the channel exists but the record failed, drop the channel
		_ = s.platform.DeleteChannel(channelID)
		return storage.Ticket{}, err
	}

	name := fmt.Sprintf("ticket-%04d", ticket.Number)
	if err := s.platform.RenameChannel(channelID, name); err != nil {
		s.logger.Warn("ticket channel rename failed",
			zap.String("channel", channelID),
			zap.Error(err))
	}

	s.logger.Info("ticket opened",
		zap.String("guild", guildID),
		zap.String("user", userID),
		zap.Int("number", ticket.Number))
	return ticket, nil
}

// Close marks the channel's ticket closed and renames the channel so
// the transcript stays readable for the staff.
func (s *Service) Close(ctx context.Context, channelID string) (storage.Ticket, error) {
	ticket, err := s.store.GetTicketByChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			return storage.Ticket{}, ErrNotATicket
		}
		return storage.Ticket{}, err
	}

	if err := s.store.CloseTicket(ctx, channelID, s.now()); err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			return storage.Ticket{}, ErrNotATicket
		}
		return storage.Ticket{}, err
	}

	name := fmt.Sprintf("closed-ticket-%04d", ticket.Number)
	if err := s.platform.RenameChannel(channelID, name); err != nil {
		s.logger.Warn("ticket channel rename failed",
			zap.String("channel", channelID),
			zap.Error(err))
	}

	s.logger.Info("ticket closed",
		zap.String("guild", ticket.GuildID),
		zap.Int("number", ticket.Number))
	return ticket, nil
}

func (s *Service) OpenCount(ctx context.Context, guildID string) (int, error) {
	return s.store.CountOpenTickets(ctx, guildID)
}
