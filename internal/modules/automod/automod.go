// Package automod inspects guild messages and applies graduated punishments.
package automod

import (
	"context"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/modules/antispam"
	"wardenbot/internal/storage"
)

var linkPattern = regexp.MustCompile(`(?i)(https?://\S+|discord\.gg/\S+)`)

// Platform is the slice of chat-platform operations the dispatcher needs.
// The bot wires a real session in; tests substitute a fake.
type Platform interface {
	DeleteMessage(channelID, messageID string) error
	SendNotice(channelID, title, body string) error
	TimeoutMember(guildID, userID string, until time.Time, reason string) error
	KickMember(guildID, userID, reason string) error
}

type Message struct {
	GuildID      string
	ChannelID    string
	MessageID    string
	AuthorID     string
	Content      string
	MentionCount int
}

type Config struct {
	SpamWindow       time.Duration
	SpamThreshold    int
	MentionThreshold int
	SpamMute         time.Duration
	MentionMute      time.Duration
}

// Dispatcher runs the message defenses. Violation counts accumulate per
// author for the life of the process and drive the warn, mute, kick ladder.
type Dispatcher struct {
	cfg      Config
	platform Platform
	store    *storage.Store
	spam     *antispam.Detector
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	violations map[string]int
}

func NewDispatcher(cfg Config, platform Platform, store *storage.Store, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:        cfg,
		platform:   platform,
		store:      store,
		spam:       antispam.NewDetector(cfg.SpamWindow, cfg.SpamThreshold),
		logger:     logger,
		now:        time.Now,
		violations: make(map[string]int),
	}
}

// SetClock overrides the dispatcher's time source.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// HandleMessage runs the enabled defenses against one message. The caller
// has already excluded bots and members with manage-messages rights.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg Message, cfg storage.GuildConfig) {
	if cfg.AutomodEnabled && msg.MentionCount >= d.cfg.MentionThreshold {
		d.punishMassMention(ctx, msg)
		return
	}
	if cfg.AntilinkEnabled && linkPattern.MatchString(msg.Content) {
		d.punishLink(msg)
		return
	}
	if cfg.AutomodEnabled && d.spam.Observe(msg.GuildID, msg.AuthorID, msg.Content, d.now()) {
		d.spam.Reset(msg.GuildID, msg.AuthorID)
		d.punishSpam(ctx, msg)
	}
}

func (d *Dispatcher) bump(guildID, userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := guildID + ":" + userID
	d.violations[key]++
	return d.violations[key]
}

// Violations reports the author's accumulated count.
func (d *Dispatcher) Violations(guildID, userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.violations[guildID+":"+userID]
}

func (d *Dispatcher) punishSpam(ctx context.Context, msg Message) {
	count := d.bump(msg.GuildID, msg.AuthorID)
	now := d.now()

	switch {
	case count == 1:
		_ = d.platform.SendNotice(msg.ChannelID, "Spam Detected",
			"Please stop sending repeated messages. Further violations will be punished.")
	case count == 2:
		reason := "Repeated spam after warning"
		if err := d.platform.TimeoutMember(msg.GuildID, msg.AuthorID, now.Add(d.cfg.SpamMute), reason); err != nil {
			d.logger.Warn("spam timeout failed", zap.String("user", msg.AuthorID), zap.Error(err))
		}
		d.record(ctx, msg, storage.ActionMute, reason, now)
		_ = d.platform.SendNotice(msg.ChannelID, "Member Muted",
			"Muted for repeated spam.")
	default:
		reason := "Persistent spam"
		if err := d.platform.KickMember(msg.GuildID, msg.AuthorID, reason); err != nil {
			d.logger.Warn("spam kick failed", zap.String("user", msg.AuthorID), zap.Error(err))
		}
		d.logModOnly(ctx, msg, storage.ActionKick, reason, now)
		_ = d.platform.SendNotice(msg.ChannelID, "Member Kicked",
			"Kicked for persistent spam.")
	}

	d.logger.Info("spam violation",
		zap.String("guild", msg.GuildID),
		zap.String("user", msg.AuthorID),
		zap.Int("count", count))
}

func (d *Dispatcher) punishLink(msg Message) {
	if err := d.platform.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		d.logger.Warn("link delete failed", zap.String("message", msg.MessageID), zap.Error(err))
	}
	_ = d.platform.SendNotice(msg.ChannelID, "Link Removed",
		"Posting links is not allowed in this server.")
}

func (d *Dispatcher) punishMassMention(ctx context.Context, msg Message) {
	now := d.now()
	reason := "Mass mentions"

	if err := d.platform.DeleteMessage(msg.ChannelID, msg.MessageID); err != nil {
		d.logger.Warn("mention delete failed", zap.String("message", msg.MessageID), zap.Error(err))
	}
	if err := d.platform.TimeoutMember(msg.GuildID, msg.AuthorID, now.Add(d.cfg.MentionMute), reason); err != nil {
		d.logger.Warn("mention timeout failed", zap.String("user", msg.AuthorID), zap.Error(err))
	}
	d.record(ctx, msg, storage.ActionMute, reason, now)
	_ = d.platform.SendNotice(msg.ChannelID, "Member Muted",
		"Muted for mentioning too many members at once.")
}

// record writes both a warning and a mod log row for an automatic punishment.
func (d *Dispatcher) record(ctx context.Context, msg Message, action, reason string, now time.Time) {
	err := d.store.AddWarning(ctx, storage.Warning{
		GuildID:     msg.GuildID,
		UserID:      msg.AuthorID,
		ModeratorID: "automod",
		Reason:      reason,
		CreatedAt:   now,
	})
	if err != nil {
		d.logger.Error("automod warning write failed", zap.Error(err))
	}
	d.logModOnly(ctx, msg, action, reason, now)
}

func (d *Dispatcher) logModOnly(ctx context.Context, msg Message, action, reason string, now time.Time) {
	err := d.store.AddModLog(ctx, storage.ModLogEntry{
		GuildID:     msg.GuildID,
		ActionType:  action,
		ModeratorID: "automod",
		TargetID:    msg.AuthorID,
		Reason:      reason,
		CreatedAt:   now,
	})
	if err != nil {
		d.logger.Error("automod mod log write failed", zap.Error(err))
	}
}
