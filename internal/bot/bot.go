// Package bot wires the Discord gateway to the defense and community
// engines.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"wardenbot/internal/analytics"
	"wardenbot/internal/config"
	"wardenbot/internal/leveling"
	"wardenbot/internal/moderation"
	"wardenbot/internal/modules/antiraid"
	"wardenbot/internal/modules/automod"
	"wardenbot/internal/storage"
	"wardenbot/internal/suggestions"
	"wardenbot/internal/tickets"
)

const (
	colorAction  = 0x3498DB
	colorWarning = 0xE67E22
	colorError   = 0xE74C3C
	colorSuccess = 0x2ECC71
)

type Bot struct {
	cfg         config.Config
	logger      *zap.Logger
	store       *storage.Store
	session     *discordgo.Session
	platform    *discordPlatform
	automod     *automod.Dispatcher
	antiraid    *antiraid.Detector
	moderation  *moderation.Service
	leveling    *leveling.Engine
	tickets     *tickets.Service
	analytics   *analytics.Service
	suggestions *suggestions.Service
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	platform := &discordPlatform{session: session}
	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		session:  session,
		platform: platform,
	}

	b.automod = automod.NewDispatcher(automod.Config{
		SpamWindow:       time.Duration(cfg.Automod.SpamWindowSeconds) * time.Second,
		SpamThreshold:    cfg.Automod.SpamThreshold,
		MentionThreshold: cfg.Automod.MentionThreshold,
		SpamMute:         time.Duration(cfg.Automod.SpamMuteMinutes) * time.Minute,
		MentionMute:      time.Duration(cfg.Automod.MentionMuteMinutes) * time.Minute,
	}, platform, store, logger)
	b.antiraid = antiraid.NewDetector(
		time.Duration(cfg.Automod.RaidWindowSeconds)*time.Second,
		cfg.Automod.RaidJoins,
	)
	b.moderation = moderation.NewService(platform, store, logger)
	b.leveling = leveling.NewEngine(leveling.Config{
		XPMin:    cfg.Leveling.XPMin,
		XPMax:    cfg.Leveling.XPMax,
		Cooldown: time.Duration(cfg.Leveling.CooldownSeconds) * time.Second,
		Curve:    cfg.Leveling.Curve,
	}, store, logger)
	b.tickets = tickets.NewService(platform, store, logger)
	b.analytics = analytics.NewService(store, logger)
	b.suggestions = suggestions.NewService(platform, store, logger)

	return b, nil
}

// UnbanMember and HasGuild let the reconciler sweep drive the session
// through the bot.
func (b *Bot) UnbanMember(guildID, userID string) error {
	return b.platform.UnbanMember(guildID, userID)
}

func (b *Bot) HasGuild(guildID string) bool {
	return b.platform.HasGuild(guildID)
}

func (b *Bot) BotUserID() string {
	if b.session.State != nil && b.session.State.User != nil {
		return b.session.State.User.ID
	}
	return ""
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onVoiceStateUpdate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}
	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()
	b.analytics.RecordMessage(ctx, msg.GuildID, msg.Author.ID)

	cfg, err := b.store.GetGuildConfig(ctx, msg.GuildID)
	if err != nil {
		b.logger.Warn("guild config load failed", zap.String("guild", msg.GuildID), zap.Error(err))
		return
	}

	if !b.isExempt(msg.GuildID, msg.ChannelID, msg.Author.ID) {
		b.automod.HandleMessage(ctx, automod.Message{
			GuildID:      msg.GuildID,
			ChannelID:    msg.ChannelID,
			MessageID:    msg.ID,
			AuthorID:     msg.Author.ID,
			Content:      msg.Content,
			MentionCount: len(msg.Mentions) + len(msg.MentionRoles),
		}, cfg)
	}

	if cfg.LevelingEnabled {
		gain, err := b.leveling.HandleMessage(ctx, msg.GuildID, msg.Author.ID)
		if err != nil {
			b.logger.Warn("xp award failed", zap.Error(err))
			return
		}
		if gain.LeveledUp {
			content := fmt.Sprintf("🎉 <@%s> reached level **%d**!", msg.Author.ID, gain.Level)
			_, _ = session.ChannelMessageSend(msg.ChannelID, content)
		}
	}
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	ctx := context.Background()
	b.analytics.RecordJoin(ctx, event.GuildID, event.User.ID)

	cfg, err := b.store.GetGuildConfig(ctx, event.GuildID)
	if err != nil || !cfg.AntiraidEnabled {
		return
	}
	if b.antiraid.Observe(event.GuildID, time.Now()) {
		b.respondToRaid(ctx, event.GuildID, cfg)
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	b.analytics.RecordLeave(context.Background(), event.GuildID, event.User.ID)
}

func (b *Bot) onVoiceStateUpdate(session *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if event.GuildID == "" || event.UserID == "" {
		return
	}
	ctx := context.Background()

	wasIn := event.BeforeUpdate != nil && event.BeforeUpdate.ChannelID != ""
	isIn := event.ChannelID != ""
	switch {
	case !wasIn && isIn:
		b.analytics.VoiceJoined(ctx, event.GuildID, event.UserID)
	case wasIn && !isIn:
		b.analytics.VoiceLeft(ctx, event.GuildID, event.UserID)
	}
}

// respondToRaid revokes every invite, alerts the log channel, and DMs the
// guild owner.
func (b *Bot) respondToRaid(ctx context.Context, guildID string, cfg storage.GuildConfig) {
	_ = ctx
	revoked, err := b.platform.DeleteGuildInvites(guildID)
	if err != nil {
		b.logger.Error("raid invite revocation failed",
			zap.String("guild", guildID),
			zap.Error(err))
	}
	b.logger.Warn("raid detected",
		zap.String("guild", guildID),
		zap.Int("invites_revoked", revoked))

	body := fmt.Sprintf("A join burst was detected. %d invite(s) were revoked.", revoked)
	if cfg.LogChannelID != "" {
		_ = b.platform.SendNotice(cfg.LogChannelID, "🚨 Raid Alert", body)
	}

	guild, err := b.session.State.Guild(guildID)
	if err != nil || guild.OwnerID == "" {
		return
	}
	dm := fmt.Sprintf("**Raid alert in %s**\n%s", guild.Name, body)
	if err := b.platform.DirectMessage(guild.OwnerID, dm); err != nil {
		b.logger.Warn("owner raid DM failed", zap.String("guild", guildID), zap.Error(err))
	}
}

// isExempt reports whether the member moderates the channel and should be
// ignored by the automatic defenses.
func (b *Bot) isExempt(guildID, channelID, userID string) bool {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && guild.OwnerID == userID {
		return true
	}
	perms, err := b.session.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
}

// topRolePosition resolves a member's highest role position from state.
func (b *Bot) topRolePosition(guildID, userID string) int {
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		return 0
	}
	member, err := b.session.State.Member(guildID, userID)
	if err != nil {
		member, err = b.session.GuildMember(guildID, userID)
		if err != nil {
			return 0
		}
	}

	positions := make(map[string]int, len(guild.Roles))
	for _, role := range guild.Roles {
		positions[role.ID] = role.Position
	}
	top := 0
	for _, roleID := range member.Roles {
		if pos, ok := positions[roleID]; ok && pos > top {
			top = pos
		}
	}
	return top
}

func (b *Bot) actorFromInteraction(interaction *discordgo.InteractionCreate) moderation.Actor {
	actor := moderation.Actor{}
	if interaction.Member == nil || interaction.Member.User == nil {
		return actor
	}
	actor.UserID = interaction.Member.User.ID
	actor.TopRolePosition = b.topRolePosition(interaction.GuildID, actor.UserID)
	if guild, err := b.session.State.Guild(interaction.GuildID); err == nil {
		actor.IsOwner = guild.OwnerID == actor.UserID
	}
	return actor
}

// findCategoryByName resolves a channel category ID from state. Returns
// empty when no category matches, which creates the channel at the top
// level.
func (b *Bot) findCategoryByName(guildID, name string) string {
	if name == "" {
		return ""
	}
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, channel := range guild.Channels {
		if channel.Type == discordgo.ChannelTypeGuildCategory && strings.EqualFold(channel.Name, name) {
			return channel.ID
		}
	}
	return ""
}

func (b *Bot) targetForUser(guildID, userID string) moderation.Target {
	return moderation.Target{
		UserID:          userID,
		TopRolePosition: b.topRolePosition(guildID, userID),
	}
}
