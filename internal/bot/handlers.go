package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"wardenbot/internal/analytics"
	"wardenbot/internal/duration"
	"wardenbot/internal/moderation"
	"wardenbot/internal/storage"
	"wardenbot/internal/suggestions"
	"wardenbot/internal/tickets"
)

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsByName(options []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	byName := make(commandOptions, len(options))
	for _, opt := range options {
		byName[opt.Name] = opt
	}
	return byName
}

func (o commandOptions) str(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o commandOptions) integer(name string, fallback int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return fallback
}

func (o commandOptions) user(session *discordgo.Session, name string) *discordgo.User {
	if opt, ok := o[name]; ok {
		return opt.UserValue(session)
	}
	return nil
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID == "" {
		b.respond(session, interaction, errorEmbed("This command only works in a server."))
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	opts := optionsByName(data.Options)

	switch data.Name {
	case "ban":
		b.handleBan(ctx, session, interaction, opts)
	case "unban":
		b.handleUnban(ctx, session, interaction, opts)
	case "tempban":
		b.handleTempBan(ctx, session, interaction, opts)
	case "kick":
		b.handleKick(ctx, session, interaction, opts)
	case "mute":
		b.handleMute(ctx, session, interaction, opts, false)
	case "tempmute":
		b.handleMute(ctx, session, interaction, opts, true)
	case "unmute":
		b.handleUnmute(ctx, session, interaction, opts)
	case "warn":
		b.handleWarn(ctx, session, interaction, opts)
	case "warnings":
		b.handleWarnings(ctx, session, interaction, opts)
	case "clear":
		b.handleClear(ctx, session, interaction, opts)
	case "massban":
		b.handleMassBan(ctx, session, interaction, opts)
	case "masskick":
		b.handleMassKick(ctx, session, interaction, opts)
	case "bans":
		b.handleBans(session, interaction, opts)
	case "modlogs":
		b.handleModLogs(ctx, session, interaction, opts)
	case "setlogchannel":
		b.handleSetLogChannel(ctx, session, interaction, opts)
	case "automod", "antilink", "antiraid", "leveling":
		b.handleToggle(ctx, session, interaction, data.Name, opts)
	case "rank":
		b.handleRank(ctx, session, interaction, opts)
	case "leaderboard":
		b.handleLeaderboard(ctx, session, interaction)
	case "setlevel":
		b.handleSetLevel(ctx, session, interaction, opts)
	case "ticket":
		b.handleTicket(ctx, session, interaction, opts)
	case "suggest":
		b.handleSuggest(ctx, session, interaction, opts)
	case "suggestions":
		b.handleSuggestions(ctx, session, interaction)
	case "stats":
		b.handleStats(ctx, session, interaction, opts)
	case "top":
		b.handleTop(ctx, session, interaction, opts)
	default:
		b.respond(session, interaction, errorEmbed("Unknown command."))
	}
}

func (b *Bot) handleBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	reason := opts.str("reason")
	deleteDays := opts.integer("delete_days", 0)
	if deleteDays < 0 || deleteDays > 7 {
		deleteDays = 0
	}

	actor := b.actorFromInteraction(interaction)
	err := b.moderation.Ban(ctx, interaction.GuildID, actor, b.targetForUser(interaction.GuildID, target.ID), reason, deleteDays)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	b.respond(session, interaction, actionEmbed("Member Banned", fmt.Sprintf("<@%s> was banned.", target.ID), reason))
	b.notifyLogChannel(ctx, interaction.GuildID, "Member Banned", fmt.Sprintf("<@%s> banned <@%s>", actor.UserID, target.ID), reason)
}

func (b *Bot) handleUnban(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	userID := strings.TrimSpace(opts.str("user_id"))
	if userID == "" {
		b.respond(session, interaction, errorEmbed("A user ID is required."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	if err := b.moderation.Unban(ctx, interaction.GuildID, actor, userID, reason); err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	b.respond(session, interaction, actionEmbed("User Unbanned", fmt.Sprintf("<@%s> was unbanned.", userID), reason))
}

func (b *Bot) handleTempBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	d, err := duration.Parse(opts.str("duration"))
	if err != nil {
		b.respond(session, interaction, errorEmbed("Invalid duration. Use forms like 1h30m, 2d, or 1w."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	err = b.moderation.TempBan(ctx, interaction.GuildID, actor, b.targetForUser(interaction.GuildID, target.ID), d, reason)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	desc := fmt.Sprintf("<@%s> was banned for %s.", target.ID, d)
	b.respond(session, interaction, actionEmbed("Member Temp-Banned", desc, reason))
	b.notifyLogChannel(ctx, interaction.GuildID, "Member Temp-Banned", desc, reason)
}

func (b *Bot) handleKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	err := b.moderation.Kick(ctx, interaction.GuildID, actor, b.targetForUser(interaction.GuildID, target.ID), reason)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	b.respond(session, interaction, actionEmbed("Member Kicked", fmt.Sprintf("<@%s> was kicked.", target.ID), reason))
	b.notifyLogChannel(ctx, interaction.GuildID, "Member Kicked", fmt.Sprintf("<@%s> kicked <@%s>", actor.UserID, target.ID), reason)
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions, tracked bool) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	d, err := duration.Parse(opts.str("duration"))
	if err != nil {
		b.respond(session, interaction, errorEmbed("Invalid duration. Use forms like 10m, 1h, or 2d."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	targetInfo := b.targetForUser(interaction.GuildID, target.ID)
	if tracked {
		err = b.moderation.TempMute(ctx, interaction.GuildID, actor, targetInfo, d, reason)
	} else {
		err = b.moderation.Mute(ctx, interaction.GuildID, actor, targetInfo, d, reason)
	}
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	if d > moderation.MaxMuteDuration {
		d = moderation.MaxMuteDuration
	}
	b.respond(session, interaction, actionEmbed("Member Muted", fmt.Sprintf("<@%s> was muted for %s.", target.ID, d), reason))
}

func (b *Bot) handleUnmute(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	actor := b.actorFromInteraction(interaction)
	err := b.moderation.Unmute(ctx, interaction.GuildID, actor, b.targetForUser(interaction.GuildID, target.ID), "")
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	b.respond(session, interaction, actionEmbed("Member Unmuted", fmt.Sprintf("<@%s> can speak again.", target.ID), ""))
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	err := b.moderation.Warn(ctx, interaction.GuildID, actor, b.targetForUser(interaction.GuildID, target.ID), reason)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	b.respond(session, interaction, actionEmbed("Member Warned", fmt.Sprintf("<@%s> was warned.", target.ID), reason))
}

func (b *Bot) handleWarnings(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	userID := ""
	if target != nil {
		userID = target.ID
	} else if interaction.Member != nil && interaction.Member.User != nil {
		userID = interaction.Member.User.ID
	}

	warnings, err := b.moderation.Warnings(ctx, interaction.GuildID, userID)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not load warnings."))
		return
	}
	if len(warnings) == 0 {
		b.respond(session, interaction, actionEmbed("Warnings", fmt.Sprintf("<@%s> has no warnings.", userID), ""))
		return
	}

	lines := make([]string, 0, len(warnings))
	for i, w := range warnings {
		if i >= 10 {
			lines = append(lines, fmt.Sprintf("...and %d more", len(warnings)-10))
			break
		}
		reason := w.Reason
		if reason == "" {
			reason = "no reason recorded"
		}
		lines = append(lines, fmt.Sprintf("`%s` %s (by <@%s>)", w.CreatedAt.Format("2006-01-02"), reason, w.ModeratorID))
	}
	title := fmt.Sprintf("Warnings (%d)", len(warnings))
	b.respond(session, interaction, actionEmbed(title, strings.Join(lines, "\n"), ""))
}

func (b *Bot) handleClear(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	count := opts.integer("count", 0)
	if count < 1 || count > 100 {
		b.respond(session, interaction, errorEmbed("Count must be between 1 and 100."))
		return
	}
	actor := b.actorFromInteraction(interaction)
	deleted, err := b.moderation.Clear(ctx, interaction.GuildID, interaction.ChannelID, actor, count)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not delete messages."))
		return
	}
	b.respond(session, interaction, actionEmbed("Messages Cleared", fmt.Sprintf("Deleted %d message(s).", deleted), ""))
}

func (b *Bot) handleMassBan(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	ids := strings.Fields(opts.str("user_ids"))
	if len(ids) == 0 {
		b.respond(session, interaction, errorEmbed("At least one user ID is required."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	result, err := b.moderation.MassBan(ctx, interaction.GuildID, actor, ids, reason)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	desc := fmt.Sprintf("Banned %d user(s), %d failed.", result.Succeeded, result.Failed)
	b.respond(session, interaction, actionEmbed("Mass Ban", desc, reason))
	b.notifyLogChannel(ctx, interaction.GuildID, "Mass Ban", desc, reason)
}

// mentionIDs extracts user IDs from raw <@...> mentions.
func mentionIDs(input string) []string {
	var ids []string
	for _, field := range strings.Fields(input) {
		if !strings.HasPrefix(field, "<@") || !strings.HasSuffix(field, ">") {
			continue
		}
		id := strings.TrimPrefix(strings.TrimSuffix(strings.TrimPrefix(field, "<@"), ">"), "!")
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (b *Bot) handleMassKick(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	ids := mentionIDs(opts.str("members"))
	if len(ids) == 0 {
		b.respond(session, interaction, errorEmbed("Mention at least one member."))
		return
	}
	reason := opts.str("reason")

	actor := b.actorFromInteraction(interaction)
	result, err := b.moderation.MassKick(ctx, interaction.GuildID, actor, ids, reason)
	if err != nil {
		b.respondModerationError(session, interaction, err)
		return
	}
	desc := fmt.Sprintf("Kicked %d member(s), %d failed.", result.Succeeded, result.Failed)
	b.respond(session, interaction, actionEmbed("Mass Kick", desc, reason))
	b.notifyLogChannel(ctx, interaction.GuildID, "Mass Kick", desc, reason)
}

const bansPerPage = 10

// pageBounds clamps a requested page and returns the slice bounds for it.
func pageBounds(total, page, perPage int) (int, int, int, int) {
	totalPages := (total-1)/perPage + 1
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	return page, totalPages, start, end
}

func (b *Bot) handleBans(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	bans, err := b.platform.ListBans(interaction.GuildID)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not fetch the ban list. Check my permissions."))
		return
	}
	if len(bans) == 0 {
		b.respond(session, interaction, actionEmbed("Ban List", "Nobody is banned on this server.", ""))
		return
	}

	page, totalPages, start, end := pageBounds(len(bans), opts.integer("page", 1), bansPerPage)

	embed := &discordgo.MessageEmbed{
		Title:       "📋 Ban List",
		Description: fmt.Sprintf("Total: **%d** banned user(s)", len(bans)),
		Color:       colorAction,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", page, totalPages)},
	}
	for _, entry := range bans[start:end] {
		name := "unknown user"
		if entry.User != nil {
			name = fmt.Sprintf("%s (ID: %s)", entry.User.Username, entry.User.ID)
		}
		reason := entry.Reason
		if reason == "" {
			reason = "no reason recorded"
		}
		if len(reason) > 100 {
			reason = reason[:100] + "..."
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: name, Value: reason, Inline: false,
		})
	}
	b.respond(session, interaction, embed)
}

func (b *Bot) handleModLogs(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	hours := opts.integer("hours", 24)
	if hours < 1 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	entries, err := b.store.ListModLogs(ctx, interaction.GuildID, since, 15)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not load the moderation log."))
		return
	}
	if len(entries) == 0 {
		b.respond(session, interaction, actionEmbed("Moderation Log", fmt.Sprintf("No actions in the last %dh.", hours), ""))
		return
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("`%s` **%s** <@%s> by <@%s>",
			entry.CreatedAt.Format("01-02 15:04"), entry.ActionType, entry.TargetID, entry.ModeratorID))
	}
	b.respond(session, interaction, actionEmbed("Moderation Log", strings.Join(lines, "\n"), ""))
}

func (b *Bot) handleSetLogChannel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	opt, ok := opts["channel"]
	if !ok {
		b.respond(session, interaction, errorEmbed("A channel is required."))
		return
	}
	channel := opt.ChannelValue(session)
	if channel == nil {
		b.respond(session, interaction, errorEmbed("Could not resolve the channel."))
		return
	}

	patch := storage.GuildConfigPatch{LogChannelID: &channel.ID}
	if err := b.store.UpdateGuildConfig(ctx, interaction.GuildID, patch); err != nil {
		b.respond(session, interaction, errorEmbed("Could not save the setting."))
		return
	}
	b.respond(session, interaction, actionEmbed("Log Channel Set", fmt.Sprintf("Moderation logs will go to <#%s>.", channel.ID), ""))
}

func (b *Bot) handleToggle(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, feature string, opts commandOptions) {
	enabled := opts.str("value") == "on"
	patch := storage.GuildConfigPatch{}
	switch feature {
	case "automod":
		patch.AutomodEnabled = &enabled
	case "antilink":
		patch.AntilinkEnabled = &enabled
	case "antiraid":
		patch.AntiraidEnabled = &enabled
	case "leveling":
		patch.LevelingEnabled = &enabled
	}

	if err := b.store.UpdateGuildConfig(ctx, interaction.GuildID, patch); err != nil {
		b.respond(session, interaction, errorEmbed("Could not save the setting."))
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	b.respond(session, interaction, actionEmbed("Setting Updated", fmt.Sprintf("%s is now %s.", feature, state), ""))
}

func (b *Bot) handleRank(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	userID := ""
	if target := opts.user(session, "user"); target != nil {
		userID = target.ID
	} else if interaction.Member != nil && interaction.Member.User != nil {
		userID = interaction.Member.User.ID
	}

	rec, rank, total, err := b.leveling.Rank(ctx, interaction.GuildID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNoLevelData) {
			b.respond(session, interaction, actionEmbed("Rank", fmt.Sprintf("<@%s> has not earned any XP yet.", userID), ""))
			return
		}
		b.respond(session, interaction, errorEmbed("Could not load rank data."))
		return
	}

	next := b.leveling.XPForLevel(rec.Level + 1)
	desc := fmt.Sprintf("<@%s> is level **%d** with **%d** XP (rank %d/%d).\n%d XP to the next level.",
		userID, rec.Level, rec.XP, rank, total, next-rec.XP)
	b.respond(session, interaction, actionEmbed("Rank", desc, ""))
}

func (b *Bot) handleLeaderboard(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	records, err := b.store.Leaderboard(ctx, interaction.GuildID, 10)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not load the leaderboard."))
		return
	}
	if len(records) == 0 {
		b.respond(session, interaction, actionEmbed("Leaderboard", "Nobody has earned XP yet.", ""))
		return
	}

	lines := make([]string, 0, len(records))
	for i, rec := range records {
		lines = append(lines, fmt.Sprintf("**%d.** <@%s> — level %d (%d XP)", i+1, rec.UserID, rec.Level, rec.XP))
	}
	b.respond(session, interaction, actionEmbed("Leaderboard", strings.Join(lines, "\n"), ""))
}

func (b *Bot) handleSetLevel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	target := opts.user(session, "user")
	if target == nil {
		b.respond(session, interaction, errorEmbed("A user is required."))
		return
	}
	level := opts.integer("level", -1)
	if level < 0 || level > 1000 {
		b.respond(session, interaction, errorEmbed("Level must be between 0 and 1000."))
		return
	}

	if err := b.leveling.SetLevel(ctx, interaction.GuildID, target.ID, level); err != nil {
		b.respond(session, interaction, errorEmbed("Could not set the level."))
		return
	}
	b.respond(session, interaction, actionEmbed("Level Set", fmt.Sprintf("<@%s> is now level **%d**.", target.ID, level), ""))
}

func (b *Bot) handleTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	if interaction.Member == nil || interaction.Member.User == nil {
		b.respond(session, interaction, errorEmbed("Could not resolve your user."))
		return
	}
	userID := interaction.Member.User.ID

	switch opts.str("action") {
	case "open":
		cfg, err := b.store.GetGuildConfig(ctx, interaction.GuildID)
		if err != nil {
			b.respond(session, interaction, errorEmbed("Could not load the server settings."))
			return
		}
		categoryID := cfg.TicketCategoryID
		if categoryID == "" {
			categoryID = b.findCategoryByName(interaction.GuildID, b.cfg.Tickets.CategoryName)
		}
		ticket, err := b.tickets.Open(ctx, interaction.GuildID, categoryID, userID)
		if err != nil {
			if errors.Is(err, tickets.ErrAlreadyOpen) {
				b.respond(session, interaction, errorEmbed("You already have an open ticket."))
				return
			}
			b.logger.Warn("ticket open failed", zap.Error(err))
			b.respond(session, interaction, errorEmbed("Could not open a ticket."))
			return
		}
		b.respond(session, interaction, actionEmbed("Ticket Opened",
			fmt.Sprintf("Ticket #%04d created: <#%s>", ticket.Number, ticket.ChannelID), ""))
	case "close":
		ticket, err := b.tickets.Close(ctx, interaction.ChannelID)
		if err != nil {
			if errors.Is(err, tickets.ErrNotATicket) {
				b.respond(session, interaction, errorEmbed("This channel is not a ticket."))
				return
			}
			b.logger.Warn("ticket close failed", zap.Error(err))
			b.respond(session, interaction, errorEmbed("Could not close the ticket."))
			return
		}
		b.respond(session, interaction, actionEmbed("Ticket Closed",
			fmt.Sprintf("Ticket #%04d is closed. The channel stays for the record.", ticket.Number), ""))
		b.notifyLogChannelSimple(ctx, interaction.GuildID, "Ticket Closed",
			fmt.Sprintf("Ticket #%04d (opened by <@%s>) was closed by <@%s>.", ticket.Number, ticket.UserID, userID))
	default:
		b.respond(session, interaction, errorEmbed("Use open or close."))
	}
}

func (b *Bot) handleSuggest(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	if interaction.Member == nil || interaction.Member.User == nil {
		b.respond(session, interaction, errorEmbed("Could not resolve your user."))
		return
	}

	sg, err := b.suggestions.Submit(ctx, interaction.GuildID, interaction.ChannelID, interaction.Member.User.ID, opts.str("suggestion"))
	if err != nil {
		switch {
		case errors.Is(err, suggestions.ErrTooShort):
			b.respond(session, interaction, errorEmbed(fmt.Sprintf("The suggestion must be at least %d characters.", suggestions.MinLength)))
		case errors.Is(err, suggestions.ErrTooLong):
			b.respond(session, interaction, errorEmbed(fmt.Sprintf("The suggestion cannot exceed %d characters.", suggestions.MaxLength)))
		default:
			b.logger.Warn("suggestion post failed", zap.Error(err))
			b.respond(session, interaction, errorEmbed("Could not post the suggestion."))
		}
		return
	}
	b.respond(session, interaction, actionEmbed("Suggestion Posted",
		fmt.Sprintf("Suggestion #%d is up for votes.", sg.ID), ""))
}

func (b *Bot) handleSuggestions(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	listed, err := b.suggestions.List(ctx, interaction.GuildID, 10)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not load the suggestions."))
		return
	}
	if len(listed) == 0 {
		b.respond(session, interaction, actionEmbed("Suggestions", "No suggestions yet.", ""))
		return
	}

	lines := make([]string, 0, len(listed))
	for _, sg := range listed {
		content := sg.Content
		if len(content) > 100 {
			content = content[:100] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s **#%d** by <@%s>: %s",
			suggestions.StatusEmoji(sg.Status), sg.ID, sg.UserID, content))
	}
	b.respond(session, interaction, actionEmbed("Server Suggestions", strings.Join(lines, "\n"), ""))
}

func (b *Bot) handleStats(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	userID := ""
	if target := opts.user(session, "user"); target != nil {
		userID = target.ID
	} else if interaction.Member != nil && interaction.Member.User != nil {
		userID = interaction.Member.User.ID
	}

	stats, err := b.analytics.UserStats(ctx, interaction.GuildID, userID)
	if err != nil {
		b.respond(session, interaction, errorEmbed("Could not load activity stats."))
		return
	}

	voice := time.Duration(stats.VoiceSeconds) * time.Second
	desc := fmt.Sprintf("Activity for <@%s>", userID)
	embed := &discordgo.MessageEmbed{
		Title:       "Member Stats",
		Description: desc,
		Color:       colorAction,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Messages (total)", Value: fmt.Sprintf("%d", stats.TotalMessages), Inline: true},
			{Name: "Messages (24h)", Value: fmt.Sprintf("%d", stats.MessagesDay), Inline: true},
			{Name: "Messages (7d)", Value: fmt.Sprintf("%d", stats.MessagesWeek), Inline: true},
			{Name: "Voice (7d)", Value: voice.String(), Inline: true},
		},
	}
	if stats.MessageRank > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Rank", Value: fmt.Sprintf("%d/%d", stats.MessageRank, stats.RankedOf), Inline: true,
		})
	}
	b.respond(session, interaction, embed)
}

func (b *Bot) handleTop(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts commandOptions) {
	window := analytics.Window(opts.str("window"))
	if window == "" {
		window = analytics.WindowAll
	}

	var lines []string
	switch opts.str("metric") {
	case "voice":
		totals, err := b.analytics.VoiceLeaderboard(ctx, interaction.GuildID, window, 10)
		if err != nil {
			b.respond(session, interaction, errorEmbed("Could not load the leaderboard."))
			return
		}
		for i, v := range totals {
			lines = append(lines, fmt.Sprintf("**%d.** <@%s> — %s", i+1, v.UserID, (time.Duration(v.Seconds)*time.Second).String()))
		}
	default:
		counts, err := b.analytics.MessageLeaderboard(ctx, interaction.GuildID, window, 10)
		if err != nil {
			b.respond(session, interaction, errorEmbed("Could not load the leaderboard."))
			return
		}
		for i, c := range counts {
			lines = append(lines, fmt.Sprintf("**%d.** <@%s> — %d messages", i+1, c.UserID, c.Count))
		}
	}

	if len(lines) == 0 {
		b.respond(session, interaction, actionEmbed("Most Active", "No activity recorded yet.", ""))
		return
	}
	title := fmt.Sprintf("Most Active (%s)", window)
	b.respond(session, interaction, actionEmbed(title, strings.Join(lines, "\n"), ""))
}

func (b *Bot) respondModerationError(session *discordgo.Session, interaction *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, moderation.ErrHierarchy):
		b.respond(session, interaction, errorEmbed("You cannot act on a member with an equal or higher role."))
	case errors.Is(err, moderation.ErrNoDuration):
		b.respond(session, interaction, errorEmbed("A positive duration is required."))
	case errors.Is(err, moderation.ErrTooManyTargets):
		b.respond(session, interaction, errorEmbed("Too many targets for a batch action."))
	default:
		b.logger.Warn("moderation command failed", zap.Error(err))
		b.respond(session, interaction, errorEmbed("The action failed. Check my permissions and role position."))
	}
}

func (b *Bot) notifyLogChannel(ctx context.Context, guildID, title, body, reason string) {
	if reason != "" {
		body = body + "\nReason: " + reason
	}
	b.notifyLogChannelSimple(ctx, guildID, title, body)
}

func (b *Bot) notifyLogChannelSimple(ctx context.Context, guildID, title, body string) {
	cfg, err := b.store.GetGuildConfig(ctx, guildID)
	if err != nil {
		return
	}
	channelID := cfg.LogChannelID
	if channelID == "" {
		channelID = b.cfg.DefaultLogChannel
	}
	if channelID == "" {
		return
	}
	if err := b.platform.SendNotice(channelID, title, body); err != nil {
		b.logger.Warn("log channel notice failed", zap.String("guild", guildID), zap.Error(err))
	}
}

func actionEmbed(title, description, reason string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorSuccess,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if reason != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Reason", Value: reason, Inline: false,
		})
	}
	return embed
}

func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: description,
		Color:       colorError,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction response failed", zap.Error(err))
	}
}
