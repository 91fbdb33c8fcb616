package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// discordPlatform adapts a discordgo session to the narrow interfaces the
// engines consume.
type discordPlatform struct {
	session *discordgo.Session
}

func (p *discordPlatform) DeleteMessage(channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID)
}

func (p *discordPlatform) SendNotice(channelID, title, body string) error {
	_, err := p.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: body,
		Color:       colorWarning,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	return err
}

func (p *discordPlatform) TimeoutMember(guildID, userID string, until time.Time, reason string) error {
	_ = reason
	return p.session.GuildMemberTimeout(guildID, userID, &until)
}

func (p *discordPlatform) ClearTimeout(guildID, userID string) error {
	return p.session.GuildMemberTimeout(guildID, userID, nil)
}

func (p *discordPlatform) KickMember(guildID, userID, reason string) error {
	return p.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

func (p *discordPlatform) BanMember(guildID, userID, reason string, deleteDays int) error {
	return p.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays)
}

func (p *discordPlatform) UnbanMember(guildID, userID string) error {
	return p.session.GuildBanDelete(guildID, userID)
}

// ListBans fetches the guild's ban list, capped at the API page limit.
func (p *discordPlatform) ListBans(guildID string) ([]*discordgo.GuildBan, error) {
	return p.session.GuildBans(guildID, 1000, "", "")
}

func (p *discordPlatform) HasGuild(guildID string) bool {
	_, err := p.session.State.Guild(guildID)
	return err == nil
}

// PurgeMessages bulk deletes up to count recent messages. Discord rejects
// bulk deletes of messages older than two weeks, those are skipped.
func (p *discordPlatform) PurgeMessages(channelID string, count int) (int, error) {
	if count > 100 {
		count = 100
	}
	messages, err := p.session.ChannelMessages(channelID, count, "", "", "")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-14 * 24 * time.Hour)
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Timestamp.Before(cutoff) {
			continue
		}
		ids = append(ids, msg.ID)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := p.session.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (p *discordPlatform) CreateTicketChannel(guildID, categoryID, userID string) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID, // @everyone
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    userID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		},
	}
	channel, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 "ticket",
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (p *discordPlatform) RenameChannel(channelID, name string) error {
	_, err := p.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name})
	return err
}

func (p *discordPlatform) DeleteChannel(channelID string) error {
	_, err := p.session.ChannelDelete(channelID)
	return err
}

func (p *discordPlatform) DirectMessage(userID, content string) error {
	channel, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = p.session.ChannelMessageSend(channel.ID, content)
	return err
}

// PostSuggestion publishes the suggestion embed in the channel where it
// was submitted.
func (p *discordPlatform) PostSuggestion(channelID, authorID, content string) (string, error) {
	msg, err := p.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "💡 New Suggestion",
		Description: content,
		Color:       colorAction,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + authorID},
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (p *discordPlatform) AddReaction(channelID, messageID, emoji string) error {
	return p.session.MessageReactionAdd(channelID, messageID, emoji)
}

// DeleteGuildInvites revokes every active invite and reports how many.
func (p *discordPlatform) DeleteGuildInvites(guildID string) (int, error) {
	invites, err := p.session.GuildInvites(guildID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, invite := range invites {
		if _, err := p.session.InviteDelete(invite.Code); err != nil {
			return deleted, fmt.Errorf("revoke invite %s: %w", invite.Code, err)
		}
		deleted++
	}
	return deleted, nil
}
