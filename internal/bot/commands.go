package bot

import "github.com/bwmarrin/discordgo"

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func intOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func toggleOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "value",
		Description: "on or off",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "on", Value: "on"},
			{Name: "off", Value: "off"},
		},
	}
}

func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ban",
			Description: "Ban a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to ban", true),
				stringOption("reason", "reason for the ban", false),
				intOption("delete_days", "days of messages to delete (0-7)", false),
			},
		},
		{
			Name:        "unban",
			Description: "Unban a user by ID",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("user_id", "ID of the banned user", true),
				stringOption("reason", "reason for the unban", false),
			},
		},
		{
			Name:        "tempban",
			Description: "Ban a member for a limited time",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to ban", true),
				stringOption("duration", "e.g. 1h30m, 2d, 1w", true),
				stringOption("reason", "reason for the ban", false),
			},
		},
		{
			Name:        "kick",
			Description: "Kick a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to kick", true),
				stringOption("reason", "reason for the kick", false),
			},
		},
		{
			Name:        "mute",
			Description: "Time a member out",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to mute", true),
				stringOption("duration", "e.g. 10m, 1h (max 28d)", true),
				stringOption("reason", "reason for the mute", false),
			},
		},
		{
			Name:        "tempmute",
			Description: "Time a member out with a tracked expiry",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to mute", true),
				stringOption("duration", "e.g. 10m, 1h (max 28d)", true),
				stringOption("reason", "reason for the mute", false),
			},
		},
		{
			Name:        "unmute",
			Description: "Remove a member's timeout",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to unmute", true),
			},
		},
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to warn", true),
				stringOption("reason", "reason for the warning", true),
			},
		},
		{
			Name:        "warnings",
			Description: "Show a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to inspect", false),
			},
		},
		{
			Name:        "clear",
			Description: "Delete recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("count", "number of messages (1-100)", true),
			},
		},
		{
			Name:        "massban",
			Description: "Ban up to 50 users by ID",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("user_ids", "space-separated user IDs", true),
				stringOption("reason", "reason for the bans", false),
			},
		},
		{
			Name:        "masskick",
			Description: "Kick up to 30 mentioned members",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("members", "mention the members to kick", true),
				stringOption("reason", "reason for the kicks", false),
			},
		},
		{
			Name:        "bans",
			Description: "List the server's bans",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("page", "page number (10 per page)", false),
			},
		},
		{
			Name:        "modlogs",
			Description: "Show recent moderation actions",
			Options: []*discordgo.ApplicationCommandOption{
				intOption("hours", "look-back period in hours (default 24)", false),
			},
		},
		{
			Name:        "setlogchannel",
			Description: "Set the moderation log channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "channel for log messages",
					Required:    true,
				},
			},
		},
		{
			Name:        "automod",
			Description: "Toggle spam and mention defenses",
			Options:     []*discordgo.ApplicationCommandOption{toggleOption()},
		},
		{
			Name:        "antilink",
			Description: "Toggle link removal",
			Options:     []*discordgo.ApplicationCommandOption{toggleOption()},
		},
		{
			Name:        "antiraid",
			Description: "Toggle join-burst protection",
			Options:     []*discordgo.ApplicationCommandOption{toggleOption()},
		},
		{
			Name:        "leveling",
			Description: "Toggle XP and levels",
			Options:     []*discordgo.ApplicationCommandOption{toggleOption()},
		},
		{
			Name:        "rank",
			Description: "Show a member's level and XP",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to inspect", false),
			},
		},
		{
			Name:        "leaderboard",
			Description: "Show the top members by XP",
		},
		{
			Name:        "setlevel",
			Description: "Set a member's level",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to adjust", true),
				intOption("level", "new level", true),
			},
		},
		{
			Name:        "ticket",
			Description: "Open or close a support ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "open or close",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "open", Value: "open"},
						{Name: "close", Value: "close"},
					},
				},
			},
		},
		{
			Name:        "suggest",
			Description: "Propose a suggestion for the server",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("suggestion", "your idea (10-1000 characters)", true),
			},
		},
		{
			Name:        "suggestions",
			Description: "Show the latest suggestions",
		},
		{
			Name:        "stats",
			Description: "Show a member's activity stats",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "member to inspect", false),
			},
		},
		{
			Name:        "top",
			Description: "Show the most active members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "metric",
					Description: "messages or voice",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "messages", Value: "messages"},
						{Name: "voice", Value: "voice"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "window",
					Description: "all, 24h, or 7d",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "all", Value: "all"},
						{Name: "24h", Value: "24h"},
						{Name: "7d", Value: "7d"},
					},
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()
	appID := b.session.State.User.ID

	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}
