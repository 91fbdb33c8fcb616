package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type GuildConfig struct {
	GuildID          string
	LogChannelID     string
	TicketCategoryID string
	AutomodEnabled   bool
	AntilinkEnabled  bool
	LevelingEnabled  bool
	AntiraidEnabled  bool
}

// GuildConfigPatch is a typed partial update; nil fields are left untouched.
type GuildConfigPatch struct {
	LogChannelID     *string
	TicketCategoryID *string
	AutomodEnabled   *bool
	AntilinkEnabled  *bool
	LevelingEnabled  *bool
	AntiraidEnabled  *bool
}

// GetGuildConfig returns the config row for a guild, creating it with
// defaults on first access.
func (s *Store) GetGuildConfig(ctx context.Context, guildID string) (GuildConfig, error) {
	cfg, err := s.readGuildConfig(ctx, guildID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return GuildConfig{}, err
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO guild_config (guild_id) VALUES (?)`, guildID)
	if err != nil {
		return GuildConfig{}, err
	}
	return s.readGuildConfig(ctx, guildID)
}

func (s *Store) readGuildConfig(ctx context.Context, guildID string) (GuildConfig, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT log_channel_id, ticket_category_id, automod_enabled, antilink_enabled,
		leveling_enabled, antiraid_enabled
		FROM guild_config WHERE guild_id = ?`, guildID)

	cfg := GuildConfig{GuildID: guildID}
	var automod, antilink, leveling, antiraid int
	err := row.Scan(&cfg.LogChannelID, &cfg.TicketCategoryID, &automod, &antilink, &leveling, &antiraid)
	if err != nil {
		return GuildConfig{}, err
	}
	cfg.AutomodEnabled = automod == 1
	cfg.AntilinkEnabled = antilink == 1
	cfg.LevelingEnabled = leveling == 1
	cfg.AntiraidEnabled = antiraid == 1
	return cfg, nil
}

func (s *Store) UpdateGuildConfig(ctx context.Context, guildID string, patch GuildConfigPatch) error {
	if _, err := s.GetGuildConfig(ctx, guildID); err != nil {
		return err
	}

	set := []string{}
	args := []any{}
	if patch.LogChannelID != nil {
		set = append(set, "log_channel_id = ?")
		args = append(args, *patch.LogChannelID)
	}
	if patch.TicketCategoryID != nil {
		set = append(set, "ticket_category_id = ?")
		args = append(args, *patch.TicketCategoryID)
	}
	if patch.AutomodEnabled != nil {
		set = append(set, "automod_enabled = ?")
		args = append(args, boolToInt(*patch.AutomodEnabled))
	}
	if patch.AntilinkEnabled != nil {
		set = append(set, "antilink_enabled = ?")
		args = append(args, boolToInt(*patch.AntilinkEnabled))
	}
	if patch.LevelingEnabled != nil {
		set = append(set, "leveling_enabled = ?")
		args = append(args, boolToInt(*patch.LevelingEnabled))
	}
	if patch.AntiraidEnabled != nil {
		set = append(set, "antiraid_enabled = ?")
		args = append(args, boolToInt(*patch.AntiraidEnabled))
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, guildID)
	query := "UPDATE guild_config SET " + strings.Join(set, ", ") + " WHERE guild_id = ?"
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
