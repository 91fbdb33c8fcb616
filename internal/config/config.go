package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken      string          `yaml:"discord_token"`
	DatabasePath      string          `yaml:"database_path"`
	LogLevel          string          `yaml:"log_level"`
	DefaultLogChannel string          `yaml:"default_log_channel"`
	Automod           AutomodConfig   `yaml:"automod"`
	Leveling          LevelingConfig  `yaml:"leveling"`
	Reconciler        SweepConfig     `yaml:"reconciler"`
	Backup            BackupConfig    `yaml:"backup"`
	Dashboard         DashboardConfig `yaml:"dashboard"`
	Tickets           TicketConfig    `yaml:"tickets"`
}

type AutomodConfig struct {
	SpamThreshold      int `yaml:"spam_threshold"`
	SpamWindowSeconds  int `yaml:"spam_window_seconds"`
	RaidJoins          int `yaml:"raid_joins"`
	RaidWindowSeconds  int `yaml:"raid_window_seconds"`
	MentionThreshold   int `yaml:"mention_threshold"`
	SpamMuteMinutes    int `yaml:"spam_mute_minutes"`
	MentionMuteMinutes int `yaml:"mention_mute_minutes"`
}

type LevelingConfig struct {
	XPMin           int     `yaml:"xp_min"`
	XPMax           int     `yaml:"xp_max"`
	CooldownSeconds int     `yaml:"cooldown_seconds"`
	Curve           float64 `yaml:"curve"`
}

type SweepConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	IntervalHours int    `yaml:"interval_hours"`
	Keep          int    `yaml:"keep"`
}

type DashboardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TicketConfig struct {
	CategoryName string `yaml:"category_name"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:      "/data/warden.db",
		LogLevel:          "info",
		DefaultLogChannel: "",
		Automod: AutomodConfig{
			SpamThreshold:      5,
			SpamWindowSeconds:  10,
			RaidJoins:          5,
			RaidWindowSeconds:  10,
			MentionThreshold:   5,
			SpamMuteMinutes:    5,
			MentionMuteMinutes: 10,
		},
		Leveling: LevelingConfig{
			XPMin:           5,
			XPMax:           15,
			CooldownSeconds: 60,
			Curve:           0.1,
		},
		Reconciler: SweepConfig{IntervalSeconds: 60},
		Backup:     BackupConfig{Enabled: false, Dir: "backups", IntervalHours: 24, Keep: 7},
		Dashboard:  DashboardConfig{Enabled: false, Addr: ":8080"},
		Tickets:    TicketConfig{CategoryName: "Tickets"},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.DefaultLogChannel = envString("DEFAULT_LOG_CHANNEL", cfg.DefaultLogChannel)
	cfg.Automod.SpamThreshold = envInt("SPAM_THRESHOLD", cfg.Automod.SpamThreshold)
	cfg.Automod.SpamWindowSeconds = envInt("SPAM_WINDOW_SECONDS", cfg.Automod.SpamWindowSeconds)
	cfg.Automod.RaidJoins = envInt("RAID_JOINS", cfg.Automod.RaidJoins)
	cfg.Automod.RaidWindowSeconds = envInt("RAID_WINDOW_SECONDS", cfg.Automod.RaidWindowSeconds)
	cfg.Automod.MentionThreshold = envInt("MENTION_THRESHOLD", cfg.Automod.MentionThreshold)
	cfg.Leveling.XPMin = envInt("XP_MIN", cfg.Leveling.XPMin)
	cfg.Leveling.XPMax = envInt("XP_MAX", cfg.Leveling.XPMax)
	cfg.Leveling.CooldownSeconds = envInt("XP_COOLDOWN_SECONDS", cfg.Leveling.CooldownSeconds)
	cfg.Reconciler.IntervalSeconds = envInt("SWEEP_INTERVAL_SECONDS", cfg.Reconciler.IntervalSeconds)
	cfg.Backup.Enabled = envBool("BACKUP_ENABLED", cfg.Backup.Enabled)
	cfg.Backup.Dir = envString("BACKUP_DIR", cfg.Backup.Dir)
	cfg.Dashboard.Enabled = envBool("DASHBOARD_ENABLED", cfg.Dashboard.Enabled)
	cfg.Dashboard.Addr = envString("DASHBOARD_ADDR", cfg.Dashboard.Addr)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
