// Package dashboard serves a read-only HTTP API over the bot's data.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wardenbot/internal/analytics"
	"wardenbot/internal/storage"
)

type Server struct {
	store     *storage.Store
	analytics *analytics.Service
	logger    *zap.Logger
	http      *http.Server
}

func New(addr string, store *storage.Store, analyticsService *analytics.Service, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:     store,
		analytics: analyticsService,
		logger:    logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.health)
	api := router.Group("/api/guilds/:guild")
	{
		api.GET("/config", s.guildConfig)
		api.GET("/leaderboard", s.leaderboard)
		api.GET("/modlogs", s.modLogs)
		api.GET("/stats/:user", s.userStats)
		api.GET("/top", s.topMembers)
	}

	s.http = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server failed", zap.Error(err))
		}
	}()
	s.logger.Info("dashboard listening", zap.String("addr", s.http.Addr))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) guildConfig(c *gin.Context) {
	cfg, err := s.store.GetGuildConfig(c.Request.Context(), c.Param("guild"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"guild_id":         cfg.GuildID,
		"log_channel_id":   cfg.LogChannelID,
		"automod_enabled":  cfg.AutomodEnabled,
		"antilink_enabled": cfg.AntilinkEnabled,
		"leveling_enabled": cfg.LevelingEnabled,
		"antiraid_enabled": cfg.AntiraidEnabled,
	})
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := intQuery(c, "limit", 10, 100)
	records, err := s.store.Leaderboard(c.Request.Context(), c.Param("guild"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"user_id": rec.UserID,
			"xp":      rec.XP,
			"level":   rec.Level,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (s *Server) modLogs(c *gin.Context) {
	hours := intQuery(c, "hours", 24, 24*30)
	limit := intQuery(c, "limit", 50, 200)
	since := time.Now().Add(-time.Duration(hours) * time.Hour)

	entries, err := s.store.ListModLogs(c.Request.Context(), c.Param("guild"), since, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		out = append(out, gin.H{
			"action":       entry.ActionType,
			"moderator_id": entry.ModeratorID,
			"target_id":    entry.TargetID,
			"reason":       entry.Reason,
			"created_at":   entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

func (s *Server) userStats(c *gin.Context) {
	stats, err := s.analytics.UserStats(c.Request.Context(), c.Param("guild"), c.Param("user"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) topMembers(c *gin.Context) {
	window := analytics.Window(c.DefaultQuery("window", string(analytics.WindowAll)))
	limit := intQuery(c, "limit", 10, 100)

	counts, err := s.analytics.MessageLeaderboard(c.Request.Context(), c.Param("guild"), window, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(counts))
	for _, entry := range counts {
		out = append(out, gin.H{"user_id": entry.UserID, "messages": entry.Count})
	}
	c.JSON(http.StatusOK, gin.H{"window": window, "top": out})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Warn("dashboard query failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
}

func intQuery(c *gin.Context, name string, fallback, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}
