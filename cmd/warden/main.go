package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"wardenbot/internal/analytics"
	"wardenbot/internal/bot"
	"wardenbot/internal/config"
	"wardenbot/internal/dashboard"
	"wardenbot/internal/reconciler"
	"wardenbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	botSvc, err := bot.New(cfg, logger, store)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}
	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	sweeper := reconciler.NewSweeper(botSvc, store, logger, botSvc.BotUserID())
	scheduler := reconciler.NewScheduler(logger)
	sweepInterval := time.Duration(cfg.Reconciler.IntervalSeconds) * time.Second
	err = scheduler.Every(sweepInterval, "temp_action_sweep", func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepInterval)
		defer cancel()
		if err := sweeper.Sweep(ctx); err != nil {
			logger.Error("temporary action sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("sweep scheduling failed", zap.Error(err))
	}

	if cfg.Backup.Enabled {
		backup := reconciler.NewBackupTask(cfg.DatabasePath, cfg.Backup.Dir, cfg.Backup.Keep, logger)
		interval := time.Duration(cfg.Backup.IntervalHours) * time.Hour
		if err := scheduler.Every(interval, "database_backup", backup.Run); err != nil {
			logger.Fatal("backup scheduling failed", zap.Error(err))
		}
	}
	scheduler.Start()

	var web *dashboard.Server
	if cfg.Dashboard.Enabled {
		analyticsService := analytics.NewService(store, logger)
		web = dashboard.New(cfg.Dashboard.Addr, store, analyticsService, logger)
		web.Start()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	if web != nil {
		_ = web.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
