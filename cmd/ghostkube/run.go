package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/handler"
	"github.com/xxxsen/ghostkube/internal/job"
	"github.com/xxxsen/ghostkube/internal/schedule"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "serve the http api and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", *configPath))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServer(ctx, a)
		},
	}
}

func runServer(ctx context.Context, a *app) error {
	cfg := a.cfg
	scheduler, err := buildScheduler(a)
	if err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	deps := handler.RouterDeps{
		Ingest:          handler.NewIngestHandler(a.ingest),
		Search:          handler.NewSearchHandler(a.search, cfg.Retrieval.DefaultTopK),
		Health:          handler.NewHealthHandler(a.pipe),
		IngestRateLimit: time.Duration(cfg.Ingest.RateLimitSeconds) * time.Second,
		IngestBurst:     cfg.Ingest.RateLimitBurst,
	}
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := handler.NewEngine(addr, deps, cfg.CORSOrigins)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func buildScheduler(a *app) (*schedule.CronScheduler, error) {
	jobs := a.cfg.Jobs
	scheduler := schedule.NewCronScheduler()
	if len(jobs.ResyncURLs) > 0 {
		if err := scheduler.AddJob(job.NewResyncJob(a.ingest, jobs.ResyncURLs, ""), jobs.ResyncSpec); err != nil {
			return nil, err
		}
	}
	if a.cacheRepo != nil && a.cfg.Embedder.DBCache {
		cleanup := job.NewEmbeddingCacheCleanupJob(a.cacheRepo, jobs.CacheMaxAgeDays)
		if err := scheduler.AddJob(cleanup, jobs.CacheCleanupSpec); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
