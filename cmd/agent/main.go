package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reelcut/reelcut-agent/internal/api"
	"github.com/reelcut/reelcut-agent/internal/catalog"
	"github.com/reelcut/reelcut-agent/internal/config"
	"github.com/reelcut/reelcut-agent/internal/db"
	"github.com/reelcut/reelcut-agent/internal/frames"
	"github.com/reelcut/reelcut-agent/internal/logging"
	"github.com/reelcut/reelcut-agent/internal/mixer"
	"github.com/reelcut/reelcut-agent/internal/session"
	"github.com/reelcut/reelcut-agent/internal/ui"
	"github.com/reelcut/reelcut-agent/internal/upload"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.MkdirAll(cfg.FramesDir(), 0755); err != nil {
		return fmt.Errorf("failed to create frames dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting reelcut agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                    REELCUT AGENT v0.1.0                   ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	catalogSvc := catalog.NewService(repo, logger)

	var extractor frames.Extractor
	var mix mixer.Mixer
	if _, err := exec.LookPath(cfg.FFmpegPath()); err != nil {
		logger.Warn("ffmpeg unavailable, thumbnails and mixing disabled", "error", err)
		extractor = frames.NewStubExtractor(logger)
		mix = mixer.NewStubMixer(logger)
	} else {
		extractor = frames.NewFFmpegExtractor(cfg.FFmpegPath(), cfg.FramesDir(), logger)
		mix = mixer.NewFFmpegMixer(cfg.FFmpegPath(), logger)
	}

	var uploader upload.Service
	if cfg.S3Bucket() != "" && cfg.HasCredentials() {
		uploader = upload.NewS3Presigner(upload.PresignerConfig{
			Bucket:    cfg.S3Bucket(),
			Region:    cfg.S3Region(),
			Prefix:    cfg.S3Prefix(),
			AccessKey: cfg.S3AccessKey(),
			SecretKey: cfg.S3SecretKey(),
			Expiry:    cfg.PresignExpiry(),
			Logger:    logger,
		})
		logger.Info("upload presigning enabled", "bucket", cfg.S3Bucket(), "region", cfg.S3Region())
	} else {
		uploader = upload.NewStubPresigner(logger)
	}

	sessions := session.NewManager(extractor, logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Config:         cfg,
		Sessions:       sessions,
		CatalogService: catalogSvc,
		Repository:     repo,
		Uploader:       uploader,
		Mixer:          mix,
		MixOutputDir:   filepath.Join(cfg.DataDir(), "mixes"),
		Logger:         logger,
		StartTime:      startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Logger: logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
		go refreshTrayCounts(ctx, tray, sessions, catalogSvc, logger)
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// refreshTrayCounts keeps the tray's session and catalog counters current.
func refreshTrayCounts(ctx context.Context, tray *ui.Tray, sessions *session.Manager, catalogSvc catalog.CatalogService, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			videos, err := catalogSvc.CountVideos(ctx)
			if err != nil {
				logger.Warn("failed to count videos for tray", "error", err)
				continue
			}
			tray.UpdateCounts(sessions.Count(), videos)
		}
	}
}

func ensureAuthToken(repo catalog.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
