package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/config"
	"github.com/gosuda/caseplan/internal/domain"
	"github.com/gosuda/caseplan/internal/notify"
	notifyslack "github.com/gosuda/caseplan/internal/notify/slack"
	"github.com/gosuda/caseplan/internal/server"
	"github.com/gosuda/caseplan/internal/store/csvfile"
	"github.com/gosuda/caseplan/internal/store/postgres"
	redisstore "github.com/gosuda/caseplan/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("CASEPLAN_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("CASEPLAN_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Select the snapshot persistence adapter.
	var repo domain.SnapshotRepository
	switch cfg.Snapshot.Driver {
	case "postgres":
		if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
			return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		pg, pgErr := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
		if pgErr != nil {
			return pgErr
		}
		defer pg.Close()
		repo = pg
	default:
		repo = csvfile.New(cfg.Snapshot.CSVPath)
	}

	// Load the persisted board and rebuild derived state.
	plan := board.New(domain.SystemClock{})
	tasks, err := repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := plan.Restore(tasks); err != nil {
		return err
	}
	log.Info().Int("tasks", len(tasks)).Str("driver", cfg.Snapshot.Driver).Msg("board restored")

	// Connect to Redis for the live change feed, if configured.
	var hub *ws.Hub
	if cfg.Redis.Addr != "" {
		pubsub, psErr := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if psErr != nil {
			return psErr
		}
		defer pubsub.Close()
		hub = ws.NewHub(pubsub)
	}

	// Build the Slack overdue-digest notifier, if configured.
	var notifier *notify.Notifier
	if cfg.Slack.BotToken != "" {
		slackClient := slacklib.New(cfg.Slack.BotToken)
		messenger := notifyslack.NewMessenger(slackClient)
		notifier = notify.New(messenger, cfg.Slack.Channel, domain.SystemClock{})
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(cfg, plan, repo, hub, notifier)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	// Persist the final board state before exit.
	if saveErr := repo.Save(shutdownCtx, plan.Snapshot()); saveErr != nil {
		return saveErr
	}

	log.Info().Msg("stopped")
	return nil
}
