// Command notifywatch connects to the ERP notification service and logs
// notifications, system messages and the unread count as they arrive.
// Used for smoke-testing the push pipeline against a live or local service.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/api"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/config"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/connection"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/feed"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/model"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/store"
	"github.com/lokeshwar-Vaccel/Accel-ERP-sub008/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/notifywatch.local.yaml", "path to config file")
	statsEvery := flag.Duration("stats-every", 30*time.Second, "unread count log interval")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Tokens usually live in .env rather than the YAML file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env", "error", err)
	}

	logger.Info("starting notifywatch",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"rest_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
		"rooms", cfg.Feed.Rooms,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	restClient := api.NewClient(
		cfg.API.RestURL,
		cfg.API.Token,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	connMgr := connection.NewManager(connection.ManagerConfig{
		WSURL:           cfg.API.WSURL,
		AuthTimeout:     cfg.Connection.AuthTimeout,
		BaseDelay:       cfg.Connection.ReconnectBaseDelay,
		MaxAttempts:     cfg.Connection.ReconnectMaxAttempts,
		FrameBufferSize: cfg.Connection.FrameBufferSize,
		PingInterval:    cfg.Connection.PingInterval,
		PingTimeout:     cfg.Connection.PingTimeout,
		WriteTimeout:    cfg.Connection.WriteTimeout,
	}, logger)

	nf := feed.New(feed.Config{
		PageSize:      cfg.Feed.PageSize,
		PrefetchPages: cfg.Feed.PrefetchPages,
		Rooms:         cfg.Feed.Rooms,
		Store: store.Config{
			Capacity:     cfg.Feed.StoreCapacity,
			TombstoneTTL: cfg.Feed.TombstoneTTL,
		},
	}, restClient, connMgr, logger)

	nf.OnNotification(func(n model.Notification) {
		logger.Info("notification",
			"id", n.ID,
			"type", n.Type,
			"priority", n.Priority,
			"category", n.Category,
			"title", n.Title,
		)
	})
	nf.OnSystemMessage(func(msg model.SystemMessage) {
		logger.Info("system message",
			"message_type", msg.MessageType,
			"message", msg.Message,
		)
	})
	nf.OnMutationError(func(err *feed.MutationError) {
		logger.Warn("mutation not acknowledged", "error", err)
	})

	connMgr.OnStateChange(func(s connection.State) {
		logger.Info("connection state", "state", s, "last_error", connMgr.LastError())
	})

	creds := connection.Credentials{
		Token:  cfg.API.Token,
		UserID: cfg.API.UserID,
	}
	if err := nf.Start(ctx, creds); err != nil {
		logger.Error("failed to start feed", "error", err)
		os.Exit(1)
	}
	defer nf.Stop()

	g, gctx := errgroup.WithContext(ctx)

	// Periodic unread summary, with the server-side stats as a cross-check.
	g.Go(func() error {
		ticker := time.NewTicker(*statsEvery)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				unread := nf.UnreadCount()

				statsCtx, statsCancel := context.WithTimeout(gctx, 5*time.Second)
				stats, err := nf.Stats(statsCtx)
				statsCancel()

				if err != nil {
					logger.Info("unread summary", "unread", unread, "held", len(nf.Notifications()))
					continue
				}
				logger.Info("unread summary",
					"unread", unread,
					"held", len(nf.Notifications()),
					"server_unread", stats.Unread,
					"server_total", stats.Total,
				)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("notifywatch exited", "error", err)
	}

	logger.Info("notifywatch stopped")
}
