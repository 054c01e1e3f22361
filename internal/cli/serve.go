package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gardonyia/basket/internal/config"
	"github.com/gardonyia/basket/internal/repository"
	"github.com/gardonyia/basket/internal/scheduler"
	"github.com/gardonyia/basket/internal/session"
	"github.com/gardonyia/basket/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				cfg.ServeAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides SERVE_ADDR)")

	return cmd
}

// serve runs the web server until ctx is cancelled
func serve(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := newService(cfg, store)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: cfg.ServeAddr,
		Handler: web.NewRouter(svc, web.Options{
			CORSOrigins: web.ParseOrigins(cfg.CORSOrigins),
			Version:     Version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.ServeAddr).
			Strs("sources", sourceNames(svc.Sources())).
			Str("session_store", cfg.SessionStore).
			Msg("Web server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Received shutdown signal, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Web server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
	return nil
}

// openStore builds the configured session store. The in-memory and
// postgres stores get a cron sweeper; Redis expires keys on its own.
func openStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr(), err)
		}
		log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis session store connected")

		return session.NewRedisStore(client, cfg.SessionTTL), func() { client.Close() }, nil

	case "postgres":
		db, err := repository.NewDatabase(ctx, repository.Config{
			Host:       cfg.DatabaseHost,
			Port:       strconv.Itoa(cfg.DatabasePort),
			User:       cfg.DatabaseUser,
			Password:   cfg.DatabasePassword,
			Database:   cfg.DatabaseName,
			SSLMode:    cfg.DatabaseSSLMode,
			SessionTTL: cfg.SessionTTL,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		sched := scheduler.NewScheduler(cfg.SessionSweepCron, db.Sessions)
		if err := sched.Start(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db.Sessions, func() {
			sched.Stop()
			db.Close()
		}, nil

	default:
		store := session.NewMemoryStore(cfg.SessionTTL)
		sched := scheduler.NewScheduler(cfg.SessionSweepCron, store)
		if err := sched.Start(); err != nil {
			return nil, nil, err
		}
		return store, sched.Stop, nil
	}
}
