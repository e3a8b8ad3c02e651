package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/campfire/internal/adapters/auth"
	router "github.com/dkeye/campfire/internal/adapters/http"
	wssignal "github.com/dkeye/campfire/internal/adapters/signal"
	"github.com/dkeye/campfire/internal/app"
	"github.com/dkeye/campfire/internal/app/orch"
	"github.com/dkeye/campfire/internal/config"
	"github.com/dkeye/campfire/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := store.Open(store.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN, Debug: cfg.DB.Debug})
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()
	if err := store.Migrate(db); err != nil {
		return err
	}

	users := store.NewUsers(db)
	for _, name := range cfg.SeedUsers {
		if _, err := users.Ensure(ctx, name, name); err != nil {
			return fmt.Errorf("seed user %q: %w", name, err)
		}
	}

	o := orch.New(app.NewRegistry(), orch.Stores{
		Rooms:    store.NewRooms(db),
		Messages: store.NewMessages(db),
		Projects: store.NewProjects(db),
		Identity: users,
	}, app.PolicyByName(cfg.Backpressure))

	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	ctl := wssignal.NewSignalWSController(o, limiter, wssignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})
	verifier := auth.NewJWTVerifier(auth.Config{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL})

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Orch:     o,
		Signal:   ctl,
		Verifier: verifier,
		Users:    users,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("campfire server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})
	return g.Wait()
}

// newLimiter picks the chat rate limiter backend. A redis backend that
// cannot be reached at startup falls back to the in-process limiter.
func newLimiter(ctx context.Context, cfg *config.Config) (wssignal.Limiter, func(), error) {
	memory := wssignal.NewRoomRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Interval)
	switch cfg.RateLimit.Backend {
	case "", "memory":
		return memory, func() {}, nil
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("redis", opts.Addr).Msg("redis unavailable, using in-memory rate limiter")
			_ = client.Close()
			return memory, func() {}, nil
		}
		log.Info().Str("redis", opts.Addr).Msg("redis rate limiter enabled")
		return wssignal.NewRedisRateLimiter(client, "campfire:ratelimit:", cfg.RateLimit.Limit, cfg.RateLimit.Interval),
			func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimit.Backend)
	}
}
