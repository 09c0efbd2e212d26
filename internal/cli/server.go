package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"music-quiz-service/internal/config"
	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
	"music-quiz-service/internal/game"
	"music-quiz-service/internal/infra/memory"
	pginfra "music-quiz-service/internal/infra/postgres"
	redisinfra "music-quiz-service/internal/infra/redis"
	transport "music-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Session store: Postgres is the durable choice, Redis the lightweight
	// one; memory keeps single-node demos running with no infrastructure.
	var store game.SessionStore
	switch {
	case pool != nil:
		store = pginfra.NewSessionStore(pool)
	case redisClient != nil:
		store = redisinfra.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.SessionTTL, 24*time.Hour))
	default:
		store = memory.NewSessionStore()
	}

	var users game.UserStore
	if pool != nil {
		users = pginfra.NewUserStore(pool)
	} else {
		users = memory.NewUserStore()
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var provider content.Provider
	switch {
	case pool != nil && redisClient != nil:
		provider = redisinfra.NewContentCache(redisClient, pginfra.NewTrackCatalog(pool), contentTTL)
	case pool != nil:
		provider = memory.NewContentCache(pginfra.NewTrackCatalog(pool), contentTTL)
	default:
		provider = content.NewStaticProvider(content.BuiltinCatalog())
	}
	if cfg.Game.AllowFallbackContent {
		provider = content.NewFallbackProvider(provider, content.NewStaticProvider(content.BuiltinCatalog()))
	}

	cache := game.NewSessionCache(store)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	cache.StartSweeper(sweepCtx,
		config.TTLDuration(cfg.Cache.SweepInterval, 5*time.Minute),
		config.TTLDuration(cfg.Cache.IdleTTL, 30*time.Minute))

	hub := transport.NewHub()
	engine := game.NewEngine(game.Config{
		Cache:       cache,
		Store:       store,
		Content:     provider,
		Sink:        hub,
		Users:       users,
		SettleDelay: config.TTLDuration(cfg.Game.SettleDelay, 3*time.Second),
	})
	defer engine.Close()

	wsHandler := transport.NewWSHandler(engine, hub)
	sessionHandler := transport.NewSessionHandler(engine, domain.Settings{
		Rounds:     cfg.Game.Rounds,
		RoundTime:  cfg.Game.RoundTime,
		Difficulty: cfg.Game.Difficulty,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/sessions", sessionHandler.CreateSession)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game session service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
