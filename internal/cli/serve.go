package cli

import (
	"context"
	"fmt"
	"kanban/internal/cache"
	"kanban/internal/config"
	"kanban/internal/database"
	"kanban/internal/database/repositories"
	"kanban/internal/kanban"
	"kanban/internal/server"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server.

Settings come from the environment (optionally seeded from --env):
  PORT, DATABASE_URL or DB_*, JWT_SECRET, JWT_TTL, REDIS_URL,
  BOARD_CACHE_TTL, CORS_ORIGINS, LOG_LEVEL, LOG_FORMAT

Examples:
  kanban serve
  kanban serve --migrate --env prod.env`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.Database.DSN()
	if serveMigrate {
		if err := database.MigrateUp(dsn); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	db, err := database.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	boardCache, closeRedis, err := newBoardCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	boards := kanban.NewService(db, boardCache, logger)
	accounts := kanban.NewAccounts(repositories.NewUserRepository(db.DB()), []byte(cfg.JWT.Secret), cfg.JWT.TTL, logger)

	srv := server.New(boards, accounts, db, server.Options{
		AllowOrigins: cfg.AllowedOrigins(),
		JWTSecret:    []byte(cfg.JWT.Secret),
		Logger:       logger,
		AccessLog:    logger.IsLevelEnabled(log.InfoLevel),
	})
	srv.RegisterFiberRoutes()

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.WithField("addr", addr).Info("listening")
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newBoardCache connects to Redis when REDIS_URL is set. Without it, or if
// Redis is unreachable at startup, the cache is a pass-through.
func newBoardCache(ctx context.Context, cfg config.Redis, logger *log.Logger) (*cache.BoardCache, func(), error) {
	noop := func() {}
	if cfg.URL == "" || cfg.TTL == 0 {
		return cache.New(nil, 0, logger), noop, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable, board cache disabled")
		client.Close()
		return cache.New(nil, 0, logger), noop, nil
	}
	return cache.New(client, cfg.TTL, logger), func() { client.Close() }, nil
}
