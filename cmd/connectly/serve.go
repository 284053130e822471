package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/connectly/support-api/internal/api"
	"github.com/connectly/support-api/internal/api/handler"
	"github.com/connectly/support-api/internal/api/metrics"
	"github.com/connectly/support-api/internal/core/ports"
	"github.com/connectly/support-api/internal/core/service"
	redisdb "github.com/connectly/support-api/internal/infrastructure/db/redis"
	"github.com/connectly/support-api/internal/infrastructure/mq"
	"github.com/connectly/support-api/internal/infrastructure/queue"
	"github.com/connectly/support-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API server",
	Long: `Starts the HTTP API server. This is the default command. Usage:

	connectly serve
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("backend", cfg.StoreBackend).Msg("store connected")

	checks := map[string]handler.Checker{}
	if st.check != nil {
		checks[cfg.StoreBackend] = st.check
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		checks["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	var (
		notifier   ports.MessageNotifier
		dispatcher *queue.Dispatcher
		rabbit     *mq.RabbitMQClient
	)
	if cfg.Events.RabbitMQURL != "" {
		rabbit, err = mq.NewRabbitMQClient(cfg.Events.RabbitMQURL)
		if err != nil {
			return err
		}
		checks["rabbitmq"] = rabbit.Ping

		publisher := mq.NewMessagePublisher(rabbit, cfg.Events.Queue)
		dispatcher = queue.NewDispatcher(cfg.Events.Workers, publisher, metrics.ChatEventRecorder{}, logger.Component("dispatcher"))
		dispatcher.Start(ctx)
		notifier = dispatcher
		log.Info().Str("queue", cfg.Events.Queue).Int("workers", cfg.Events.Workers).Msg("chat events enabled")
	}

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(st.users, tokens, service.NewPasswordHasher(service.DefaultPasswordCost), logger.Component("auth"))
	chatSvc := service.NewChatService(st.messages, notifier, logger.Component("chat"))

	e := api.NewRouter(api.Dependencies{
		Logger:            logger.Component("http"),
		AuthService:       authSvc,
		ChatService:       chatSvc,
		Tokens:            tokens,
		Redis:             rdb,
		Checks:            checks,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		BodyLimit:         cfg.BodyLimit,
		RateLimitAuth:     cfg.RateLimitAuth,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if dispatcher != nil {
		if err := dispatcher.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("dispatcher drain error")
		}
	}
	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			log.Error().Err(err).Msg("rabbitmq close error")
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close error")
	}

	log.Info().Msg("server stopped")
	return nil
}
