package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VitaminP8/blogd/internal/api"
	"github.com/VitaminP8/blogd/internal/auth"
	"github.com/VitaminP8/blogd/internal/comment"
	"github.com/VitaminP8/blogd/internal/config"
	"github.com/VitaminP8/blogd/internal/logger"
	"github.com/VitaminP8/blogd/internal/post"
	"github.com/VitaminP8/blogd/internal/rate"
	"github.com/VitaminP8/blogd/internal/storage/memory"
	"github.com/VitaminP8/blogd/internal/storage/mongodb"
	"github.com/VitaminP8/blogd/internal/storage/postgres"
	"github.com/VitaminP8/blogd/internal/user"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	users    user.UserStorage
	posts    post.PostStorage
	comments comment.CommentStorage
	closers  []func(context.Context) error
}

func main() {
	storageType := flag.String("storage", "", "Тип хранилища: memory, postgres или mongo (по умолчанию из STORAGE)")
	flag.Parse()

	// .env не обязателен, переменные могут прийти из окружения
	envErr := config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *storageType != "" {
		cfg.Storage = *storageType
	}

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if envErr != nil {
		logg.Info(".env file not found", zap.Error(envErr))
	}

	if err := run(cfg, logg); err != nil {
		exitWithError(logg, err, os.Exit)
	}
}

// exitWithError сбрасывает буфер логгера до выхода: os.Exit не выполняет defer.
func exitWithError(logg *zap.Logger, err error, exit func(int)) {
	logg.Error("server stopped with error", zap.Error(err))
	_ = logg.Sync()
	exit(1)
}

func run(cfg config.Config, logg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, c := range st.closers {
			if err := c(closeCtx); err != nil {
				logg.Warn("failed to close storage", zap.Error(err))
			}
		}
	}()

	limiter, closeLimiter, err := openLimiter(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashWorkers)

	srv := api.NewServer(api.Options{
		Auth:           auth.NewService(st.users, hasher, tokens),
		Posts:          st.posts,
		Comments:       st.comments,
		Limiter:        limiter,
		LoginPerMinute: cfg.RateLimits.LoginPerMinute,
		TrustedProxies: cfg.RateLimits.TrustedProxies,
		Logger:         logg,
	})
	server := srv.HTTPServer(cfg.Addr())

	errCh := make(chan error, 1)
	go func() {
		logg.Info("Сервер запущен",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage),
			zap.Int("bcrypt_cost", hasher.Cost()),
		)
		// блокирует до Shutdown или фатальной ошибки
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logg.Info("Завершение...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при завершении сервера: %w", err)
	}

	logg.Info("Сервер остановлен корректно")
	return nil
}

func openStores(ctx context.Context, cfg config.Config, logg *zap.Logger) (*stores, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		dsn, err := cfg.PostgresDSN()
		if err != nil {
			return nil, err
		}
		db, err := postgres.InitDB(dsn)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			_ = postgres.CloseDB(db)
			return nil, err
		}

		logg.Info("Используется PostgreSQL хранилище")
		return &stores{
			users:    postgres.NewUserPostgresStorage(db),
			posts:    postgres.NewPostPostgresStorage(db),
			comments: postgres.NewCommentPostgresStorage(db),
			closers:  []func(context.Context) error{func(context.Context) error { return postgres.CloseDB(db) }},
		}, nil

	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongodb.Connect(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(connectCtx, db); err != nil {
			_ = mongodb.Disconnect(context.Background(), client)
			return nil, err
		}

		logg.Info("Используется MongoDB хранилище", zap.String("database", cfg.MongoDB))
		return &stores{
			users:    mongodb.NewUserMongoStorage(db),
			posts:    mongodb.NewPostMongoStorage(db),
			comments: mongodb.NewCommentMongoStorage(db),
			closers:  []func(context.Context) error{func(ctx context.Context) error { return mongodb.Disconnect(ctx, client) }},
		}, nil

	case config.StorageMemory:
		logg.Info("Используется in-memory хранилище")
		users := memory.NewUserMemoryStorage()
		posts := memory.NewPostMemoryStorage(users)
		return &stores{
			users:    users,
			posts:    posts,
			comments: memory.NewCommentMemoryStorage(posts, users),
		}, nil

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %s", cfg.Storage)
	}
}

// openLimiter выбирает Redis, если задан REDIS_ADDR, иначе лимитер в памяти процесса.
func openLimiter(ctx context.Context, cfg config.Config, logg *zap.Logger) (rate.Limiter, func(), error) {
	if cfg.RateLimits.RedisAddr == "" {
		limiter := rate.NewMemory()
		go limiter.RunSweeper(ctx, time.Minute)
		return limiter, func() {}, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := rate.Connect(pingCtx, cfg.RateLimits.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	logg.Info("Лимит входа хранится в Redis", zap.String("addr", cfg.RateLimits.RedisAddr))

	return rate.NewRedis(client), func() {
		if err := client.Close(); err != nil {
			logg.Warn("failed to close redis client", zap.Error(err))
		}
	}, nil
}
