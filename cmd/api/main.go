package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vkuznets/shortlink/internal/cache"
	"github.com/vkuznets/shortlink/internal/config"
	"github.com/vkuznets/shortlink/internal/handler"
	"github.com/vkuznets/shortlink/internal/repository"
	"github.com/vkuznets/shortlink/internal/service"
	"go.uber.org/zap"
)

const hotCacheSize = 4096

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Применение миграций схемы
	if err := repository.Migrate(cfg.DB, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев
	linkRepo := repository.NewLinkRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)
	clickRepo := repository.NewClickRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(redis)

	// Кэш горячих ссылок в памяти процесса
	hotCache, err := cache.New(hotCacheSize)
	if err != nil {
		logger.Fatal("Failed to create link cache", zap.Error(err))
	}

	// Инициализация процессора кликов (Worker Pool)
	clickProcessor := service.NewClickProcessor(clickRepo, logger)
	clickProcessor.Start()
	defer clickProcessor.Stop()

	// Инициализация сервисов
	linkService := service.NewLinkService(linkRepo, cacheRepo, hotCache, clickProcessor, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.Auth.SessionTTL)

	// Настройка роутера
	router := handler.NewRouter(linkService, clickProcessor, authService, cfg.App.BaseURL, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
