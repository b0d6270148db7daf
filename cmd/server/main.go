package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"statarb/internal/api"
	"statarb/internal/api/middleware"
	"statarb/internal/config"
	"statarb/internal/execution"
	"statarb/internal/marketdata"
	"statarb/internal/pipeline"
	"statarb/internal/repository"
	"statarb/internal/service"
	"statarb/internal/websocket"
	"statarb/pkg/ratelimit"
	"statarb/pkg/utils"
)

func main() {
	// .env опционален: в контейнере конфигурация приходит из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.InitLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	// Подключение к базе данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", utils.Err(err))
	}
	defer db.Close()

	logger.Info("connected to database", utils.String("dsn", cfg.Database.DSNWithoutPassword()))

	// Репозитории
	tickerRepo := repository.NewTickerRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	pairRepo := repository.NewSelectedPairRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	intentRepo := repository.NewIntentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// WebSocket hub для real-time обновлений
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Уведомления: персистентный журнал + трансляция подписчикам
	notificationService := service.NewNotificationService(notificationRepo, hub, logger)

	// Эмиттер ордер-намерений: граница исполнения
	emitter := execution.NewEmitter(intentRepo, hub, logger)

	// Конвейер: доступ к данным, движок, cron-планировщик
	accessor := marketdata.NewPostgresAccessor(db, logger.Logger)
	engine := pipeline.NewEngine(cfg, accessor, pairRepo, positionRepo, emitter, notificationService, logger)
	scheduler := pipeline.NewScheduler(engine, cfg.Pipeline.RunCadence, cfg.Pipeline.RunTimeout, logger)
	scheduler.SetBroadcaster(hub)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	if err := scheduler.Start(schedulerCtx); err != nil {
		logger.Fatal("failed to start scheduler", utils.Err(err))
	}

	limiter := ratelimit.NewMultiLimiter()
	limiter.Add(middleware.CategoryRead, cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
	limiter.Add(middleware.CategoryControl, cfg.Server.ControlRateLimit, cfg.Server.ControlRateBurst)

	// Сервисы API
	deps := &api.Dependencies{
		PairService:         service.NewPairService(pairRepo, intentRepo),
		PositionService:     service.NewPositionService(positionRepo),
		RunService:          service.NewRunService(scheduler),
		NotificationService: notificationService,
		TickerService:       service.NewTickerService(tickerRepo, priceRepo),
		Hub:                 hub,
		Limiter:             limiter,
		Logger:              logger,
		APIKeyHash:          cfg.Security.APIKeyHash,
	}

	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", utils.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Останавливаем cron и прерываем текущий прогон на ближайшем чекпоинте
	stopScheduler()
	scheduler.Stop()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", utils.Err(err))
	}

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
