package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"statarb/internal/api/handlers"
	"statarb/internal/api/middleware"
	"statarb/internal/service"
	"statarb/internal/websocket"
	"statarb/pkg/ratelimit"
	"statarb/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	PairService         service.PairServiceInterface
	PositionService     service.PositionServiceInterface
	RunService          service.RunServiceInterface
	NotificationService service.NotificationServiceInterface
	TickerService       service.TickerServiceInterface

	Hub     *websocket.Hub
	Limiter *ratelimit.MultiLimiter
	Logger  *utils.Logger

	// bcrypt-хеш API ключа; пустое значение отключает аутентификацию
	APIKeyHash string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /pairs/
//	│   ├── GET / - активный набор пар
//	│   ├── GET /{key} - пара по ключу
//	│   └── GET /{key}/intents - намерения по паре
//	├── /positions/
//	│   ├── GET / - последние позиции
//	│   ├── GET /open - открытые позиции
//	│   └── GET /{id} - позиция по id
//	├── /signals/
//	│   └── GET / - сигналы последнего прогона с риск-вердиктами
//	├── /runs/
//	│   ├── POST / - запустить прогон вручную
//	│   ├── GET /status - состояние FSM и итог последнего прогона
//	│   └── GET /history - история прогонов
//	├── /intents/
//	│   └── GET / - журнал ордер-намерений
//	├── /notifications/
//	│   ├── GET / - журнал уведомлений
//	│   └── DELETE / - очистка старых записей
//	└── /tickers/
//	    ├── GET / - каталог тикеров
//	    ├── POST / - добавить тикер
//	    ├── PATCH /{ticker} - включить/выключить тикер
//	    ├── GET /{ticker}/coverage - покрытие истории цен
//	    └── GET /{ticker}/price - последняя цена
//
// /ws/stream - WebSocket real-time обновлений
// /metrics  - Prometheus метрики
// /health   - health check
//
// Middleware: Recovery -> Logging -> CORS для всех маршрутов,
// RateLimit + APIKeyAuth только для /api/v1.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	if deps.Limiter != nil {
		api.Use(middleware.RateLimit(deps.Limiter))
	}
	api.Use(middleware.APIKeyAuth(deps.APIKeyHash))

	// Pair routes
	if deps.PairService != nil {
		pairHandler := handlers.NewPairHandler(deps.PairService)
		api.HandleFunc("/pairs", pairHandler.GetPairs).Methods("GET")
		api.HandleFunc("/pairs/{key}", pairHandler.GetPair).Methods("GET")
		api.HandleFunc("/pairs/{key}/intents", pairHandler.GetPairIntents).Methods("GET")

		intentHandler := handlers.NewIntentHandler(deps.PairService)
		api.HandleFunc("/intents", intentHandler.GetIntents).Methods("GET")
	}

	// Position routes
	if deps.PositionService != nil {
		positionHandler := handlers.NewPositionHandler(deps.PositionService)
		api.HandleFunc("/positions", positionHandler.GetPositions).Methods("GET")
		api.HandleFunc("/positions/open", positionHandler.GetOpenPositions).Methods("GET")
		api.HandleFunc("/positions/{id:[0-9]+}", positionHandler.GetPosition).Methods("GET")
	}

	// Run + signal routes
	if deps.RunService != nil {
		runHandler := handlers.NewRunHandler(deps.RunService)
		api.HandleFunc("/runs", runHandler.TriggerRun).Methods("POST")
		api.HandleFunc("/runs/status", runHandler.GetStatus).Methods("GET")
		api.HandleFunc("/runs/history", runHandler.GetHistory).Methods("GET")

		signalHandler := handlers.NewSignalHandler(deps.RunService)
		api.HandleFunc("/signals", signalHandler.GetSignals).Methods("GET")
	}

	// Notification routes
	if deps.NotificationService != nil {
		notificationHandler := handlers.NewNotificationHandler(deps.NotificationService)
		api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		api.HandleFunc("/notifications", notificationHandler.CleanupNotifications).Methods("DELETE")
	}

	// Ticker routes
	if deps.TickerService != nil {
		tickerHandler := handlers.NewTickerHandler(deps.TickerService)
		api.HandleFunc("/tickers", tickerHandler.GetTickers).Methods("GET")
		api.HandleFunc("/tickers", tickerHandler.AddTicker).Methods("POST")
		api.HandleFunc("/tickers/{ticker}", tickerHandler.SetTickerActive).Methods("PATCH")
		api.HandleFunc("/tickers/{ticker}/coverage", tickerHandler.GetCoverage).Methods("GET")
		api.HandleFunc("/tickers/{ticker}/price", tickerHandler.GetLatestPrice).Methods("GET")
	}

	// WebSocket route - вне /api/v1: браузерный клиент не шлёт заголовки
	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
