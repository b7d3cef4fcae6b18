package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/qa-session-api/internal/client"
	"github.com/yourusername/qa-session-api/internal/config"
	"github.com/yourusername/qa-session-api/internal/handler"
	"github.com/yourusername/qa-session-api/internal/middleware"
	redisRepo "github.com/yourusername/qa-session-api/internal/repository/redis"
	"github.com/yourusername/qa-session-api/internal/service"
	"github.com/yourusername/qa-session-api/internal/service/session"
	ws "github.com/yourusername/qa-session-api/internal/websocket"
	"github.com/yourusername/qa-session-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем HTTP-клиенты удалённых бэкендов
	backendTimeout := time.Duration(cfg.Backends.RequestTimeoutSec) * time.Second
	qaClient := client.NewQAClient(cfg.Backends.ContentBaseURL, backendTimeout)
	resultsClient := client.NewResultsClient(cfg.Backends.ResultsBaseURL, backendTimeout)

	// Инициализируем сервисы
	quizService := service.NewQuizService(qaClient, cacheRepo, time.Duration(cfg.Session.QuizCacheTTLMin)*time.Minute)
	resultService := service.NewResultService(resultsClient)

	// Брокер событий: транслирует тики часов и смену статуса сессии в WebSocket
	broker := ws.NewBroker(0)

	sessionConfig := session.DefaultConfig()
	sessionConfig.SecondsPerQuestion = cfg.Session.SecondsPerQuestion
	sessionConfig.SubmitTimeout = time.Duration(cfg.Session.SubmitTimeoutSec) * time.Second
	if cfg.Session.ResultRetentionMin > 0 {
		sessionConfig.ResultRetention = time.Duration(cfg.Session.ResultRetentionMin) * time.Minute
	}

	sessionManager := session.NewManager(sessionConfig, &session.Dependencies{
		Quizzes: quizService,
		Results: resultService,
		Events:  broker,
	})

	// Разрешённые origin'ы считаются один раз: CORS middleware и проверка
	// origin при WebSocket-апгрейде должны принимать один и тот же список
	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	// Инициализируем обработчики
	sessionHandler := handler.NewSessionHandler(sessionManager)
	quizHandler := handler.NewQuizHandler(quizService, resultService)
	wsHandler := handler.NewWSHandler(broker, sessionManager, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSigningKey)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(authMiddleware.RequireLearner())
	{
		// Сессии прохождения теста
		sessions := api.Group("/sessions")
		sessions.Use(rateLimiter.Limit(middleware.DefaultSessionRateLimitConfig()))
		{
			sessions.POST("", sessionHandler.CreateSession)

			// Группа маршрутов, требующих sessionID
			sessionWithID := sessions.Group("/:id")
			sessionWithID.Use(middleware.ExtractStringParam("id", "sessionID"))
			{
				sessionWithID.POST("/start", sessionHandler.StartSession)
				sessionWithID.GET("", sessionHandler.GetSession)
				sessionWithID.PUT("/answer", sessionHandler.SelectAnswer)
				sessionWithID.PUT("/navigate", sessionHandler.Navigate)
				sessionWithID.POST("/submit", rateLimiter.Limit(middleware.SubmitRateLimitConfig()), sessionHandler.SubmitSession)
				sessionWithID.GET("/result", sessionHandler.GetResult)
				sessionWithID.DELETE("", sessionHandler.AbandonSession)
			}
		}

		// Тесты: история попыток
		quizzes := api.Group("/quizzes")
		{
			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractStringParam("id", "quizID"))
			{
				quizWithID.GET("/history", quizHandler.GetHistory)
			}
		}

		// Статьи: список тестов
		articles := api.Group("/articles")
		{
			articleWithID := articles.Group("/:id")
			articleWithID.Use(middleware.ExtractStringParam("id", "articleID"))
			{
				articleWithID.GET("/quizzes", quizHandler.GetQuizzesByArticle)
			}
		}
	}

	// WebSocket маршрут: живые события сессии
	router.GET("/ws/sessions/:id",
		authMiddleware.RequireLearner(),
		middleware.ExtractStringParam("id", "sessionID"),
		wsHandler.StreamSession,
	)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// После получения сигнала SIGINT или SIGTERM останавливаем часы сессий и сервер
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем горутины часов активных сессий
	sessionManager.Shutdown()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
