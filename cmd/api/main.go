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

	"github.com/yourusername/rhodes-guide-api/internal/config"
	"github.com/yourusername/rhodes-guide-api/internal/domain/repository"
	"github.com/yourusername/rhodes-guide-api/internal/handler"
	"github.com/yourusername/rhodes-guide-api/internal/middleware"
	"github.com/yourusername/rhodes-guide-api/internal/questionbank"
	pgRepo "github.com/yourusername/rhodes-guide-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/rhodes-guide-api/internal/repository/redis"
	"github.com/yourusername/rhodes-guide-api/internal/repository/storage"
	"github.com/yourusername/rhodes-guide-api/internal/service"
	ws "github.com/yourusername/rhodes-guide-api/internal/websocket"
	"github.com/yourusername/rhodes-guide-api/pkg/database"
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

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)

	stateStore, err := redisRepo.NewStateStore(redisClient)
	if err != nil {
		log.Printf("Failed to initialize StateStore: %v", err)
		os.Exit(1)
	}

	// Хранилище изображений: локальная папка или MinIO
	var imageStore repository.ImageStore
	switch cfg.Storage.Mode {
	case "minio":
		imageStore, err = storage.NewMinioImageStore(cfg.Storage.Minio)
	default:
		imageStore, err = storage.NewLocalImageStore(cfg.Storage.Dir)
	}
	if err != nil {
		log.Printf("Failed to initialize image store (%s): %v", cfg.Storage.Mode, err)
		os.Exit(1)
	}
	log.Printf("Image store initialized: %s", cfg.Storage.Mode)

	// Загружаем банк вопросов (сидируется при первом запуске)
	bank, err := questionbank.Load(questionRepo)
	if err != nil {
		log.Printf("Failed to load question bank: %v", err)
		os.Exit(1)
	}

	// WebSocket хаб для push-уведомлений
	hub := ws.NewHub()
	go hub.Run()
	notifier := ws.NewNotifier(hub)

	// Собираем фасад приложения и восстанавливаем состояние из Redis
	app := service.NewApp(bank, stateStore, imageStore, notifier, cfg.Quiz)
	app.Load()

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(app)
	placeHandler := handler.NewPlaceHandler(app)
	profileHandler := handler.NewProfileHandler(app)
	questionAdminHandler := handler.NewQuestionAdminHandler(questionRepo, bank)
	wsHandler := handler.NewWSHandler(hub)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8000", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Раздача сохраненных изображений при локальном хранилище
	if cfg.Storage.Mode != "minio" {
		router.Static("/images", cfg.Storage.Dir)
	}

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
	{
		// Банк вопросов
		api.GET("/questions/random", quizHandler.GetRandomQuestions)

		// Игровые сессии
		quiz := api.Group("/quiz")
		{
			quiz.POST("/sessions", quizHandler.StartSession)

			sessionWithID := quiz.Group("/sessions/:id")
			sessionWithID.Use(middleware.ExtractUUIDParam("id", "sessionID")) // Применяем middleware
			{
				sessionWithID.GET("", quizHandler.GetSession)
				sessionWithID.POST("/answers", quizHandler.SubmitAnswer)
				sessionWithID.POST("/next", quizHandler.NextQuestion)
				sessionWithID.DELETE("", quizHandler.TeardownSession)
			}
		}

		// Статистика и экономика жизней
		api.GET("/stats", quizHandler.GetStatistics)
		api.POST("/lives", quizHandler.UpdateLives)
		api.POST("/lives/convert", quizHandler.ConvertLives)
		api.POST("/lives/reset", quizHandler.ResetLives)

		// Каталог, избранное, маркеры
		api.GET("/attractions", placeHandler.GetAttractions)
		api.GET("/favorites", placeHandler.GetFavorites)
		api.POST("/favorites/toggle", placeHandler.ToggleFavorite)
		api.GET("/markers", placeHandler.GetUserMarkers)
		api.POST("/markers", placeHandler.AddUserMarker)

		// Профиль пользователя
		api.GET("/profile", profileHandler.GetProfile)
		api.PUT("/profile", profileHandler.UpdateProfile)

		// Админский импорт банка вопросов
		admin := api.Group("/admin")
		admin.Use(rateLimiter.Limit(middleware.AdminRateLimitConfig()))
		{
			admin.POST("/questions/import", questionAdminHandler.ImportQuestions)
		}
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

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

	// После получения сигнала SIGINT или SIGTERM начинаем graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Сносим активные сессии, останавливая их таймеры
	app.Sessions().Shutdown()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	// Закрываем внешние подключения
	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}

	log.Println("Server exited properly")
}
