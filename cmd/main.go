package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"github.com/jackc/pgx/v5/pgxpool"

	"zaikan/internal/caching"
	"zaikan/internal/config"
	"zaikan/internal/handlers"
	"zaikan/internal/localstore"
	"zaikan/internal/middleware"
	"zaikan/internal/repositories"
	"zaikan/internal/services"
	"zaikan/pkg/database"
)

const defaultTokenTTL = 24 * time.Hour

func main() {
	ctx := context.Background()

	// Assistant tuning (optional TOML file)
	assistantCfg := config.DefaultAssistantConfig()
	if path := os.Getenv("ZAIKAN_CONFIG"); path != "" {
		loaded, err := config.LoadAssistantConfig(path)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", path, err)
		}
		assistantCfg = loaded
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret; tokens will not survive a restart")
	}

	// Storage: either the local single-file store (ZAIKAN_DATA_FILE) or
	// Postgres (DATABASE_URL). Both expose the same repository interfaces.
	var (
		pool       *pgxpool.Pool
		itemRepo   repositories.ItemRepository
		logRepo    repositories.MovementLogRepository
		ledgerRepo repositories.LedgerRepository
		chatRepo   repositories.ChatRepository
		userRepo   repositories.UserRepository
		cacheSvc   caching.CacheService
	)

	if dataFile := os.Getenv("ZAIKAN_DATA_FILE"); dataFile != "" {
		store, err := localstore.Open(dataFile)
		if err != nil {
			log.Fatalf("Failed to open data file %s: %v", dataFile, err)
		}
		log.Printf("Using local data file %s", dataFile)

		itemRepo = store
		logRepo = store
		ledgerRepo = store
		chatRepo = store.Chat()
		userRepo = store.Users()
		cacheSvc = caching.NewNoopCacheService()
	} else {
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			log.Fatal("DATABASE_URL or ZAIKAN_DATA_FILE environment variable is required")
		}

		var err error
		pool, err = database.NewPool(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		itemRepo = repositories.NewItemRepo(pool)
		logRepo = repositories.NewMovementLogRepo(pool)
		ledgerRepo = repositories.NewLedgerRepo(pool)
		chatRepo = repositories.NewChatRepo(pool)
		userRepo = repositories.NewUserRepo(pool)

		// Redis configuration
		redisAddr := os.Getenv("REDIS_ADDR")
		if redisAddr == "" {
			redisAddr = "localhost:6379"
		}
		redisDB := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			if db, err := strconv.Atoi(raw); err == nil {
				redisDB = db
			}
		}
		cacheSvc = caching.NewRedisCacheService(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "zaikan-item-images"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	imageSvc, err := services.NewMinioImageService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}
	if err := imageSvc.EnsureBucketExists(ctx); err != nil {
		log.Printf("WARN: MinIO bucket check failed, image uploads may not work: %v", err)
	}

	// Completion collaborator for the assistant
	var completer services.CompletionClient
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		completer, err = services.NewGeminiClient(ctx, apiKey, assistantCfg.Assistant)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
	} else {
		log.Printf("WARNING: GEMINI_API_KEY not set, assistant will answer with the fallback message")
		completer = services.NewDisabledCompletionClient()
	}

	// Create services
	authSvc := services.NewAuthService(jwtSecret, defaultTokenTTL)
	ledgerSvc := services.NewLedgerService(itemRepo, logRepo, ledgerRepo, cacheSvc)
	calendarSvc := services.NewCalendarService(logRepo, time.Local)
	assistantSvc := services.NewAssistantService(itemRepo, logRepo, chatRepo, completer, assistantCfg.Assistant.RecentLogCount)
	demoSvc := services.NewDemoService(ledgerRepo, cacheSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(userRepo, authSvc)
	itemHandlers := handlers.NewItemHandlers(ledgerSvc, imageSvc)
	movementHandlers := handlers.NewMovementHandlers(ledgerSvc, imageSvc)
	calendarHandlers := handlers.NewCalendarHandlers(calendarSvc)
	assistantHandlers := handlers.NewAssistantHandlers(assistantSvc)
	demoHandlers := handlers.NewDemoHandlers(demoSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, imageSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.NewJWTConfig(jwtSecret)))

	protected.GET("/me", authHandlers.Me)

	// Item routes
	protected.GET("/items", itemHandlers.ListItems)
	protected.POST("/items", itemHandlers.CreateItem)
	protected.GET("/items/:id", itemHandlers.GetItem)
	protected.PUT("/items/:id", itemHandlers.UpdateItem)
	protected.DELETE("/items/:id", itemHandlers.DeleteItem)
	protected.POST("/items/:id/image", itemHandlers.UploadItemImage)

	// Stock movement routes
	protected.POST("/items/:id/stock-in", movementHandlers.StockIn)
	protected.POST("/items/:id/stock-out", movementHandlers.StockOut)
	protected.GET("/logs", movementHandlers.ListLogs)

	// Calendar routes
	protected.GET("/calendar", calendarHandlers.Month)
	protected.GET("/calendar/day", calendarHandlers.Day)

	// Assistant routes (queries are rate limited per user)
	protected.POST("/assistant/query", assistantHandlers.Ask,
		middleware.RateLimitByUser(cacheSvc, assistantCfg.Assistant.RateLimitPerMin, time.Minute))
	protected.GET("/assistant/history", assistantHandlers.History)
	protected.DELETE("/assistant/history", assistantHandlers.ClearHistory)

	// Demo data
	protected.POST("/demo-data", demoHandlers.Seed)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
