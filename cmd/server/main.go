package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"travelsearch/internal/config"
	"travelsearch/internal/handler"
	"travelsearch/internal/notify"
	"travelsearch/internal/repository"
	"travelsearch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Travel Inventory Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Logging.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	schema, err := config.LoadSchema(cfg.Search.SchemaFile)
	if err != nil {
		log.Fatalf("Failed to load inventory schema: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Initialize OpenAI client
	var openaiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		openaiClient = service.NewOpenAIClient(&cfg.OpenAI)
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
	} else {
		log.Println("⚠️  OpenAI is disabled - intents are resolved with local heuristics only")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI extraction")
	}

	// No-results notification channels
	ctx := context.Background()
	var channels notify.Multi
	if cfg.Notify.RedisURL != "" {
		rdb, err := notify.NewRedisClient(ctx, cfg.Notify.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis notifications disabled: %v", err)
		} else {
			defer rdb.Close()
			channels = append(channels, notify.NewRedisNotifier(rdb, cfg.Notify.RedisChannel))
			log.Printf("✅ Publishing no-results events on Redis channel %s", cfg.Notify.RedisChannel)
		}
	}
	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			log.Printf("⚠️  Telegram notifications disabled: %v", err)
		} else {
			channels = append(channels, tg)
			log.Println("✅ Sending no-results alerts to Telegram")
		}
	}
	var notifier notify.Notifier
	if len(channels) > 0 {
		notifier = channels
	}

	var embedder service.QueryEmbedder
	if cfg.Audit.EmbedQueries && openaiClient.IsEnabled() {
		embedder = openaiClient
		log.Println("✅ Audit records will carry query embeddings")
	}

	// Initialize services
	auditRecorder := service.NewAuditRecorder(repo, notifier, embedder)
	searchService := service.NewSearchService(service.SearchOptions{
		Extractor:  service.NewIntentParser(openaiClient),
		Adapters:   service.NewAdapters(repo, schema, cfg.Search.PageSize),
		Normalizer: service.NewNormalizer(schema, cfg.Search.DefaultCurrency),
		Audit:      auditRecorder,
		Sessions:   service.NewSessionRegistry(),
		WidenDays:  cfg.Search.FallbackWidenDay,
	})

	log.Println("✅ Services initialized")

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(searchService)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		database := "up"
		if err := repo.Ping(pingCtx); err != nil {
			status, code, database = "degraded", http.StatusServiceUnavailable, err.Error()
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "travel-inventory-search",
			"database":   database,
			"ai_enabled": openaiClient.IsEnabled(),
			"version":    Version,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/search/stream", searchHandler.SearchStream) // Streaming search
		apiV1.POST("/intent", searchHandler.ParseIntent)         // Intent only, for follow-up questions
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// let pending audit writes finish before the pool closes
	auditRecorder.Wait()
	log.Println("✅ Server stopped")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
