package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academiqa-backend/internal/ai"
	"academiqa-backend/internal/config"
	"academiqa-backend/internal/logger"
	"academiqa-backend/internal/telemetry"
	"academiqa-backend/internal/vectorstore"
	"academiqa-backend/logging"
	"academiqa-backend/middleware"
	"academiqa-backend/routes"
	"academiqa-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Distributed tracing (optional)
	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("academiqa-backend", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Failed to initialize tracer", "error", err)
		} else {
			defer shutdown()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Failed to initialize metrics", "error", err)
	}

	// Connect to MongoDB. An unreachable Mongo at boot is not fatal: the
	// driver reconnects lazily, and request logging tolerates write failures.
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		if mongoClient == nil {
			log.Fatal("Failed to connect to MongoDB:", err)
		}
		logger.Warn("MongoDB not reachable at startup, continuing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Vector store
	store, err := vectorstore.Open(cfg.VectorStoreDir)
	if err != nil {
		log.Fatal("Failed to open vector store:", err)
	}
	defer store.Close()

	// AI clients
	ctx := context.Background()
	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embeddings client:", err)
	}
	llm := ai.NewOllamaClient(cfg)

	// Services
	indexer := services.NewIndexer(embedder, store)
	pdfService := services.NewPDFService(cfg, db.Collection("pdfs"), indexer)
	generator := services.NewAnswerGenerator(llm)
	queryService := services.NewQueryService(embedder, store, generator)
	recorder := logging.NewMongoRecorder(db)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Redis-backed rate limiting (optional, fails open)
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		} else {
			router.Use(middleware.RateLimitMiddleware(rdb, cfg))
		}
	}

	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupPaperRoutes(router, cfg, pdfService, recorder, metrics)
	routes.SetupQueryRoutes(router, cfg, queryService, recorder, metrics)
	routes.SetupLogRoutes(router, recorder)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
