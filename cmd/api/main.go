package main

import (
	"context"
	"log"
	"time"

	"college-portal-api/config"
	"college-portal-api/handlers"
	"college-portal-api/importer"
	"college-portal-api/middleware"
	"college-portal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Start service")
	// .env is optional in production
	_ = godotenv.Load()

	cfg := config.Load()

	log.Println("init services")
	minioService, err := services.NewMinIOService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := minioService.EnsureBuckets(ctx); err != nil {
		log.Printf("Bucket check failed, continuing: %v", err)
	}
	cancel()

	cacheService := services.NewCacheService(cfg.CacheTTL, 2*cfg.CacheTTL, cfg.PreviewTTL)

	var extractor importer.EventExtractor
	if cfg.LLMAPIKey != "" {
		extractor = services.NewEventExtractorService(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	} else {
		log.Println("LLM_API_KEY not set, PDF calendar import disabled")
	}
	imp := importer.New(extractor)

	log.Println("init handlers")
	importHandler := handlers.NewImportHandler(imp, minioService, minioService, cacheService, cfg.UploadPathPattern, cfg.MaxUploadBytes)
	collectionHandler := handlers.NewCollectionHandler(minioService, minioService, cacheService, cfg.UploadPathPattern)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Println("init router")
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})

		handlers.RegisterRoutes(api, importHandler, collectionHandler)
	}

	log.Printf("Starting server on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
