package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cuppa-app/backend/config"
	"github.com/cuppa-app/backend/internal/database"
	"github.com/cuppa-app/backend/internal/middleware"
	"github.com/cuppa-app/backend/internal/roast"
	"github.com/cuppa-app/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Cuppa API is running",
		"version": "v1.0.0",
	})
}

// RegisterRoutes wires services, rate limiters and handlers onto the router.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, classifier *roast.Classifier, cfg *config.Config) error {
	router.GET("/health", HealthCheck)
	router.GET("/api/health", HealthCheck)

	// Rate limiting is best-effort: without Redis the endpoints still work,
	// just unthrottled.
	var scanLimiter, exportLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Warning: Redis unavailable, rate limiting disabled: %v", err)
	} else {
		scanLimiter = middleware.NewScanRateLimiter(redisClient)
		exportLimiter = middleware.NewExportRateLimiter(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	tastingService := service.NewTastingService(db)

	converter := service.NewWkhtmltopdfConverter(cfg.WkhtmltopdfPath)
	store, err := newArtifactStore(cfg)
	if err != nil {
		return err
	}
	exportService := service.NewExportService(tastingService, converter, store)

	v1 := router.Group("/api/v1")

	NewAuthHandler(authService).RegisterRoutes(v1)
	NewScanHandler(classifier, authService, scanLimiter).RegisterRoutes(v1)
	NewTastingHandler(tastingService, exportService, authService, exportLimiter).RegisterRoutes(v1)
	NewBrewingHandler(service.NewBrewingService()).RegisterRoutes(v1)

	return nil
}

func newArtifactStore(cfg *config.Config) (service.ArtifactStore, error) {
	if cfg.ExportStorage == "s3" {
		s3Config, err := config.NewS3Config(context.Background())
		if err != nil {
			return nil, err
		}
		return service.NewS3ArtifactStore(s3Config), nil
	}
	return service.NewLocalArtifactStore(cfg.ExportDir)
}
