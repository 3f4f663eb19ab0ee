package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cuppa-app/backend/internal/models"
	"github.com/cuppa-app/backend/internal/service"
)

// TestEnv bundles the database and services handler tests run against.
type TestEnv struct {
	DB       *gorm.DB
	Auth     *service.AuthService
	Tastings *service.TastingService
	Exports  *service.ExportService
}

// stubPDFConverter stands in for wkhtmltopdf, which is not installed on CI.
type stubPDFConverter struct{}

func (stubPDFConverter) Convert(_ context.Context, _ string) ([]byte, error) {
	return []byte("%PDF-1.4\nstub"), nil
}

// SetupTestEnv creates an in-memory database with migrated schema and the
// service stack wired onto it.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	// A unique DSN per test keeps shared-cache in-memory databases isolated.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Device{}, &models.TastingRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	tastings := service.NewTastingService(db)
	store, err := service.NewLocalArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create artifact store: %v", err)
	}

	return &TestEnv{
		DB:       db,
		Auth:     service.NewAuthService(db, "test-secret"),
		Tastings: tastings,
		Exports:  service.NewExportService(tastings, stubPDFConverter{}, store),
	}
}

// SetupTestRouter builds a router with the full v1 route table, minus the
// Redis-backed rate limiters.
func SetupTestRouter(t *testing.T) (*gin.Engine, *TestEnv) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := SetupTestEnv(t)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	NewAuthHandler(env.Auth).RegisterRoutes(v1)
	NewTastingHandler(env.Tastings, env.Exports, env.Auth, nil).RegisterRoutes(v1)
	NewBrewingHandler(service.NewBrewingService()).RegisterRoutes(v1)

	return router, env
}

// RegisterTestDevice registers a device and returns a valid bearer token.
func RegisterTestDevice(t *testing.T, env *TestEnv) string {
	t.Helper()

	_, token, err := env.Auth.Register(context.Background(), fmt.Sprintf("test-device-%s", t.Name()), "test-secret")
	if err != nil {
		t.Fatalf("failed to register test device: %v", err)
	}
	return token
}

// PerformRequest is a helper function to make HTTP requests in tests
func PerformRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}
