package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cuppa-app/backend/config"
	"github.com/cuppa-app/backend/internal/api"
	"github.com/cuppa-app/backend/internal/database"
	"github.com/cuppa-app/backend/internal/middleware"
	"github.com/cuppa-app/backend/internal/roast"
)

// Server bundles the HTTP server with its database handle and the roast
// classifier, which warms up before the listener accepts traffic.
type Server struct {
	router     *gin.Engine
	http       *http.Server
	db         *gorm.DB
	classifier *roast.Classifier
	cfg        *config.Config
}

// New builds a fully wired server: database connection, schema migrations,
// classifier warm-up and the v1 route table.
func New(cfg *config.Config) (*Server, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	classifier := roast.New()
	if err := classifier.Init(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize classifier: %w", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(middleware.CORS())

	if err := api.RegisterRoutes(router, db, classifier, cfg); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return &Server{
		router:     router,
		db:         db,
		classifier: classifier,
		cfg:        cfg,
	}, nil
}

// Start runs the HTTP listener. It blocks until the listener stops.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
