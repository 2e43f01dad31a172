package server

import (
	"fmt"
	"net/http"
	"time"

	"storefront-catalog/internal/config"
	"storefront-catalog/internal/database"
	custommiddleware "storefront-catalog/internal/middleware"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/service"
	"storefront-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewRouter wires repositories, services and handlers into a chi router.
// redisClient may be nil, in which case requests are not rate limited.
func NewRouter(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger, cfg.Server.IsProduction()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsProduction()))
	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "catalog_rate_limit",
		}, logger))
	}

	router.NotFound(custommiddleware.NotFoundHandler)
	router.MethodNotAllowed(custommiddleware.NotFoundHandler)

	router.Get("/health", transport.HealthHandler(db, logger))

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.Pool())
	categoryRepo := repository.NewCategoryRepository(db.Pool())

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, cfg.Catalog.SearchDefaultLimit, cfg.Catalog.SearchMaxLimit, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService)

	// Register routes
	productHandler.RegisterRoutes(router,
		custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
		custommiddleware.RequireAdmin(logger),
	)
	categoryHandler.RegisterRoutes(router)

	return router
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, db, redisClient),
			IdleTimeout:  time.Minute,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		s.db.Close()
	}

	s.logger.Sync()
	return nil
}
