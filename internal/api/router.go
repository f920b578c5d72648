package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/sweetshop/sweet-shop-api/internal/api/docs"
	"github.com/sweetshop/sweet-shop-api/internal/api/handler"
	"github.com/sweetshop/sweet-shop-api/internal/api/middleware"
	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/ports"
	"github.com/sweetshop/sweet-shop-api/internal/core/service"
	"github.com/sweetshop/sweet-shop-api/internal/infrastructure/config"
	mongodb "github.com/sweetshop/sweet-shop-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sweetshop/sweet-shop-api/internal/infrastructure/db/redis"
	healthhandlers "github.com/sweetshop/sweet-shop-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// rdb may be nil, in which case the catalog cache is disabled.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	// Transport-level cap; the per-image 5MB limit is enforced in the handler.
	e.Use(echomiddleware.BodyLimit("10M"))
	e.Use(echoprometheus.NewMiddleware("sweetshop"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	sweetRepo := mongodb.NewSweetRepository(db)

	var cache ports.CatalogCache
	if rdb != nil {
		cache = redisdb.NewCatalogCache(rdb)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, 0)
	authService := service.NewAuthService(userRepo, tokens, log)
	sweetService := service.NewSweetService(sweetRepo, cache, log)

	authHandler := handler.NewAuthHandler(authService)
	sweetHandler := handler.NewSweetHandler(sweetService)

	authenticated := middleware.Auth(tokens, userRepo)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Inventory routes ---
	inventory := e.Group("/inventory", authenticated)
	inventory.GET("", sweetHandler.List)
	inventory.GET("/search", sweetHandler.Search)
	inventory.POST("", sweetHandler.Create, adminOnly)
	inventory.PUT("/:id", sweetHandler.Update, adminOnly)
	inventory.DELETE("/:id", sweetHandler.Delete, adminOnly)
	inventory.POST("/:id/purchase", sweetHandler.Purchase)
	inventory.POST("/:id/restock", sweetHandler.Restock, adminOnly)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := healthhandlers.NewHealthHandler()
	healthDepsHandler := healthhandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
