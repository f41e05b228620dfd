package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/bookhaven/library-system/docs"
	"github.com/bookhaven/library-system/internal/api/handler"
	"github.com/bookhaven/library-system/internal/api/middleware"
	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
	"github.com/bookhaven/library-system/internal/core/service"
	mongostore "github.com/bookhaven/library-system/internal/infrastructure/db/mongo"
	redisstore "github.com/bookhaven/library-system/internal/infrastructure/db/redis"
	"github.com/bookhaven/library-system/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
//
// Route protection is layered per group: Authenticate verifies the bearer
// token, RequireRole re-reads the caller's stored role against a predicate.
// Open routes (registration, catalog reads, the provider confirmation
// callback, health, metrics) skip both.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	verifier ports.TokenVerifier,
	provider service.CheckoutProvider,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("library"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	bookRepo := mongostore.NewBookRepository(db)
	orderRepo := mongostore.NewOrderRepository(db)
	paymentRepo := mongostore.NewPaymentRepository(db)
	dedup := redisstore.NewConfirmDedup(rdb)

	userService := service.NewUserService(userRepo, log)
	catalogService := service.NewCatalogService(bookRepo, log)
	orderService := service.NewOrderService(orderRepo, bookRepo, log)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, provider, dedup, log)

	userHandler := handler.NewUserHandler(userService)
	bookHandler := handler.NewBookHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService, userRepo)
	paymentHandler := handler.NewPaymentHandler(paymentService, userRepo)

	authn := middleware.Authenticate(verifier)
	adminOnly := middleware.RequireRole(userRepo, domain.IsAdmin)
	librarianOrAdmin := middleware.RequireRole(userRepo, domain.IsLibrarianOrAdmin)
	adminOrLibrarian := middleware.RequireRole(userRepo, domain.IsAdminOrLibrarian)

	v1 := e.Group("/api/v1")

	// --- Users ---
	v1.POST("/users", userHandler.Register)
	v1.GET("/users/me", userHandler.Me, authn)
	v1.GET("/users", userHandler.List, authn, adminOnly)
	v1.PATCH("/users/:id/role", userHandler.UpdateRole, authn, adminOnly)
	v1.DELETE("/users/:id", userHandler.Delete, authn, adminOnly)

	// --- Catalog ---
	v1.GET("/books", bookHandler.List)
	v1.GET("/books/:id", bookHandler.Get)
	v1.POST("/books", bookHandler.Create, authn, librarianOrAdmin)
	v1.PUT("/books/:id", bookHandler.Update, authn, librarianOrAdmin)
	v1.DELETE("/books/:id", bookHandler.Delete, authn, adminOrLibrarian)

	// --- Orders ---
	v1.POST("/orders", orderHandler.Create, authn)
	v1.GET("/orders", orderHandler.List, authn)
	v1.GET("/orders/all", orderHandler.ListAll, authn, adminOrLibrarian)
	v1.GET("/orders/:id", orderHandler.Get, authn)
	v1.DELETE("/orders/:id", orderHandler.Delete, authn, adminOnly)

	// --- Payments ---
	v1.POST("/payments/checkout", paymentHandler.Checkout, authn)
	v1.POST("/payments/confirm", paymentHandler.Confirm)
	v1.GET("/payments", paymentHandler.List, authn)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
