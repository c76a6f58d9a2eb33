package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/toronto-opendata/auth-service/internal/api/handler"
	"github.com/toronto-opendata/auth-service/internal/api/middleware"
	"github.com/toronto-opendata/auth-service/internal/core/ports"
	"github.com/toronto-opendata/auth-service/internal/core/service"
	mongostore "github.com/toronto-opendata/auth-service/internal/infrastructure/db/mongo"
	redisstore "github.com/toronto-opendata/auth-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The token service and audit publisher are injected: token configuration is
// validated at startup, and the audit dispatcher owns its own worker
// lifecycle.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	tokens ports.TokenService,
	audit ports.AuditPublisher,
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
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	roleRepo := mongostore.NewRoleRepository(db)
	permRepo := mongostore.NewPermissionRepository(db)

	resolver := service.NewAuthorityResolver(roleRepo, permRepo)
	throttle := redisstore.NewLoginThrottle(rdb)
	authService := service.NewAuthService(userRepo, roleRepo, tokens, resolver, throttle, audit, log)
	userService := service.NewUserService(userRepo, roleRepo, log)
	roleService := service.NewRoleService(roleRepo, permRepo, userRepo, log)
	permService := service.NewPermissionService(permRepo, roleRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	permHandler := handler.NewPermissionHandler(permService)

	authenticate := middleware.Authenticate(tokens, userRepo, resolver)
	adminOnly := middleware.RequireRole("ADMIN")

	// --- Auth routes (no credential required) ---
	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// --- User management ---
	users := e.Group("/api/users", authenticate)
	users.GET("/me", userHandler.Me, middleware.RequireAuthenticated())
	users.GET("", userHandler.List, adminOnly)
	users.GET("/:id", userHandler.Get, middleware.RequireRole("ADMIN", "USER"))
	users.PUT("/:id", userHandler.Update, adminOnly)
	users.POST("/:id/password", userHandler.ChangePassword, middleware.RequireAuthenticated())
	users.PUT("/:id/enabled", userHandler.SetEnabled, adminOnly)
	users.PUT("/:id/locked", userHandler.SetLocked, adminOnly)
	users.POST("/:id/roles/:roleId", userHandler.AssignRole, adminOnly)
	users.DELETE("/:id/roles/:roleId", userHandler.RemoveRole, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Role management (admin only) ---
	roles := e.Group("/api/roles", authenticate, adminOnly)
	roles.GET("", roleHandler.List)
	roles.GET("/:id", roleHandler.Get)
	roles.GET("/name/:name", roleHandler.GetByName)
	roles.POST("", roleHandler.Create)
	roles.PUT("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)
	roles.POST("/:id/permissions/:permissionId", roleHandler.AssignPermission)
	roles.DELETE("/:id/permissions/:permissionId", roleHandler.RemovePermission)
	roles.GET("/:id/permissions", roleHandler.Permissions)

	// --- Permission management (admin only) ---
	perms := e.Group("/api/permissions", authenticate, adminOnly)
	perms.GET("", permHandler.List)
	perms.GET("/:id", permHandler.Get)
	perms.GET("/resource/:resource", permHandler.ByResource)
	perms.GET("/action/:action", permHandler.ByAction)
	perms.GET("/resource/:resource/action/:action", permHandler.ByResourceAndAction)
	perms.GET("/exists", permHandler.Exists)
	perms.POST("", permHandler.Create)
	perms.PUT("/:id", permHandler.Update)
	perms.DELETE("/:id", permHandler.Delete)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
