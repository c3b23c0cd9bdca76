package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskdesk/taskdesk-api/docs"
	"github.com/taskdesk/taskdesk-api/internal/api/handler"
	"github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/core/domain"
	"github.com/taskdesk/taskdesk-api/internal/core/ports"
)

// Services are the application services the routes delegate to.
type Services struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Clients ports.ClientService
	Groups  ports.GroupService
	Tasks   ports.TaskService
	Hosting ports.HostingService
}

// Options configures NewRouter.
type Options struct {
	Services      Services
	Authenticator *middleware.Authenticator
	Health        *handler.HealthHandler
	Logger        zerolog.Logger
	Production    bool
	// EnableMetrics mounts the Prometheus middleware and /metrics. It registers
	// collectors with the default registry, so only one router per process may
	// enable it.
	EnableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Authenticate(opts.Authenticator))
	e.Use(middleware.RequestLogger(opts.Logger))
	if opts.EnableMetrics {
		e.Use(echoprometheus.NewMiddleware("taskdesk"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}
	if !opts.Production {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	requireIdentity := middleware.RequireIdentity()
	canEditClients := middleware.RequirePermission(domain.CapEditClients)
	canEditTasks := middleware.RequirePermission(domain.CapEditTasks)
	canManageUsers := middleware.RequirePermission(domain.CapManageUsers)

	v := e.Group("/api")

	// --- Health probes (no auth required) ---
	if opts.Health != nil {
		v.GET("/health", opts.Health.Health)
		v.GET("/debug", opts.Health.Debug)
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(opts.Services.Auth, handler.CookieOptions{
		Name:   opts.Authenticator.CookieName(),
		Secure: opts.Production,
	})
	auth := v.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/verify", authHandler.Verify, requireIdentity)
	auth.PUT("/password", authHandler.ChangePassword, requireIdentity)

	// --- Users ---
	userHandler := handler.NewUserHandler(opts.Services.Users)
	users := v.Group("/users")
	users.GET("", userHandler.List, requireIdentity)
	users.POST("", userHandler.Create, canManageUsers)
	users.PUT("/:id/permissions", userHandler.UpdatePermissions, canManageUsers)

	// --- Clients ---
	clientHandler := handler.NewClientHandler(opts.Services.Clients)
	clients := v.Group("/clients")
	clients.GET("", clientHandler.List, requireIdentity)
	clients.POST("", clientHandler.Create, canEditClients)
	clients.GET("/:id", clientHandler.Get, requireIdentity)
	clients.PUT("/:id", clientHandler.Update, canEditClients)
	clients.DELETE("/:id", clientHandler.Delete, canEditClients)
	clients.POST("/:id/notes", clientHandler.AddNote, canEditClients)
	clients.PUT("/:id/notes/:noteId", clientHandler.UpdateNote, canEditClients)
	clients.DELETE("/:id/notes/:noteId", clientHandler.DeleteNote, canEditClients)

	// --- Groups ---
	groupHandler := handler.NewGroupHandler(opts.Services.Groups)
	groups := v.Group("/groups")
	groups.GET("", groupHandler.List, requireIdentity)
	groups.POST("", groupHandler.Create, canEditClients)
	groups.DELETE("/:id", groupHandler.Delete, canEditClients)

	// --- Tasks ---
	taskHandler := handler.NewTaskHandler(opts.Services.Tasks)
	tasks := v.Group("/tasks")
	tasks.GET("", taskHandler.List, requireIdentity)
	tasks.POST("", taskHandler.Create, canEditTasks)
	tasks.GET("/:id", taskHandler.Get, requireIdentity)
	tasks.PUT("/:id", taskHandler.Update, canEditTasks)
	tasks.DELETE("/:id", taskHandler.Delete, canEditTasks)

	// --- Hosting ---
	hostingHandler := handler.NewHostingHandler(opts.Services.Hosting)
	hosting := v.Group("/hosting")
	hosting.GET("", hostingHandler.List, requireIdentity)
	hosting.GET("/expiring", hostingHandler.Expiring, requireIdentity)
	hosting.POST("", hostingHandler.Create, canEditClients)
	hosting.PUT("/:id", hostingHandler.Update, canEditClients)
	hosting.DELETE("/:id", hostingHandler.Delete, canEditClients)

	return e
}
