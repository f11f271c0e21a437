// Package http wires the REST API: public catalog and auth endpoints,
// authenticated lending endpoints and the admin surface.
package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/dashboard"
	"github.com/libroapp/libro/internal/database"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/library"
)

// RouterConfig carries every dependency the router needs. A single
// struct keeps NewRouter's signature stable as the API grows.
type RouterConfig struct {
	Database         *database.Database
	UserRepo         *users.Repository
	AuthService      *auth.Service
	AuthMiddleware   *auth.Middleware
	LibraryService   *library.Service
	DashboardService *dashboard.Service
	CORS             config.CORS
	BcryptCost       int
	Version          string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	authController := NewAuthController(cfg.AuthService)
	booksController := NewBooksController(cfg.LibraryService)
	adminBooks := NewAdminBooksController(cfg.LibraryService)
	adminUsers := NewAdminUsersController(cfg.UserRepo, cfg.BcryptCost)
	adminLoans := NewAdminLoansController(cfg.LibraryService)
	dashboardController := NewDashboardController(cfg.DashboardService)

	api := router.Group("/api")

	// Public endpoints
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/verify-email", authController.VerifyEmail)
	authGroup.POST("/resend-verification", authController.ResendVerification)

	api.GET("/books", booksController.List)
	api.GET("/books/:id", booksController.Get)

	// Authenticated endpoints
	authed := api.Group("", cfg.AuthMiddleware.RequireAuth())
	authed.GET("/auth/profile", authController.Profile)
	authed.POST("/auth/logout", authController.Logout)
	authed.POST("/books/:id/borrow", booksController.Borrow)
	authed.POST("/books/:id/return", booksController.Return)
	authed.GET("/books/borrowed", booksController.Borrowed)

	// Admin endpoints
	admin := authed.Group("/admin", cfg.AuthMiddleware.RequireAdmin())
	admin.GET("/users", adminUsers.List)
	admin.POST("/users", adminUsers.Create)
	admin.GET("/users/:id", adminUsers.Get)
	admin.PUT("/users/:id", adminUsers.Update)
	admin.DELETE("/users/:id", adminUsers.Delete)

	admin.GET("/books", adminBooks.List)
	admin.POST("/books", adminBooks.Create)
	admin.PUT("/books/:id", adminBooks.Update)
	admin.DELETE("/books/:id", adminBooks.Delete)

	admin.GET("/borrows", adminLoans.List)
	admin.POST("/borrows/:id/return", adminLoans.ForceReturn)

	admin.GET("/dashboard/stats", dashboardController.Stats)
	admin.GET("/dashboard/recent-activity", dashboardController.RecentActivity)

	return router
}
