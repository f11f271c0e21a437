// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/libroapp/libro/internal/auth"
	"github.com/libroapp/libro/internal/config"
	"github.com/libroapp/libro/internal/dashboard"
	"github.com/libroapp/libro/internal/database"
	"github.com/libroapp/libro/internal/database/books"
	"github.com/libroapp/libro/internal/database/loans"
	"github.com/libroapp/libro/internal/database/users"
	"github.com/libroapp/libro/internal/database/verifications"
	"github.com/libroapp/libro/internal/email"
	http_controllers "github.com/libroapp/libro/internal/http"
	"github.com/libroapp/libro/internal/library"
	"github.com/libroapp/libro/internal/scheduler"
	"github.com/libroapp/libro/internal/storage/providers/supabase"
	"github.com/libroapp/libro/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run assembles all services from configuration and serves the API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libro v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)
	verificationRepo := verifications.NewRepository(db.DB)

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	mailer, err := email.NewMailer(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	if cfg.Storage.SupabaseURL == "" {
		log.Fatalf("SUPABASE_URL must be set")
	}
	storageClient := supabase.NewClient(cfg.Storage)

	authService := auth.NewService(userRepo, verificationRepo, mailer, tokens, cfg.Auth, cfg.Verification)
	libraryService := library.NewService(db.DB, bookRepo, loanRepo, storageClient, cfg.Storage)
	dashboardService := dashboard.NewService(userRepo, bookRepo, loanRepo)

	// Task queue and cleanup scheduler
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.CleanupScheduler
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupVerificationsQueue(verificationRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Cleanup)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:         db,
		UserRepo:         userRepo,
		AuthService:      authService,
		AuthMiddleware:   auth.NewMiddleware(tokens),
		LibraryService:   libraryService,
		DashboardService: dashboardService,
		CORS:             cfg.CORS,
		BcryptCost:       cfg.Auth.BcryptCost,
		Version:          version,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
