package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ledgerbooks/ledgerbooks-api/docs" // Swagger docs
	"github.com/ledgerbooks/ledgerbooks-api/internal/config"
	"github.com/ledgerbooks/ledgerbooks-api/internal/database"
	"github.com/ledgerbooks/ledgerbooks-api/internal/handlers"
	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/middleware"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
	"github.com/ledgerbooks/ledgerbooks-api/internal/storage"
	"github.com/ledgerbooks/ledgerbooks-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title LedgerBooks API
// @version 1.0
// @description REST API for the LedgerBooks voucher and general ledger system

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Warn if Resend email is not configured
	if cfg.ResendAPIKey == "" || cfg.FromEmail == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, store, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs, repos, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, repos, store)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				// User management
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Create)
				admin.DELETE("/users/:user_id", h.User.Delete)
				admin.PUT("/users/:user_id/toggle_status", h.User.ToggleStatus)
				admin.POST("/users/:user_id/restore", h.User.Restore)

				// Accounting period control
				admin.POST("/periods/close", h.Period.Close)
				admin.POST("/periods/reopen", h.Period.Reopen)

				// Chart of accounts maintenance
				admin.POST("/accounts", h.Account.Create)
				admin.PUT("/accounts/:account_id", h.Account.Update)
				admin.DELETE("/accounts/:account_id", h.Account.Deactivate)

				// Worker status
				admin.GET("/jobs/status", h.Job.Status)
			}

			// Accountant + admin routes (voucher lifecycle and posting)
			accounting := protected.Group("")
			accounting.Use(middleware.RequireAccountant())
			{
				accounting.POST("/vouchers", h.Voucher.Create)
				accounting.PUT("/vouchers/:voucher_id", h.Voucher.Update)
				accounting.POST("/vouchers/:voucher_id/submit", h.Voucher.Submit)
				accounting.POST("/vouchers/:voucher_id/approve", h.Voucher.Approve)
				accounting.POST("/vouchers/:voucher_id/cancel", h.Voucher.Cancel)
				accounting.POST("/vouchers/:voucher_id/post", h.Voucher.Post)
				accounting.POST("/vouchers/:voucher_id/unpost", h.Voucher.Unpost)
				accounting.POST("/vouchers/:voucher_id/void", h.Voucher.Void)
				accounting.POST("/vouchers/:voucher_id/upload_attachment", h.Voucher.UploadAttachment)

				// Audit trail
				accounting.GET("/audits", h.Audit.Index)
			}

			// Read access for all authenticated users
			protected.GET("/vouchers", h.Voucher.Index)
			protected.GET("/vouchers/:voucher_id", h.Voucher.Show)
			protected.GET("/vouchers/:voucher_id/download_attachment", h.Voucher.DownloadAttachment)
			protected.GET("/vouchers/:voucher_id/print", h.Ledger.VoucherPDF)

			protected.GET("/ledger", h.Ledger.Index)
			protected.GET("/ledger/export_csv", h.Ledger.ExportCSV)
			protected.GET("/ledger/export_xlsx", h.Ledger.ExportXLSX)
			protected.GET("/ledger/trial_balance", h.Ledger.TrialBalance)
			protected.GET("/ledger/trial_balance_csv", h.Ledger.TrialBalanceCSV)
			protected.GET("/ledger/trial_balance_xlsx", h.Ledger.TrialBalanceXLSX)
			protected.GET("/ledger/trial_balance_pdf", h.Ledger.TrialBalancePDF)

			protected.GET("/periods", h.Period.Index)
			protected.GET("/accounts", h.Account.Index)
			protected.GET("/accounts/:account_id", h.Account.Show)
			protected.GET("/sub_accounts/:kind", h.SubAccount.Index)

			// Profile access (admin or profile owner)
			protected.GET("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Show)
			protected.PUT("/users/:user_id", middleware.RequireAdminOrOwner(), h.User.Update)
			protected.PATCH("/users/:user_id/change_password", h.User.ChangePassword)

			// Notifications (users manage their own)
			// Static route first so "mark_all_as_read" is not matched as :notification_id
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.Index)
				notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
				notifications.PUT("/:notification_id", h.Notification.Update)
				notifications.DELETE("/:notification_id", h.Notification.Delete)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, repos *repository.Repositories, cfg *config.Config) {
	// Remind accountants about vouchers waiting for approval
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Sending pending approval reminders...")
		return svcs.Voucher.RemindPendingApprovals(ctx)
	})

	// Cancel drafts nobody has touched within the retention window
	staleAge := time.Duration(cfg.StaleDraftMaxAgeDays) * 24 * time.Hour
	worker.ScheduleEvery(24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Cleaning up stale drafts...")
		return svcs.Voucher.CleanupStaleDrafts(ctx, staleAge)
	})

	// Purge expired refresh tokens
	worker.ScheduleEveryImmediate(12*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Purging expired refresh tokens...")
		return repos.RefreshToken.DeleteExpired(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
