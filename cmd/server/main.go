package main

import (
	"log"

	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/handlers"
	"claim_flow_app_go/middleware"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/jobs"
	"claim_flow_app_go/services/permissions"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[CRITICAL] Invalid configuration: %v", err)
	}

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	services.InitializeStorage(cfg)

	roles := services.NewRoleService(db.DB)
	if err := roles.Load(); err != nil {
		log.Fatalf("Failed to load roles: %v", err)
	}
	sms := services.NewSMSService(db.DB, cfg)
	handlers.InitServices(cfg, roles, sms)
	services.InitSecurityMonitor(db.DB, cfg)
	middleware.InitAssetVersions("static", middleware.StaticAssets...)

	scheduler, err := jobs.StartScheduler(db.DB, cfg, sms)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.SecureHeaders(cfg.IsProduction()))
	e.Use(middleware.CSRF(cfg))

	// Static files
	e.Static("/static", "static")

	// Public routes (no authentication required)
	e.GET("/", func(c echo.Context) error { return c.Redirect(302, "/dashboard") })
	e.GET("/login", handlers.LoginHandler)
	e.POST("/login", handlers.LoginPostHandler, middleware.LoginRateLimiter.Middleware())

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.LoadPermissions(roles))
	protected.Use(middleware.AuditContext())
	protected.Use(middleware.APIRateLimiter.Middleware())

	can := middleware.RequirePermission
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/api/me", handlers.GetCurrentUserHandler)
		protected.GET("/api/permissions/:page", handlers.GetMyPermissionsHandler)

		// Catalog
		protected.GET("/api/catalog/file-types", handlers.GetFileTypesHandler)
		protected.GET("/api/catalog/result-documents", handlers.GetResultDocumentsHandler)
		protected.GET("/api/catalog/statuses", handlers.GetStatusesHandler)

		// Notifications
		protected.GET("/notifications", handlers.GetNotificationsHandler)
		protected.POST("/notifications/:id/read", handlers.MarkNotificationReadHandler)
		protected.POST("/notifications/read-all", handlers.MarkAllNotificationsReadHandler)
		protected.GET("/api/notifications/count", handlers.GetNotificationCountHandler)

		// Dashboard
		protected.GET("/dashboard", handlers.DashboardHandler, can(permissions.PageDashboard, permissions.CapView))
		protected.GET("/api/dashboard", handlers.DashboardStatsHandler, can(permissions.PageDashboard, permissions.CapView))

		// Cases
		protected.GET("/cases", handlers.CasesPageHandler, can(permissions.PageCases, permissions.CapView))
		protected.GET("/cases/:id", handlers.CaseDetailPageHandler, can(permissions.PageCases, permissions.CapView))
		protected.GET("/api/cases", handlers.GetCasesHandler, can(permissions.PageCases, permissions.CapView))
		protected.POST("/api/cases", handlers.CreateCaseHandler, can(permissions.PageCases, permissions.CapCreate))
		protected.GET("/api/cases/:id", handlers.GetCaseHandler, can(permissions.PageCases, permissions.CapView))
		protected.PUT("/api/cases/:id", handlers.UpdateCaseHandler, can(permissions.PageCases, permissions.CapEdit))
		protected.POST("/api/cases/:id/status", handlers.ChangeCaseStatusHandler, can(permissions.PageCases, permissions.CapEdit))
		protected.POST("/api/cases/:id/close", handlers.CloseCaseHandler, can(permissions.PageCases, permissions.CapEdit))
		protected.GET("/api/cases/:id/checklist", handlers.GetCaseChecklistHandler, can(permissions.PageCases, permissions.CapView))

		// Documents
		protected.GET("/api/cases/:id/documents", handlers.GetCaseDocumentsHandler, can(permissions.PageDocuments, permissions.CapView))
		protected.POST("/api/cases/:id/documents", handlers.UploadCaseDocumentHandler, can(permissions.PageDocuments, permissions.CapCreate))
		protected.GET("/api/cases/:id/documents/:docId/download", handlers.DownloadCaseDocumentHandler, can(permissions.PageDocuments, permissions.CapView))
		protected.DELETE("/api/cases/:id/documents/:docId", handlers.DeleteCaseDocumentHandler, can(permissions.PageDocuments, permissions.CapDelete))

		// Exports
		registerExportRoutes(protected, can(permissions.PageExports, permissions.CapExport), middleware.ExportRateLimiter.Middleware())

		// Reports
		protected.GET("/api/reports/status-counts", handlers.DashboardStatsHandler, can(permissions.PageReports, permissions.CapView))
		protected.GET("/api/reports/cases.xlsx", handlers.ExportCasesXLSXHandler(permissions.PageReports),
			can(permissions.PageReports, permissions.CapExport), middleware.ExportRateLimiter.Middleware())

		// SMS
		protected.GET("/api/sms", handlers.GetSMSHandler, can(permissions.PageSMS, permissions.CapView))
		protected.POST("/api/cases/:id/sms", handlers.SendCaseSMSHandler,
			can(permissions.PageSMS, permissions.CapCreate), middleware.SMSRateLimiter.Middleware())

		// Dealers
		protected.GET("/api/dealers", handlers.GetDealersHandler, can(permissions.PageDealers, permissions.CapView))
		protected.POST("/api/dealers", handlers.CreateDealerHandler, can(permissions.PageDealers, permissions.CapCreate))
		protected.GET("/api/dealers/:id", handlers.GetDealerHandler, can(permissions.PageDealers, permissions.CapView))
		protected.PUT("/api/dealers/:id", handlers.UpdateDealerHandler, can(permissions.PageDealers, permissions.CapEdit))
		protected.POST("/api/dealers/:id/activate", handlers.SetDealerActiveHandler(true), can(permissions.PageDealers, permissions.CapEdit))
		protected.POST("/api/dealers/:id/deactivate", handlers.SetDealerActiveHandler(false), can(permissions.PageDealers, permissions.CapEdit))

		// Users
		protected.GET("/api/users", handlers.GetUsersHandler, can(permissions.PageUsers, permissions.CapView))
		protected.POST("/api/users", handlers.CreateUserHandler, can(permissions.PageUsers, permissions.CapCreate))
		protected.GET("/api/users/:id", handlers.GetUserHandler, can(permissions.PageUsers, permissions.CapView))
		protected.PUT("/api/users/:id", handlers.UpdateUserHandler, can(permissions.PageUsers, permissions.CapEdit))
		protected.POST("/api/users/:id/activate", handlers.SetUserActiveHandler(true), can(permissions.PageUsers, permissions.CapEdit))
		protected.POST("/api/users/:id/deactivate", handlers.SetUserActiveHandler(false), can(permissions.PageUsers, permissions.CapEdit))

		// Roles
		protected.GET("/api/roles", handlers.GetRolesHandler, can(permissions.PageRoleManagement, permissions.CapView))
		protected.POST("/api/roles", handlers.CreateRoleHandler, can(permissions.PageRoleManagement, permissions.CapCreate))
		protected.PUT("/api/roles/:id", handlers.RenameRoleHandler, can(permissions.PageRoleManagement, permissions.CapEdit))
		protected.DELETE("/api/roles/:id", handlers.DeleteRoleHandler, can(permissions.PageRoleManagement, permissions.CapDelete))
		protected.PUT("/api/roles/:id/permissions", handlers.SetRolePermissionsHandler, can(permissions.PageRoleManagement, permissions.CapEdit))

		// Audit logs
		protected.GET("/api/audit-logs", handlers.GetAuditLogsHandler, can(permissions.PageAuditLogs, permissions.CapView))
		protected.GET("/api/audit-logs/:type/:id", handlers.GetResourceHistoryHandler, can(permissions.PageAuditLogs, permissions.CapView))
		protected.GET("/api/security/alerts", handlers.GetSecurityAlertsHandler, can(permissions.PageAuditLogs, permissions.CapViewAll))
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// registerExportRoutes mounts the download endpoints on g. Guards go on each
// route so unmatched URLs never reach the export checks.
func registerExportRoutes(g *echo.Group, guards ...echo.MiddlewareFunc) {
	g.GET("/api/cases/:id/export.zip", handlers.ExportCaseArchiveHandler, guards...)
	g.GET("/api/exports/documents.zip", handlers.ExportBulkArchiveHandler, guards...)
	g.GET("/api/exports/cases.xlsx", handlers.ExportCasesXLSXHandler(permissions.PageExports), guards...)
	g.GET("/cases/:id/summary.pdf", handlers.CaseSummaryPDFHandler, guards...)
}
