package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cvgate/internal/db"
	"cvgate/internal/email"
	"cvgate/internal/handlers"
	"cvgate/internal/handlers/api"
	"cvgate/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB, notifier *email.Notifier) error {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(database)

	// Initialize handlers
	adminHandler := handlers.NewAdminHandler(database, s.Cfg, notifier)
	cvRequestHandler := api.NewCVRequestHandler(database, s.Cfg)
	moderationHandler := api.NewModerationHandler(database, notifier)
	contactHandler := api.NewContactHandler(database, s.Cfg, notifier)
	consultationHandler := api.NewConsultationHandler(database, s.Cfg, notifier)
	healthHandler := api.NewHealthHandler(database)

	// Auth routes - OIDC is required for the review console.
	if s.Cfg.OIDCIssuer == "" {
		log.Fatal("OIDC_ISSUER is required. The review console must be authenticated.")
	}

	authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, database)
	if err != nil {
		return err
	}

	s.App.Get("/auth/login", authHandler.Login)
	s.App.Get("/auth/callback", authHandler.Callback)
	s.App.Get("/auth/logout", authHandler.Logout)
	s.App.Get("/login", adminHandler.LoginPage)

	// Public landing page with the request and status forms.
	s.App.Get("/", func(c fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"SiteTitle": s.Cfg.SiteTitle,
		})
	})

	// Public API routes
	s.App.Post("/api/cv-requests", cvRequestHandler.Submit)
	s.App.Get("/api/cv-requests/status", cvRequestHandler.Status)
	s.App.Post("/api/contact", contactHandler.Submit)
	s.App.Post("/api/consultations", consultationHandler.Submit)
	s.App.Get("/api/health", healthHandler.Check)

	// Review API routes (admin only, handlers return JSON 401/403)
	s.App.Get("/api/cv-requests", authMiddleware.OptionalAuth, moderationHandler.List)
	s.App.Post("/api/cv-requests/:token/approve", authMiddleware.OptionalAuth, moderationHandler.Approve)
	s.App.Post("/api/cv-requests/:token/reject", authMiddleware.OptionalAuth, moderationHandler.Reject)

	// Review console (admin only)
	s.App.Get("/admin", authMiddleware.RequireAdmin, adminHandler.Index)
	s.App.Post("/admin/cv-requests/:token/approve", authMiddleware.RequireAdmin, adminHandler.Approve)
	s.App.Post("/admin/cv-requests/:token/reject", authMiddleware.RequireAdmin, adminHandler.Reject)

	// Prometheus metrics
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}
