package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Profile    *handlers.ProfileHandler
	Generation *handlers.GenerationHandler
	Resume     *handlers.ResumeHandler
	Admin      *handlers.AdminHandler
}

// Setup mounts the API. generationLimit guards the endpoints that cost model tokens; pass a
// nil limiter for per-process limiting.
func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, generationLimit middleware.Limiter) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(middleware.IPRateLimit(60, time.Minute))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Health.Config)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.IPRateLimit(10, time.Minute), h.Auth.Register)
	auth.Post("/login", middleware.IPRateLimit(10, time.Minute), h.Auth.Login)
	auth.Post("/refresh", middleware.IPRateLimit(10, time.Minute), h.Auth.Refresh)

	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Get("/auth/me", jwt, h.Auth.Me)

	api.Get("/profile", jwt, h.Profile.Get)
	api.Put("/profile", jwt, h.Profile.Update)
	api.Put("/profile/api-key", jwt, h.Profile.SaveAPIKey)
	api.Delete("/profile/api-key", jwt, h.Profile.ClearAPIKey)
	api.Post("/profile/activate", jwt, h.Profile.Activate)

	api.Get("/dashboard", jwt, h.Generation.Dashboard)

	perUser := middleware.UserRateLimit(generationLimit, cfg.GenerationRateLimit, time.Minute)
	api.Post("/generations", jwt, perUser, h.Generation.Generate)
	api.Post("/generations/manual", jwt, perUser, h.Generation.SubmitManual)
	api.Get("/generations", jwt, h.Generation.List)
	api.Get("/generations/:id", jwt, h.Generation.Get)
	api.Get("/generations/:id/resume.pdf", jwt, h.Generation.ResumePDF)

	api.Post("/resume/extract", jwt, h.Resume.Extract)

	admin := api.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Post("/activation-codes", h.Admin.IssueCodes)
}
