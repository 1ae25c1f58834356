package routes

import (
	"accounthub/internal/adapters/http/handlers"
	"accounthub/internal/adapters/http/middleware"
	"accounthub/internal/adapters/persistence/repositories"
	"accounthub/internal/config"
	"accounthub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, refreshTokenRepo, cfg)
	kycService := services.NewKYCService(userRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	kycHandler := handlers.NewKYCHandler(kycService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.AuthMiddleware(authService)

	// User routes
	users := app.Group("/api/users")
	users.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	users.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	users.Post("/refresh", authHandler.RefreshToken)
	users.Post("/logout", authHandler.Logout)
	users.Get("/profile", requireAuth, userHandler.GetProfile)
	users.Patch("/profile", requireAuth, userHandler.UpdateProfile)
	users.Delete("/account", requireAuth, userHandler.DeleteAccount)

	// KYC routes
	kyc := app.Group("/api/kyc", requireAuth)
	kyc.Post("/submit", kycHandler.Submit)
	kyc.Get("/status", kycHandler.Status)
	kyc.Post("/verify", middleware.AdminOnly(), kycHandler.Verify)
	kyc.Get("/pending", middleware.AdminOnly(), kycHandler.ListPending)
}
