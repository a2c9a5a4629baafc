package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-service/internal/api/http/handlers"
	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Gate     *auth.Gate
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Users    *handlers.UsersHandler
	Tours    *handlers.ToursHandler
	Reviews  *handlers.ReviewsHandler
	Bookings *handlers.BookingsHandler
	Views    *handlers.ViewsHandler
}

// RegisterRoutes wires HTTP routes. Every protected route names its checks explicitly.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	protect := cfg.Gate.Protect()
	loggedIn := cfg.Gate.IsLoggedIn()
	admin := auth.RestrictTo(domain.RoleAdmin)
	managers := auth.RestrictTo(auth.TourManagers...)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use("/js", publicAssets())

	app.Get("/", loggedIn, cfg.Views.Overview)
	app.Get("/tour/:slug", loggedIn, cfg.Views.Tour)
	app.Get("/login", loggedIn, cfg.Views.Login)
	app.Get("/signup", loggedIn, cfg.Views.Signup)
	app.Get("/me", auth.NoCache(), protect, cfg.Views.Account)
	app.Get("/my-bookings", protect, cfg.Views.MyBookings)

	api := app.Group("/api/v1")

	users := api.Group("/users")
	users.Post("/signup", cfg.Auth.Signup)
	users.Post("/login", cfg.Auth.Login)
	users.Get("/logout", cfg.Auth.Logout)
	users.Post("/forgotPassword", cfg.Auth.ForgotPassword)
	users.Patch("/resetPassword/:token", cfg.Auth.ResetPassword)
	users.Patch("/updateMyPassword", protect, cfg.Auth.UpdatePassword)
	users.Get("/me", protect, cfg.Users.Me)
	users.Patch("/updateMe", protect, cfg.Users.UpdateMe)
	users.Delete("/deleteMe", protect, cfg.Users.DeleteMe)
	users.Get("/", protect, admin, cfg.Users.List)
	users.Get("/:id", protect, admin, cfg.Users.Get)
	users.Patch("/:id", protect, admin, cfg.Users.Update)
	users.Delete("/:id", protect, admin, cfg.Users.Delete)

	tours := api.Group("/tours")
	tours.Get("/top-5-cheap", cfg.Tours.TopCheap)
	tours.Get("/", cfg.Tours.List)
	tours.Get("/:id", cfg.Tours.Get)
	tours.Post("/", protect, managers, cfg.Tours.Create)
	tours.Patch("/:id", protect, managers, cfg.Tours.Update)
	tours.Delete("/:id", protect, managers, cfg.Tours.Delete)
	tours.Get("/:tourId/reviews", protect, cfg.Reviews.List)
	tours.Post("/:tourId/reviews", protect, auth.RestrictTo(domain.RoleUser), cfg.Reviews.Create)

	reviews := api.Group("/reviews")
	reviews.Get("/", protect, cfg.Reviews.List)
	reviews.Post("/", protect, auth.RestrictTo(domain.RoleUser), cfg.Reviews.Create)
	reviews.Get("/:id", protect, cfg.Reviews.Get)
	reviews.Patch("/:id", protect, auth.RestrictTo(auth.ReviewEditors...), cfg.Reviews.Update)
	reviews.Delete("/:id", protect, auth.RestrictTo(auth.ReviewEditors...), cfg.Reviews.Delete)

	bookings := api.Group("/bookings")
	bookings.Get("/", protect, managers, cfg.Bookings.List)
	bookings.Post("/", protect, managers, cfg.Bookings.Create)
	bookings.Get("/:id", protect, managers, cfg.Bookings.Get)
	bookings.Delete("/:id", protect, managers, cfg.Bookings.Delete)

	app.Use(notFound)
}
