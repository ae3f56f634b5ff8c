package api

import (
	"github.com/gofiber/fiber/v2"

	"taskguardian/internal/api/handlers"
	"taskguardian/internal/auth"
	"taskguardian/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler, tokens *auth.TokenManager) {
	api := app.Group("/api")

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", h.Signup)
	authRoutes.Post("/login", h.Login)

	// Task
	taskRoutes := api.Group("/task", middleware.RequireSession(tokens))
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Put("/:id", h.UpdateTaskStatus)
	taskRoutes.Delete("/:id", h.DeleteTask)
	taskRoutes.Put("/:id/assign", h.AssignTask)

	// User
	userRoutes := api.Group("/user", middleware.RequireSession(tokens))
	userRoutes.Put("/update", h.UpdateUserRole)
}
