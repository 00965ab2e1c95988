package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kirankjolly/AI-GitHub-Repository-Issue-Scanner/internal/service"
)

// RegisterRoutes mounts every endpoint of the API on app.
func RegisterRoutes(app *fiber.App, svc service.IssueService, store Pinger) {
	app.Get("/", root)
	NewIssueHandler(svc).Register(app)
	NewHealthHandler(store).Register(app)
}

// root handles GET /
func root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "GitHub Issue Analyzer API"})
}
