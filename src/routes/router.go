package routes

import (
	"Backend-PMS/src/controllers"
	"Backend-PMS/src/metrics"
	"Backend-PMS/src/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
)

// Handlers groups the controllers the routes dispatch to.
type Handlers struct {
	Accounts *controllers.AccountController
	Resumes  *controllers.ResumeController
	Tokens   middleware.TokenParser
	Metrics  *metrics.Metrics
}

func InitRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	// before the per-role groups so /api/students/upload-resume is not taken as a role route
	resumeRoutes(api, h.Resumes)
	authRoutes(api, h.Accounts)
	accountRoutes(api, h.Accounts, h.Tokens)

	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
