package routes

import (
	"Backend-PMS/src/controllers"
	"Backend-PMS/src/middleware"
	"Backend-PMS/src/models"

	"github.com/gofiber/fiber/v2"
)

// accountRoutes กำหนด route ของแต่ละ role ใต้ /api/{students|faculty|tpo|admin}
func accountRoutes(api fiber.Router, ac *controllers.AccountController, tokens middleware.TokenParser) {
	for _, role := range models.Roles {
		group := api.Group("/" + role.PathName())

		group.Post("/register", ac.Register(role))
		group.Post("/login", ac.Login(role))
		group.Post("/forgot", ac.ForgotPassword(role))
		group.Post("/reset/:token", ac.ResetPassword(role))
		group.Post("/update", ac.Update(role))
		group.Get("/", middleware.AuthJWT(tokens), ac.List(role))
	}
}
