package authRoutes

import (
	authController "classroom/controllers/auth"
	authValidator "classroom/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth fiber.Handler, ctl *authController.AuthController) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), ctl.Signup)
	authGroup.Post("/login", authValidator.Login(), ctl.Login)
	authGroup.Put("/change/password", authValidator.ChangePassword(), auth, ctl.ChangePassword)
}
