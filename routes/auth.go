package routes

import (
	"github.com/gofiber/fiber/v2"

	userController "github.com/utkarsh-pawar/farmers-manipal/controllers/users"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
)

func AuthRoutes(app *fiber.App, auth *middlewares.Auth, uc *userController.UserController) {
	app.Post("/api/auth/register", uc.Register)
	app.Post("/api/auth/login", uc.Login)
	app.Get("/api/auth/me", auth.Authenticate, uc.Me)
}
