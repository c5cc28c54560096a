package routes

import (
	"github.com/gofiber/fiber/v2"

	adminController "github.com/utkarsh-pawar/farmers-manipal/controllers/admin"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

func AdminRoutes(app *fiber.App, auth *middlewares.Auth, ac *adminController.AdminController) {
	admin := app.Group("/api/admin", auth.Authenticate, auth.RequireRole(models.RoleAdmin))

	admin.Get("/users", ac.GetUsers)
	admin.Get("/products", ac.GetProducts)
	admin.Get("/orders", ac.GetOrders)
	admin.Patch("/users/:id/block", ac.BlockUser)
	admin.Patch("/products/:id/block", ac.BlockProduct)
	admin.Delete("/users/:id", ac.DeleteUser)
	admin.Delete("/products/:id", ac.DeleteProduct)
	admin.Get("/dashboard", ac.Dashboard)
}
