package routes

import (
	"github.com/gofiber/fiber/v2"

	orderController "github.com/utkarsh-pawar/farmers-manipal/controllers/orders"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

func OrderRoutes(app *fiber.App, auth *middlewares.Auth, oc *orderController.OrderController) {
	app.Post("/api/orders",
		auth.Authenticate, auth.RequireRole(models.RoleBuyer), oc.CreateOrder)

	app.Get("/api/orders/buyer/my-orders",
		auth.Authenticate, auth.RequireRole(models.RoleBuyer), oc.MyOrders)

	app.Get("/api/orders/farmer/my-orders",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), oc.FarmerOrders)

	app.Get("/api/orders/:id", auth.Authenticate, oc.GetOrder)

	app.Patch("/api/orders/:id/status",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), oc.UpdateStatus)

	app.Patch("/api/orders/:id/cancel",
		auth.Authenticate, auth.RequireRole(models.RoleBuyer), oc.CancelOrder)
}
