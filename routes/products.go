package routes

import (
	"github.com/gofiber/fiber/v2"

	productController "github.com/utkarsh-pawar/farmers-manipal/controllers/products"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

func ProductRoutes(app *fiber.App, auth *middlewares.Auth, pc *productController.ProductController) {
	app.Get("/api/products", pc.GetProducts)

	app.Get("/api/products/farmer/my-products",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), pc.MyProducts)

	app.Get("/api/products/:id", pc.GetProduct)

	app.Post("/api/products",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), pc.AddProduct)

	app.Put("/api/products/:id",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), pc.UpdateProduct)

	app.Delete("/api/products/:id",
		auth.Authenticate, auth.RequireRole(models.RoleFarmer), pc.DeleteProduct)
}
