package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/utkarsh-pawar/farmers-manipal/configs"
	adminController "github.com/utkarsh-pawar/farmers-manipal/controllers/admin"
	orderController "github.com/utkarsh-pawar/farmers-manipal/controllers/orders"
	productController "github.com/utkarsh-pawar/farmers-manipal/controllers/products"
	userController "github.com/utkarsh-pawar/farmers-manipal/controllers/users"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/routes"
	"github.com/utkarsh-pawar/farmers-manipal/services"
	"github.com/utkarsh-pawar/farmers-manipal/stores"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := configs.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	ctx := context.Background()
	client, err := configs.ConnectDB(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Error("Failed to disconnect from MongoDB")
		}
	}()
	log.Info("Connected to MongoDB")

	db := client.Database(cfg.MongoDatabase)
	userStore := stores.NewUserStore(db)
	productStore := stores.NewProductStore(db)
	orderStore := stores.NewOrderStore(db)

	orderService := services.NewOrderService(productStore, orderStore)
	adminService := services.NewAdminService(userStore, productStore, orderStore)

	auth := middlewares.NewAuth(cfg.JWTSecret, userStore)

	app := fiber.New()

	routes.AuthRoutes(app, auth, userController.NewUserController(userStore, cfg))
	routes.ProductRoutes(app, auth, productController.NewProductController(productStore))
	routes.OrderRoutes(app, auth, orderController.NewOrderController(orderService))
	routes.AdminRoutes(app, auth, adminController.NewAdminController(adminService, userStore, productStore, orderStore))

	go func() {
		log.WithFields(log.Fields{"port": cfg.Port}).Info("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	killSignal := make(chan os.Signal, 1)
	signal.Notify(killSignal, os.Interrupt, syscall.SIGTERM)
	<-killSignal

	log.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("Failed to shut down server")
	}
}
