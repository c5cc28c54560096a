package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/responses"
	"github.com/utkarsh-pawar/farmers-manipal/services"
	"github.com/utkarsh-pawar/farmers-manipal/stores"
)

type AdminController struct {
	admin    *services.AdminService
	users    *stores.UserStore
	products *stores.ProductStore
	orders   *stores.OrderStore
}

func NewAdminController(admin *services.AdminService, users *stores.UserStore, products *stores.ProductStore, orders *stores.OrderStore) *AdminController {
	return &AdminController{admin: admin, users: users, products: products, orders: orders}
}

func pagination(c *fiber.Ctx) (int64, int64) {
	page, err := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if err != nil || limit < 1 {
		limit = 20
	}
	return page, limit
}

// GetUsers lists all users with an optional role filter.
func (ac *AdminController) GetUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	page, limit := pagination(c)
	users, total, err := ac.users.List(ctx, c.Query("role"), page, limit)
	if err != nil {
		return responses.Error(c, err)
	}

	totalPages := (total + limit - 1) / limit
	return responses.OK(c, "Fetched users", &fiber.Map{
		"users":       users,
		"currentPage": page,
		"totalPages":  totalPages,
		"total":       total,
	})
}

// GetProducts lists all products, blocked and hidden included, with an
// optional category filter.
func (ac *AdminController) GetProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	page, limit := pagination(c)
	filter := stores.ProductFilter{Category: c.Query("category")}

	products, total, err := ac.products.Search(ctx, filter, page, limit)
	if err != nil {
		return responses.Error(c, err)
	}

	totalPages := (total + limit - 1) / limit
	return responses.OK(c, "Fetched products", &fiber.Map{
		"products":    products,
		"currentPage": page,
		"totalPages":  totalPages,
		"total":       total,
	})
}

// GetOrders lists all orders with an optional status filter.
func (ac *AdminController) GetOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	page, limit := pagination(c)
	orders, total, err := ac.orders.List(ctx, c.Query("status"), page, limit)
	if err != nil {
		return responses.Error(c, err)
	}

	totalPages := (total + limit - 1) / limit
	return responses.OK(c, "Fetched orders", &fiber.Map{
		"orders":      orders,
		"currentPage": page,
		"totalPages":  totalPages,
		"total":       total,
	})
}

type blockRequest struct {
	IsBlocked *bool `json:"isBlocked"`
}

// BlockUser blocks or unblocks a user. Admins cannot be blocked.
func (ac *AdminController) BlockUser(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid user ID format"))
	}

	var req blockRequest
	if err := c.BodyParser(&req); err != nil || req.IsBlocked == nil {
		return responses.Error(c, apperrors.Validation("isBlocked", "isBlocked must be a boolean"))
	}

	user, err := ac.admin.BlockUser(ctx, id, *req.IsBlocked)
	if err != nil {
		return responses.Error(c, err)
	}

	message := "User unblocked successfully"
	if *req.IsBlocked {
		message = "User blocked successfully"
	}
	return responses.OK(c, message, &fiber.Map{
		"user": user,
	})
}

// BlockProduct blocks or unblocks a product.
func (ac *AdminController) BlockProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid product ID format"))
	}

	var req blockRequest
	if err := c.BodyParser(&req); err != nil || req.IsBlocked == nil {
		return responses.Error(c, apperrors.Validation("isBlocked", "isBlocked must be a boolean"))
	}

	product, err := ac.admin.BlockProduct(ctx, id, *req.IsBlocked)
	if err != nil {
		return responses.Error(c, err)
	}

	message := "Product unblocked successfully"
	if *req.IsBlocked {
		message = "Product blocked successfully"
	}
	return responses.OK(c, message, &fiber.Map{
		"product": product,
	})
}

// DeleteUser hard-deletes a user and their dependent records.
func (ac *AdminController) DeleteUser(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid user ID format"))
	}

	if err := ac.admin.DeleteUser(ctx, id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "User deleted successfully", nil)
}

// DeleteProduct hard-deletes a product.
func (ac *AdminController) DeleteProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid product ID format"))
	}

	if err := ac.admin.DeleteProduct(ctx, id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product deleted successfully", nil)
}

// Dashboard returns aggregate counts, revenue over delivered orders, and
// recent activity.
func (ac *AdminController) Dashboard(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	report, err := ac.admin.Dashboard(ctx)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Fetched dashboard", &fiber.Map{
		"statistics":     report.Statistics,
		"recentActivity": report.RecentActivity,
	})
}
