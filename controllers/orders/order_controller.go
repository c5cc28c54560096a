package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
	"github.com/utkarsh-pawar/farmers-manipal/responses"
	"github.com/utkarsh-pawar/farmers-manipal/services"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type createOrderRequest struct {
	Products []struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"products"`
	ShippingAddress string               `json:"shippingAddress"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	Notes           string               `json:"notes"`
}

// CreateOrder places a new order for the calling buyer.
func (oc *OrderController) CreateOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	items := make([]services.OrderItemRequest, 0, len(req.Products))
	for _, item := range req.Products {
		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return responses.Error(c, apperrors.Validation("products", "Valid product ID is required"))
		}
		items = append(items, services.OrderItemRequest{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}

	buyer := middlewares.CurrentUser(c)
	order, err := oc.orders.PlaceOrder(ctx, services.PlaceOrderInput{
		Buyer:           buyer.Id,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "Order placed successfully", &fiber.Map{
		"order": order,
	})
}

// MyOrders lists the calling buyer's own orders, newest first.
func (oc *OrderController) MyOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	buyer := middlewares.CurrentUser(c)
	orders, err := oc.orders.ListBuyerOrders(ctx, buyer.Id)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Fetched orders", &fiber.Map{
		"orders": orders,
	})
}

// FarmerOrders lists orders containing at least one of the calling farmer's
// products.
func (oc *OrderController) FarmerOrders(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	farmer := middlewares.CurrentUser(c)
	orders, err := oc.orders.ListFarmerOrders(ctx, farmer.Id)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Fetched orders", &fiber.Map{
		"orders": orders,
	})
}

// GetOrder returns one order, subject to the caller's role and ownership.
func (oc *OrderController) GetOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid order ID format"))
	}

	order, err := oc.orders.GetOrder(ctx, id, middlewares.CurrentUser(c))
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Fetched order", &fiber.Map{
		"order": order,
	})
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateStatus advances the order lifecycle, farmer side.
func (oc *OrderController) UpdateStatus(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid order ID format"))
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	order, err := oc.orders.UpdateStatus(ctx, id, middlewares.CurrentUser(c), req.Status)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Order status updated successfully", &fiber.Map{
		"order": order,
	})
}

// CancelOrder cancels a still-pending order, buyer side, and restores the
// reserved quantities.
func (oc *OrderController) CancelOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return responses.Error(c, apperrors.Validation("id", "Invalid order ID format"))
	}

	order, err := oc.orders.Cancel(ctx, id, middlewares.CurrentUser(c))
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Order cancelled successfully", &fiber.Map{
		"order": order,
	})
}
