// Package services holds the business logic that sequences store operations.
// The order lifecycle lives here: placement with inventory reservation,
// status transitions, and cancellation with inventory restoration.
package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

// ProductInventory is the slice of the catalog store the order lifecycle
// needs: lookups, the farmer ownership id set, and the two atomic quantity
// moves.
type ProductInventory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	IDsByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]primitive.ObjectID, error)
	Reserve(ctx context.Context, id primitive.ObjectID, qty int) error
	Restore(ctx context.Context, id primitive.ObjectID, qty int) error
}

// OrderLedger is the slice of the order store the lifecycle needs.
type OrderLedger interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error)
	FindByProductIDs(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}

type OrderService struct {
	products ProductInventory
	orders   OrderLedger
}

func NewOrderService(products ProductInventory, orders OrderLedger) *OrderService {
	return &OrderService{products: products, orders: orders}
}

type OrderItemRequest struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type PlaceOrderInput struct {
	Buyer           primitive.ObjectID
	Items           []OrderItemRequest
	ShippingAddress string
	PaymentMethod   models.PaymentMethod
	Notes           string
}

func (in *PlaceOrderInput) validate() error {
	if len(in.Items) == 0 {
		return apperrors.Validation("products", "At least one product is required")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return apperrors.Validation("quantity", "Quantity must be at least 1")
		}
	}
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if len(in.ShippingAddress) < 10 {
		return apperrors.Validation("shippingAddress", "Shipping address must be at least 10 characters long")
	}
	if !in.PaymentMethod.Valid() {
		return apperrors.Validation("paymentMethod", "Invalid payment method")
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return nil
}

// PlaceOrder validates each requested line item in order, reserves its
// quantity with an atomic guarded decrement, and persists the order only
// after every reservation succeeded. Any failure releases every quantity
// already reserved in this request, so a failed placement leaves product
// stock exactly as it was and writes no order.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var reserved []models.OrderItem
	for _, item := range in.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			s.release(ctx, reserved)
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, errors.Wrapf(apperrors.ErrNotFound, "product %s", item.ProductID.Hex())
			}
			return nil, err
		}

		if !product.Purchasable() {
			s.release(ctx, reserved)
			return nil, errors.Wrapf(apperrors.ErrUnavailable, "product %s", product.Name)
		}

		if err := s.products.Reserve(ctx, product.ID, item.Quantity); err != nil {
			s.release(ctx, reserved)
			if errors.Is(err, apperrors.ErrInsufficientStock) {
				return nil, errors.Wrapf(apperrors.ErrInsufficientStock, "product %s", product.Name)
			}
			return nil, err
		}

		reserved = append(reserved, models.OrderItem{
			Product:  product.ID,
			Quantity: item.Quantity,
			Price:    product.Price,
		})
	}

	order := &models.Order{
		Buyer:           in.Buyer,
		Products:        reserved,
		Status:          models.OrderStatusPending,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		Notes:           in.Notes,
	}
	order.RecalculateTotal()

	if err := s.orders.Insert(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}
	return order, nil
}

// release puts already-reserved quantities back after a failed placement.
func (s *OrderService) release(ctx context.Context, reserved []models.OrderItem) {
	for _, item := range reserved {
		if err := s.products.Restore(ctx, item.Product, item.Quantity); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"product":  item.Product.Hex(),
				"quantity": item.Quantity,
			}).Error("failed to release reserved stock")
		}
	}
}

// UpdateStatus advances an order along the lifecycle chain. Only a farmer
// owning at least one of the order's products may advance it, and only to
// confirmed, shipped, or delivered in sequence.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, caller *models.User, target models.OrderStatus) (*models.Order, error) {
	switch target {
	case models.OrderStatusConfirmed, models.OrderStatusShipped, models.OrderStatusDelivered:
	default:
		return nil, apperrors.Validation("status", "Invalid status")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ownedIDs, err := s.products.IDsByFarmer(ctx, caller.Id)
	if err != nil {
		return nil, err
	}
	if !order.Contains(ownedIDs) {
		return nil, errors.Wrap(apperrors.ErrForbidden, "not authorized to update this order")
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, errors.Wrapf(apperrors.ErrInvalidTransition, "%s to %s", order.Status, target)
	}

	return s.orders.UpdateStatus(ctx, orderID, target)
}

// Cancel lets the buyer who placed a still-pending order cancel it. Every
// line item's quantity goes back onto its product.
func (s *OrderService) Cancel(ctx context.Context, orderID primitive.ObjectID, caller *models.User) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Buyer != caller.Id {
		return nil, errors.Wrap(apperrors.ErrForbidden, "not authorized to cancel this order")
	}

	if order.Status != models.OrderStatusPending {
		return nil, errors.Wrap(apperrors.ErrInvalidTransition, "order cannot be cancelled at this stage")
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, models.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}

	for _, item := range order.Products {
		if err := s.products.Restore(ctx, item.Product, item.Quantity); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"order":    orderID.Hex(),
				"product":  item.Product.Hex(),
				"quantity": item.Quantity,
			}).Error("failed to restore stock on cancellation")
		}
	}
	return updated, nil
}

// GetOrder returns one order, restricted to its buyer, a farmer owning at
// least one of its products, or an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID primitive.ObjectID, caller *models.User) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch caller.Role {
	case models.RoleAdmin:
		return order, nil
	case models.RoleBuyer:
		if order.Buyer != caller.Id {
			return nil, errors.Wrap(apperrors.ErrForbidden, "not authorized to view this order")
		}
		return order, nil
	case models.RoleFarmer:
		ownedIDs, err := s.products.IDsByFarmer(ctx, caller.Id)
		if err != nil {
			return nil, err
		}
		if !order.Contains(ownedIDs) {
			return nil, errors.Wrap(apperrors.ErrForbidden, "not authorized to view this order")
		}
		return order, nil
	}
	return nil, apperrors.ErrForbidden
}

func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.FindByBuyer(ctx, buyerID)
}

// ListFarmerOrders resolves the farmer's product id set, then returns the
// orders whose line items intersect it.
func (s *OrderService) ListFarmerOrders(ctx context.Context, farmerID primitive.ObjectID) ([]models.Order, error) {
	ownedIDs, err := s.products.IDsByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if len(ownedIDs) == 0 {
		return []models.Order{}, nil
	}
	return s.orders.FindByProductIDs(ctx, ownedIDs)
}
