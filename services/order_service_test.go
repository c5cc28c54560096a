package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/models"
	"github.com/utkarsh-pawar/farmers-manipal/services"
)

func setup() (*services.OrderService, *mockInventory, *mockLedger) {
	inventory := &mockInventory{store: map[primitive.ObjectID]*models.Product{}}
	ledger := &mockLedger{store: map[primitive.ObjectID]*models.Order{}}
	return services.NewOrderService(inventory, ledger), inventory, ledger
}

func seedProduct(inv *mockInventory, farmer primitive.ObjectID, name string, price float64, quantity int) *models.Product {
	product := &models.Product{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: "test product",
		Price:       price,
		Quantity:    quantity,
		Category:    models.CategoryVegetables,
		Unit:        models.UnitKg,
		Farmer:      farmer,
		IsAvailable: true,
	}
	inv.store[product.ID] = product
	return product
}

func buyer() *models.User {
	return &models.User{Id: primitive.NewObjectID(), Role: models.RoleBuyer}
}

func farmer() *models.User {
	return &models.User{Id: primitive.NewObjectID(), Role: models.RoleFarmer}
}

func placeInput(buyerID primitive.ObjectID, items ...services.OrderItemRequest) services.PlaceOrderInput {
	return services.PlaceOrderInput{
		Buyer:           buyerID,
		Items:           items,
		ShippingAddress: "321 Market Street, City Center",
		PaymentMethod:   models.PaymentMethodCash,
	}
}

func TestPlaceOrder(t *testing.T) {
	svc, inv, ledger := setup()
	owner := farmer()
	product := seedProduct(inv, owner.Id, "Fresh Organic Tomatoes", 2.99, 50)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 2}))

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, b.Id, order.Buyer)
	assert.InDelta(t, 5.98, order.TotalAmount, 1e-9)

	require.Len(t, order.Products, 1)
	assert.Equal(t, product.ID, order.Products[0].Product)
	assert.Equal(t, 2, order.Products[0].Quantity)
	assert.Equal(t, 2.99, order.Products[0].Price)

	assert.Equal(t, 48, inv.store[product.ID].Quantity)
	assert.Len(t, ledger.store, 1)
}

func TestPlaceOrderTotalIsSumOfLineItems(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	tomatoes := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	apples := seedProduct(inv, owner.Id, "Apples", 1.50, 30)

	order, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: tomatoes.ID, Quantity: 3},
		services.OrderItemRequest{ProductID: apples.ID, Quantity: 4}))

	require.NoError(t, err)
	assert.InDelta(t, 3*2.99+4*1.50, order.TotalAmount, 1e-9)
}

func TestPlaceOrderSnapshotsPriceAtPlacementTime(t *testing.T) {
	svc, inv, _ := setup()
	product := seedProduct(inv, farmer().Id, "Tomatoes", 2.99, 50)

	order, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)

	// A later price change must not affect the recorded line item.
	inv.store[product.ID].Price = 9.99

	assert.Equal(t, 2.99, order.Products[0].Price)
	assert.InDelta(t, 5.98, order.TotalAmount, 1e-9)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, inv, ledger := setup()
	product := seedProduct(inv, farmer().Id, "Tomatoes", 2.99, 50)

	_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 60}))

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Equal(t, 50, inv.store[product.ID].Quantity)
	assert.Empty(t, ledger.store)
}

func TestPlaceOrderProductNotFound(t *testing.T) {
	svc, _, ledger := setup()

	_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: primitive.NewObjectID(), Quantity: 1}))

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, ledger.store)
}

func TestPlaceOrderRejectsHiddenProducts(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()

	t.Run("unavailable", func(t *testing.T) {
		product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
		product.IsAvailable = false

		_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
			services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.Equal(t, 50, inv.store[product.ID].Quantity)
	})

	t.Run("blocked", func(t *testing.T) {
		product := seedProduct(inv, owner.Id, "Apples", 1.50, 50)
		product.IsBlocked = true

		_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
			services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestPlaceOrderRestoresStockOnMidOrderFailure(t *testing.T) {
	svc, inv, ledger := setup()
	owner := farmer()
	tomatoes := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 10)
	apples := seedProduct(inv, owner.Id, "Apples", 1.50, 5)

	// First item reserves fine, second runs short; the first reservation
	// must be released and no order written.
	_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: tomatoes.ID, Quantity: 3},
		services.OrderItemRequest{ProductID: apples.ID, Quantity: 6}))

	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	assert.Equal(t, 10, inv.store[tomatoes.ID].Quantity)
	assert.Equal(t, 5, inv.store[apples.ID].Quantity)
	assert.Empty(t, ledger.store)
}

func TestPlaceOrderRestoresStockWhenInsertFails(t *testing.T) {
	svc, inv, ledger := setup()
	product := seedProduct(inv, farmer().Id, "Tomatoes", 2.99, 10)
	ledger.insertErr = errors.New("write failed")

	_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 3}))

	require.Error(t, err)
	assert.Equal(t, 10, inv.store[product.ID].Quantity)
	assert.Empty(t, ledger.store)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, inv, _ := setup()
	product := seedProduct(inv, farmer().Id, "Tomatoes", 2.99, 50)
	b := buyer()

	cases := []struct {
		name  string
		input services.PlaceOrderInput
	}{
		{"empty items", placeInput(b.Id)},
		{"zero quantity", placeInput(b.Id, services.OrderItemRequest{ProductID: product.ID, Quantity: 0})},
		{
			"short shipping address",
			services.PlaceOrderInput{
				Buyer:           b.Id,
				Items:           []services.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
				ShippingAddress: "   short  ",
				PaymentMethod:   models.PaymentMethodCash,
			},
		},
		{
			"invalid payment method",
			services.PlaceOrderInput{
				Buyer:           b.Id,
				Items:           []services.OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
				ShippingAddress: "321 Market Street, City Center",
				PaymentMethod:   models.PaymentMethod("bitcoin"),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tc.input)
			var ve *apperrors.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, 50, inv.store[product.ID].Quantity)
		})
	}
}

func TestUpdateStatusAdvancesChain(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		updated, err := svc.UpdateStatus(context.Background(), order.ID, owner, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	// Delivered orders can no longer be cancelled by the buyer.
	_, err = svc.Cancel(context.Background(), order.ID, b)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 48, inv.store[product.ID].Quantity)
}

func TestUpdateStatusRejectsSkipsAndBackwardMoves(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)

	order, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	// pending -> shipped skips confirmed.
	_, err = svc.UpdateStatus(context.Background(), order.ID, owner, models.OrderStatusShipped)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), order.ID, owner, models.OrderStatusConfirmed)
	require.NoError(t, err)

	// confirmed -> delivered skips shipped.
	_, err = svc.UpdateStatus(context.Background(), order.ID, owner, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// Backward targets are not valid update statuses at all.
	_, err = svc.UpdateStatus(context.Background(), order.ID, owner, models.OrderStatusPending)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateStatusRequiresOwningFarmer(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	stranger := farmer()
	product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	seedProduct(inv, stranger.Id, "Carrots", 0.99, 20)

	order, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, stranger, models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateStatusOrderNotFound(t *testing.T) {
	svc, _, _ := setup()

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID(), farmer(), models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelRestoresStock(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	tomatoes := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	apples := seedProduct(inv, owner.Id, "Apples", 1.50, 30)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: tomatoes.ID, Quantity: 5},
		services.OrderItemRequest{ProductID: apples.ID, Quantity: 10}))
	require.NoError(t, err)
	require.Equal(t, 45, inv.store[tomatoes.ID].Quantity)
	require.Equal(t, 20, inv.store[apples.ID].Quantity)

	cancelled, err := svc.Cancel(context.Background(), order.ID, b)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 50, inv.store[tomatoes.ID].Quantity)
	assert.Equal(t, 30, inv.store[apples.ID].Quantity)
}

func TestCancelOnlyByOrderBuyer(t *testing.T) {
	svc, inv, _ := setup()
	product := seedProduct(inv, farmer().Id, "Tomatoes", 2.99, 50)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, buyer())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, 49, inv.store[product.ID].Quantity)
}

func TestCancelNonPendingOrderChangesNothing(t *testing.T) {
	svc, inv, ledger := setup()
	owner := farmer()
	product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 2}))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, owner, models.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, b)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, 48, inv.store[product.ID].Quantity)
	assert.Equal(t, models.OrderStatusConfirmed, ledger.store[order.ID].Status)
}

func TestGetOrderAuthorization(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	product := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	b := buyer()

	order, err := svc.PlaceOrder(context.Background(), placeInput(b.Id,
		services.OrderItemRequest{ProductID: product.ID, Quantity: 1}))
	require.NoError(t, err)

	t.Run("buyer sees own order", func(t *testing.T) {
		got, err := svc.GetOrder(context.Background(), order.ID, b)
		require.NoError(t, err)
		assert.Equal(t, order.ID, got.ID)
	})

	t.Run("other buyer is rejected", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), order.ID, buyer())
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("owning farmer sees order", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), order.ID, owner)
		require.NoError(t, err)
	})

	t.Run("unrelated farmer is rejected", func(t *testing.T) {
		_, err := svc.GetOrder(context.Background(), order.ID, farmer())
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin sees any order", func(t *testing.T) {
		admin := &models.User{Id: primitive.NewObjectID(), Role: models.RoleAdmin}
		_, err := svc.GetOrder(context.Background(), order.ID, admin)
		require.NoError(t, err)
	})
}

func TestListFarmerOrders(t *testing.T) {
	svc, inv, _ := setup()
	owner := farmer()
	other := farmer()
	tomatoes := seedProduct(inv, owner.Id, "Tomatoes", 2.99, 50)
	carrots := seedProduct(inv, other.Id, "Carrots", 0.99, 20)

	_, err := svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: tomatoes.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), placeInput(buyer().Id,
		services.OrderItemRequest{ProductID: carrots.ID, Quantity: 1}))
	require.NoError(t, err)

	orders, err := svc.ListFarmerOrders(context.Background(), owner.Id)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, tomatoes.ID, orders[0].Products[0].Product)

	t.Run("farmer without products", func(t *testing.T) {
		orders, err := svc.ListFarmerOrders(context.Background(), farmer().Id)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

type mockInventory struct {
	store map[primitive.ObjectID]*models.Product
}

func (m *mockInventory) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if p, ok := m.store[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockInventory) IDsByFarmer(_ context.Context, farmerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for id, p := range m.store {
		if p.Farmer == farmerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockInventory) Reserve(_ context.Context, id primitive.ObjectID, qty int) error {
	p, ok := m.store[id]
	if !ok || p.Quantity < qty {
		return apperrors.ErrInsufficientStock
	}
	p.Quantity -= qty
	return nil
}

func (m *mockInventory) Restore(_ context.Context, id primitive.ObjectID, qty int) error {
	p, ok := m.store[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	p.Quantity += qty
	return nil
}

type mockLedger struct {
	store     map[primitive.ObjectID]*models.Order
	insertErr error
}

func (m *mockLedger) Insert(_ context.Context, order *models.Order) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	order.ID = primitive.NewObjectID()
	m.store[order.ID] = order
	return nil
}

func (m *mockLedger) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	if o, ok := m.store[id]; ok {
		clone := *o
		return &clone, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockLedger) FindByBuyer(_ context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range m.store {
		if o.Buyer == buyerID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockLedger) FindByProductIDs(_ context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range m.store {
		if o.Contains(productIDs) {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockLedger) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	o, ok := m.store[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	o.Status = status
	clone := *o
	return &clone, nil
}
