package stores

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

// OrderStore is the order ledger. Documents are append-only except for the
// status field; orders are removed only by admin hard-delete.
type OrderStore struct {
	col *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{col: db.Collection("orders")}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, order); err != nil {
		return errors.Wrap(err, "insert order")
	}
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}
	return &order, nil
}

func (s *OrderStore) FindByBuyer(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"buyer": buyerID})
}

// FindByProductIDs returns orders with at least one line item referencing
// one of the given products, newest first.
func (s *OrderStore) FindByProductIDs(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	return s.find(ctx, bson.M{"products.product": bson.M{"$in": productIDs}})
}

func (s *OrderStore) find(ctx context.Context, query bson.M) ([]models.Order, error) {
	cursor, err := s.col.Find(ctx, query, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, errors.Wrap(err, "find orders")
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

// List pages through all orders, optionally filtered by status ("" or "all"
// means no filter). Admin listing only.
func (s *OrderStore) List(ctx context.Context, status string, page, limit int64) ([]models.Order, int64, error) {
	query := bson.M{}
	if status != "" && status != "all" {
		query["status"] = status
	}

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	findOptions := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find orders")
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, errors.Wrap(err, "decode orders")
	}
	return orders, total, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	return &order, nil
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *OrderStore) DeleteByBuyer(ctx context.Context, buyerID primitive.ObjectID) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"buyer": buyerID}); err != nil {
		return errors.Wrap(err, "delete buyer orders")
	}
	return nil
}

func (s *OrderStore) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

func (s *OrderStore) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	return s.count(ctx, bson.M{"status": status})
}

func (s *OrderStore) count(ctx context.Context, query bson.M) (int64, error) {
	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return total, nil
}

// RevenueDelivered sums totalAmount across delivered orders.
func (s *OrderStore) RevenueDelivered(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.OrderStatusDelivered}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errors.Wrap(err, "aggregate revenue")
	}

	var results []struct {
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, errors.Wrap(err, "decode revenue")
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Revenue, nil
}

func (s *OrderStore) Recent(ctx context.Context, limit int64) ([]models.Order, error) {
	cursor, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "find recent orders")
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode recent orders")
	}
	return orders, nil
}
