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

// ProductStore is the catalog collection. All quantity mutations go through
// Reserve and Restore so they stay atomic per document.
type ProductStore struct {
	col *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{col: db.Collection("products")}
}

// ProductFilter narrows catalog listings. VisibleOnly keeps only products
// buyers may see (available and not blocked). An empty Category or the
// literal "all" means no category filter.
type ProductFilter struct {
	Search      string
	Category    string
	VisibleOnly bool
}

func (f ProductFilter) query() bson.M {
	query := bson.M{}
	if f.VisibleOnly {
		query["isAvailable"] = true
		query["isBlocked"] = false
	}
	if f.Search != "" {
		regex := bson.M{"$regex": f.Search, "$options": "i"}
		query["$or"] = []bson.M{
			{"name": regex},
			{"description": regex},
			{"category": regex},
		}
	}
	if f.Category != "" && f.Category != "all" {
		query["category"] = f.Category
	}
	return query
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, product); err != nil {
		return errors.Wrap(err, "insert product")
	}
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return &product, nil
}

func (s *ProductStore) Search(ctx context.Context, filter ProductFilter, page, limit int64) ([]models.Product, int64, error) {
	query := filter.query()

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	findOptions := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find products")
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, errors.Wrap(err, "decode products")
	}
	return products, total, nil
}

func (s *ProductStore) FindByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]models.Product, error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.col.Find(ctx, bson.M{"farmer": farmerID}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find farmer products")
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode farmer products")
	}
	return products, nil
}

// IDsByFarmer resolves the id set used for the farmer order listing and the
// ownership check on status updates.
func (s *ProductStore) IDsByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.col.Find(ctx, bson.M{"farmer": farmerID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find farmer product ids")
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode farmer product ids")
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// Update applies the given field set and returns the updated document. The
// farmer field is never part of the set; ownership is checked by the caller.
func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updatedAt"] = time.Now().UTC()

	var product models.Product
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return &product, nil
}

// Reserve atomically decrements quantity by qty, guarded so the stored
// quantity can never go negative. A zero match means the stock ran short.
func (s *ProductStore) Reserve(ctx context.Context, id primitive.ObjectID, qty int) error {
	result, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"quantity": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrap(err, "reserve product quantity")
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrInsufficientStock
	}
	return nil
}

// Restore puts qty back onto the product, the inverse of Reserve.
func (s *ProductStore) Restore(ctx context.Context, id primitive.ObjectID, qty int) error {
	result, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"quantity": qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return errors.Wrap(err, "restore product quantity")
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ProductStore) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.Product, error) {
	return s.Update(ctx, id, bson.M{"isBlocked": blocked})
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ProductStore) DeleteByFarmer(ctx context.Context, farmerID primitive.ObjectID) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"farmer": farmerID}); err != nil {
		return errors.Wrap(err, "delete farmer products")
	}
	return nil
}

func (s *ProductStore) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

func (s *ProductStore) CountAvailable(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"isAvailable": true, "isBlocked": false})
}

func (s *ProductStore) CountBlocked(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"isBlocked": true})
}

func (s *ProductStore) count(ctx context.Context, query bson.M) (int64, error) {
	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	return total, nil
}

func (s *ProductStore) Recent(ctx context.Context, limit int64) ([]models.Product, error) {
	cursor, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "find recent products")
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, errors.Wrap(err, "decode recent products")
	}
	return products, nil
}
