package stores

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Id = primitive.NewObjectID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by email")
	}
	return &user, nil
}

// List pages through users, optionally filtered by role ("" or "all" means
// no filter). Admin listing only.
func (s *UserStore) List(ctx context.Context, role string, page, limit int64) ([]models.User, int64, error) {
	query := bson.M{}
	if role != "" && role != "all" {
		query["role"] = role
	}

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	findOptions := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find users")
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, errors.Wrap(err, "decode users")
	}
	return users, total, nil
}

func (s *UserStore) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	var user models.User
	err := s.col.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isBlocked": blocked, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "set user blocked")
	}
	return &user, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *UserStore) CountAll(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{})
}

func (s *UserStore) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.count(ctx, bson.M{"role": role})
}

func (s *UserStore) CountBlocked(ctx context.Context) (int64, error) {
	return s.count(ctx, bson.M{"isBlocked": true})
}

func (s *UserStore) count(ctx context.Context, query bson.M) (int64, error) {
	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return total, nil
}

func (s *UserStore) Recent(ctx context.Context, limit int64) ([]models.User, error) {
	cursor, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "find recent users")
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decode recent users")
	}
	return users, nil
}
