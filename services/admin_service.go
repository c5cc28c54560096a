package services

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/models"
)

type UserAdminStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	CountBlocked(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int64) ([]models.User, error)
}

type ProductAdminStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFarmer(ctx context.Context, farmerID primitive.ObjectID) error
	CountAll(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
	CountBlocked(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int64) ([]models.Product, error)
}

type OrderAdminStore interface {
	DeleteByBuyer(ctx context.Context, buyerID primitive.ObjectID) error
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	RevenueDelivered(ctx context.Context) (float64, error)
	Recent(ctx context.Context, limit int64) ([]models.Order, error)
}

// AdminService covers moderation (block/unblock, hard delete with cascade)
// and the dashboard aggregates.
type AdminService struct {
	users    UserAdminStore
	products ProductAdminStore
	orders   OrderAdminStore
}

func NewAdminService(users UserAdminStore, products ProductAdminStore, orders OrderAdminStore) *AdminService {
	return &AdminService{users: users, products: products, orders: orders}
}

// BlockUser flips a user's blocked flag. Admin accounts cannot be blocked.
func (s *AdminService) BlockUser(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return nil, errors.Wrap(apperrors.ErrForbidden, "cannot block admin users")
	}
	return s.users.SetBlocked(ctx, id, blocked)
}

func (s *AdminService) BlockProduct(ctx context.Context, id primitive.ObjectID, blocked bool) (*models.Product, error) {
	return s.products.SetBlocked(ctx, id, blocked)
}

// DeleteUser removes a user along with their dependent records: a farmer's
// products, a buyer's orders. Admin accounts cannot be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return errors.Wrap(apperrors.ErrForbidden, "cannot delete admin users")
	}

	switch user.Role {
	case models.RoleFarmer:
		if err := s.products.DeleteByFarmer(ctx, user.Id); err != nil {
			return err
		}
	case models.RoleBuyer:
		if err := s.orders.DeleteByBuyer(ctx, user.Id); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

type UserStats struct {
	Total   int64 `json:"total"`
	Farmers int64 `json:"farmers"`
	Buyers  int64 `json:"buyers"`
	Blocked int64 `json:"blocked"`
}

type ProductStats struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Blocked   int64 `json:"blocked"`
}

type OrderStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

type DashboardStatistics struct {
	Users    UserStats    `json:"users"`
	Products ProductStats `json:"products"`
	Orders   OrderStats   `json:"orders"`
	Revenue  float64      `json:"revenue"`
}

type RecentActivity struct {
	Users    []models.User    `json:"users"`
	Products []models.Product `json:"products"`
	Orders   []models.Order   `json:"orders"`
}

type DashboardReport struct {
	Statistics     DashboardStatistics `json:"statistics"`
	RecentActivity RecentActivity      `json:"recentActivity"`
}

const recentActivityLimit = 5

// Dashboard assembles the aggregate counts and the revenue sum over
// delivered orders, plus a short recent-activity feed.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardReport, error) {
	var report DashboardReport
	var err error

	if report.Statistics.Users.Total, err = s.users.CountAll(ctx); err != nil {
		return nil, err
	}
	if report.Statistics.Users.Farmers, err = s.users.CountByRole(ctx, models.RoleFarmer); err != nil {
		return nil, err
	}
	if report.Statistics.Users.Buyers, err = s.users.CountByRole(ctx, models.RoleBuyer); err != nil {
		return nil, err
	}
	if report.Statistics.Users.Blocked, err = s.users.CountBlocked(ctx); err != nil {
		return nil, err
	}

	if report.Statistics.Products.Total, err = s.products.CountAll(ctx); err != nil {
		return nil, err
	}
	if report.Statistics.Products.Available, err = s.products.CountAvailable(ctx); err != nil {
		return nil, err
	}
	if report.Statistics.Products.Blocked, err = s.products.CountBlocked(ctx); err != nil {
		return nil, err
	}

	if report.Statistics.Orders.Total, err = s.orders.CountAll(ctx); err != nil {
		return nil, err
	}
	if report.Statistics.Orders.Pending, err = s.orders.CountByStatus(ctx, models.OrderStatusPending); err != nil {
		return nil, err
	}
	if report.Statistics.Orders.Completed, err = s.orders.CountByStatus(ctx, models.OrderStatusDelivered); err != nil {
		return nil, err
	}

	if report.Statistics.Revenue, err = s.orders.RevenueDelivered(ctx); err != nil {
		return nil, err
	}

	if report.RecentActivity.Users, err = s.users.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}
	if report.RecentActivity.Products, err = s.products.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}
	if report.RecentActivity.Orders, err = s.orders.Recent(ctx, recentActivityLimit); err != nil {
		return nil, err
	}

	return &report, nil
}
