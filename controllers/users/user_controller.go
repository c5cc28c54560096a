package controllers

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
	"github.com/utkarsh-pawar/farmers-manipal/configs"
	"github.com/utkarsh-pawar/farmers-manipal/middlewares"
	"github.com/utkarsh-pawar/farmers-manipal/models"
	"github.com/utkarsh-pawar/farmers-manipal/responses"
	"github.com/utkarsh-pawar/farmers-manipal/stores"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserController struct {
	users *stores.UserStore
	cfg   *configs.Config
}

func NewUserController(users *stores.UserStore, cfg *configs.Config) *UserController {
	return &UserController{users: users, cfg: cfg}
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone"`
	Address  string      `json:"address"`
}

// Register creates a farmer or buyer account. Admin accounts are seeded,
// never self-registered.
func (uc *UserController) Register(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(req.Name) < 2 {
		return responses.Error(c, apperrors.Validation("name", "Name must be at least 2 characters"))
	}
	if !emailRegex.MatchString(req.Email) {
		return responses.Error(c, apperrors.Validation("email", "Invalid email address"))
	}
	if utf8.RuneCountInString(req.Password) < 8 {
		return responses.Error(c, apperrors.Validation("password", "Password must be at least 8 characters"))
	}
	if req.Role != models.RoleFarmer && req.Role != models.RoleBuyer {
		return responses.Error(c, apperrors.Validation("role", "Role must be farmer or buyer"))
	}

	if _, err := uc.users.FindByEmail(ctx, req.Email); err == nil {
		return responses.Error(c, apperrors.Validation("email", "Email is already registered"))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return responses.Error(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return responses.Error(c, errors.Wrap(err, "hash password"))
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return responses.Error(c, err)
	}

	token, err := middlewares.GenerateToken(uc.cfg.JWTSecret, user, uc.cfg.TokenTTL)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.Created(c, "User registered successfully", &fiber.Map{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (uc *UserController) Login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return responses.Error(c, apperrors.Validation("body", "Invalid request format"))
	}

	user, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return responses.Error(c, apperrors.Validation("email", "Invalid email or password"))
		}
		return responses.Error(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return responses.Error(c, apperrors.Validation("password", "Invalid email or password"))
	}

	if user.IsBlocked {
		return responses.Error(c, errors.Wrap(apperrors.ErrForbidden, "account is blocked"))
	}

	token, err := middlewares.GenerateToken(uc.cfg.JWTSecret, user, uc.cfg.TokenTTL)
	if err != nil {
		return responses.Error(c, err)
	}

	return responses.OK(c, "Logged in successfully", &fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated caller's profile.
func (uc *UserController) Me(c *fiber.Ctx) error {
	user := middlewares.CurrentUser(c)
	return responses.OK(c, "Fetched profile", &fiber.Map{
		"user": user,
	})
}
