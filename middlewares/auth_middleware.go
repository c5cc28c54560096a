package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/models"
	"github.com/utkarsh-pawar/farmers-manipal/responses"
)

const currentUserKey = "currentUser"

// UserResolver loads the caller's record so every request sees the current
// blocked flag and role, not the ones baked into the token.
type UserResolver interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Auth struct {
	secret string
	users  UserResolver
}

func NewAuth(secret string, users UserResolver) *Auth {
	return &Auth{secret: secret, users: users}
}

// Authenticate extracts the bearer token, resolves the user, and rejects
// blocked users before any role check runs.
func (a *Auth) Authenticate(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return unauthorized(c, "No auth token, access denied")
	}

	bearerToken := strings.Split(authHeader, " ")
	if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
		return unauthorized(c, "Invalid authorization header format")
	}

	userId, err := ParseToken(a.secret, bearerToken[1])
	if err != nil {
		return unauthorized(c, "Token verification failed, access denied")
	}

	userObjectID, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return unauthorized(c, "Token verification failed, access denied")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	user, err := a.users.FindByID(ctx, userObjectID)
	if err != nil {
		return unauthorized(c, "Token verification failed, access denied")
	}

	if user.IsBlocked {
		return c.Status(fiber.StatusForbidden).JSON(responses.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Account is blocked",
		})
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// RequireRole gates a route to the given roles. Must run after Authenticate.
func (a *Auth) RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c, "No auth token, access denied")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(responses.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Access denied for this role",
		})
	}
}

// CurrentUser returns the authenticated caller set by Authenticate.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(responses.ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: message,
	})
}
