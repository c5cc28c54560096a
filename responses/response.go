package responses

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/utkarsh-pawar/farmers-manipal/apperrors"
)

type ApiResponse struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Result  *fiber.Map `json:"result"`
}

func OK(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Result:  result,
	})
}

func Created(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(ApiResponse{
		Status:  fiber.StatusCreated,
		Message: message,
		Result:  result,
	})
}

// Error renders an error from the taxonomy. Unexpected errors are logged
// with full detail and surfaced as a generic message.
func Error(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	message := err.Error()

	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		message = ve.Message
	}

	if status == fiber.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("unexpected error")
		message = "Server error"
	}

	return c.Status(status).JSON(ApiResponse{
		Status:  status,
		Message: message,
		Result:  nil,
	})
}
