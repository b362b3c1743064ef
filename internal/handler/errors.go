package handler

import (
	"errors"

	"go-pos-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrAccessCodeFormat):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidAccessCode):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrOrderDelivered):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
