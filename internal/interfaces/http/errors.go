package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
)

// writeError traduce errores de dominio a status + dto.ErrorResponse.
// 4xx: la petición fallará igual si se repite. 503: se puede reintentar.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	message := "error interno"

	var (
		insufficient *domain.InsufficientStockError
		alreadyVoid  *domain.AlreadyVoidError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code, message = fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.As(err, &insufficient):
		status, code, message = fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	case errors.As(err, &alreadyVoid):
		status, code, message = fiber.StatusConflict, "ALREADY_VOID", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrConflict):
		status, code, message = fiber.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status, code, message = fiber.StatusForbidden, "FORBIDDEN", err.Error()
	case errors.Is(err, domain.ErrStorage):
		status, code, message = fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "almacenamiento no disponible, intente más tarde"
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("error atendiendo petición")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
