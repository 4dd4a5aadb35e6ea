package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
)

// scopedBranch resuelve la sucursal objetivo de la petición.
// Sin sucursal explícita se usa la del token. Solo admin puede operar sobre otra sucursal.
func scopedBranch(c *fiber.Ctx, explicit string) (string, error) {
	own := GetBranchID(c)
	if explicit == "" || explicit == own {
		if own == "" {
			return "", domain.NewValidation("branch_id", "es obligatorio")
		}
		return own, nil
	}
	if GetRole(c) != RoleAdmin {
		return "", domain.ErrForbidden
	}
	return explicit, nil
}

// RequireBranchScope valida ?branch_id= contra la sucursal del token. Usar DESPUÉS de AuthMiddleware.
//
//   - 403 Forbidden → sucursal ajena y el rol no es admin.
//   - 400 → ni query ni token traen sucursal.
func RequireBranchScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := scopedBranch(c, c.Query("branch_id")); err != nil {
			if errors.Is(err, domain.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Code:    "BRANCH_FORBIDDEN",
					Message: "no tiene acceso a la sucursal solicitada",
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "VALIDATION",
				Message: err.Error(),
			})
		}
		return c.Next()
	}
}
