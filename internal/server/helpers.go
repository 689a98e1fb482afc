package server

import (
	"errors"

	"messenger/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

var statusByCode = map[string]int{
	models.CodeValidation:    fiber.StatusBadRequest,
	models.CodeSelfReference: fiber.StatusBadRequest,
	models.CodeNotFound:      fiber.StatusNotFound,
	models.CodeForbidden:     fiber.StatusForbidden,
	models.CodeConflict:      fiber.StatusConflict,
	models.CodeUnauthorized:  fiber.StatusUnauthorized,
	models.CodeStore:         fiber.StatusInternalServerError,
}

// respondError writes err with the status matching its error kind.
func respondError(c *fiber.Ctx, err error) error {
	status, ok := statusByCode[models.ErrorCode(err)]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	return models.RespondWithError(c, status, err)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentLogin returns the session login set by AuthRequired.
func currentLogin(c *fiber.Ctx) string {
	login, _ := c.Locals("login").(string)
	return login
}

// parseBody decodes the JSON body into dst or writes a 400.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}
