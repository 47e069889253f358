package serverutils

import (
	"errors"

	"ai-lawmatch-be/pkg/ranking"
	"ai-lawmatch-be/pkg/triage"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain errors bubbling out of handlers to
// HTTP status codes. Handlers that already wrote a status are passed through.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, triage.ErrSessionNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, triage.ErrInvalidState):
			code = fiber.StatusConflict
		case errors.Is(err, ranking.ErrInvalidCase):
			code = fiber.StatusUnprocessableEntity
		case errors.Is(err, triage.ErrProviderTimeout),
			errors.Is(err, triage.ErrAllProvidersFailed):
			code = fiber.StatusServiceUnavailable
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
