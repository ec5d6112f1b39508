package serverutils

import (
	"errors"

	"soulscript-be/internal/pkg/apperror"
	"soulscript-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// JSON responses. Application errors map to their own status codes;
// anything else is a 500 with a generic message so internals never
// leak to clients.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.As(err); ok {
			if appErr.Err != nil && log != nil {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": appErr.Err.Error(),
				})
			}
			return ctx.Status(appErr.StatusCode()).JSON(ErrorResponse(appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		if log != nil {
			log.Error("http", "unhandled error", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
