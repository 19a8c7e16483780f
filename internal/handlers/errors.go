package handlers

import (
	"errors"

	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the fiber.Config error handler. Errors that are not a
// *fiber.Error are logged and hidden behind a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.Error(c, fiberErr.Code, fiberErr.Message)
	}

	details := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, "unhandled_error", err, details)
	} else {
		logger.Error("unhandled_error", err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
