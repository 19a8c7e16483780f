package handlers

import (
	"errors"
	"strings"

	"github.com/collabtrack/server/internal/listview"
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxBatchSize = 200

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// parseOptionalUUID reads an optional id query parameter. ok is false when
// the parameter is present but malformed.
func parseOptionalUUID(c *fiber.Ctx, key string) (id *uuid.UUID, ok bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// internalError logs err with the acting user and answers with a generic 500.
func internalError(c *fiber.Ctx, action string, err error, message string) error {
	details := map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.ErrorWithUser(user.ID, action, err, details)
	} else {
		logger.Error(action, err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, message)
}

// listResponse filters items by ?search= and reveals batches until at least
// ?visible= rows are included.
func listResponse[T any](c *fiber.Ctx, items []T, fields func(T) []string) error {
	if items == nil {
		items = []T{}
	}

	batch := c.QueryInt("batch", listview.DefaultBatchSize)
	if batch > maxBatchSize {
		batch = maxBatchSize
	}

	window := listview.NewWindow(items, fields, batch)
	window.SetQuery(c.Query("search"))
	window.LoadUntil(c.QueryInt("visible", 0))

	return utils.Windowed(c, window.Visible(), utils.WindowMeta{
		VisibleCount:  window.VisibleCount(),
		FilteredCount: len(window.Filtered()),
		Total:         window.Total(),
		BatchSize:     window.BatchSize(),
		HasMore:       window.HasMore(),
	})
}

func searchFields[T listview.Searchable](item T) []string {
	return item.SearchFields()
}
