package utils

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ValidationError reports field-level failures alongside the generic message.
func ValidationError(c *fiber.Ctx, fields map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "validation failed",
		"fields":  fields,
	})
}

// WindowMeta describes how much of a filtered list a response carries.
type WindowMeta struct {
	VisibleCount  int  `json:"visibleCount"`
	FilteredCount int  `json:"filteredCount"`
	Total         int  `json:"total"`
	BatchSize     int  `json:"batchSize"`
	HasMore       bool `json:"hasMore"`
}

func Windowed(c *fiber.Ctx, data interface{}, meta WindowMeta) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
		"window":  meta,
	})
}
