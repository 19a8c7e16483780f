package handlers

import (
	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/preferences"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type PreferencesHandler struct {
	Store *preferences.Store
}

func NewPreferencesHandler(store *preferences.Store) *PreferencesHandler {
	return &PreferencesHandler{Store: store}
}

type preferencesResponse struct {
	Table       preferences.TableID          `json:"table"`
	Columns     []preferences.Column         `json:"columns"`
	Preferences preferences.TablePreferences `json:"preferences"`
}

func tableConfig(c *fiber.Ctx) (preferences.TableConfig, bool) {
	return preferences.Lookup(preferences.TableID(c.Params("table")))
}

func (h *PreferencesHandler) respond(c *fiber.Ctx, cfg preferences.TableConfig, prefs preferences.TablePreferences) error {
	return utils.Success(c, fiber.StatusOK, preferencesResponse{
		Table:       cfg.ID,
		Columns:     cfg.Columns,
		Preferences: prefs,
	})
}

func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	cfg, ok := tableConfig(c)
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, "unknown table")
	}
	user := middleware.GetCurrentUser(c)

	prefs := h.Store.Get(c.UserContext(), user.ID, cfg.ID, cfg.Defaults())
	return h.respond(c, cfg, prefs)
}

func (h *PreferencesHandler) Put(c *fiber.Ctx) error {
	cfg, ok := tableConfig(c)
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, "unknown table")
	}
	user := middleware.GetCurrentUser(c)

	var req preferences.TablePreferences
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	prefs, fields := cfg.Normalize(req)
	if fields != nil {
		return utils.ValidationError(c, fields)
	}
	if prefs.SortField == "" {
		prefs.SortField = cfg.DefaultSort
	}

	if err := h.Store.Set(c.UserContext(), user.ID, cfg.ID, prefs); err != nil {
		return internalError(c, "preferences_save_failed", err, "failed saving preferences")
	}
	return h.respond(c, cfg, prefs)
}

type toggleSortRequest struct {
	Field string `json:"field" validate:"required"`
}

func (h *PreferencesHandler) ToggleSort(c *fiber.Ctx) error {
	cfg, ok := tableConfig(c)
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, "unknown table")
	}
	user := middleware.GetCurrentUser(c)

	var req toggleSortRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return utils.ValidationError(c, fields)
	}

	current := h.Store.Get(c.UserContext(), user.ID, cfg.ID, cfg.Defaults())
	next, fields := cfg.Normalize(preferences.ToggleSort(current, req.Field))
	if fields != nil {
		return utils.ValidationError(c, fields)
	}

	if err := h.Store.Set(c.UserContext(), user.ID, cfg.ID, next); err != nil {
		return internalError(c, "preferences_save_failed", err, "failed saving preferences")
	}
	return h.respond(c, cfg, next)
}

func (h *PreferencesHandler) Reset(c *fiber.Ctx) error {
	cfg, ok := tableConfig(c)
	if !ok {
		return utils.Error(c, fiber.StatusNotFound, "unknown table")
	}
	user := middleware.GetCurrentUser(c)

	if err := h.Store.Reset(c.UserContext(), user.ID, cfg.ID); err != nil {
		return internalError(c, "preferences_reset_failed", err, "failed resetting preferences")
	}
	return h.respond(c, cfg, cfg.Defaults())
}
