package handlers

import (
	"errors"
	"strings"

	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pendingIDPrefix marks users added by an administrator before their first
// login; the authorization gate replaces the id with the provider subject.
const pendingIDPrefix = "pending-"

type UsersHandler struct {
	DB *gorm.DB
}

func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{DB: db}
}

func (h *UsersHandler) List(c *fiber.Ctx) error {
	var users []models.User
	if err := h.DB.WithContext(c.UserContext()).Order("full_name ASC, email ASC").Find(&users).Error; err != nil {
		return internalError(c, "users_list_failed", err, "failed listing users")
	}
	return listResponse(c, users, searchFields[models.User])
}

func (h *UsersHandler) Get(c *fiber.Ctx) error {
	var user models.User
	if err := h.DB.WithContext(c.UserContext()).First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, "user_fetch_failed", err, "failed fetching user")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

type createUserRequest struct {
	Email       string          `json:"email" validate:"required,email,max=255"`
	FullName    string          `json:"fullName" validate:"max=255"`
	Role        models.UserRole `json:"role" validate:"omitempty,oneof=Administrator ProjectResponsible ProjectTeamMember Observer"`
	Description string          `json:"description"`
}

func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = models.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Role == "" {
		req.Role = models.UserRoleObserver
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return utils.ValidationError(c, fields)
	}

	admin := middleware.GetCurrentUser(c)

	var count int64
	if err := h.DB.WithContext(c.UserContext()).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return internalError(c, "user_lookup_failed", err, "failed checking email")
	}
	if count > 0 {
		return utils.Error(c, fiber.StatusConflict, "a user with this email already exists")
	}

	addedBy := admin.ID
	user := models.User{
		ID:          pendingIDPrefix + uuid.NewString(),
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		Description: strings.TrimSpace(req.Description),
		AddedByID:   &addedBy,
	}
	if err := h.DB.WithContext(c.UserContext()).Omit("AddedBy").Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusConflict, "a user with this email already exists")
		}
		return internalError(c, "user_create_failed", err, "failed creating user")
	}

	logger.InfoWithUser(admin.ID, "user_created", map[string]interface{}{
		"target_user_id": user.ID,
		"email":          user.Email,
		"role":           string(user.Role),
	})

	return utils.Success(c, fiber.StatusCreated, user)
}

type updateUserRequest struct {
	FullName    *string          `json:"fullName" validate:"omitempty,max=255"`
	Role        *models.UserRole `json:"role" validate:"omitempty,oneof=Administrator ProjectResponsible ProjectTeamMember Observer"`
	Description *string          `json:"description"`
	IsLocked    *bool            `json:"isLocked"`
}

func (h *UsersHandler) Update(c *fiber.Ctx) error {
	userID := c.Params("id")
	admin := middleware.GetCurrentUser(c)

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return utils.ValidationError(c, fields)
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Role != nil {
		if userID == admin.ID && *req.Role != models.UserRoleAdministrator {
			return utils.Error(c, fiber.StatusBadRequest, "you cannot remove your own administrator role")
		}
		updates["role"] = *req.Role
	}
	if req.IsLocked != nil {
		if userID == admin.ID && *req.IsLocked {
			return utils.Error(c, fiber.StatusBadRequest, "you cannot lock your own account")
		}
		updates["is_locked"] = *req.IsLocked
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.WithContext(c.UserContext()).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return internalError(c, "user_update_failed", result.Error, "failed updating user")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	var user models.User
	if err := h.DB.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		return internalError(c, "user_fetch_failed", err, "failed fetching updated user")
	}

	logger.InfoWithUser(admin.ID, "user_updated", map[string]interface{}{
		"target_user_id": user.ID,
		"role":           string(user.Role),
		"is_locked":      user.IsLocked,
	})

	return utils.Success(c, fiber.StatusOK, user)
}

func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	userID := c.Params("id")
	admin := middleware.GetCurrentUser(c)
	if userID == admin.ID {
		return utils.Error(c, fiber.StatusBadRequest, "you cannot delete your own account")
	}

	result := h.DB.WithContext(c.UserContext()).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return internalError(c, "user_delete_failed", result.Error, "failed deleting user")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "user not found")
	}

	logger.InfoWithUser(admin.ID, "user_deleted", map[string]interface{}{
		"target_user_id": userID,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "user deleted"})
}
