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

const (
	contactsTable = "contacts"
	peopleTable   = "people"
)

// ContactsHandler serves both contacts and people; the two tables share
// one shape and differ only in name.
type ContactsHandler struct {
	DB    *gorm.DB
	Table string
	noun  string
}

func NewContactsHandler(db *gorm.DB) *ContactsHandler {
	return &ContactsHandler{DB: db, Table: contactsTable, noun: "contact"}
}

func NewPeopleHandler(db *gorm.DB) *ContactsHandler {
	return &ContactsHandler{DB: db, Table: peopleTable, noun: "person"}
}

type contactRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone" validate:"max=50"`
	CompanyID string `json:"companyId" validate:"required,uuid"`
	Function  string `json:"function" validate:"max=255"`
}

func (r *contactRequest) normalize() {
	for _, field := range []*string{&r.Name, &r.Email, &r.Phone, &r.CompanyID, &r.Function} {
		*field = strings.TrimSpace(*field)
	}
}

func (h *ContactsHandler) table(c *fiber.Ctx) *gorm.DB {
	return h.DB.WithContext(c.UserContext()).Table(h.Table)
}

func (h *ContactsHandler) List(c *fiber.Ctx) error {
	companyID, ok := parseOptionalUUID(c, "companyId")
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	}

	query := h.table(c)
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}

	var details []models.ContactDetails
	if err := query.Order("name ASC").Find(&details).Error; err != nil {
		return internalError(c, h.noun+"_list_failed", err, "failed listing "+h.Table)
	}
	return listResponse(c, details, searchFields[models.ContactDetails])
}

func (h *ContactsHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+h.noun+" id")
	}

	var details models.ContactDetails
	if err := h.table(c).Where("id = ?", id).First(&details).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, h.noun+" not found")
		}
		return internalError(c, h.noun+"_fetch_failed", err, "failed fetching "+h.noun)
	}
	return utils.Success(c, fiber.StatusOK, details)
}

// parseRequest decodes and validates the body. A nil request means the
// response has already been written.
func (h *ContactsHandler) parseRequest(c *fiber.Ctx) (*contactRequest, uuid.UUID, error) {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, uuid.Nil, utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.normalize()
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, uuid.Nil, utils.ValidationError(c, fields)
	}

	companyID := uuid.MustParse(req.CompanyID)
	var count int64
	if err := h.DB.WithContext(c.UserContext()).Model(&models.Company{}).Where("id = ?", companyID).Count(&count).Error; err != nil {
		return nil, uuid.Nil, internalError(c, h.noun+"_company_lookup_failed", err, "failed checking company")
	}
	if count == 0 {
		return nil, uuid.Nil, utils.ValidationError(c, map[string]string{"companyId": "company does not exist"})
	}
	return &req, companyID, nil
}

func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	req, companyID, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	details := models.ContactDetails{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CompanyID: companyID,
		Function:  req.Function,
	}
	if err := h.table(c).Create(&details).Error; err != nil {
		if isForeignKeyViolation(err) {
			return utils.ValidationError(c, map[string]string{"companyId": "company does not exist"})
		}
		return internalError(c, h.noun+"_create_failed", err, "failed creating "+h.noun)
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, h.noun+"_created", map[string]interface{}{
		"id":         details.ID.String(),
		"company_id": companyID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, details)
}

func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+h.noun+" id")
	}

	req, companyID, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	result := h.table(c).Where("id = ?", id).Updates(map[string]interface{}{
		"name":       req.Name,
		"email":      req.Email,
		"phone":      req.Phone,
		"company_id": companyID,
		"function":   req.Function,
	})
	if result.Error != nil {
		return internalError(c, h.noun+"_update_failed", result.Error, "failed updating "+h.noun)
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, h.noun+" not found")
	}

	var details models.ContactDetails
	if err := h.table(c).Where("id = ?", id).First(&details).Error; err != nil {
		return internalError(c, h.noun+"_fetch_failed", err, "failed fetching updated "+h.noun)
	}
	return utils.Success(c, fiber.StatusOK, details)
}

func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+h.noun+" id")
	}

	result := h.table(c).Where("id = ?", id).Delete(&models.ContactDetails{})
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return utils.Error(c, fiber.StatusConflict, h.noun+" is still referenced")
		}
		return internalError(c, h.noun+"_delete_failed", result.Error, "failed deleting "+h.noun)
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, h.noun+" not found")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, h.noun+"_deleted", map[string]interface{}{
		"id": id.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": h.noun + " deleted"})
}
