package handlers

import (
	"errors"
	"strings"

	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CompaniesHandler struct {
	DB *gorm.DB
}

func NewCompaniesHandler(db *gorm.DB) *CompaniesHandler {
	return &CompaniesHandler{DB: db}
}

type companyRequest struct {
	Name           string                `json:"name" validate:"required,max=255"`
	URL            string                `json:"url" validate:"max=500"`
	Address        string                `json:"address" validate:"max=255"`
	City           string                `json:"city" validate:"max=120"`
	Zip            string                `json:"zip" validate:"max=20"`
	Country        string                `json:"country" validate:"max=120"`
	Phone          string                `json:"phone" validate:"max=50"`
	BudgetingMonth models.BudgetingMonth `json:"budgetingMonth" validate:"omitempty,oneof=January February March April May June July August September October November December"`
	Comment        string                `json:"comment"`
}

func (r *companyRequest) normalize() {
	for _, field := range []*string{&r.Name, &r.URL, &r.Address, &r.City, &r.Zip, &r.Country, &r.Phone, &r.Comment} {
		*field = strings.TrimSpace(*field)
	}
}

func (r *companyRequest) apply(company *models.Company) {
	company.Name = r.Name
	company.URL = r.URL
	company.Address = r.Address
	company.City = r.City
	company.Zip = r.Zip
	company.Country = r.Country
	company.Phone = r.Phone
	company.BudgetingMonth = r.BudgetingMonth
	company.Comment = r.Comment
}

func (h *CompaniesHandler) List(c *fiber.Ctx) error {
	var companies []models.Company
	if err := h.DB.WithContext(c.UserContext()).Order("name ASC").Find(&companies).Error; err != nil {
		return internalError(c, "companies_list_failed", err, "failed listing companies")
	}
	return listResponse(c, companies, searchFields[models.Company])
}

func (h *CompaniesHandler) load(c *fiber.Ctx) (*models.Company, error) {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	}

	var company models.Company
	if err := h.DB.WithContext(c.UserContext()).First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Error(c, fiber.StatusNotFound, "company not found")
		}
		return nil, internalError(c, "company_fetch_failed", err, "failed fetching company")
	}
	return &company, nil
}

func (h *CompaniesHandler) Get(c *fiber.Ctx) error {
	company, err := h.load(c)
	if company == nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, company)
}

func (h *CompaniesHandler) Create(c *fiber.Ctx) error {
	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.normalize()
	if fields := utils.ValidateStruct(req); fields != nil {
		return utils.ValidationError(c, fields)
	}

	var company models.Company
	req.apply(&company)
	if err := h.DB.WithContext(c.UserContext()).Create(&company).Error; err != nil {
		return internalError(c, "company_create_failed", err, "failed creating company")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "company_created", map[string]interface{}{
		"company_id": company.ID.String(),
		"name":       company.Name,
	})

	return utils.Success(c, fiber.StatusCreated, company)
}

func (h *CompaniesHandler) Update(c *fiber.Ctx) error {
	company, err := h.load(c)
	if company == nil {
		return err
	}

	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.normalize()
	if fields := utils.ValidateStruct(req); fields != nil {
		return utils.ValidationError(c, fields)
	}

	req.apply(company)
	if err := h.DB.WithContext(c.UserContext()).Save(company).Error; err != nil {
		return internalError(c, "company_update_failed", err, "failed updating company")
	}

	return utils.Success(c, fiber.StatusOK, company)
}

func (h *CompaniesHandler) Delete(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	}

	result := h.DB.WithContext(c.UserContext()).Delete(&models.Company{}, "id = ?", companyID)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return utils.Error(c, fiber.StatusConflict, "company still has contacts, people or collaborations")
		}
		return internalError(c, "company_delete_failed", result.Error, "failed deleting company")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "company not found")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "company_deleted", map[string]interface{}{
		"company_id": companyID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "company deleted"})
}

// Contacts lists the company's contacts.
func (h *CompaniesHandler) Contacts(c *fiber.Ctx) error {
	return h.contactList(c, contactsTable)
}

func (h *CompaniesHandler) People(c *fiber.Ctx) error {
	return h.contactList(c, peopleTable)
}

func (h *CompaniesHandler) contactList(c *fiber.Ctx, table string) error {
	company, err := h.load(c)
	if company == nil {
		return err
	}

	var details []models.ContactDetails
	err = h.DB.WithContext(c.UserContext()).
		Table(table).
		Where("company_id = ?", company.ID).
		Order("name ASC").
		Find(&details).Error
	if err != nil {
		return internalError(c, "company_contacts_failed", err, "failed listing contacts")
	}
	return listResponse(c, details, searchFields[models.ContactDetails])
}

func (h *CompaniesHandler) Collaborations(c *fiber.Ctx) error {
	company, err := h.load(c)
	if company == nil {
		return err
	}
	return listCollaborations(c, h.DB.Where("company_id = ?", company.ID))
}
