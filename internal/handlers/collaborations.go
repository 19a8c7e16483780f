package handlers

import (
	"errors"
	"sort"
	"strings"

	"github.com/collabtrack/server/internal/middleware"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"github.com/collabtrack/server/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CollaborationsHandler struct {
	DB *gorm.DB
}

func NewCollaborationsHandler(db *gorm.DB) *CollaborationsHandler {
	return &CollaborationsHandler{DB: db}
}

// collaborationView adds the derived status fields to a collaboration.
type collaborationView struct {
	models.Collaboration
	Status        string `json:"status"`
	StatusColor   string `json:"statusColor"`
	StatusRank    int    `json:"statusRank"`
	PriorityRank  int    `json:"priorityRank"`
	PriorityLabel string `json:"priorityLabel"`
}

func newCollaborationView(collab models.Collaboration) collaborationView {
	return collaborationView{
		Collaboration: collab,
		Status:        collab.StatusText(),
		StatusColor:   collab.StatusColor(),
		StatusRank:    collab.StatusRank(),
		PriorityRank:  models.PriorityRank(collab.Priority),
		PriorityLabel: models.PriorityLabel(collab.Priority),
	}
}

func collaborationSearchFields(v collaborationView) []string {
	return v.Collaboration.SearchFields()
}

func relatedName[T any](related *T, name func(*T) string) string {
	if related == nil {
		return ""
	}
	return name(related)
}

var collaborationSorters = map[string]func(a, b *collaborationView) int{
	"status":   func(a, b *collaborationView) int { return a.StatusRank - b.StatusRank },
	"priority": func(a, b *collaborationView) int { return a.PriorityRank - b.PriorityRank },
	"amount":   func(a, b *collaborationView) int { return compareFloat(a.Amount, b.Amount) },
	"responsible": func(a, b *collaborationView) int {
		return strings.Compare(strings.ToLower(a.Responsible), strings.ToLower(b.Responsible))
	},
	"type": func(a, b *collaborationView) int {
		return strings.Compare(string(a.Type), string(b.Type))
	},
	"updatedAt": func(a, b *collaborationView) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	},
	"company": func(a, b *collaborationView) int {
		return strings.Compare(
			strings.ToLower(relatedName(a.Company, func(c *models.Company) string { return c.Name })),
			strings.ToLower(relatedName(b.Company, func(c *models.Company) string { return c.Name })),
		)
	},
	"project": func(a, b *collaborationView) int {
		return strings.Compare(
			strings.ToLower(relatedName(a.Project, func(p *models.Project) string { return p.Name })),
			strings.ToLower(relatedName(b.Project, func(p *models.Project) string { return p.Name })),
		)
	},
}

// compareFloat orders missing amounts before any recorded amount.
func compareFloat(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

// sortCollaborations orders views by field and direction. Unknown fields
// leave the storage order untouched.
func sortCollaborations(views []collaborationView, field, direction string) bool {
	compare, ok := collaborationSorters[field]
	if !ok {
		return false
	}
	desc := strings.EqualFold(direction, "desc")
	sort.SliceStable(views, func(i, j int) bool {
		if desc {
			return compare(&views[i], &views[j]) > 0
		}
		return compare(&views[i], &views[j]) < 0
	})
	return true
}

// listCollaborations loads the collaborations matched by scope with their
// company, project and person, then sorts and windows them.
func listCollaborations(c *fiber.Ctx, scope *gorm.DB) error {
	var collaborations []models.Collaboration
	err := scope.WithContext(c.UserContext()).
		Preload("Company").
		Preload("Project").
		Preload("Person").
		Order("updated_at DESC").
		Find(&collaborations).Error
	if err != nil {
		return internalError(c, "collaborations_list_failed", err, "failed listing collaborations")
	}

	views := make([]collaborationView, len(collaborations))
	for i, collab := range collaborations {
		views[i] = newCollaborationView(collab)
	}

	if field := c.Query("sort"); field != "" {
		if !sortCollaborations(views, field, c.Query("direction", "asc")) {
			return utils.Error(c, fiber.StatusBadRequest, "unsupported sort field")
		}
	}

	return listResponse(c, views, collaborationSearchFields)
}

func (h *CollaborationsHandler) List(c *fiber.Ctx) error {
	companyID, ok := parseOptionalUUID(c, "companyId")
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid company id")
	}
	projectID, ok := parseOptionalUUID(c, "projectId")
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	scope := h.DB.Model(&models.Collaboration{})
	if companyID != nil {
		scope = scope.Where("company_id = ?", *companyID)
	}
	if projectID != nil {
		scope = scope.Where("project_id = ?", *projectID)
	}
	return listCollaborations(c, scope)
}

func (h *CollaborationsHandler) load(c *fiber.Ctx, preload bool) (*models.Collaboration, error) {
	collabID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid collaboration id")
	}

	query := h.DB.WithContext(c.UserContext())
	if preload {
		query = query.Preload("Company").Preload("Project").Preload("Person")
	}

	var collab models.Collaboration
	if err := query.First(&collab, "id = ?", collabID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Error(c, fiber.StatusNotFound, "collaboration not found")
		}
		return nil, internalError(c, "collaboration_fetch_failed", err, "failed fetching collaboration")
	}
	return &collab, nil
}

func (h *CollaborationsHandler) Get(c *fiber.Ctx) error {
	collab, err := h.load(c, true)
	if collab == nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, newCollaborationView(*collab))
}

type collaborationRequest struct {
	CompanyID       string                   `json:"companyId" validate:"required,uuid"`
	ProjectID       string                   `json:"projectId" validate:"required,uuid"`
	PersonID        *string                  `json:"personId" validate:"omitempty,uuid"`
	Responsible     string                   `json:"responsible" validate:"required,max=255"`
	Comment         string                   `json:"comment"`
	Contacted       bool                     `json:"contacted"`
	Successful      *bool                    `json:"successful"`
	Letter          bool                     `json:"letter"`
	Meeting         *bool                    `json:"meeting"`
	Priority        models.Priority          `json:"priority" validate:"omitempty,oneof=low medium high"`
	Amount          *float64                 `json:"amount" validate:"omitempty,gte=0"`
	ContactInFuture *bool                    `json:"contactInFuture"`
	Type            models.CollaborationType `json:"type" validate:"omitempty,oneof=financial material educational"`
}

func (r *collaborationRequest) normalize() {
	r.CompanyID = strings.TrimSpace(r.CompanyID)
	r.ProjectID = strings.TrimSpace(r.ProjectID)
	r.Responsible = strings.TrimSpace(r.Responsible)
	r.Comment = strings.TrimSpace(r.Comment)
	if r.PersonID != nil {
		trimmed := strings.TrimSpace(*r.PersonID)
		if trimmed == "" {
			r.PersonID = nil
		} else {
			r.PersonID = &trimmed
		}
	}
	if r.Priority == "" {
		r.Priority = models.PriorityLow
	}
	if r.Type == "" {
		r.Type = models.CollaborationTypeFinancial
	}
}

// parseRequest validates the body and checks that every referenced record
// exists and that the person works for the company.
func (h *CollaborationsHandler) parseRequest(c *fiber.Ctx) (*collaborationRequest, error) {
	var req collaborationRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.normalize()
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, utils.ValidationError(c, fields)
	}

	db := h.DB.WithContext(c.UserContext())
	fields := map[string]string{}

	var count int64
	if err := db.Model(&models.Company{}).Where("id = ?", req.CompanyID).Count(&count).Error; err != nil {
		return nil, internalError(c, "collaboration_reference_check_failed", err, "failed checking company")
	}
	if count == 0 {
		fields["companyId"] = "company does not exist"
	}

	if err := db.Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&count).Error; err != nil {
		return nil, internalError(c, "collaboration_reference_check_failed", err, "failed checking project")
	}
	if count == 0 {
		fields["projectId"] = "project does not exist"
	}

	if req.PersonID != nil {
		var person models.Person
		err := db.First(&person, "id = ?", *req.PersonID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fields["personId"] = "person does not exist"
		case err != nil:
			return nil, internalError(c, "collaboration_reference_check_failed", err, "failed checking person")
		case !strings.EqualFold(person.CompanyID.String(), req.CompanyID):
			fields["personId"] = "person does not belong to the company"
		}
	}

	if len(fields) > 0 {
		return nil, utils.ValidationError(c, fields)
	}
	return &req, nil
}

func (r *collaborationRequest) apply(collab *models.Collaboration) {
	collab.CompanyID = uuid.MustParse(r.CompanyID)
	collab.ProjectID = uuid.MustParse(r.ProjectID)
	collab.PersonID = nil
	if r.PersonID != nil {
		personID := uuid.MustParse(*r.PersonID)
		collab.PersonID = &personID
	}
	collab.Responsible = r.Responsible
	collab.Comment = r.Comment
	collab.Contacted = r.Contacted
	collab.Successful = r.Successful
	collab.Letter = r.Letter
	collab.Meeting = r.Meeting
	collab.Priority = r.Priority
	collab.Amount = r.Amount
	collab.ContactInFuture = r.ContactInFuture
	collab.Type = r.Type
}

func (h *CollaborationsHandler) Create(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	var collab models.Collaboration
	req.apply(&collab)
	if err := h.DB.WithContext(c.UserContext()).Omit(clause.Associations).Create(&collab).Error; err != nil {
		return internalError(c, "collaboration_create_failed", err, "failed creating collaboration")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "collaboration_created", map[string]interface{}{
		"collaboration_id": collab.ID.String(),
		"company_id":       collab.CompanyID.String(),
		"project_id":       collab.ProjectID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, newCollaborationView(collab))
}

func (h *CollaborationsHandler) Update(c *fiber.Ctx) error {
	collab, err := h.load(c, false)
	if collab == nil {
		return err
	}

	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	req.apply(collab)
	if err := h.DB.WithContext(c.UserContext()).Omit(clause.Associations).Save(collab).Error; err != nil {
		return internalError(c, "collaboration_update_failed", err, "failed updating collaboration")
	}

	return utils.Success(c, fiber.StatusOK, newCollaborationView(*collab))
}

func (h *CollaborationsHandler) Delete(c *fiber.Ctx) error {
	collabID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid collaboration id")
	}

	result := h.DB.WithContext(c.UserContext()).Delete(&models.Collaboration{}, "id = ?", collabID)
	if result.Error != nil {
		return internalError(c, "collaboration_delete_failed", result.Error, "failed deleting collaboration")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "collaboration not found")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "collaboration_deleted", map[string]interface{}{
		"collaboration_id": collabID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "collaboration deleted"})
}
