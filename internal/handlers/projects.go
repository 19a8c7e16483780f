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

type ProjectsHandler struct {
	DB    *gorm.DB
	Money *utils.MoneyFormatter
}

func NewProjectsHandler(db *gorm.DB, money *utils.MoneyFormatter) *ProjectsHandler {
	return &ProjectsHandler{DB: db, Money: money}
}

type projectRequest struct {
	Name   string   `json:"name" validate:"required,max=255"`
	FrGoal *float64 `json:"frGoal" validate:"omitempty,gte=0"`
}

func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	var projects []models.Project
	if err := h.DB.WithContext(c.UserContext()).Order("name ASC").Find(&projects).Error; err != nil {
		return internalError(c, "projects_list_failed", err, "failed listing projects")
	}
	return listResponse(c, projects, searchFields[models.Project])
}

func (h *ProjectsHandler) load(c *fiber.Ctx) (*models.Project, error) {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	var project models.Project
	if err := h.DB.WithContext(c.UserContext()).First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Error(c, fiber.StatusNotFound, "project not found")
		}
		return nil, internalError(c, "project_fetch_failed", err, "failed fetching project")
	}
	return &project, nil
}

func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	project, err := h.load(c)
	if project == nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, project)
}

func parseProjectRequest(c *fiber.Ctx) (*projectRequest, error) {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if fields := utils.ValidateStruct(req); fields != nil {
		return nil, utils.ValidationError(c, fields)
	}
	return &req, nil
}

func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	req, err := parseProjectRequest(c)
	if req == nil {
		return err
	}

	project := models.Project{Name: req.Name, FrGoal: req.FrGoal}
	if err := h.DB.WithContext(c.UserContext()).Create(&project).Error; err != nil {
		return internalError(c, "project_create_failed", err, "failed creating project")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "project_created", map[string]interface{}{
		"project_id": project.ID.String(),
		"name":       project.Name,
	})

	return utils.Success(c, fiber.StatusCreated, project)
}

func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	project, err := h.load(c)
	if project == nil {
		return err
	}

	req, err := parseProjectRequest(c)
	if req == nil {
		return err
	}

	project.Name = req.Name
	project.FrGoal = req.FrGoal
	if err := h.DB.WithContext(c.UserContext()).Save(project).Error; err != nil {
		return internalError(c, "project_update_failed", err, "failed updating project")
	}

	return utils.Success(c, fiber.StatusOK, project)
}

func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	projectID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid project id")
	}

	result := h.DB.WithContext(c.UserContext()).Delete(&models.Project{}, "id = ?", projectID)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return utils.Error(c, fiber.StatusConflict, "project still has collaborations")
		}
		return internalError(c, "project_delete_failed", result.Error, "failed deleting project")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "project not found")
	}

	user := middleware.GetCurrentUser(c)
	logger.InfoWithUser(user.ID, "project_deleted", map[string]interface{}{
		"project_id": projectID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "project deleted"})
}

func (h *ProjectsHandler) Collaborations(c *fiber.Ctx) error {
	project, err := h.load(c)
	if project == nil {
		return err
	}
	return listCollaborations(c, h.DB.Where("project_id = ?", project.ID))
}

type projectSummary struct {
	ProjectID       uuid.UUID      `json:"projectId"`
	FrGoal          *float64       `json:"frGoal"`
	Raised          float64        `json:"raised"`
	RaisedFormatted string         `json:"raisedFormatted"`
	GoalFormatted   string         `json:"goalFormatted"`
	Progress        *float64       `json:"progress"`
	Collaborations  int            `json:"collaborations"`
	ByStatus        map[string]int `json:"byStatus"`
}

// summarize totals the amounts of successful collaborations against the
// project's fundraising goal.
func summarize(project *models.Project, collaborations []models.Collaboration, money *utils.MoneyFormatter) projectSummary {
	summary := projectSummary{
		ProjectID:      project.ID,
		FrGoal:         project.FrGoal,
		Collaborations: len(collaborations),
		ByStatus: map[string]int{
			models.StatusSuccessful:   0,
			models.StatusFailed:       0,
			models.StatusContacted:    0,
			models.StatusNotContacted: 0,
		},
	}

	for i := range collaborations {
		collab := &collaborations[i]
		status := collab.StatusText()
		summary.ByStatus[status]++
		if status == models.StatusSuccessful && collab.Amount != nil {
			summary.Raised += *collab.Amount
		}
	}

	if project.FrGoal != nil && *project.FrGoal > 0 {
		progress := summary.Raised / *project.FrGoal
		summary.Progress = &progress
	}

	summary.RaisedFormatted = money.Format(summary.Raised)
	summary.GoalFormatted = money.FormatOptional(project.FrGoal)
	return summary
}

func (h *ProjectsHandler) Summary(c *fiber.Ctx) error {
	project, err := h.load(c)
	if project == nil {
		return err
	}

	var collaborations []models.Collaboration
	if err := h.DB.WithContext(c.UserContext()).Where("project_id = ?", project.ID).Find(&collaborations).Error; err != nil {
		return internalError(c, "project_summary_failed", err, "failed loading collaborations")
	}

	return utils.Success(c, fiber.StatusOK, summarize(project, collaborations, h.Money))
}
