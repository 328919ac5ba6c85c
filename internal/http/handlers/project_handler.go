package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/bounty-backend/internal/dto"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// ProjectHandler проекты и пулы вознаграждений.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler создаёт новый хэндлер.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	input := service.CreateProjectInput{
		Name:                  req.Name,
		Description:           req.Description,
		PoolPercentage:        req.PoolPercentage,
		PoolCapacity:          req.PoolCapacity,
		PlatformFeePercentage: req.PlatformFeePercentage,
		PayoutFrequency:       req.PayoutFrequency,
	}
	if req.CommitmentEndsAt != "" {
		ends, parseErr := time.Parse(time.RFC3339, req.CommitmentEndsAt)
		if parseErr != nil {
			common.RespondBadRequest(c, "commitment_ends_at должен быть в формате RFC3339")
			return
		}
		input.CommitmentEndsAt = &ends
	}

	project, pool, err := h.projects.Create(c.Request.Context(), userID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.ProjectResponse{Project: project, Pool: pool})
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// GetPool GET /projects/:id/pool
func (h *ProjectHandler) GetPool(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pool, expansions, err := h.projects.GetPool(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PoolResponse{Pool: pool, Expansions: expansions})
}
