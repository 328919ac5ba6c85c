package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// ContributorHandler позиции контрибьюторов проекта.
type ContributorHandler struct {
	contributors *service.ContributorService
}

// NewContributorHandler создаёт новый хэндлер.
func NewContributorHandler(contributors *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{contributors: contributors}
}

// ListStandings GET /projects/:id/contributors
func (h *ContributorHandler) ListStandings(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	standings, err := h.contributors.ListStandings(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, standings)
}
