package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/bounty-backend/internal/dto"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// SubmissionHandler сдача работы и ревью.
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler создаёт новый хэндлер.
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Create POST /bounties/:id/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.Create(c.Request.Context(), userID, bountyID, req.Description, req.Draft)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// List GET /bounties/:id/submissions
func (h *SubmissionHandler) List(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submissions, err := h.submissions.ListByBounty(c.Request.Context(), bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// Get GET /submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	submissionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.Get(c.Request.Context(), submissionID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// Update PUT /submissions/:id
func (h *SubmissionHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	submissionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.UpdateContent(c.Request.Context(), userID, submissionID, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// Submit POST /submissions/:id/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	submissionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.SubmitDraft(c.Request.Context(), userID, submissionID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// Review POST /submissions/:id/review
func (h *SubmissionHandler) Review(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	submissionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	submission, err := h.submissions.Review(c.Request.Context(), userID, submissionID, service.ReviewInput{
		Action:         service.ReviewAction(req.Action),
		Note:           req.Note,
		PointsOverride: req.PointsOverride,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, submission)
}
