package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/bounty-backend/internal/dto"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// BountyHandler жизненный цикл баунти и claims.
type BountyHandler struct {
	bounties *service.BountyService
}

// NewBountyHandler создаёт новый хэндлер.
func NewBountyHandler(bounties *service.BountyService) *BountyHandler {
	return &BountyHandler{bounties: bounties}
}

// Create POST /projects/:id/bounties
func (h *BountyHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateBountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Create(c.Request.Context(), userID, service.CreateBountyInput{
		ProjectID:       projectID,
		Title:           req.Title,
		Description:     req.Description,
		Points:          req.Points,
		ClaimMode:       models.ClaimMode(req.ClaimMode),
		MaxClaims:       req.MaxClaims,
		ClaimExpiryDays: req.ClaimExpiryDays,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, bounty)
}

// List GET /projects/:id/bounties
func (h *BountyHandler) List(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounties, err := h.bounties.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounties)
}

// Get GET /bounties/:id
func (h *BountyHandler) Get(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Get(c.Request.Context(), bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

// Update PUT /bounties/:id
func (h *BountyHandler) Update(c *gin.Context) {
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

	var req dto.UpdateBountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bounty, err := h.bounties.Update(c.Request.Context(), userID, bountyID, service.UpdateBountyInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

// Claim POST /bounties/:id/claims
func (h *BountyHandler) Claim(c *gin.Context) {
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

	claim, err := h.bounties.Claim(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// ListClaims GET /bounties/:id/claims
func (h *BountyHandler) ListClaims(c *gin.Context) {
	bountyID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claims, err := h.bounties.ListClaims(c.Request.Context(), bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// ListMyClaims GET /claims/my
func (h *BountyHandler) ListMyClaims(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	claims, err := h.bounties.ListUserClaims(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, claims)
}

// ReleaseClaim DELETE /claims/:id
func (h *BountyHandler) ReleaseClaim(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	claimID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	claim, err := h.bounties.ReleaseClaim(c.Request.Context(), userID, claimID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// Close POST /bounties/:id/close
func (h *BountyHandler) Close(c *gin.Context) {
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

	bounty, err := h.bounties.Close(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

// Reopen POST /bounties/:id/reopen
func (h *BountyHandler) Reopen(c *gin.Context) {
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

	bounty, err := h.bounties.Reopen(c.Request.Context(), userID, bountyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}
