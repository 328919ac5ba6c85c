package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/dto"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/models"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// PayoutHandler расчёт и жизненный цикл выплат.
type PayoutHandler struct {
	payouts *service.PayoutService
}

// NewPayoutHandler создаёт новый хэндлер.
func NewPayoutHandler(payouts *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// Preview POST /projects/:id/payouts/preview
func (h *PayoutHandler) Preview(c *gin.Context) {
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

	var req dto.PayoutPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	breakdown, err := h.payouts.Preview(c.Request.Context(), userID, projectID, req.ReportedProfitCents)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

// Create POST /projects/:id/payouts
func (h *PayoutHandler) Create(c *gin.Context) {
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

	var req dto.CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	periodStart, err := time.Parse(time.RFC3339, req.PeriodStart)
	if err != nil {
		common.RespondBadRequest(c, "period_start должен быть в формате RFC3339")
		return
	}
	periodEnd, err := time.Parse(time.RFC3339, req.PeriodEnd)
	if err != nil {
		common.RespondBadRequest(c, "period_end должен быть в формате RFC3339")
		return
	}
	if !periodEnd.After(periodStart) {
		common.RespondBadRequest(c, "period_end должен быть позже period_start")
		return
	}

	payout, recipients, err := h.payouts.Create(c.Request.Context(), userID, service.CreatePayoutInput{
		ProjectID:           projectID,
		PeriodStart:         periodStart,
		PeriodEnd:           periodEnd,
		PeriodLabel:         req.PeriodLabel,
		ReportedProfitCents: req.ReportedProfitCents,
		StripeFeeCents:      req.StripeFeeCents,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.PayoutResponse{Payout: payout, Recipients: recipients})
}

// List GET /projects/:id/payouts
func (h *PayoutHandler) List(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payouts, err := h.payouts.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// Get GET /payouts/:id
func (h *PayoutHandler) Get(c *gin.Context) {
	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payout, recipients, err := h.payouts.Get(c.Request.Context(), payoutID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PayoutResponse{Payout: payout, Recipients: recipients})
}

// PaymentCallback POST /payments/callback
// Колбэк платёжного провайдера, аутентифицируется на уровне роутера.
func (h *PayoutHandler) PaymentCallback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payoutID, err := uuid.Parse(req.PayoutID)
	if err != nil {
		common.RespondBadRequest(c, "неверный payout_id")
		return
	}

	payout, err := h.payouts.ApplyPaymentStatus(c.Request.Context(), payoutID, models.PaymentStatus(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// ConfirmReceipt POST /payouts/:id/confirm
func (h *PayoutHandler) ConfirmReceipt(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	payoutID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipient, err := h.payouts.ConfirmReceipt(c.Request.Context(), payoutID, userID, req.Confirmed, req.DisputeReason)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, recipient)
}
