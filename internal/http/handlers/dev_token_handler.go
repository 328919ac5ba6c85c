package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/bounty-backend/internal/dto"
	"github.com/ignatzorin/bounty-backend/internal/http/handlers/common"
	"github.com/ignatzorin/bounty-backend/internal/service"
)

// DevTokenHandler выпускает access токены в development окружении.
// Идентичность пользователей приходит извне, этот хэндлер существует только
// для локальной разработки и не регистрируется в production.
type DevTokenHandler struct {
	tokens *service.TokenManager
}

// NewDevTokenHandler создаёт новый хэндлер.
func NewDevTokenHandler(tokens *service.TokenManager) *DevTokenHandler {
	return &DevTokenHandler{tokens: tokens}
}

// Issue POST /auth/dev-token
func (h *DevTokenHandler) Issue(c *gin.Context) {
	var req dto.DevTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		common.RespondBadRequest(c, "неверный user_id")
		return
	}

	token, expiresAt, err := h.tokens.Generate(userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, ExpiresAt: expiresAt})
}
