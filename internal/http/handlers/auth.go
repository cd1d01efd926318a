package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/http/response"
	"github.com/yungbote/pagehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{log: log.With("handler", "AuthHandler"), authService: authService}
}

// POST /api/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Revoke(c.Request.Context(), ctxutil.GetRequestData(c.Request.Context())); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "logout_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
