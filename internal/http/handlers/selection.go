package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/http/response"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

// SelectionHandler exposes the inline edit session of one draft.
type SelectionHandler struct {
	log   *logger.Logger
	edits services.EditService
}

func NewSelectionHandler(log *logger.Logger, edits services.EditService) *SelectionHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &SelectionHandler{log: log.With("handler", "SelectionHandler"), edits: edits}
}

// GET /api/sites/:id/selection
func (h *SelectionHandler) Get(c *gin.Context) {
	snap, err := h.edits.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, snap)
}

type selectRequest struct {
	SectionID string  `json:"section_id"`
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// POST /api/sites/:id/selection
func (h *SelectionHandler) Select(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, defaultMaxRequestBytes)
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	snap, err := h.edits.Select(c.Request.Context(), c.Param("id"), site.SelectionState{
		SectionID: req.SectionID,
		Text:      req.Text,
		X:         req.X,
		Y:         req.Y,
	})
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, snap)
}

// DELETE /api/sites/:id/selection
func (h *SelectionHandler) Dismiss(c *gin.Context) {
	if err := h.edits.Dismiss(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type confirmRequest struct {
	Instruction string `json:"instruction"`
}

// POST /api/sites/:id/selection/rewrite
func (h *SelectionHandler) Rewrite(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, defaultMaxRequestBytes)
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d, err := h.edits.Confirm(c.Request.Context(), c.Param("id"), req.Instruction)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	view, err := d.View()
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"site": view, "state": site.EditIdle})
}
