package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/http/response"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

type DraftHandlerDeps struct {
	Log             *logger.Logger
	Drafts          services.DraftService
	Publisher       services.PublishService
	MaxRequestBytes int64
}

type DraftHandler struct {
	log             *logger.Logger
	drafts          services.DraftService
	publisher       services.PublishService
	maxRequestBytes int64
}

func NewDraftHandlerWithDeps(deps DraftHandlerDeps) *DraftHandler {
	h := &DraftHandler{
		log:             deps.Log,
		drafts:          deps.Drafts,
		publisher:       deps.Publisher,
		maxRequestBytes: deps.MaxRequestBytes,
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	h.log = h.log.With("handler", "DraftHandler")
	if h.maxRequestBytes <= 0 {
		h.maxRequestBytes = defaultMaxRequestBytes
	}
	return h
}

func (h *DraftHandler) respondDraft(c *gin.Context, d *site.Draft) {
	view, err := d.View()
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"site": view})
}

// GET /api/sites
func (h *DraftHandler) List(c *gin.Context) {
	list, err := h.drafts.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	views := make([]site.DraftView, 0, len(list))
	for _, d := range list {
		v, err := d.View()
		if err != nil {
			response.RespondAPIError(c, h.log, err)
			return
		}
		views = append(views, v)
	}
	response.RespondOK(c, gin.H{"sites": views})
}

// GET /api/sites/:id
func (h *DraftHandler) Get(c *gin.Context) {
	d, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	h.respondDraft(c, d)
}

type replaceRequest struct {
	Content site.WebsiteContent `json:"content"`
	// Revision is the draft revision the content was edited from; omitted means last write wins.
	Revision int `json:"revision,omitempty"`
}

// PUT /api/sites/:id
func (h *DraftHandler) Replace(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d, err := h.drafts.ReplaceContent(c.Request.Context(), c.Param("id"), req.Content, req.Revision)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	h.respondDraft(c, d)
}

// DELETE /api/sites/:id
func (h *DraftHandler) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/sites/:id/render
func (h *DraftHandler) Render(c *gin.Context) {
	page, err := h.publisher.Render(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

type publishRequest struct {
	Domain string `json:"domain"`
}

// POST /api/sites/:id/publish
func (h *DraftHandler) Publish(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	var req publishRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	d, err := h.publisher.Publish(c.Request.Context(), c.Param("id"), req.Domain)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	h.respondDraft(c, d)
}
