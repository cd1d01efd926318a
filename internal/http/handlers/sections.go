package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/http/response"
)

type SectionsHandler struct{}

func NewSectionsHandler() *SectionsHandler { return &SectionsHandler{} }

// ListSections returns the section picker catalogue and its default selection.
func (h *SectionsHandler) ListSections(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"sections": site.SectionKinds(),
		"defaults": site.DefaultSectionKinds(),
	})
}
