package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pagehub-backend/internal/domain/site"
	"github.com/yungbote/pagehub-backend/internal/http/response"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
	"github.com/yungbote/pagehub-backend/internal/services"
)

const (
	defaultMaxRequestBytes = 1 << 20
	defaultMaxUploadBytes  = 5 << 20
)

type SiteHandlerDeps struct {
	Log             *logger.Logger
	Sites           services.SiteService
	MaxRequestBytes int64
	MaxUploadBytes  int64
}

type SiteHandler struct {
	log             *logger.Logger
	sites           services.SiteService
	maxRequestBytes int64
	maxUploadBytes  int64
}

func NewSiteHandlerWithDeps(deps SiteHandlerDeps) *SiteHandler {
	h := &SiteHandler{
		log:             deps.Log,
		sites:           deps.Sites,
		maxRequestBytes: deps.MaxRequestBytes,
		maxUploadBytes:  deps.MaxUploadBytes,
	}
	if h.log == nil {
		h.log = logger.NewNop()
	}
	h.log = h.log.With("handler", "SiteHandler")
	if h.maxRequestBytes <= 0 {
		h.maxRequestBytes = defaultMaxRequestBytes
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUploadBytes
	}
	return h
}

type generateRequest struct {
	Prompt   string   `json:"prompt"`
	Sections []string `json:"sections"`
	Parallax *bool    `json:"parallax"`
}

// POST /api/sites/generate
func (h *SiteHandler) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.generate(c, site.GenerateParams{
		Prompt:   req.Prompt,
		Sections: req.Sections,
		Parallax: req.Parallax == nil || *req.Parallax,
	})
}

// POST /api/sites/generate/upload (multipart: prompt, file, sections, parallax)
func (h *SiteHandler) GenerateUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+h.maxRequestBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.RespondAPIError(c, h.log, apierr.FieldError("file", "The upload is too large or malformed."))
		return
	}

	fileText, err := h.readPromptFile(c)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	prompt := joinPrompt(c.PostForm("prompt"), fileText)
	if prompt == "" {
		response.RespondAPIError(c, h.log, apierr.FieldError("prompt", "A prompt or a file is required."))
		return
	}

	parallax := true
	if v := strings.TrimSpace(c.PostForm("parallax")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.RespondAPIError(c, h.log, apierr.FieldError("parallax", "Parallax must be true or false."))
			return
		}
		parallax = b
	}

	h.generate(c, site.GenerateParams{
		Prompt:   prompt,
		Sections: splitSections(c.PostFormArray("sections")),
		Parallax: parallax,
	})
}

func (h *SiteHandler) generate(c *gin.Context, params site.GenerateParams) {
	d, err := h.sites.GenerateWebsite(c.Request.Context(), params)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	view, err := d.View()
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"site": view})
}

type rewriteRequest struct {
	SelectedText string `json:"selected_text"`
	Instruction  string `json:"instruction"`
	Context      string `json:"context"`
}

// POST /api/rewrite
func (h *SiteHandler) Rewrite(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	var req rewriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	edited, err := h.sites.RewriteText(c.Request.Context(), req.SelectedText, req.Instruction, req.Context)
	if err != nil {
		response.RespondAPIError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"edited_text": edited})
}

// readPromptFile returns the text of the optional "file" part. Only .txt and .md are accepted.
func (h *SiteHandler) readPromptFile(c *gin.Context) (string, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apierr.FieldError("file", "Could not read the file.")
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".txt", ".md":
	default:
		return "", apierr.FieldError("file", "Only .txt and .md files are supported.")
	}
	if fh.Size > h.maxUploadBytes {
		return "", apierr.FieldError("file", "The file is too large.")
	}
	f, err := fh.Open()
	if err != nil {
		return "", apierr.FieldError("file", "Could not read the file.")
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil || !utf8.Valid(b) {
		return "", apierr.FieldError("file", "Could not read the file.")
	}
	return string(b), nil
}

// joinPrompt joins the typed prompt and the file text with a blank line, skipping empty parts.
func joinPrompt(prompt, fileText string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{prompt, fileText} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// splitSections accepts both repeated fields and a single comma-separated value.
func splitSections(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
