// Package httpapi is the thin HTTP request layer over the indexer service:
// it routes requests, applies defaults, and translates core errors into
// client- or server-class responses.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	indexer "github.com/JudgeZ/OSS-AI-Agent-Tool"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/ast"
	"github.com/JudgeZ/OSS-AI-Agent-Tool/internal/security"
)

// Handlers contains the HTTP handlers for the indexer service.
type Handlers struct {
	svc       *indexer.Service
	log       *slog.Logger
	startedAt time.Time
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *indexer.Service, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{svc: svc, log: log, startedAt: time.Now()}
}

// RegisterRoutes attaches all indexer routes to the router.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.handleHealth)

	v1 := r.Group("/v1")
	v1.POST("/ast", h.handleBuildAST)
	v1.POST("/semantic/documents", h.handleAddDocument)
	v1.POST("/semantic/search", h.handleSearch)
	v1.GET("/semantic/history", h.handleHistory)
}

// NewRouter builds a gin engine with all routes registered.
func NewRouter(svc *indexer.Service, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	NewHandlers(svc, log).RegisterRoutes(r)
	return r
}

type healthResponse struct {
	Status        string            `json:"status"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Timestamp     time.Time         `json:"timestamp"`
	Details       map[string]string `json:"details"`
}

func (h *Handlers) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Timestamp:     time.Now().UTC(),
		Details: map[string]string{
			"service": "indexer",
		},
	})
}

type astOptionsRequest struct {
	MaxDepth       *int  `json:"max_depth"`
	MaxNodes       *int  `json:"max_nodes"`
	IncludeSnippet *bool `json:"include_snippet"`
}

type astRequest struct {
	Language string             `json:"language" binding:"required"`
	Source   string             `json:"source"`
	Options  *astOptionsRequest `json:"options"`
}

// handleBuildAST handles POST /v1/ast. Absent option fields take the
// serialization defaults; explicit values are honored even when zero.
func (h *Handlers) handleBuildAST(c *gin.Context) {
	var req astRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := ast.DefaultOptions()
	if req.Options != nil {
		if req.Options.MaxDepth != nil {
			opts.MaxDepth = *req.Options.MaxDepth
		}
		if req.Options.MaxNodes != nil {
			opts.MaxNodes = *req.Options.MaxNodes
		}
		if req.Options.IncludeSnippet != nil {
			opts.IncludeSnippet = *req.Options.IncludeSnippet
		}
	}

	resp, err := h.svc.BuildAST(c.Request.Context(), req.Language, req.Source, opts)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleAddDocument handles POST /v1/semantic/documents.
func (h *Handlers) handleAddDocument(c *gin.Context) {
	var req indexer.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	resp, err := h.svc.AddDocument(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleSearch handles POST /v1/semantic/search.
func (h *Handlers) handleSearch(c *gin.Context) {
	var req indexer.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results := h.svc.Search(c.Request.Context(), req)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handleHistory handles GET /v1/semantic/history?path=...
func (h *Handlers) handleHistory(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	entries, err := h.svc.History(c.Request.Context(), path)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// renderError maps core errors onto transport classes: caller mistakes are
// 400, security gate rejections are 403, service defects are 500.
func (h *Handlers) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ast.ErrUnsupportedLanguage), errors.Is(err, ast.ErrLimitExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, security.ErrACLViolation), errors.Is(err, security.ErrDLPMatch):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
