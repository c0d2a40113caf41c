package httpapi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"labrag/internal/domain"
	"labrag/internal/intent"
	"labrag/internal/service"
)

// StaffTokenHeader carries the token that unlocks debug weights.
const StaffTokenHeader = "X-Staff-Token"

// Handler serves document ingestion and evidence retrieval.
type Handler struct {
	svc        *service.RetrievalService
	staffToken string
	logger     zerolog.Logger
}

// NewHandler creates a handler. An empty staff token disables privileged access.
func NewHandler(svc *service.RetrievalService, staffToken string, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, staffToken: staffToken, logger: logger}
}

// UploadDocumentRequest is the body of POST /api/sessions/:id/documents.
type UploadDocumentRequest struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Text       string     `json:"text" binding:"required"`
	Format     string     `json:"format"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

// RetrieveRequest is the body of both retrieve endpoints.
type RetrieveRequest struct {
	Query       string `json:"query" binding:"required"`
	TopK        int    `json:"top_k"`
	IncludePack bool   `json:"include_pack"`
}

// RetrieveResponse is the data payload of a successful retrieval.
type RetrieveResponse struct {
	Query            string            `json:"query"`
	Intents          []domain.Label    `json:"intents"`
	Evidence         []domain.Evidence `json:"evidence"`
	GroundingContext string            `json:"grounding_context"`
}

// UploadDocument handles POST /api/sessions/:id/documents
func (h *Handler) UploadDocument(c *gin.Context) {
	var req UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	format, ok := parseFormat(req.Format)
	if !ok {
		fail(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be text, markdown or structured")
		return
	}
	// A labelled upload without an ID replaces the earlier upload of the same label.
	id := req.ID
	if id == "" && req.Label != "" {
		id = service.DocumentID(req.Label)
	}
	doc := domain.Document{
		ID:      id,
		Label:   req.Label,
		Content: req.Text,
		Format:  format,
	}
	if req.UploadedAt != nil {
		doc.UploadedAt = *req.UploadedAt
	} else {
		doc.UploadedAt = time.Now().UTC()
	}

	report, err := h.svc.Ingest(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		h.respondError(c, "INGEST_FAILED", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    report.Documents[0],
	})
}

// ClearDocuments handles DELETE /api/sessions/:id/documents
func (h *Handler) ClearDocuments(c *gin.Context) {
	if err := h.svc.ClearSession(c.Param("id")); err != nil {
		h.respondError(c, "CLEAR_FAILED", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteDocument handles DELETE /api/sessions/:id/documents/:docID
func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.svc.RemoveDocument(c.Param("id"), c.Param("docID")); err != nil {
		h.respondError(c, "DELETE_FAILED", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDocuments handles GET /api/sessions/:id/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	ids, err := h.svc.Documents(c.Param("id"))
	if err != nil {
		h.respondError(c, "LIST_FAILED", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    ids,
	})
}

// RetrieveSession handles POST /api/sessions/:id/retrieve
func (h *Handler) RetrieveSession(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	scored, err := h.svc.RetrieveSession(c.Request.Context(), c.Param("id"), req.Query, req.TopK, req.IncludePack)
	if err != nil {
		h.respondError(c, "RETRIEVE_FAILED", err)
		return
	}
	h.respondEvidence(c, req.Query, scored)
}

// RetrievePack handles POST /api/pack/retrieve
func (h *Handler) RetrievePack(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	scored, err := h.svc.RetrievePack(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		h.respondError(c, "RETRIEVE_FAILED", err)
		return
	}
	h.respondEvidence(c, req.Query, scored)
}

func (h *Handler) respondEvidence(c *gin.Context, query string, scored []domain.ScoredChunk) {
	evidence := h.svc.ToEvidence(scored, query, h.privileged(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": RetrieveResponse{
			Query:            query,
			Intents:          intent.Classify(query),
			Evidence:         evidence,
			GroundingContext: service.GroundingContext(evidence),
		},
	})
}

func (h *Handler) privileged(c *gin.Context) bool {
	if h.staffToken == "" {
		return false
	}
	got := c.GetHeader(StaffTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.staffToken)) == 1
}

func (h *Handler) respondError(c *gin.Context, code string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		fail(c, http.StatusBadRequest, "EMPTY_QUERY", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrPackUnavailable):
		fail(c, http.StatusServiceUnavailable, "PACK_UNAVAILABLE", err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		fail(c, http.StatusInternalServerError, code, err.Error())
	}
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func parseFormat(s string) (domain.Format, bool) {
	switch f := domain.Format(s); f {
	case "":
		return domain.FormatText, true
	case domain.FormatText, domain.FormatMarkdown, domain.FormatStructured:
		return f, true
	default:
		return "", false
	}
}
