package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AnTengye/leasewise/middleware"
	"github.com/AnTengye/leasewise/model"
	"github.com/AnTengye/leasewise/pkg/logger"
	"github.com/AnTengye/leasewise/rag"
	"github.com/AnTengye/leasewise/service"
	"github.com/gin-gonic/gin"
)

const (
	previewChars = 500
	pingTimeout  = 5 * time.Second
)

// TextExtractor turns uploaded file bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

type LeaseHandler struct {
	svc            *service.LeaseService
	extractor      TextExtractor
	maxUploadBytes int64
}

func NewLeaseHandler(svc *service.LeaseService, extractor TextExtractor, maxUploadMB int) *LeaseHandler {
	return &LeaseHandler{
		svc:            svc,
		extractor:      extractor,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Register mounts the lease routes on r.
func (h *LeaseHandler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.POST("/upload", h.Upload)
	r.POST("/summary", h.Summary)
	r.POST("/ask", h.Ask)
	r.POST("/extract_terms", h.ExtractTerms)
	r.POST("/red_flags", h.RedFlags)
	r.GET("/documents/:id", h.GetDocument)
	r.DELETE("/documents/:id", h.DeleteDocument)
}

type documentRequest struct {
	DocumentID string `json:"document_id"`
}

type askRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

// Upload handles lease PDF upload: extract, chunk, embed and store.
func (h *LeaseHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			h.uploadTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if tooLarge(err) {
			h.uploadTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	if !isPDF(data) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	text, err := h.extractor.Extract(data)
	if err != nil {
		if errors.Is(err, service.ErrNoText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "PDF contains no extractable text"})
			return
		}
		logger.Error(c.Request.Context(), "pdf extraction failed", "filename", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF extraction failed: " + err.Error()})
		return
	}

	doc, err := h.svc.Ingest(c.Request.Context(), header.Filename, text)
	if err != nil {
		logger.Error(c.Request.Context(), "ingestion failed", "filename", header.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to index document: " + err.Error()})
		return
	}
	middleware.SetDocumentID(c, doc.ID)

	c.JSON(http.StatusOK, gin.H{
		"document_id": doc.ID,
		"preview":     rag.Preview(doc.RawText, previewChars),
		"num_chunks":  doc.NumChunks(),
	})
}

func (h *LeaseHandler) uploadTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": "File too large",
		"limit": h.maxUploadBytes,
	})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

var pdfMagic = []byte("%PDF-")

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// Summary returns a plain-language summary of the lease.
func (h *LeaseHandler) Summary(c *gin.Context) {
	id, ok := h.bindDocumentID(c)
	if !ok {
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), id)
	if err != nil {
		h.documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// Ask answers a question from the lease excerpts closest to it.
func (h *LeaseHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question required"})
		return
	}
	if req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
		return
	}
	middleware.SetDocumentID(c, req.DocumentID)

	answer, err := h.svc.Ask(c.Request.Context(), req.DocumentID, question)
	if err != nil {
		h.documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":           answer.Answer,
		"context_snippets": answer.ContextSnippets,
	})
}

// ExtractTerms returns the key lease fields as structured data.
func (h *LeaseHandler) ExtractTerms(c *gin.Context) {
	id, ok := h.bindDocumentID(c)
	if !ok {
		return
	}

	res, err := h.svc.ExtractTerms(c.Request.Context(), id)
	if err != nil {
		h.documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"terms": res.Terms,
		"raw":   res.Raw,
		"error": nullable(res.Error),
	})
}

// RedFlags returns clauses that may disadvantage the tenant.
func (h *LeaseHandler) RedFlags(c *gin.Context) {
	id, ok := h.bindDocumentID(c)
	if !ok {
		return
	}

	res, err := h.svc.RedFlags(c.Request.Context(), id)
	if err != nil {
		h.documentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flags": res.Flags,
		"raw":   res.Raw,
		"error": nullable(res.Error),
	})
}

// GetDocument returns metadata of a stored lease
func (h *LeaseHandler) GetDocument(c *gin.Context) {
	doc, err := h.svc.Document(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, documentInfo(doc))
}

// DeleteDocument evicts a stored lease
func (h *LeaseHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// Health reports liveness. With ?deep=1 it also checks the model server.
func (h *LeaseHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if deep := c.Query("deep"); deep == "1" || deep == "true" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.svc.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["model_error"] = err.Error()
		}
	}

	c.JSON(http.StatusOK, resp)
}

// bindDocumentID reads {"document_id"} and answers 400 when it is missing.
func (h *LeaseHandler) bindDocumentID(c *gin.Context) (string, bool) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
		return "", false
	}
	middleware.SetDocumentID(c, req.DocumentID)
	return req.DocumentID, true
}

func (h *LeaseHandler) documentError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrDocumentNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_id"})
		return
	}
	logger.Error(c.Request.Context(), "request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func documentInfo(doc *model.Document) gin.H {
	return gin.H{
		"document_id": doc.ID,
		"filename":    doc.Filename,
		"num_chunks":  doc.NumChunks(),
		"created_at":  doc.CreatedAt.Format(time.RFC3339),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
