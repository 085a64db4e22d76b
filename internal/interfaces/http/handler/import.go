package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ingestapp "github.com/orderhub/backend/internal/application/ingest"
	ingestdomain "github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// ImportHandler handles order CSV import endpoints
type ImportHandler struct {
	BaseHandler
	pipeline       *ingestapp.PipelineService
	guard          ingestdomain.UploadGuard
	maxFileSize    int64
	resubmitWindow time.Duration
	allowDebug     bool
}

// ImportHandlerOption configures an ImportHandler
type ImportHandlerOption func(*ImportHandler)

// WithResubmitWindow sets how long an identical upload is suppressed
func WithResubmitWindow(window time.Duration) ImportHandlerOption {
	return func(h *ImportHandler) {
		h.resubmitWindow = window
	}
}

// WithMaxFileSize sets the upload size limit
func WithMaxFileSize(size int64) ImportHandlerOption {
	return func(h *ImportHandler) {
		h.maxFileSize = size
	}
}

// WithDebugResponses allows debug payloads in diagnostics when the caller
// requests them. Keep disabled in production.
func WithDebugResponses(allow bool) ImportHandlerOption {
	return func(h *ImportHandler) {
		h.allowDebug = allow
	}
}

// NewImportHandler creates a new ImportHandler. guard may be nil, in which
// case resubmission suppression is disabled.
func NewImportHandler(pipeline *ingestapp.PipelineService, guard ingestdomain.UploadGuard, opts ...ImportHandlerOption) *ImportHandler {
	h := &ImportHandler{
		pipeline:       pipeline,
		guard:          guard,
		maxFileSize:    10 * 1024 * 1024,
		resubmitWindow: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers import routes on the API group
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/import", h.Import)
}

// Import ingests an order CSV export from a mall platform.
// The file arrives as multipart form data; the response is the run report
// with per-row skip details and any diagnostics.
func (h *ImportHandler) Import(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "A valid X-Owner-ID header is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			"file exceeds the upload size limit")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge,
			"file exceeds the upload size limit")
		return
	}

	var sourceHint order.DataSource
	if hint := c.PostForm("source"); hint != "" {
		sourceHint = order.DataSource(hint)
		if !sourceHint.IsValid() || sourceHint == order.SourceUnknown {
			h.BadRequest(c, "source must be one of: rakuten, yahoo")
			return
		}
	}

	var categoryID *uuid.UUID
	if raw := c.PostForm("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "category_id must be a valid UUID")
			return
		}
		categoryID = &id
	}

	debug := h.allowDebug && c.PostForm("debug") == "true"

	// Suppress accidental double-submission of the same file
	if h.guard != nil {
		fingerprint := ingestdomain.Fingerprint(ownerID, data)
		acquired, err := h.guard.Acquire(c.Request.Context(), fingerprint, h.resubmitWindow)
		if err != nil {
			h.InternalError(c, "failed to check for duplicate upload")
			return
		}
		if !acquired {
			h.Conflict(c, dto.ErrCodeResubmitted,
				"This file was already submitted recently. Wait for the previous import to finish or check its result.")
			return
		}
	}

	outcome, err := h.pipeline.Ingest(c.Request.Context(), ingestapp.Upload{
		Data:       data,
		FileName:   header.Filename,
		OwnerID:    ownerID,
		CategoryID: categoryID,
		SourceHint: sourceHint,
		RequestID:  getRequestID(c),
		Debug:      debug,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !debug {
		outcome.RedactDebug()
	}

	if outcome.HasCritical() {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    outcome,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeImportAborted,
				Message:   "The import was aborted before any orders were registered.",
				RequestID: getRequestID(c),
			},
		})
		return
	}

	h.Success(c, outcome)
}
