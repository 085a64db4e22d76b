package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// ImportHistoryHandler handles upload history query endpoints
type ImportHistoryHandler struct {
	BaseHandler
	histories ingest.HistoryRepository
}

// NewImportHistoryHandler creates a new ImportHistoryHandler
func NewImportHistoryHandler(histories ingest.HistoryRepository) *ImportHistoryHandler {
	return &ImportHistoryHandler{histories: histories}
}

// RegisterRoutes registers import history routes on the API group
func (h *ImportHistoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/imports", h.List)
	rg.GET("/imports/:id", h.Get)
}

// List returns a page of the owner's upload histories, newest first
func (h *ImportHistoryHandler) List(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "A valid X-Owner-ID header is required")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	histories, total, err := h.histories.FindAll(c.Request.Context(), ownerID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]dto.UploadHistoryResponse, len(histories))
	for i := range histories {
		responses[i] = dto.UploadHistoryResponseFromDomain(&histories[i])
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}

// Get returns one upload history record
func (h *ImportHistoryHandler) Get(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "A valid X-Owner-ID header is required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid upload history ID")
		return
	}

	history, err := h.histories.FindByID(c.Request.Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Upload history not found")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.UploadHistoryResponseFromDomain(history))
}
