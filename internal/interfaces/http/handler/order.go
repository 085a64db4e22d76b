package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// OrderHandler handles order query endpoints
type OrderHandler struct {
	BaseHandler
	orders order.Repository
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders order.Repository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order routes on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.List)
}

// List returns a page of the owner's registered orders
func (h *OrderHandler) List(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "A valid X-Owner-ID header is required")
		return
	}

	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "invalid query parameters")
		return
	}
	req.Normalize()

	filter := order.ListFilter{
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			h.BadRequest(c, "category_id must be a valid UUID")
			return
		}
		filter.CategoryID = &id
	}

	if req.Source != "" {
		src := order.DataSource(req.Source)
		if !src.IsValid() {
			h.BadRequest(c, "source must be one of: rakuten, yahoo, unknown")
			return
		}
		filter.Source = &src
	}

	orders, total, err := h.orders.FindAll(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		responses[i] = dto.OrderResponseFromDomain(&orders[i])
	}

	h.SuccessWithMeta(c, responses, total, req.Page, req.PageSize)
}
