package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/order"
)

// OrderResponse is the API shape of a registered order
type OrderResponse struct {
	ID           uuid.UUID  `json:"id"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	OrderCode    string     `json:"order_code"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	PriceYen     int64      `json:"price_yen"`
	OrderDate    string     `json:"order_date"`
	DeliveryDate *string    `json:"delivery_date,omitempty"`
	Source       string     `json:"source"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrderResponseFromDomain maps a domain order to its API shape
func OrderResponseFromDomain(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		CategoryID:   o.CategoryID,
		OrderCode:    o.OrderCode,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Address:      o.Address,
		Notes:        o.Notes,
		PriceYen:     o.PriceYen,
		OrderDate:    o.OrderDate.Format("2006-01-02"),
		Source:       o.Source.String(),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if o.DeliveryDate != nil {
		d := o.DeliveryDate.Format("2006-01-02")
		resp.DeliveryDate = &d
	}
	return resp
}

// ListOrdersRequest carries query parameters for the order list endpoint
type ListOrdersRequest struct {
	ListRequest
	CategoryID string `form:"category_id"`
	Source     string `form:"source"`
}

// UploadHistoryResponse is the API shape of one upload history record
type UploadHistoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	Encoding    string     `json:"encoding,omitempty"`
	Source      string     `json:"source,omitempty"`
	TotalRows   int        `json:"total_rows"`
	Registered  int        `json:"registered"`
	Skipped     int        `json:"skipped"`
	Status      string     `json:"status"`
	AbortReason string     `json:"abort_reason,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UploadHistoryResponseFromDomain maps a history record to its API shape
func UploadHistoryResponseFromDomain(h *ingest.History) UploadHistoryResponse {
	return UploadHistoryResponse{
		ID:          h.ID,
		FileName:    h.FileName,
		FileSize:    h.FileSize,
		Encoding:    h.Encoding,
		Source:      h.Source,
		TotalRows:   h.TotalRows,
		Registered:  h.Registered,
		Skipped:     h.Skipped,
		Status:      string(h.Status),
		AbortReason: h.AbortReason,
		StartedAt:   h.StartedAt,
		CompletedAt: h.CompletedAt,
		CreatedAt:   h.CreatedAt,
	}
}
