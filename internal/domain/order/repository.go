package order

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows order listings
type ListFilter struct {
	CategoryID *uuid.UUID
	Source     *DataSource
	Search     string
	Page       int
	PageSize   int
}

// Repository defines persistence operations for orders.
// FindByCode returns shared.ErrNotFound when no order matches, which the
// ingestion pipeline relies on for duplicate detection.
type Repository interface {
	FindByCode(ctx context.Context, ownerID uuid.UUID, orderCode string) (*Order, error)
	Insert(ctx context.Context, o *Order) error
	FindAll(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]Order, int64, error)
}
