package ingest

import (
	"context"

	"github.com/google/uuid"
)

// HistoryRepository defines persistence operations for upload histories
type HistoryRepository interface {
	Save(ctx context.Context, h *History) error
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*History, error)
	FindAll(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]History, int64, error)
}
