package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/domain/shared"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUploadHistoryRepository implements ingest.HistoryRepository using GORM
type GormUploadHistoryRepository struct {
	db *gorm.DB
}

// NewGormUploadHistoryRepository creates a new GormUploadHistoryRepository
func NewGormUploadHistoryRepository(db *gorm.DB) *GormUploadHistoryRepository {
	return &GormUploadHistoryRepository{db: db}
}

// Save creates or updates an upload history record
func (r *GormUploadHistoryRepository) Save(ctx context.Context, h *ingest.History) error {
	model := models.UploadHistoryModelFromDomain(h)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an upload history by ID within an owner scope
func (r *GormUploadHistoryRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*ingest.History, error) {
	var model models.UploadHistoryModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of the owner's upload histories, newest first
func (r *GormUploadHistoryRepository) FindAll(ctx context.Context, ownerID uuid.UUID, page, pageSize int) ([]ingest.History, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UploadHistoryModel{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var rows []models.UploadHistoryModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	histories := make([]ingest.History, len(rows))
	for i := range rows {
		histories[i] = *rows[i].ToDomain()
	}
	return histories, total, nil
}
