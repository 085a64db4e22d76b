package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/ingest"
)

// UploadHistoryModel is the persistence model for the ingest.History entity
type UploadHistoryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	FileName    string     `gorm:"type:varchar(255);not null"`
	FileSize    int64      `gorm:"not null;default:0"`
	Encoding    string     `gorm:"type:varchar(20)"`
	Source      string     `gorm:"type:varchar(20)"`
	TotalRows   int        `gorm:"not null;default:0"`
	Registered  int        `gorm:"not null;default:0"`
	Skipped     int        `gorm:"not null;default:0"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	AbortReason string     `gorm:"type:text"`
	StartedAt   *time.Time `gorm:"type:timestamptz"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UploadHistoryModel) TableName() string {
	return "upload_histories"
}

// ToDomain converts the persistence model to a domain History entity
func (m *UploadHistoryModel) ToDomain() *ingest.History {
	return &ingest.History{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		Encoding:    m.Encoding,
		Source:      m.Source,
		TotalRows:   m.TotalRows,
		Registered:  m.Registered,
		Skipped:     m.Skipped,
		Status:      ingest.UploadStatus(m.Status),
		AbortReason: m.AbortReason,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain History entity
func (m *UploadHistoryModel) FromDomain(h *ingest.History) {
	m.ID = h.ID
	m.OwnerID = h.OwnerID
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.Encoding = h.Encoding
	m.Source = h.Source
	m.TotalRows = h.TotalRows
	m.Registered = h.Registered
	m.Skipped = h.Skipped
	m.Status = string(h.Status)
	m.AbortReason = h.AbortReason
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt
	m.CreatedAt = h.CreatedAt
	m.UpdatedAt = h.UpdatedAt
}

// UploadHistoryModelFromDomain creates a persistence model from a domain History entity
func UploadHistoryModelFromDomain(h *ingest.History) *UploadHistoryModel {
	m := &UploadHistoryModel{}
	m.FromDomain(h)
	return m
}
