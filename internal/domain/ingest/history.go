package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/internal/domain/shared"
)

// UploadStatus represents the status of one ingestion run
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusAborted    UploadStatus = "aborted"
)

// IsValid checks if the status is valid
func (s UploadStatus) IsValid() bool {
	switch s {
	case UploadStatusPending, UploadStatusProcessing, UploadStatusCompleted, UploadStatusAborted:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s UploadStatus) IsTerminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusAborted
}

// History is the audit record of one upload: what file came in, what the
// pipeline detected, and how many rows were registered or skipped.
type History struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	Encoding     string     `json:"encoding,omitempty"`
	Source       string     `json:"source,omitempty"`
	TotalRows    int        `json:"total_rows"`
	Registered   int        `json:"registered"`
	Skipped      int        `json:"skipped"`
	Status       UploadStatus `json:"status"`
	AbortReason  string     `json:"abort_reason,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewHistory creates a new pending upload history record
func NewHistory(ownerID uuid.UUID, fileName string, fileSize int64) (*History, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}

	now := time.Now()
	return &History{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		FileName:  fileName,
		FileSize:  fileSize,
		Status:    UploadStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Start marks the run as processing and records the detected encoding and source
func (h *History) Start(encoding, source string) error {
	if h.Status != UploadStatusPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	h.Status = UploadStatusProcessing
	h.Encoding = encoding
	h.Source = source
	h.StartedAt = &now
	h.UpdatedAt = now
	return nil
}

// Complete records the final tallies of a finished run
func (h *History) Complete(totalRows, registered, skipped int) error {
	if h.Status != UploadStatusProcessing {
		return shared.ErrInvalidState
	}
	now := time.Now()
	h.Status = UploadStatusCompleted
	h.TotalRows = totalRows
	h.Registered = registered
	h.Skipped = skipped
	h.CompletedAt = &now
	h.UpdatedAt = now
	return nil
}

// Abort marks the run as aborted with the reason taken from the halting diagnostic
func (h *History) Abort(reason string) error {
	if h.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	now := time.Now()
	h.Status = UploadStatusAborted
	h.AbortReason = reason
	h.CompletedAt = &now
	h.UpdatedAt = now
	return nil
}
