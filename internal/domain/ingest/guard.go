package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// UploadGuard suppresses accidental resubmission of the same file by the
// same owner within a short window. A fingerprint is marked when an upload
// is accepted; a second upload carrying the same fingerprint is rejected
// until the mark expires.
type UploadGuard interface {
	// Acquire marks a fingerprint as in flight with a TTL.
	// Returns true if the fingerprint was newly marked, false if an
	// identical upload was already accepted within the window.
	Acquire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error)

	// Seen reports whether the fingerprint is currently marked
	Seen(ctx context.Context, fingerprint string) (bool, error)

	// Close releases resources held by the guard
	Close() error
}

// Fingerprint derives the resubmission key for an upload: the owner plus
// the SHA-256 of the raw file bytes. The same file uploaded by two owners
// yields two distinct keys.
func Fingerprint(ownerID uuid.UUID, data []byte) string {
	sum := sha256.Sum256(data)
	return ownerID.String() + ":" + hex.EncodeToString(sum[:])
}
