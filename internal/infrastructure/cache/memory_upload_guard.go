package cache

import (
	"context"
	"sync"
	"time"

	"github.com/orderhub/backend/internal/domain/ingest"
)

// mark is a stored fingerprint with its expiration
type mark struct {
	expiresAt time.Time
}

// MemoryUploadGuard implements ingest.UploadGuard with an in-memory map.
// Suitable for single-instance deployments and testing; marks are not
// shared across processes.
type MemoryUploadGuard struct {
	mu        sync.RWMutex
	marks     map[string]mark
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryUploadGuard creates an in-memory upload guard and starts a
// background goroutine that sweeps expired marks
func NewMemoryUploadGuard() *MemoryUploadGuard {
	g := &MemoryUploadGuard{
		marks:    make(map[string]mark),
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.sweepLoop()

	return g
}

// Acquire marks a fingerprint with a TTL.
// Returns false without error when the fingerprint is already marked and
// the mark has not expired.
func (g *MemoryUploadGuard) Acquire(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if m, exists := g.marks[fingerprint]; exists {
		if time.Now().Before(m.expiresAt) {
			return false, nil
		}
		// expired mark, overwrite
	}

	g.marks[fingerprint] = mark{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// Seen reports whether the fingerprint is currently marked
func (g *MemoryUploadGuard) Seen(ctx context.Context, fingerprint string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	m, exists := g.marks[fingerprint]
	if !exists {
		return false, nil
	}
	if time.Now().After(m.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (g *MemoryUploadGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

func (g *MemoryUploadGuard) sweepLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *MemoryUploadGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for fingerprint, m := range g.marks {
		if now.After(m.expiresAt) {
			delete(g.marks, fingerprint)
		}
	}
}

// Size returns the number of marks in the guard (for testing/monitoring)
func (g *MemoryUploadGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.marks)
}

var _ ingest.UploadGuard = (*MemoryUploadGuard)(nil)
