package cache

import (
	"fmt"

	"github.com/orderhub/backend/internal/domain/ingest"
	"github.com/orderhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// UploadGuardFactory creates upload guards based on configuration
type UploadGuardFactory struct {
	redisConfig         config.RedisConfig
	logger              *zap.Logger
	allowMemoryFallback bool
}

// UploadGuardFactoryOption is a functional option for configuring the factory
type UploadGuardFactoryOption func(*UploadGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) UploadGuardFactoryOption {
	return func(f *UploadGuardFactory) {
		f.logger = logger
	}
}

// WithMemoryFallback controls whether to fall back to the in-memory guard
// when Redis is unavailable. Default is true.
func WithMemoryFallback(allow bool) UploadGuardFactoryOption {
	return func(f *UploadGuardFactory) {
		f.allowMemoryFallback = allow
	}
}

// NewUploadGuardFactory creates a new factory
func NewUploadGuardFactory(cfg config.RedisConfig, opts ...UploadGuardFactoryOption) *UploadGuardFactory {
	f := &UploadGuardFactory{
		redisConfig:         cfg,
		logger:              zap.NewNop(),
		allowMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisGuard creates a Redis-backed upload guard
func (f *UploadGuardFactory) CreateRedisGuard() (ingest.UploadGuard, error) {
	guard, err := NewRedisUploadGuard(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis upload guard: %w", err)
	}

	return guard, nil
}

// CreateMemoryGuard creates an in-memory upload guard.
// In-memory marks are not shared across instances, so a resubmission that
// lands on a different instance will not be suppressed.
func (f *UploadGuardFactory) CreateMemoryGuard() ingest.UploadGuard {
	return NewMemoryUploadGuard()
}

// CreateGuard creates an upload guard, preferring Redis and falling back to
// the in-memory guard when Redis is unavailable and fallback is allowed
func (f *UploadGuardFactory) CreateGuard() (ingest.UploadGuard, error) {
	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis upload guard")
		return guard, nil
	}

	if !f.allowMemoryFallback {
		return nil, fmt.Errorf("Redis required for upload guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory upload guard. "+
		"Resubmissions may not be suppressed across instances.",
		zap.Error(err),
	)
	return f.CreateMemoryGuard(), nil
}
