// Package storage defines the persistence contract for sequences, the three
// config kinds, and cross-process advisory locking, plus a file-backed
// reference implementation, kept in this package as storage.go/file_*.go
// rather than a nested storage/file/ tree.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/idbuilder/worker/internal/domain"
)

// ErrNotFound is returned by SequenceStorage operations (and wrapped by
// apperr.Storage at the service boundary) when a named sequence was never
// initialized.
var ErrNotFound = errors.New("storage: not found")

// SequenceStorage is the durable counter primitive: the "hard" part of the
// system, since it alone guarantees no value is ever handed out twice.
type SequenceStorage interface {
	// GetAndIncrement atomically advances the durable counter for name by
	// count*step and returns the allocated range. It performs no min/max
	// bounds check (GetAndIncrementBounded below does); this method only
	// fails with ErrNotFound if name was never initialized.
	GetAndIncrement(ctx context.Context, name string, count uint32, step int64) (domain.SequenceRange, error)

	// GetAndIncrementBounded behaves like GetAndIncrement but additionally
	// enforces min/max inside the same locked critical section, the safer
	// choice over checking bounds after the fact. It returns the unwrapped
	// ErrSequenceExceedsBounds so the caller can translate it into
	// apperr.SequenceExhausted without the durable value having moved past
	// the bound.
	GetAndIncrementBounded(ctx context.Context, name string, count uint32, step, min, max int64) (domain.SequenceRange, error)

	GetCurrent(ctx context.Context, name string) (int64, error)
	Initialize(ctx context.Context, name string, idType domain.IDType, start int64) error
	Exists(ctx context.Context, name string) (bool, error)
	GetState(ctx context.Context, name string) (*domain.SequenceState, error)
	Delete(ctx context.Context, name string) error
}

// ErrSequenceExceedsBounds is returned by GetAndIncrementBounded when the
// computed range would cross min/max; the durable counter is left untouched.
var ErrSequenceExceedsBounds = errors.New("storage: sequence would exceed configured bounds")

// ConfigStorage is three parallel CRUD sets, one per config kind, merged
// into a single interface for convenience.
type ConfigStorage interface {
	SaveIncrementConfig(ctx context.Context, cfg domain.IncrementConfig) error
	GetIncrementConfig(ctx context.Context, name string) (*domain.IncrementConfig, error)
	ListIncrementConfigs(ctx context.Context) ([]domain.IncrementConfig, error)
	DeleteIncrementConfig(ctx context.Context, name string) (bool, error)

	SaveSnowflakeConfig(ctx context.Context, cfg domain.SnowflakeConfig) error
	GetSnowflakeConfig(ctx context.Context, name string) (*domain.SnowflakeConfig, error)
	ListSnowflakeConfigs(ctx context.Context) ([]domain.SnowflakeConfig, error)
	DeleteSnowflakeConfig(ctx context.Context, name string) (bool, error)

	SaveFormattedConfig(ctx context.Context, cfg domain.FormattedConfig) error
	GetFormattedConfig(ctx context.Context, name string) (*domain.FormattedConfig, error)
	ListFormattedConfigs(ctx context.Context) ([]domain.FormattedConfig, error)
	DeleteFormattedConfig(ctx context.Context, name string) (bool, error)
}

// LockGuard represents a held advisory lock. Release is idempotent and safe
// to call multiple times or defer.
type LockGuard interface {
	Release(ctx context.Context) error
}

// DistributedLock is the advisory-lock capability.
type DistributedLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (LockGuard, error)
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (LockGuard, error)
	IsLocked(ctx context.Context, key string) (bool, error)
}

// Storage is the combined capability set that services depend on.
type Storage interface {
	SequenceStorage
	ConfigStorage
	DistributedLock

	// HealthCheck verifies write access to the backing store.
	HealthCheck(ctx context.Context) error
}
