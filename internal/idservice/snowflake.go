package idservice

import (
	"context"
	"time"

	"github.com/idbuilder/worker/internal/apperr"
	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/storage"
)

// WorkerLease is the response to a lease request: the caller composes the
// final 64-bit snowflake ID client-side from epoch, worker_id, and its own
// clock/sequence bits. The service never assembles IDs itself.
type WorkerLease struct {
	WorkerID  uint32
	ExpiresAt time.Time
	Config    domain.SnowflakeConfig
}

// SnowflakeService handles snowflake config CRUD plus worker-ID leasing. It
// holds no durable sequence state of its own; the sequence/clock bits are
// the caller's responsibility.
type SnowflakeService struct {
	storage   storage.Storage
	allocator *WorkerIDAllocator
}

func NewSnowflakeService(st storage.Storage, allocator *WorkerIDAllocator) *SnowflakeService {
	return &SnowflakeService{storage: st, allocator: allocator}
}

// LeaseWorkerID acquires a worker ID for holder under the named config.
func (s *SnowflakeService) LeaseWorkerID(ctx context.Context, name, holder string, ttl time.Duration) (*WorkerLease, error) {
	cfg, err := s.storage.GetSnowflakeConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}

	id, expiresAt, err := s.allocator.Lease(name, holder, cfg.MaxWorkerID(), ttl)
	if err != nil {
		return nil, err
	}
	return &WorkerLease{WorkerID: id, ExpiresAt: expiresAt, Config: *cfg}, nil
}

// RenewWorkerID extends a held lease.
func (s *SnowflakeService) RenewWorkerID(ctx context.Context, name string, workerID uint32, holder string, ttl time.Duration) (time.Time, error) {
	return s.allocator.Renew(name, workerID, holder, ttl)
}

// ReleaseWorkerID gives back a worker ID ahead of its lease expiry.
func (s *SnowflakeService) ReleaseWorkerID(ctx context.Context, name string, workerID uint32, holder string) {
	s.allocator.Release(name, workerID, holder)
}

func (s *SnowflakeService) CreateConfig(ctx context.Context, cfg domain.SnowflakeConfig) error {
	if err := cfg.Validate(); err != nil {
		return apperr.InvalidConfig(err.Error())
	}

	existing, err := s.storage.GetSnowflakeConfig(ctx, cfg.Name)
	if err != nil {
		return apperr.Storage(err)
	}
	if existing != nil {
		return apperr.ConfigExists(cfg.Name)
	}

	if err := s.storage.SaveSnowflakeConfig(ctx, cfg); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *SnowflakeService) GetConfig(ctx context.Context, name string) (*domain.SnowflakeConfig, error) {
	cfg, err := s.storage.GetSnowflakeConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}
	return cfg, nil
}

func (s *SnowflakeService) ListConfigs(ctx context.Context) ([]domain.SnowflakeConfig, error) {
	cfgs, err := s.storage.ListSnowflakeConfigs(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return cfgs, nil
}

func (s *SnowflakeService) DeleteConfig(ctx context.Context, name string) (bool, error) {
	existed, err := s.storage.DeleteSnowflakeConfig(ctx, name)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return existed, nil
}
