// Package idservice implements the three generation strategies: increment,
// formatted, and snowflake worker-ID leasing, each gluing the sequence
// cache and/or pattern engine to the storage interface.
package idservice

import (
	"context"
	"log/slog"

	"github.com/idbuilder/worker/internal/apperr"
	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/sequencecache"
	"github.com/idbuilder/worker/internal/storage"
)

// SequenceConfig holds the batch/prefetch tuning shared by the increment and
// formatted services, mirroring the reference's config::SequenceConfig.
type SequenceConfig struct {
	DefaultBatchSize  uint32
	PrefetchThreshold uint32
}

// IncrementService allocates monotonic integer IDs backed by a durable
// per-name counter.
type IncrementService struct {
	storage   storage.Storage
	cache     *sequencecache.Cache
	batchSize uint32
	logger    *slog.Logger
}

// NewIncrementService constructs the service; logger may be nil (defaults to
// slog.Default()).
func NewIncrementService(st storage.Storage, cfg SequenceConfig, logger *slog.Logger) *IncrementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncrementService{
		storage:   st,
		cache:     sequencecache.New(int64(cfg.PrefetchThreshold)),
		batchSize: cfg.DefaultBatchSize,
		logger:    logger,
	}
}

// Generate allocates count consecutive IDs for name using a cache-first
// allocation strategy.
func (s *IncrementService) Generate(ctx context.Context, name string, count uint32) ([]int64, error) {
	cfg, err := s.storage.GetIncrementConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}

	if values, _, ok := s.cache.Get(name, count); ok {
		if s.cache.NeedsPrefetch(name) {
			// Fire-and-best-effort: prefetch failures never fail the
			// request that already has its result. This deliberately
			// diverges from the Rust reference, which propagates this
			// error with `?`.
			if err := s.prefetch(ctx, name, cfg); err != nil {
				s.logger.Warn("prefetch failed", "name", name, "error", err)
			}
		}
		return values, nil
	}

	batch := max(count, s.batchSize)
	r, err := s.storage.GetAndIncrementBounded(ctx, name, batch, cfg.Step, cfg.Min, cfg.Max)
	if err != nil {
		if err == storage.ErrSequenceExceedsBounds {
			return nil, apperr.SequenceExhausted(name)
		}
		return nil, apperr.Storage(err)
	}

	s.cache.Put(name, r)

	values, _, ok := s.cache.Get(name, count)
	if !ok {
		return nil, apperr.Internal("cache inconsistency after refill for %q", name)
	}
	return values, nil
}

func (s *IncrementService) prefetch(ctx context.Context, name string, cfg *domain.IncrementConfig) error {
	r, err := s.storage.GetAndIncrementBounded(ctx, name, s.batchSize, cfg.Step, cfg.Min, cfg.Max)
	if err != nil {
		return err
	}
	s.cache.Put(name, r)
	return nil
}

// CreateConfig validates, checks uniqueness, initializes the durable
// counter, and saves the config.
func (s *IncrementService) CreateConfig(ctx context.Context, cfg domain.IncrementConfig) error {
	if err := cfg.Validate(); err != nil {
		return apperr.InvalidConfig(err.Error())
	}

	existing, err := s.storage.GetIncrementConfig(ctx, cfg.Name)
	if err != nil {
		return apperr.Storage(err)
	}
	if existing != nil {
		return apperr.ConfigExists(cfg.Name)
	}

	if err := s.storage.Initialize(ctx, cfg.Name, domain.IDTypeIncrement, cfg.Start); err != nil {
		return apperr.Storage(err)
	}
	if err := s.storage.SaveIncrementConfig(ctx, cfg); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *IncrementService) GetConfig(ctx context.Context, name string) (*domain.IncrementConfig, error) {
	cfg, err := s.storage.GetIncrementConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}
	return cfg, nil
}

func (s *IncrementService) ListConfigs(ctx context.Context) ([]domain.IncrementConfig, error) {
	cfgs, err := s.storage.ListIncrementConfigs(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return cfgs, nil
}

// DeleteConfig evicts the cache entry and deletes the durable config.
func (s *IncrementService) DeleteConfig(ctx context.Context, name string) (bool, error) {
	s.cache.Remove(name)
	existed, err := s.storage.DeleteIncrementConfig(ctx, name)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return existed, nil
}

func max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
