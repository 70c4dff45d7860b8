package idservice

import (
	"context"
	"log/slog"

	"github.com/idbuilder/worker/internal/apperr"
	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/pattern"
	"github.com/idbuilder/worker/internal/sequencecache"
	"github.com/idbuilder/worker/internal/storage"
)

// FormattedService implements template-based ID generation with
// a calendar-rotating sequence key.
type FormattedService struct {
	storage   storage.Storage
	cache     *sequencecache.Cache
	batchSize uint32
	logger    *slog.Logger
}

func NewFormattedService(st storage.Storage, cfg SequenceConfig, logger *slog.Logger) *FormattedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormattedService{
		storage:   st,
		cache:     sequencecache.New(int64(cfg.PrefetchThreshold)),
		batchSize: cfg.DefaultBatchSize,
		logger:    logger,
	}
}

// Generate renders count IDs from the named template. When the template
// carries a {SEQ:N} placeholder, values are drawn through the sequence
// cache keyed by the calendar-rotated sequence key; otherwise each call
// renders independently (UUID/RAND placeholders need no counter).
func (s *FormattedService) Generate(ctx context.Context, name string, count uint32) ([]string, error) {
	cfg, err := s.storage.GetFormattedConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}

	p, err := pattern.Parse(cfg.Pattern)
	if err != nil {
		return nil, apperr.Internal("stored pattern %q is invalid: %v", cfg.Pattern, err)
	}

	if !p.HasSequence() {
		out := make([]string, count)
		for i := range out {
			v, err := p.Render(nil)
			if err != nil {
				return nil, apperr.Internal("rendering pattern: %v", err)
			}
			out[i] = v
		}
		return out, nil
	}

	seqKey := pattern.SequenceKey(name, cfg.SequenceReset)
	seqValues, err := s.nextSequenceValues(ctx, seqKey, count)
	if err != nil {
		return nil, err
	}

	out := make([]string, count)
	for i, v := range seqValues {
		v := v
		rendered, err := p.Render(&v)
		if err != nil {
			return nil, apperr.Internal("rendering pattern: %v", err)
		}
		out[i] = rendered
	}
	return out, nil
}

func (s *FormattedService) nextSequenceValues(ctx context.Context, seqKey string, count uint32) ([]int64, error) {
	if values, _, ok := s.cache.Get(seqKey, count); ok {
		if s.cache.NeedsPrefetch(seqKey) {
			if err := s.prefetch(ctx, seqKey); err != nil {
				s.logger.Warn("prefetch failed", "name", seqKey, "error", err)
			}
		}
		return values, nil
	}

	if err := s.storage.Initialize(ctx, seqKey, domain.IDTypeFormatted, 1); err != nil {
		return nil, apperr.Storage(err)
	}

	batch := max(count, s.batchSize)
	r, err := s.storage.GetAndIncrement(ctx, seqKey, batch, 1)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	s.cache.Put(seqKey, r)

	values, _, ok := s.cache.Get(seqKey, count)
	if !ok {
		return nil, apperr.Internal("cache inconsistency after refill for %q", seqKey)
	}
	return values, nil
}

func (s *FormattedService) prefetch(ctx context.Context, seqKey string) error {
	r, err := s.storage.GetAndIncrement(ctx, seqKey, s.batchSize, 1)
	if err != nil {
		return err
	}
	s.cache.Put(seqKey, r)
	return nil
}

func (s *FormattedService) CreateConfig(ctx context.Context, cfg domain.FormattedConfig) error {
	if err := cfg.Validate(); err != nil {
		return apperr.InvalidConfig(err.Error())
	}
	p, err := pattern.Parse(cfg.Pattern)
	if err != nil {
		return apperr.InvalidConfig(err.Error())
	}
	if !p.HasUniquifier() {
		return apperr.InvalidConfig("pattern must contain at least one of {SEQ:N}, {UUID}, or {RAND:N}")
	}

	existing, err := s.storage.GetFormattedConfig(ctx, cfg.Name)
	if err != nil {
		return apperr.Storage(err)
	}
	if existing != nil {
		return apperr.ConfigExists(cfg.Name)
	}

	if err := s.storage.SaveFormattedConfig(ctx, cfg); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *FormattedService) GetConfig(ctx context.Context, name string) (*domain.FormattedConfig, error) {
	cfg, err := s.storage.GetFormattedConfig(ctx, name)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if cfg == nil {
		return nil, apperr.ConfigNotFound(name)
	}
	return cfg, nil
}

func (s *FormattedService) ListConfigs(ctx context.Context) ([]domain.FormattedConfig, error) {
	cfgs, err := s.storage.ListFormattedConfigs(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return cfgs, nil
}

func (s *FormattedService) DeleteConfig(ctx context.Context, name string) (bool, error) {
	s.cache.Remove(name)
	existed, err := s.storage.DeleteFormattedConfig(ctx, name)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return existed, nil
}
