package idservice

import (
	"context"
	"regexp"
	"testing"

	"github.com/idbuilder/worker/internal/apperr"
	"github.com/idbuilder/worker/internal/domain"
	"github.com/idbuilder/worker/internal/storage"
)

func newTestFormattedService(t *testing.T) *FormattedService {
	t.Helper()
	st, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	return NewFormattedService(st, SequenceConfig{DefaultBatchSize: 100, PrefetchThreshold: 10}, nil)
}

func TestFormattedGenerateWithSequence(t *testing.T) {
	ctx := context.Background()
	svc := newTestFormattedService(t)

	cfg := domain.FormattedConfig{Name: "invoices", Pattern: "INV-{SEQ:4}", SequenceReset: domain.SequenceResetNever}
	if err := svc.CreateConfig(ctx, cfg); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	ids, err := svc.Generate(ctx, "invoices", 3)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"INV-0001", "INV-0002", "INV-0003"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestFormattedGenerateWithoutSequenceNeedsNoCounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestFormattedService(t)

	cfg := domain.FormattedConfig{Name: "tickets", Pattern: "TKT-{UUID}", SequenceReset: domain.SequenceResetNever}
	if err := svc.CreateConfig(ctx, cfg); err != nil {
		t.Fatalf("CreateConfig: %v", err)
	}

	ids, err := svc.Generate(ctx, "tickets", 2)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if ids[0] == ids[1] {
		t.Fatalf("two UUID-based ids collided: %q", ids[0])
	}
	if !regexp.MustCompile(`^TKT-[0-9a-f-]{36}$`).MatchString(ids[0]) {
		t.Fatalf("ids[0] = %q, does not match expected shape", ids[0])
	}
}

func TestFormattedRejectsPatternWithoutUniquifier(t *testing.T) {
	ctx := context.Background()
	svc := newTestFormattedService(t)

	cfg := domain.FormattedConfig{Name: "static", Pattern: "FIXED-PREFIX", SequenceReset: domain.SequenceResetNever}
	err := svc.CreateConfig(ctx, cfg)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindInvalidConfig {
		t.Fatalf("CreateConfig with no uniquifier = %v, want KindInvalidConfig", err)
	}
}

func TestFormattedConfigNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestFormattedService(t)

	_, err := svc.Generate(ctx, "nonexistent", 1)
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindConfigNotFound {
		t.Fatalf("Generate on missing config = %v, want KindConfigNotFound", err)
	}
}
