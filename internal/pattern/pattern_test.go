package pattern

import (
	"regexp"
	"testing"

	"github.com/idbuilder/worker/internal/domain"
)

func TestParseSimplePattern(t *testing.T) {
	p, err := Parse("INV{YYYY}{MM}{DD}-{SEQ:4}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.HasSequence() {
		t.Fatalf("HasSequence = false, want true")
	}
}

func TestParseUUIDPatternHasNoSequence(t *testing.T) {
	p, err := Parse("PREFIX-{UUID}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.HasSequence() {
		t.Fatalf("HasSequence = true, want false")
	}
	if !p.HasUniquifier() {
		t.Fatalf("HasUniquifier = false, want true for {UUID}")
	}
}

func TestPatternWithNoUniquifierIsDetected(t *testing.T) {
	p, err := Parse("STATIC-PREFIX")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.HasUniquifier() {
		t.Fatalf("HasUniquifier = true, want false for a pattern with no SEQ/UUID/RAND")
	}
}

func TestGenerateWithSequence(t *testing.T) {
	p, err := Parse("ID-{SEQ:4}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	seq := int64(42)
	got, err := p.Render(&seq)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "ID-0042" {
		t.Fatalf("Render = %q, want ID-0042", got)
	}
}

func TestGenerateWithRandom(t *testing.T) {
	p, err := Parse("CODE-{RAND:8}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := p.Render(nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != len("CODE-")+8 {
		t.Fatalf("Render = %q, want length %d", got, len("CODE-")+8)
	}
	if !regexp.MustCompile(`^CODE-[A-Z0-9]{8}$`).MatchString(got) {
		t.Fatalf("Render = %q, does not match expected charset", got)
	}
}

func TestGenerateWithUUID(t *testing.T) {
	p, err := Parse("{UUID}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := p.Render(nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(got) != 36 {
		t.Fatalf("Render = %q, want length 36", got)
	}
}

func TestSequenceKeyRotation(t *testing.T) {
	if got := SequenceKey("test", domain.SequenceResetNever); got != "test" {
		t.Fatalf("SequenceKey(Never) = %q, want test", got)
	}
	if got := SequenceKey("test", domain.SequenceResetDaily); len(got) != len("test:")+8 {
		t.Fatalf("SequenceKey(Daily) = %q, want length %d", got, len("test:")+8)
	}
}

func TestInvalidPatterns(t *testing.T) {
	cases := []string{"{INVALID}", "{SEQ:0}", "{SEQ:21}", "{RAND:0}", "{RAND:33}", "{UNCLOSED"}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) = nil error, want error", c)
		}
	}
}

func TestUnparseRoundTrip(t *testing.T) {
	cases := []string{
		"INV{YYYY}{MM}{DD}-{SEQ:4}",
		"PREFIX-{UUID}",
		"CODE-{RAND:8}",
		"plain-literal-only",
	}
	for _, c := range cases {
		p, err := Parse(c)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c, err)
		}
		if got := p.Unparse(); got != c {
			t.Errorf("Unparse() = %q, want %q", got, c)
		}
	}
}
