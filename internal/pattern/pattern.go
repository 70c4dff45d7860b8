// Package pattern implements the formatted-ID template grammar: parsing
// "{placeholder}" tokens interleaved with literal text, rendering a final
// string given an optional sequence value, and computing the
// calendar-rotating sequence key used to key the durable counter.
package pattern

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idbuilder/worker/internal/domain"
)

// placeholderKind enumerates the recognized {…} tokens.
type placeholderKind int

const (
	kindLiteral placeholderKind = iota
	kindYear4
	kindYear2
	kindMonth
	kindDay
	kindHour
	kindMinute
	kindSecond
	kindSequence
	kindRandom
	kindUUID
)

type part struct {
	kind    placeholderKind
	literal string
	width   int // for Sequence/Random
}

// Pattern is a parsed template, ready to render or to derive a sequence key
// from.
type Pattern struct {
	source      string
	parts       []part
	hasSequence bool
}

// Parse parses a template string such as "INV{YYYY}{MM}{DD}-{SEQ:4}".
// Recognized placeholders: {YYYY} {YY} {MM} {DD} {HH} {mm} {ss} {SEQ:N}
// {RAND:N} {UUID}. Returns an error on an unclosed '{', an unknown token, or
// a SEQ/RAND width outside [1,20] / [1,32].
func Parse(source string) (*Pattern, error) {
	p := &Pattern{source: source}

	runes := []rune(source)
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			p.parts = append(p.parts, part{kind: kindLiteral, literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '{' {
			literal.WriteRune(c)
			continue
		}

		flushLiteral()

		close := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '}' {
				close = j
				break
			}
		}
		if close == -1 {
			return nil, fmt.Errorf("unclosed placeholder")
		}

		token := string(runes[i+1 : close])
		pt, err := parsePlaceholder(token)
		if err != nil {
			return nil, err
		}
		if pt.kind == kindSequence {
			p.hasSequence = true
		}
		p.parts = append(p.parts, pt)
		i = close
	}
	flushLiteral()

	return p, nil
}

func parsePlaceholder(token string) (part, error) {
	switch token {
	case "YYYY":
		return part{kind: kindYear4}, nil
	case "YY":
		return part{kind: kindYear2}, nil
	case "MM":
		return part{kind: kindMonth}, nil
	case "DD":
		return part{kind: kindDay}, nil
	case "HH":
		return part{kind: kindHour}, nil
	case "mm":
		return part{kind: kindMinute}, nil
	case "ss":
		return part{kind: kindSecond}, nil
	case "UUID":
		return part{kind: kindUUID}, nil
	}

	if rest, ok := strings.CutPrefix(token, "SEQ:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return part{}, fmt.Errorf("invalid sequence width: %s", rest)
		}
		if n < 1 || n > 20 {
			return part{}, fmt.Errorf("sequence width must be 1-20, got %d", n)
		}
		return part{kind: kindSequence, width: n}, nil
	}
	if rest, ok := strings.CutPrefix(token, "RAND:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return part{}, fmt.Errorf("invalid random length: %s", rest)
		}
		if n < 1 || n > 32 {
			return part{}, fmt.Errorf("random length must be 1-32, got %d", n)
		}
		return part{kind: kindRandom, width: n}, nil
	}

	return part{}, fmt.Errorf("unknown placeholder: {%s}", token)
}

// HasSequence reports whether the pattern contains a {SEQ:N} placeholder.
func (p *Pattern) HasSequence() bool { return p.hasSequence }

// HasUniquifier reports whether the pattern contains at least one of
// {SEQ:N}, {UUID}, or {RAND:N}, guarding against every generated ID
// colliding.
func (p *Pattern) HasUniquifier() bool {
	for _, pt := range p.parts {
		switch pt.kind {
		case kindSequence, kindUUID, kindRandom:
			return true
		}
	}
	return false
}

// Unparse reconstructs the canonical template string, used to validate the
// round-trip law parse(pattern).unparse() == pattern
func (p *Pattern) Unparse() string {
	var b strings.Builder
	for _, pt := range p.parts {
		switch pt.kind {
		case kindLiteral:
			b.WriteString(pt.literal)
		case kindYear4:
			b.WriteString("{YYYY}")
		case kindYear2:
			b.WriteString("{YY}")
		case kindMonth:
			b.WriteString("{MM}")
		case kindDay:
			b.WriteString("{DD}")
		case kindHour:
			b.WriteString("{HH}")
		case kindMinute:
			b.WriteString("{mm}")
		case kindSecond:
			b.WriteString("{ss}")
		case kindSequence:
			fmt.Fprintf(&b, "{SEQ:%d}", pt.width)
		case kindRandom:
			fmt.Fprintf(&b, "{RAND:%d}", pt.width)
		case kindUUID:
			b.WriteString("{UUID}")
		}
	}
	return b.String()
}

// Render produces one ID. seq must be non-nil if the pattern has a
// {SEQ:N} placeholder.
func (p *Pattern) Render(seq *int64) (string, error) {
	now := time.Now().UTC()
	var b strings.Builder

	for _, pt := range p.parts {
		switch pt.kind {
		case kindLiteral:
			b.WriteString(pt.literal)
		case kindYear4:
			fmt.Fprintf(&b, "%04d", now.Year())
		case kindYear2:
			fmt.Fprintf(&b, "%02d", now.Year()%100)
		case kindMonth:
			fmt.Fprintf(&b, "%02d", int(now.Month()))
		case kindDay:
			fmt.Fprintf(&b, "%02d", now.Day())
		case kindHour:
			fmt.Fprintf(&b, "%02d", now.Hour())
		case kindMinute:
			fmt.Fprintf(&b, "%02d", now.Minute())
		case kindSecond:
			fmt.Fprintf(&b, "%02d", now.Second())
		case kindSequence:
			if seq == nil {
				return "", fmt.Errorf("sequence required but not provided")
			}
			fmt.Fprintf(&b, "%0*d", pt.width, *seq)
		case kindRandom:
			s, err := randomAlnum(pt.width)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case kindUUID:
			b.WriteString(uuid.NewString())
		}
	}

	return b.String(), nil
}

const randomCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlnum(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(randomCharset)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating random characters: %w", err)
		}
		b[i] = randomCharset[idx.Int64()]
	}
	return string(b), nil
}

// SequenceKey computes the storage key a sequence rotates under. baseName
// is the formatted config's name.
func SequenceKey(baseName string, reset domain.SequenceReset) string {
	now := time.Now().UTC()
	switch reset {
	case domain.SequenceResetDaily:
		return fmt.Sprintf("%s:%04d%02d%02d", baseName, now.Year(), now.Month(), now.Day())
	case domain.SequenceResetMonthly:
		return fmt.Sprintf("%s:%04d%02d", baseName, now.Year(), now.Month())
	case domain.SequenceResetYearly:
		return fmt.Sprintf("%s:%04d", baseName, now.Year())
	default:
		return baseName
	}
}
