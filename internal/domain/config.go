// Package domain holds the record types shared by the storage layer and the
// ID generation services: the three config variants, the durable sequence
// state, and the in-memory cache/token/lease value types.
package domain

import "strings"

// IDType names the strategy a sequence belongs to, stored alongside its
// durable state so a restarted process can tell increment sequences apart
// from formatted ones sharing the same storage root.
type IDType string

const (
	IDTypeIncrement IDType = "increment"
	IDTypeSnowflake IDType = "snowflake"
	IDTypeFormatted IDType = "formatted"
)

// MaxNameLength is the maximum length of a config or sequence name.
const MaxNameLength = 255

// IsReservedName reports whether name is reserved for internal use: names
// beginning or ending with "__" (e.g. the "__global__" token key) may not be
// used for user-defined configs or key names.
func IsReservedName(name string) bool {
	return strings.HasPrefix(name, "__") || strings.HasSuffix(name, "__")
}

// ValidateName checks the name invariants shared by all three config kinds.
func ValidateName(name string) error {
	if name == "" {
		return errInvalid("name must not be empty")
	}
	if len(name) > MaxNameLength {
		return errInvalid("name exceeds maximum length of 255")
	}
	if IsReservedName(name) {
		return errInvalid("name must not begin or end with '__'")
	}
	return nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

func errInvalid(msg string) error { return validationError(msg) }

// IncrementConfig parameterizes a monotonic-counter sequence.
type IncrementConfig struct {
	Name            string `json:"name" validate:"required,max=255"`
	Start           int64  `json:"start"`
	Step            int64  `json:"step"`
	Min             int64  `json:"min"`
	Max             int64  `json:"max"`
	KeyTokenEnable  bool   `json:"key_token_enable"`
}

// Validate checks the invariants: min ≤ start ≤ max, min ≤ max,
// step ≠ 0, plus the shared name invariants.
func (c IncrementConfig) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Step == 0 {
		return errInvalid("step must not be zero")
	}
	if c.Min > c.Max {
		return errInvalid("min must be <= max")
	}
	if c.Start < c.Min || c.Start > c.Max {
		return errInvalid("start must be within [min, max]")
	}
	return nil
}

// SnowflakeConfig parameterizes a worker-ID lease for client-side snowflake
// ID generation. The service never composes the 64-bit ID itself.
type SnowflakeConfig struct {
	Name          string `json:"name" validate:"required,max=255"`
	Epoch         int64  `json:"epoch"`
	WorkerBits    uint8  `json:"worker_bits"`
	SequenceBits  uint8  `json:"sequence_bits"`
	KeyTokenEnable bool  `json:"key_token_enable"`
}

// Validate checks epoch > 0, worker_bits ≥ 1, sequence_bits ≥ 1, and the
// 41-ms-bits + 1-sign-bit budget: worker_bits + sequence_bits ≤ 22.
func (c SnowflakeConfig) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Epoch <= 0 {
		return errInvalid("epoch must be positive")
	}
	if c.WorkerBits < 1 {
		return errInvalid("worker_bits must be >= 1")
	}
	if c.SequenceBits < 1 {
		return errInvalid("sequence_bits must be >= 1")
	}
	if int(c.WorkerBits)+int(c.SequenceBits) > 22 {
		return errInvalid("worker_bits + sequence_bits must be <= 22")
	}
	return nil
}

// MaxWorkerID returns the inclusive upper bound of the worker-ID space this
// config's bit budget allows.
func (c SnowflakeConfig) MaxWorkerID() uint32 {
	return (uint32(1) << c.WorkerBits) - 1
}

// SequenceReset names how often a formatted config's sequence key rotates.
type SequenceReset string

const (
	SequenceResetNever   SequenceReset = "never"
	SequenceResetDaily   SequenceReset = "daily"
	SequenceResetMonthly SequenceReset = "monthly"
	SequenceResetYearly  SequenceReset = "yearly"
)

func (r SequenceReset) valid() bool {
	switch r {
	case SequenceResetNever, SequenceResetDaily, SequenceResetMonthly, SequenceResetYearly:
		return true
	default:
		return false
	}
}

// FormattedConfig parameterizes a templated-string ID.
type FormattedConfig struct {
	Name           string        `json:"name" validate:"required,max=255"`
	Pattern        string        `json:"pattern" validate:"required"`
	SequenceReset  SequenceReset `json:"sequence_reset" validate:"omitempty,oneof=never daily monthly yearly"`
	KeyTokenEnable bool          `json:"key_token_enable"`
}

// Validate checks the shared name invariants, a non-empty pattern, and a
// known reset mode. Placeholder-level validation (e.g. "at least one of
// {SEQ:N}/{UUID}/{RAND:N}") happens in the pattern package, since it requires
// parsing the pattern.
func (c FormattedConfig) Validate() error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Pattern == "" {
		return errInvalid("pattern must not be empty")
	}
	if c.SequenceReset == "" {
		c.SequenceReset = SequenceResetNever
	}
	if !c.SequenceReset.valid() {
		return errInvalid("sequence_reset must be one of: never, daily, monthly, yearly")
	}
	return nil
}

// ItemName satisfies httpserver.NamedItem so config lists can share the
// name-cursor pagination helper.
func (c IncrementConfig) ItemName() string { return c.Name }

// ItemName satisfies httpserver.NamedItem.
func (c SnowflakeConfig) ItemName() string { return c.Name }

// ItemName satisfies httpserver.NamedItem.
func (c FormattedConfig) ItemName() string { return c.Name }
