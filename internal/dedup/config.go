package dedup

import (
	"fmt"
	"strings"

	"transaction-dedup-service/internal/matcher"
)

// Mode selects how aggressively external duplicates block an import.
// The three variants are explicit so an invalid combination (smart and
// strict at once) cannot be expressed.
type Mode int

const (
	// ModeSmart is the default: with borderline suppression enabled, a
	// candidate blocks only on a near-exact match against the corpus, which
	// keeps false positives low at the cost of silently merging borderline
	// duplicates.
	ModeSmart Mode = iota

	// ModeStandard blocks at the regular duplicate threshold.
	ModeStandard

	// ModeStrict blocks at the regular duplicate threshold and never
	// suppresses borderline warnings.
	ModeStrict
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeSmart:
		return "smart"
	case ModeStandard:
		return "standard"
	case ModeStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// IsValid checks if the mode is one of the defined variants
func (m Mode) IsValid() bool {
	return m == ModeSmart || m == ModeStandard || m == ModeStrict
}

// ParseMode parses a mode name from string
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "smart", "":
		return ModeSmart, nil
	case "standard":
		return ModeStandard, nil
	case "strict":
		return ModeStrict, nil
	default:
		return ModeSmart, fmt.Errorf("invalid mode '%s': must be smart, standard or strict", s)
	}
}

// Config holds configuration for batch deduplication
type Config struct {
	// Mode selects the external duplicate threshold behavior.
	Mode Mode `json:"mode"`

	// SuppressBorderline controls whether smart mode silently merges
	// externally-flagged duplicates that stay below the near-exact
	// threshold. A suppressed candidate lands in the accepted list and is
	// not reported as a duplicate. It is a named option precisely so
	// callers can turn it off and see the borderline matches. Standard and
	// strict modes ignore it entirely.
	SuppressBorderline bool `json:"suppress_borderline"`

	// ProgressLogging emits per-pass progress through the operation logger.
	ProgressLogging bool `json:"progress_logging"`

	// Scoring configures the underlying similarity scorer.
	Scoring *matcher.ScoringConfig `json:"scoring"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:               ModeSmart,
		SuppressBorderline: true,
		ProgressLogging:    false,
		Scoring:            matcher.DefaultScoringConfig(),
	}
}

// Validate checks if the deduplication configuration is valid
func (c *Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("invalid mode: %d", c.Mode)
	}

	if c.Scoring == nil {
		return fmt.Errorf("scoring configuration is required")
	}

	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	clone.Scoring = c.Scoring.Clone()
	return &clone
}
