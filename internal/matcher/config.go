// Package matcher implements the similarity scoring and pairwise duplicate
// checking that power batch deduplication of financial transactions.
//
// The scorer compares two transaction records across four independent
// dimensions and combines them into a single 0-100 confidence score:
//   - Date proximity (tiered by whole-day distance)
//   - Amount proximity (tiered by relative difference)
//   - Description similarity (normalization, containment, edit distance)
//   - Categorical agreement (type and category tags)
//
// Scores are deterministic and symmetric: Score(a, b) == Score(b, a) for any
// pair of records, and Score(a, a) == 100 for any well-formed record.
//
// Example usage:
//
//	config := matcher.DefaultScoringConfig()
//	scorer := matcher.NewScorer(config)
//
//	confidence := scorer.Score(candidate, existing)
//	check := scorer.CheckDuplicate(candidate, corpus)
//	if check.IsDuplicate {
//		// at least one corpus record scored >= config.DuplicateThreshold
//	}
package matcher

import (
	"fmt"
)

// ScoringConfig holds the tunable parameters of the similarity scorer and the
// duplicate checker. The defaults implement the standard sensitivity profile;
// callers adjust individual fields (typically the date tolerance window)
// rather than rebuilding the whole configuration.
type ScoringConfig struct {
	// DateToleranceDays is the window (in whole days) that still earns the
	// near-match date tier. Same-day always scores full credit regardless.
	DateToleranceDays int `json:"date_tolerance_days"`

	// WeekWindowDays and MonthWindowDays bound the two coarser date tiers.
	WeekWindowDays  int `json:"week_window_days"`
	MonthWindowDays int `json:"month_window_days"`

	// AmountTightTolerance is the relative difference (|a-b| / avg magnitude)
	// that still counts as a near-exact amount match.
	AmountTightTolerance float64 `json:"amount_tight_tolerance"`

	// AmountCloseTolerance and AmountLooseTolerance bound the two coarser
	// amount tiers.
	AmountCloseTolerance float64 `json:"amount_close_tolerance"`
	AmountLooseTolerance float64 `json:"amount_loose_tolerance"`

	// DuplicateThreshold is the minimum score counted as a duplicate.
	DuplicateThreshold int `json:"duplicate_threshold"`

	// SimilarThreshold is the minimum score counted as similar-but-not-blocking.
	SimilarThreshold int `json:"similar_threshold"`

	// NearExactThreshold is the minimum score treated as a near-certain
	// duplicate; smart-mode batch deduplication blocks only at this level.
	NearExactThreshold int `json:"near_exact_threshold"`

	// CrossDayCap caps the final score when the two records fall on different
	// calendar days, so amount and description similarity alone can never
	// reach certain-duplicate territory across days.
	CrossDayCap int `json:"cross_day_cap"`

	// Relative weights for the scoring dimensions; must sum to 100.
	Weights ScoringWeights `json:"weights"`
}

// ScoringWeights defines the relative importance of each scoring dimension.
// The categorical weight is split evenly between type and category agreement.
type ScoringWeights struct {
	Date        float64 `json:"date"`
	Amount      float64 `json:"amount"`
	Description float64 `json:"description"`
	Categorical float64 `json:"categorical"`
}

// Total returns the sum of all weights
func (w ScoringWeights) Total() float64 {
	return w.Date + w.Amount + w.Description + w.Categorical
}

// DefaultScoringConfig returns the standard sensitivity profile
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		DateToleranceDays:    1,
		WeekWindowDays:       7,
		MonthWindowDays:      30,
		AmountTightTolerance: 0.001,
		AmountCloseTolerance: 0.05,
		AmountLooseTolerance: 0.10,
		DuplicateThreshold:   95,
		SimilarThreshold:     85,
		NearExactThreshold:   98,
		CrossDayCap:          85,
		Weights: ScoringWeights{
			Date:        35,
			Amount:      45,
			Description: 15,
			Categorical: 5,
		},
	}
}

// StrictScoringConfig returns a profile with no date tolerance window,
// suitable when the candidate source is known to carry accurate dates.
func StrictScoringConfig() *ScoringConfig {
	config := DefaultScoringConfig()
	config.DateToleranceDays = 0
	config.AmountTightTolerance = 0.0
	return config
}

// RelaxedScoringConfig returns a profile with a wider date tolerance window,
// suitable for statements where posting dates lag transaction dates.
func RelaxedScoringConfig() *ScoringConfig {
	config := DefaultScoringConfig()
	config.DateToleranceDays = 3
	return config
}

// Validate checks if the scoring configuration is internally consistent
func (sc *ScoringConfig) Validate() error {
	if sc.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days cannot be negative: %d", sc.DateToleranceDays)
	}

	if sc.WeekWindowDays < sc.DateToleranceDays {
		return fmt.Errorf("week window (%d days) cannot be smaller than the date tolerance (%d days)",
			sc.WeekWindowDays, sc.DateToleranceDays)
	}

	if sc.MonthWindowDays < sc.WeekWindowDays {
		return fmt.Errorf("month window (%d days) cannot be smaller than the week window (%d days)",
			sc.MonthWindowDays, sc.WeekWindowDays)
	}

	if sc.AmountTightTolerance < 0.0 || sc.AmountCloseTolerance < sc.AmountTightTolerance ||
		sc.AmountLooseTolerance < sc.AmountCloseTolerance {
		return fmt.Errorf("amount tolerances must be non-negative and ascending: %f, %f, %f",
			sc.AmountTightTolerance, sc.AmountCloseTolerance, sc.AmountLooseTolerance)
	}

	if sc.SimilarThreshold < 0 || sc.SimilarThreshold > 100 {
		return fmt.Errorf("similar threshold must be between 0 and 100: %d", sc.SimilarThreshold)
	}

	if sc.DuplicateThreshold < sc.SimilarThreshold || sc.DuplicateThreshold > 100 {
		return fmt.Errorf("duplicate threshold must be between the similar threshold and 100: %d", sc.DuplicateThreshold)
	}

	if sc.NearExactThreshold < sc.DuplicateThreshold || sc.NearExactThreshold > 100 {
		return fmt.Errorf("near-exact threshold must be between the duplicate threshold and 100: %d", sc.NearExactThreshold)
	}

	if sc.CrossDayCap < 0 || sc.CrossDayCap > 100 {
		return fmt.Errorf("cross-day cap must be between 0 and 100: %d", sc.CrossDayCap)
	}

	if err := sc.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}

	return nil
}

// Validate checks if the scoring weights are valid
func (w ScoringWeights) Validate() error {
	if w.Date < 0 || w.Amount < 0 || w.Description < 0 || w.Categorical < 0 {
		return fmt.Errorf("weights cannot be negative")
	}

	// Weights are expressed in points of the final score, so they must
	// cover the full 0-100 range exactly.
	if total := w.Total(); total != 100 {
		return fmt.Errorf("weights must sum to 100, got %f", total)
	}

	return nil
}

// Clone creates a deep copy of the scoring configuration
func (sc *ScoringConfig) Clone() *ScoringConfig {
	if sc == nil {
		return nil
	}

	clone := *sc
	return &clone
}

// String returns a human-readable description of the configuration
func (sc *ScoringConfig) String() string {
	return fmt.Sprintf("ScoringConfig{DateTolerance: %d days, Thresholds: %d/%d/%d, Weights: %.0f/%.0f/%.0f/%.0f}",
		sc.DateToleranceDays, sc.SimilarThreshold, sc.DuplicateThreshold, sc.NearExactThreshold,
		sc.Weights.Date, sc.Weights.Amount, sc.Weights.Description, sc.Weights.Categorical)
}
