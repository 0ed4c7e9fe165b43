package matcher

import (
	"math"
	"strings"

	"transaction-dedup-service/internal/models"

	"github.com/shopspring/decimal"
)

// Scorer computes similarity confidence scores between transaction records
type Scorer struct {
	Config *ScoringConfig
}

// NewScorer creates a new scorer with the specified configuration
func NewScorer(config *ScoringConfig) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	}

	return &Scorer{
		Config: config,
	}
}

// Score computes the confidence that two transaction records describe the
// same real-world transaction, as an integer between 0 and 100.
//
// An exact match on calendar day, amount, normalized description and type
// short-circuits to 100. Otherwise the score is a weighted combination of
// date, amount, description and categorical sub-scores, capped at the
// configured cross-day limit when the records fall on different days.
//
// The function is symmetric and never mutates its inputs.
func (s *Scorer) Score(a, b *models.Transaction) int {
	if a == nil || b == nil {
		return 0
	}

	normA := NormalizeDescription(a.Description)
	normB := NormalizeDescription(b.Description)

	// A zero date cannot be placed on a calendar day, so it never counts as
	// same-day and earns no date credit; the record still scores on its
	// remaining fields.
	sameDay := !a.Date.IsZero() && !b.Date.IsZero() && a.SameDay(b)

	if sameDay && a.Amount.Equal(b.Amount) && normA == normB && a.Type == b.Type {
		return 100
	}

	weights := s.Config.Weights
	weighted := s.dateScore(a, b)*weights.Date +
		s.amountScore(a.Amount, b.Amount)*weights.Amount +
		descriptionSimilarity(normA, normB)*weights.Description +
		s.categoricalScore(a, b)*weights.Categorical

	score := int(math.Round(weighted))

	if !sameDay && score > s.Config.CrossDayCap {
		score = s.Config.CrossDayCap
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score
}

// dateScore returns the date proximity sub-score in [0, 1], tiered by the
// absolute whole-day distance between the two calendar days.
func (s *Scorer) dateScore(a, b *models.Transaction) float64 {
	if a.Date.IsZero() || b.Date.IsZero() {
		return 0.0
	}

	days := a.DaysApart(b)

	switch {
	case days == 0:
		return 1.0
	case days <= s.Config.DateToleranceDays:
		return 0.8
	case days <= s.Config.WeekWindowDays:
		return 0.5
	case days <= s.Config.MonthWindowDays:
		return 0.2
	default:
		return 0.0
	}
}

// amountScore returns the amount proximity sub-score in [0, 1], tiered by
// the relative difference between the two amounts.
func (s *Scorer) amountScore(a, b decimal.Decimal) float64 {
	if a.Equal(b) {
		// Also covers both amounts being zero, which would otherwise divide
		// by a zero average below.
		return 1.0
	}

	two := decimal.NewFromInt(2)
	average := a.Abs().Add(b.Abs()).Div(two)
	if average.IsZero() {
		return 0.0
	}

	relative := a.Sub(b).Abs().Div(average).InexactFloat64()

	switch {
	case relative <= s.Config.AmountTightTolerance:
		return 0.95
	case relative <= s.Config.AmountCloseTolerance:
		return 0.8
	case relative <= s.Config.AmountLooseTolerance:
		return 0.5
	default:
		return 0.0
	}
}

// categoricalScore returns the categorical agreement sub-score in [0, 1],
// half for matching type and half for matching category.
func (s *Scorer) categoricalScore(a, b *models.Transaction) float64 {
	score := 0.0

	if a.Type == b.Type {
		score += 0.5
	}

	if strings.EqualFold(strings.TrimSpace(a.Category), strings.TrimSpace(b.Category)) {
		score += 0.5
	}

	return score
}
