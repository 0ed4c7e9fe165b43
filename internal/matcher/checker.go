package matcher

import (
	"transaction-dedup-service/internal/models"
)

// Match pairs a candidate with one counterpart record and the confidence
// score between them.
type Match struct {
	Candidate  *models.Transaction `json:"candidate"`
	Matched    *models.Transaction `json:"matched"`
	Confidence int                 `json:"confidence"`
}

// DuplicateCheck is the result of comparing one candidate against an
// existing set of transactions.
type DuplicateCheck struct {
	// IsDuplicate is true when at least one existing record scored at or
	// above the duplicate threshold.
	IsDuplicate bool `json:"is_duplicate"`

	// MatchCount is the number of existing records that reached at least the
	// similar threshold.
	MatchCount int `json:"match_count"`

	// DuplicateMatches holds all matches at or above the duplicate threshold.
	DuplicateMatches []*Match `json:"duplicate_matches,omitempty"`

	// SimilarMatches holds matches between the similar and duplicate
	// thresholds; worth flagging but not blocking.
	SimilarMatches []*Match `json:"similar_matches,omitempty"`

	// BestConfidence is the maximum score seen across all comparisons,
	// regardless of threshold.
	BestConfidence int `json:"best_confidence"`
}

// CheckDuplicate compares a candidate against every record in the existing
// set and buckets the results by confidence. The existing set is scanned in
// input order and is never mutated.
func (s *Scorer) CheckDuplicate(candidate *models.Transaction, existing []*models.Transaction) *DuplicateCheck {
	check := &DuplicateCheck{}

	for _, record := range existing {
		score := s.Score(candidate, record)

		if score > check.BestConfidence {
			check.BestConfidence = score
		}

		switch {
		case score >= s.Config.DuplicateThreshold:
			check.DuplicateMatches = append(check.DuplicateMatches, &Match{
				Candidate:  candidate,
				Matched:    record,
				Confidence: score,
			})
		case score >= s.Config.SimilarThreshold:
			check.SimilarMatches = append(check.SimilarMatches, &Match{
				Candidate:  candidate,
				Matched:    record,
				Confidence: score,
			})
		}
	}

	check.IsDuplicate = len(check.DuplicateMatches) > 0
	check.MatchCount = len(check.DuplicateMatches) + len(check.SimilarMatches)

	return check
}

// FindBestMatch returns the single highest-scoring record for the candidate
// and its score. Ties are broken by the first record encountered in
// iteration order, which keeps batch runs reproducible. The second return
// value is false when the existing set is empty.
func (s *Scorer) FindBestMatch(candidate *models.Transaction, existing []*models.Transaction) (*Match, bool) {
	var best *Match

	for _, record := range existing {
		score := s.Score(candidate, record)

		if best == nil || score > best.Confidence {
			best = &Match{
				Candidate:  candidate,
				Matched:    record,
				Confidence: score,
			}
		}
	}

	if best == nil {
		return nil, false
	}

	return best, true
}
