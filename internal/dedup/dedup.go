// Package dedup implements batch deduplication of candidate transactions
// against a previously recorded corpus.
//
// A batch run makes two passes:
//  1. Internal deduplication: a single left-to-right pass over the candidate
//     list that removes candidates duplicating an earlier candidate in the
//     same batch. Order matters and is preserved exactly, so a candidate can
//     only duplicate something earlier in the batch, never something later.
//  2. External deduplication: each surviving candidate is checked against
//     the existing corpus and flagged at the duplicate threshold; smart mode
//     then suppresses flagged matches below the near-exact threshold.
//
// The result is an ImportSummary with counts, accepted/rejected record
// lists, and the duplicate pairs found by each pass. Input slices are never
// mutated; all outputs reference the original records.
package dedup

import (
	"time"

	"transaction-dedup-service/internal/matcher"
	"transaction-dedup-service/internal/models"
	"transaction-dedup-service/pkg/errors"
	"transaction-dedup-service/pkg/logger"

	"github.com/google/uuid"
)

// ImportSummary aggregates the outcome of one batch deduplication run.
// Summaries are constructed fresh per batch and have no persisted lifecycle.
type ImportSummary struct {
	// BatchID uniquely identifies this run for reporting and log correlation.
	BatchID string `json:"batch_id"`

	// Mode the run was executed under.
	Mode Mode `json:"-"`

	// ModeName is the serialized form of Mode.
	ModeName string `json:"mode"`

	// TotalTransactions is the candidate count before any removal.
	TotalTransactions int `json:"total_transactions"`

	// NewTransactions is the accepted count after both passes.
	NewTransactions int `json:"new_transactions"`

	// DuplicateTransactions is the external duplicate count, subject to
	// borderline suppression.
	DuplicateTransactions int `json:"duplicate_transactions"`

	// SkippedTransactions is the internal duplicate count.
	SkippedTransactions int `json:"skipped_transactions"`

	// Accepted lists the candidates classified as new, in input order.
	Accepted []*models.Transaction `json:"accepted"`

	// Rejected lists the candidates blocked as external duplicates.
	Rejected []*models.Transaction `json:"rejected,omitempty"`

	// ExternalDuplicates pairs each rejected candidate with its best
	// corpus match and the confidence between them.
	ExternalDuplicates []*matcher.Match `json:"external_duplicates,omitempty"`

	// InternalDuplicates pairs each skipped candidate with the earlier
	// candidate in the same batch that it duplicates.
	InternalDuplicates []*matcher.Match `json:"internal_duplicates,omitempty"`

	ProcessedAt time.Time     `json:"processed_at"`
	Duration    time.Duration `json:"duration"`
}

// Deduplicator runs batch deduplication with a fixed configuration
type Deduplicator struct {
	config *Config
	scorer *matcher.Scorer
	logger logger.Logger
}

// NewDeduplicator creates a deduplicator with the specified configuration
func NewDeduplicator(config *Config) (*Deduplicator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "dedup_config", config, err)
	}

	return &Deduplicator{
		config: config.Clone(),
		scorer: matcher.NewScorer(config.Scoring),
		logger: logger.GetGlobalLogger().WithComponent("dedup"),
	}, nil
}

// Config returns a copy of the active configuration
func (d *Deduplicator) Config() *Config {
	return d.config.Clone()
}

// Deduplicate classifies every candidate as new, internal duplicate, or
// external duplicate against the existing corpus, and returns the batch
// summary. Candidates and existing are read-only inputs.
func (d *Deduplicator) Deduplicate(candidates, existing []*models.Transaction) (*ImportSummary, error) {
	start := time.Now()

	summary := &ImportSummary{
		BatchID:           uuid.NewString(),
		Mode:              d.config.Mode,
		ModeName:          d.config.Mode.String(),
		TotalTransactions: len(candidates),
		ProcessedAt:       start,
	}

	var op *logger.OperationLogger
	if d.config.ProgressLogging {
		op = logger.NewOperationLogger("batch_dedup", d.logger).
			WithField("batch_id", summary.BatchID).
			WithField("mode", summary.ModeName)
	}

	// Pass 1: internal deduplication against the accepted-so-far list.
	if op != nil {
		op.Step("internal_dedup")
	}
	survivors := d.dedupWithinBatch(candidates, summary)

	// Pass 2: external deduplication against the corpus.
	if op != nil {
		op.Step("external_dedup")
	}
	flagged := d.dedupAgainstCorpus(survivors, existing, op)

	// Borderline suppression: in smart mode, flagged duplicates below the
	// near-exact threshold are silently merged back into the accepted list
	// instead of being surfaced. Standard and strict modes always surface.
	if d.config.Mode == ModeSmart && d.config.SuppressBorderline {
		kept := make([]*matcher.Match, 0, len(flagged))
		for _, match := range flagged {
			if match.Confidence >= d.config.Scoring.NearExactThreshold {
				kept = append(kept, match)
			}
		}

		if suppressed := len(flagged) - len(kept); suppressed > 0 {
			d.logger.WithFields(logger.Fields{
				"batch_id":   summary.BatchID,
				"suppressed": suppressed,
			}).Info("Suppressing borderline external duplicates")
		}
		flagged = kept
	}

	accepted := excludeFlagged(survivors, flagged)

	summary.Accepted = accepted
	summary.NewTransactions = len(accepted)
	summary.ExternalDuplicates = flagged
	summary.DuplicateTransactions = len(flagged)
	for _, match := range flagged {
		summary.Rejected = append(summary.Rejected, match.Candidate)
	}
	summary.Duration = time.Since(start)

	if op != nil {
		op.WithField("new", summary.NewTransactions).
			WithField("duplicates", summary.DuplicateTransactions).
			WithField("skipped", summary.SkippedTransactions).
			Success("Batch deduplication completed")
	}

	return summary, nil
}

// dedupWithinBatch performs the single left-to-right internal pass. Each
// candidate is scored against everything accepted so far; at or above the
// duplicate threshold it is recorded as an internal duplicate of the earlier
// record and excluded from further processing.
func (d *Deduplicator) dedupWithinBatch(candidates []*models.Transaction, summary *ImportSummary) []*models.Transaction {
	accepted := make([]*models.Transaction, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}

		best, ok := d.scorer.FindBestMatch(candidate, accepted)
		if ok && best.Confidence >= d.config.Scoring.DuplicateThreshold {
			summary.InternalDuplicates = append(summary.InternalDuplicates, best)
			continue
		}

		accepted = append(accepted, candidate)
	}

	summary.SkippedTransactions = len(summary.InternalDuplicates)
	return accepted
}

// dedupAgainstCorpus flags each surviving candidate whose best corpus match
// reaches the duplicate threshold. A candidate with no best match (empty
// corpus) is always new.
func (d *Deduplicator) dedupAgainstCorpus(survivors, existing []*models.Transaction, op *logger.OperationLogger) []*matcher.Match {
	var flagged []*matcher.Match

	for i, candidate := range survivors {
		best, ok := d.scorer.FindBestMatch(candidate, existing)
		if ok && best.Confidence >= d.config.Scoring.DuplicateThreshold {
			flagged = append(flagged, best)
		}

		if op != nil && (i+1)%500 == 0 {
			op.Progress("Checking candidates against corpus", i+1, len(survivors))
		}
	}

	return flagged
}

// excludeFlagged returns the survivors that were not flagged as external
// duplicates, preserving input order.
func excludeFlagged(survivors []*models.Transaction, flagged []*matcher.Match) []*models.Transaction {
	if len(flagged) == 0 {
		return survivors
	}

	blocked := make(map[*models.Transaction]struct{}, len(flagged))
	for _, match := range flagged {
		blocked[match.Candidate] = struct{}{}
	}

	accepted := make([]*models.Transaction, 0, len(survivors)-len(flagged))
	for _, candidate := range survivors {
		if _, ok := blocked[candidate]; ok {
			continue
		}
		accepted = append(accepted, candidate)
	}

	return accepted
}
