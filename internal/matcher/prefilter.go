package matcher

import (
	"time"

	"transaction-dedup-service/internal/models"
)

// PrefilterStats describes the effect of a corpus prefilter pass
type PrefilterStats struct {
	TotalRecords    int       `json:"total_records"`
	RetainedRecords int       `json:"retained_records"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
}

// FilterCorpusByWindow narrows an existing corpus to the records whose
// calendar day falls within windowDays of the date range spanned by the
// candidate batch. It is a caller-side optimization for large corpora: the
// engine itself always scans whatever set it is handed, so pre-filtering is
// the caller's responsibility and must be applied before invocation.
//
// Input order is preserved so best-match tie-breaking stays reproducible,
// and the corpus slice is never mutated. Records without a usable date are
// retained; the scorer already treats them as worst-case date matches.
// A windowDays below zero disables filtering and returns the corpus as-is.
func FilterCorpusByWindow(existing, candidates []*models.Transaction, windowDays int) ([]*models.Transaction, PrefilterStats) {
	stats := PrefilterStats{
		TotalRecords:    len(existing),
		RetainedRecords: len(existing),
	}

	if windowDays < 0 || len(existing) == 0 || len(candidates) == 0 {
		return existing, stats
	}

	var minDay, maxDay time.Time
	for _, candidate := range candidates {
		if candidate == nil || candidate.Date.IsZero() {
			continue
		}

		day := candidate.Day()
		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if maxDay.IsZero() || day.After(maxDay) {
			maxDay = day
		}
	}

	// No candidate carries a date; nothing meaningful to filter on.
	if minDay.IsZero() {
		return existing, stats
	}

	stats.WindowStart = minDay.AddDate(0, 0, -windowDays)
	stats.WindowEnd = maxDay.AddDate(0, 0, windowDays)

	filtered := make([]*models.Transaction, 0, len(existing))
	for _, record := range existing {
		if record == nil {
			continue
		}

		if record.Date.IsZero() {
			filtered = append(filtered, record)
			continue
		}

		day := record.Day()
		if day.Before(stats.WindowStart) || day.After(stats.WindowEnd) {
			continue
		}

		filtered = append(filtered, record)
	}

	stats.RetainedRecords = len(filtered)
	return filtered, stats
}
