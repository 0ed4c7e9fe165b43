// Package reporter renders import summaries for terminal and programmatic
// consumption.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data format for programmatic consumption
//   - CSV: row-per-transaction format for spreadsheet applications
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateReport(summary, os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"transaction-dedup-service/internal/dedup"
	"transaction-dedup-service/internal/matcher"
	"transaction-dedup-service/internal/models"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	// Output format
	Format OutputFormat `json:"format"`

	// Detail level options
	IncludeAccepted           bool `json:"include_accepted"`
	IncludeDuplicates         bool `json:"include_duplicates"`
	IncludeInternalDuplicates bool `json:"include_internal_duplicates"`

	// Console formatting options
	SortByAmount bool `json:"sort_by_amount"`
	MaxListItems int  `json:"max_list_items"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                    FormatConsole,
		IncludeAccepted:           false,
		IncludeDuplicates:         true,
		IncludeInternalDuplicates: true,
		SortByAmount:              false,
		MaxListItems:              10,
		CSVDelimiter:              ',',
		CSVHeaders:                true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxListItems <= 0 {
		return fmt.Errorf("max list items must be positive, got %d", c.MaxListItems)
	}

	return nil
}

// ReportGenerator generates import reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport renders an import summary and writes it to the provided writer
func (rg *ReportGenerator) GenerateReport(summary *dedup.ImportSummary, writer io.Writer) error {
	if summary == nil {
		return fmt.Errorf("import summary cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(summary, writer)
	case FormatJSON:
		return rg.generateJSONReport(summary, writer)
	case FormatCSV:
		return rg.generateCSVReport(summary, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(summary *dedup.ImportSummary, writer io.Writer) error {
	fmt.Fprintf(writer, "IMPORT REPORT\n")
	fmt.Fprintf(writer, "Batch:     %s\n", summary.BatchID)
	fmt.Fprintf(writer, "Mode:      %s\n", summary.ModeName)
	fmt.Fprintf(writer, "Generated: %s\n", summary.ProcessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration:  %v\n\n", summary.Duration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printSummaryTable(summary, writer)
	fmt.Fprintf(writer, "\n")

	if rg.config.IncludeDuplicates && len(summary.ExternalDuplicates) > 0 {
		fmt.Fprintf(writer, "=== DUPLICATES OF EXISTING TRANSACTIONS ===\n")
		rg.printMatchList(summary.ExternalDuplicates, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeInternalDuplicates && len(summary.InternalDuplicates) > 0 {
		fmt.Fprintf(writer, "=== DUPLICATES WITHIN THE BATCH ===\n")
		rg.printMatchList(summary.InternalDuplicates, writer)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeAccepted && len(summary.Accepted) > 0 {
		fmt.Fprintf(writer, "=== ACCEPTED TRANSACTIONS ===\n")
		rg.printTransactionList(summary.Accepted, writer)
	}

	return nil
}

// generateJSONReport generates a structured JSON report
func (rg *ReportGenerator) generateJSONReport(summary *dedup.ImportSummary, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rg.filterSummaryForOutput(summary))
}

// generateCSVReport writes one row per candidate with its classification
func (rg *ReportGenerator) generateCSVReport(summary *dedup.ImportSummary, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{
			"Status",
			"ID",
			"Date",
			"Amount",
			"Type",
			"Description",
			"Matched_ID",
			"Confidence",
		}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if rg.config.IncludeAccepted {
		for _, tx := range summary.Accepted {
			record := append(transactionFields("New", tx), "", "")
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write accepted record: %w", err)
			}
		}
	}

	if rg.config.IncludeDuplicates {
		for _, match := range summary.ExternalDuplicates {
			record := append(transactionFields("Duplicate", match.Candidate),
				match.Matched.ID, fmt.Sprintf("%d", match.Confidence))
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write duplicate record: %w", err)
			}
		}
	}

	if rg.config.IncludeInternalDuplicates {
		for _, match := range summary.InternalDuplicates {
			record := append(transactionFields("Skipped", match.Candidate),
				match.Matched.ID, fmt.Sprintf("%d", match.Confidence))
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write skipped record: %w", err)
			}
		}
	}

	return nil
}

func transactionFields(status string, tx *models.Transaction) []string {
	return []string{
		status,
		tx.ID,
		tx.Date.Format("2006-01-02"),
		tx.Amount.StringFixed(2),
		string(tx.Type),
		tx.Description,
	}
}

// Helper methods for console output formatting

func (rg *ReportGenerator) printSummaryTable(summary *dedup.ImportSummary, writer io.Writer) {
	fmt.Fprintf(writer, "Transactions:\n")
	fmt.Fprintf(writer, "  Total:      %d\n", summary.TotalTransactions)
	fmt.Fprintf(writer, "  New:        %d (%.1f%%)\n",
		summary.NewTransactions,
		rg.calculatePercentage(summary.NewTransactions, summary.TotalTransactions))
	fmt.Fprintf(writer, "  Duplicates: %d (%.1f%%)\n",
		summary.DuplicateTransactions,
		rg.calculatePercentage(summary.DuplicateTransactions, summary.TotalTransactions))
	fmt.Fprintf(writer, "  Skipped:    %d (%.1f%%)\n",
		summary.SkippedTransactions,
		rg.calculatePercentage(summary.SkippedTransactions, summary.TotalTransactions))
}

func (rg *ReportGenerator) printMatchList(matches []*matcher.Match, writer io.Writer) {
	fmt.Fprintf(writer, "Total: %d\n\n", len(matches))

	for i, match := range matches {
		fmt.Fprintf(writer, "  %d. %s (%s, %s) matches %s at confidence %d\n",
			i+1,
			match.Candidate.ID,
			match.Candidate.Date.Format("2006-01-02"),
			match.Candidate.Amount.StringFixed(2),
			match.Matched.ID,
			match.Confidence)

		if i >= rg.config.MaxListItems-1 && len(matches) > rg.config.MaxListItems {
			fmt.Fprintf(writer, "  ... and %d more\n", len(matches)-rg.config.MaxListItems)
			break
		}
	}
}

func (rg *ReportGenerator) printTransactionList(transactions []*models.Transaction, writer io.Writer) {
	list := transactions
	if rg.config.SortByAmount {
		list = make([]*models.Transaction, len(transactions))
		copy(list, transactions)
		sort.Slice(list, func(i, j int) bool {
			return list[i].Amount.Abs().GreaterThan(list[j].Amount.Abs())
		})
	}

	for i, tx := range list {
		fmt.Fprintf(writer, "  %d. ID: %s, Date: %s, Amount: %s, Type: %s\n",
			i+1,
			tx.ID,
			tx.Date.Format("2006-01-02"),
			tx.Amount.StringFixed(2),
			tx.Type)

		if i >= rg.config.MaxListItems-1 && len(list) > rg.config.MaxListItems {
			fmt.Fprintf(writer, "  ... and %d more\n", len(list)-rg.config.MaxListItems)
			break
		}
	}
}

func (rg *ReportGenerator) calculatePercentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}

func (rg *ReportGenerator) filterSummaryForOutput(summary *dedup.ImportSummary) map[string]interface{} {
	output := map[string]interface{}{
		"batch_id":               summary.BatchID,
		"mode":                   summary.ModeName,
		"total_transactions":     summary.TotalTransactions,
		"new_transactions":       summary.NewTransactions,
		"duplicate_transactions": summary.DuplicateTransactions,
		"skipped_transactions":   summary.SkippedTransactions,
		"processed_at":           summary.ProcessedAt,
		"duration":               summary.Duration.String(),
	}

	if rg.config.IncludeAccepted && summary.Accepted != nil {
		output["accepted"] = summary.Accepted
	}

	if rg.config.IncludeDuplicates && summary.ExternalDuplicates != nil {
		output["external_duplicates"] = summary.ExternalDuplicates
	}

	if rg.config.IncludeInternalDuplicates && summary.InternalDuplicates != nil {
		output["internal_duplicates"] = summary.InternalDuplicates
	}

	return output
}

// UpdateConfiguration updates the report generator configuration
func (rg *ReportGenerator) UpdateConfiguration(config *ReportConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid report configuration: %w", err)
	}

	rg.config = config
	return nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
