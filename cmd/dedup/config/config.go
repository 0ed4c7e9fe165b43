package config

import (
	"transaction-dedup-service/internal/dedup"
	"transaction-dedup-service/internal/matcher"
	"transaction-dedup-service/internal/parsers"
	"transaction-dedup-service/internal/reporter"
)

// CreateTransactionParserConfig creates a parser configuration with aliases
// for column names seen in common export tools
func CreateTransactionParserConfig() (*parsers.TransactionParserConfig, error) {
	return &parsers.TransactionParserConfig{
		IDColumn:          "id",
		DateColumn:        "date",
		AmountColumn:      "amount",
		DescriptionColumn: "description",
		TypeColumn:        "type",
		CategoryColumn:    "category",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases: map[string]string{
			// Common aliases for transaction columns
			"tx_id":            "id",
			"txn_id":           "id",
			"transaction_id":   "id",
			"amt":              "amount",
			"value":            "amount",
			"sum":              "amount",
			"memo":             "description",
			"details":          "description",
			"narration":        "description",
			"transaction_type": "type",
			"tx_type":          "type",
			"direction":        "type",
			"posted_date":      "date",
			"booking_date":     "date",
			"transaction_date": "date",
			"tag":              "category",
			"label":            "category",
		},
	}, nil
}

// CreateScoringConfig creates a scoring configuration with CLI overrides applied
func CreateScoringConfig(mode dedup.Mode, dateTolerance int) *matcher.ScoringConfig {
	var config *matcher.ScoringConfig
	if mode == dedup.ModeStrict {
		config = matcher.StrictScoringConfig()
	} else {
		config = matcher.DefaultScoringConfig()
	}

	if dateTolerance >= 0 {
		config.DateToleranceDays = dateTolerance
	}

	return config
}

// CreateDedupConfig creates a deduplicator configuration from CLI flags
func CreateDedupConfig(mode dedup.Mode, scoring *matcher.ScoringConfig, suppressBorderline, progress bool) *dedup.Config {
	config := dedup.DefaultConfig()

	config.Mode = mode
	config.Scoring = scoring
	config.SuppressBorderline = suppressBorderline
	config.ProgressLogging = progress

	return config
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "console":
		config.Format = reporter.FormatConsole
		config.IncludeDuplicates = true
		config.IncludeInternalDuplicates = true
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeDuplicates = true
		config.IncludeInternalDuplicates = true
		config.IncludeAccepted = true
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeAccepted = true
		config.IncludeDuplicates = true
		config.IncludeInternalDuplicates = true
	}

	return config
}
