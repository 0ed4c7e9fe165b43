package parsers

import (
	"fmt"
	"strings"
)

// TransactionParserConfig holds configuration for parsing transaction CSV
// files. ColumnAliases maps an alternate header name (lowercase) to the
// standard column name it stands in for, e.g. "tx_id" -> "id".
type TransactionParserConfig struct {
	IDColumn          string            `json:"id_column"`
	DateColumn        string            `json:"date_column"`
	AmountColumn      string            `json:"amount_column"`
	DescriptionColumn string            `json:"description_column"`
	TypeColumn        string            `json:"type_column"`
	CategoryColumn    string            `json:"category_column"`
	HasHeader         bool              `json:"has_header"`
	Delimiter         rune              `json:"delimiter"`
	ColumnAliases     map[string]string `json:"column_aliases,omitempty"`
}

// Validate checks if the transaction parser configuration is valid
func (tpc *TransactionParserConfig) Validate() error {
	if strings.TrimSpace(tpc.IDColumn) == "" {
		return fmt.Errorf("ID column cannot be empty")
	}

	if strings.TrimSpace(tpc.DateColumn) == "" {
		return fmt.Errorf("date column cannot be empty")
	}

	if strings.TrimSpace(tpc.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}

	if strings.TrimSpace(tpc.DescriptionColumn) == "" {
		return fmt.Errorf("description column cannot be empty")
	}

	if strings.TrimSpace(tpc.TypeColumn) == "" {
		return fmt.Errorf("type column cannot be empty")
	}

	if tpc.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}

	return nil
}

// GetColumnName returns the configured column name for a standard field.
// Aliases are resolved at header-map construction time, not here: a file
// whose headers use alias names still exposes its columns under these names.
func (tpc *TransactionParserConfig) GetColumnName(standardName string) string {
	switch standardName {
	case "id":
		return tpc.IDColumn
	case "date":
		return tpc.DateColumn
	case "amount":
		return tpc.AmountColumn
	case "description":
		return tpc.DescriptionColumn
	case "type":
		return tpc.TypeColumn
	case "category":
		return tpc.CategoryColumn
	default:
		return standardName
	}
}

// DefaultTransactionParserConfig returns a configuration with standard defaults
func DefaultTransactionParserConfig() *TransactionParserConfig {
	return &TransactionParserConfig{
		IDColumn:          "id",
		DateColumn:        "date",
		AmountColumn:      "amount",
		DescriptionColumn: "description",
		TypeColumn:        "type",
		CategoryColumn:    "category",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases:     make(map[string]string),
	}
}

// Predefined export configurations for common source applications
var (
	// StandardExportConfig represents a generic transaction export format
	StandardExportConfig = &TransactionParserConfig{
		IDColumn:          "id",
		DateColumn:        "date",
		AmountColumn:      "amount",
		DescriptionColumn: "description",
		TypeColumn:        "type",
		CategoryColumn:    "category",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases:     make(map[string]string),
	}

	// LedgerAppExportConfig matches exports from ledger-style apps that use
	// posted_date/memo column naming.
	LedgerAppExportConfig = &TransactionParserConfig{
		IDColumn:          "transaction_id",
		DateColumn:        "posted_date",
		AmountColumn:      "amount",
		DescriptionColumn: "memo",
		TypeColumn:        "direction",
		CategoryColumn:    "category",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases:     make(map[string]string),
	}

	// SemicolonExportConfig matches exports from European tools that use a
	// semicolon delimiter.
	SemicolonExportConfig = &TransactionParserConfig{
		IDColumn:          "id",
		DateColumn:        "booking_date",
		AmountColumn:      "amount",
		DescriptionColumn: "details",
		TypeColumn:        "type",
		CategoryColumn:    "category",
		HasHeader:         true,
		Delimiter:         ';',
		ColumnAliases:     make(map[string]string),
	}
)

// GetExportConfig returns a predefined export configuration by name
func GetExportConfig(name string) *TransactionParserConfig {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standard", "":
		return StandardExportConfig
	case "ledger":
		return LedgerAppExportConfig
	case "semicolon":
		return SemicolonExportConfig
	default:
		return nil
	}
}

// AutoDetectExportConfig attempts to detect the export format from headers.
// Falls back to the standard configuration when nothing matches fully.
func AutoDetectExportConfig(headers []string) *TransactionParserConfig {
	headerMap := make(map[string]bool)
	for _, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = true
	}

	configs := []*TransactionParserConfig{
		StandardExportConfig,
		LedgerAppExportConfig,
		SemicolonExportConfig,
	}

	for _, config := range configs {
		if headerMap[strings.ToLower(config.IDColumn)] &&
			headerMap[strings.ToLower(config.DateColumn)] &&
			headerMap[strings.ToLower(config.AmountColumn)] &&
			headerMap[strings.ToLower(config.DescriptionColumn)] {
			return config
		}
	}

	return StandardExportConfig
}
