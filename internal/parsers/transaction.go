package parsers

import (
	"context"
	"fmt"
	"io"

	"transaction-dedup-service/internal/models"
	"transaction-dedup-service/pkg/errors"
	"transaction-dedup-service/pkg/logger"
)

// TransactionParser handles parsing of transaction export CSV files
type TransactionParser struct {
	*BaseParser
	config *TransactionParserConfig
	logger logger.Logger
}

// NewTransactionParser creates a new TransactionParser with the given configuration
func NewTransactionParser(config *TransactionParserConfig) (*TransactionParser, error) {
	if config == nil {
		config = DefaultTransactionParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"transaction_parser_config",
			config,
			err,
		).WithSuggestion("Check the transaction parser configuration values")
	}

	parseConfig := &ParseConfig{
		HasHeader:        config.HasHeader,
		Delimiter:        config.Delimiter,
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
		ColumnAliases:    config.ColumnAliases,
	}

	log := logger.GetGlobalLogger().WithComponent("transaction_parser")
	log.WithFields(logger.Fields{
		"has_header": config.HasHeader,
		"delimiter":  string(config.Delimiter),
	}).Debug("Created transaction parser")

	return &TransactionParser{
		BaseParser: NewBaseParser(parseConfig),
		config:     config,
		logger:     log,
	}, nil
}

// ParseTransactions parses a CSV file containing transactions
func (tp *TransactionParser) ParseTransactions(filePath string) ([]*models.Transaction, *ParseStats, error) {
	return tp.ParseTransactionsWithContext(context.Background(), filePath)
}

// ParseTransactionsWithContext parses transactions with cancellation support.
// Malformed rows are recorded in the returned stats and skipped; only file
// level failures produce an error.
func (tp *TransactionParser) ParseTransactionsWithContext(ctx context.Context, filePath string) ([]*models.Transaction, *ParseStats, error) {
	tp.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"operation": "parse_transactions",
	}).Info("Starting transaction parsing")

	file, reader, err := tp.OpenFile(filePath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	requiredHeaders := tp.getRequiredHeaders()
	if err := tp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		tp.logger.WithError(err).WithFields(logger.Fields{
			"file_path":        filePath,
			"required_headers": requiredHeaders,
		}).Error("Failed to read or validate headers")
		return nil, stats, err
	}

	var transactions []*models.Transaction

	for {
		if parseCtx.IsCancelled() {
			tp.logger.Warn("Transaction parsing was cancelled")
			return transactions, stats, errors.InternalError(
				errors.CodeUnexpectedError,
				"transaction_parsing",
				fmt.Errorf("parsing cancelled by context"),
			)
		}

		record, err := tp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}

			parseError := errors.ParseError(
				errors.CodeInvalidFormat,
				filePath,
				parseCtx.LineNumber,
				"record",
				"",
				err,
			)
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: parseError.Message,
				Err:     parseError,
			})
			continue
		}

		stats.RecordsParsed++

		transaction, parseErr := tp.parseTransactionFromRecord(record, parseCtx, filePath)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		if err := transaction.Validate(); err != nil {
			tp.logger.WithError(err).WithFields(logger.Fields{
				"line_number": parseCtx.LineNumber,
				"id":          transaction.ID,
			}).Warn("Transaction validation failed")

			validationError := errors.ValidationError(
				errors.CodeInvalidData,
				"transaction",
				transaction.ID,
				err,
			)
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: validationError.Message,
				Err:     validationError,
			})
			continue
		}

		transactions = append(transactions, transaction)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	tp.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"total_lines":    stats.TotalLines,
		"records_parsed": stats.RecordsParsed,
		"records_valid":  stats.RecordsValid,
		"error_count":    len(stats.Errors),
	}).Info("Transaction parsing completed")

	if len(stats.Errors) > 0 {
		tp.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors during parsing")
	}

	return transactions, stats, nil
}

// getRequiredHeaders returns the header names that must be present.
// Category is optional; exports from older app versions omit it.
func (tp *TransactionParser) getRequiredHeaders() []string {
	return []string{
		tp.config.GetColumnName("id"),
		tp.config.GetColumnName("date"),
		tp.config.GetColumnName("amount"),
		tp.config.GetColumnName("description"),
		tp.config.GetColumnName("type"),
	}
}

// parseTransactionFromRecord creates a Transaction from a CSV record
func (tp *TransactionParser) parseTransactionFromRecord(record []string, parseCtx *ParseContext, filePath string) (*models.Transaction, *ParseError) {
	fields := make(map[string]string, 5)
	for _, name := range []string{"id", "date", "amount", "description", "type"} {
		column := tp.config.GetColumnName(name)
		value, err := tp.GetFieldValue(record, parseCtx, column)
		if err != nil {
			parseError := errors.ParseError(
				errors.CodeMissingField,
				filePath,
				parseCtx.LineNumber,
				column,
				"",
				err,
			).WithSuggestion(fmt.Sprintf("Ensure the %s column exists and has a value", column))

			return nil, &ParseError{
				Line:    parseCtx.LineNumber,
				Field:   column,
				Message: parseError.Message,
				Err:     parseError,
			}
		}
		fields[name] = value
	}

	category := tp.GetOptionalFieldValue(record, parseCtx, tp.config.GetColumnName("category"))

	transaction, err := models.CreateTransactionFromCSV(
		fields["id"], fields["date"], fields["amount"],
		fields["description"], fields["type"], category,
	)
	if err != nil {
		tp.logger.WithError(err).WithFields(logger.Fields{
			"line_number": parseCtx.LineNumber,
			"id":          fields["id"],
			"amount":      fields["amount"],
			"type":        fields["type"],
			"date":        fields["date"],
		}).Warn("Failed to create transaction from CSV data")

		parseError := errors.ParseError(
			tp.categorizeError(err),
			filePath,
			parseCtx.LineNumber,
			"transaction_data",
			fmt.Sprintf("id=%s, date=%s, amount=%s, type=%s",
				fields["id"], fields["date"], fields["amount"], fields["type"]),
			err,
		).WithSuggestion(tp.suggestionForError(err))

		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Message: parseError.Message,
			Err:     parseError,
		}
	}

	return transaction, nil
}

func (tp *TransactionParser) categorizeError(err error) errors.ErrorCode {
	if dedupErr, ok := errors.AsDedupError(err); ok {
		return dedupErr.Code
	}
	return errors.CodeInvalidData
}

func (tp *TransactionParser) suggestionForError(err error) string {
	switch tp.categorizeError(err) {
	case errors.CodeInvalidAmount:
		return "Check the amount format - use decimal numbers like '123.45'"
	case errors.CodeInvalidDate:
		return "Use an ISO 8601 date like '2024-01-15'"
	default:
		return "Check the data format for all fields"
	}
}

// ValidateTransactionFile checks that a CSV file has a parseable transaction
// format by validating the headers and the first few records.
func (tp *TransactionParser) ValidateTransactionFile(filePath string) error {
	tp.logger.WithField("file_path", filePath).Info("Validating transaction file format")

	file, reader, err := tp.OpenFile(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	parseCtx := NewParseContext(context.Background())

	requiredHeaders := tp.getRequiredHeaders()
	if err := tp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		return err
	}

	recordCount := 0
	maxValidation := 10
	var validationErrors []error

	for recordCount < maxValidation {
		record, err := tp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			validationErrors = append(validationErrors, err)
			continue
		}

		recordCount++

		if _, parseErr := tp.parseTransactionFromRecord(record, parseCtx, filePath); parseErr != nil {
			validationErrors = append(validationErrors, parseErr.Err)
		}
	}

	if recordCount == 0 {
		return errors.ValidationError(
			errors.CodeMissingField,
			"data_records",
			0,
			nil,
		).WithSuggestion("Ensure the file contains data rows after the header")
	}

	if len(validationErrors) > 0 {
		tp.logger.WithFields(logger.Fields{
			"file_path":      filePath,
			"error_count":    len(validationErrors),
			"records_tested": recordCount,
		}).Error("File validation failed with errors")

		return errors.ValidationError(
			errors.CodeInvalidData,
			"file_format",
			fmt.Sprintf("%d validation errors out of %d records tested", len(validationErrors), recordCount),
			validationErrors[0],
		).WithSuggestion("Fix the data format issues and try again")
	}

	tp.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"records_tested": recordCount,
	}).Info("Transaction file validation completed")

	return nil
}
