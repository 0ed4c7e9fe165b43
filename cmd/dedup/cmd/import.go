package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"transaction-dedup-service/cmd/dedup/config"
	"transaction-dedup-service/internal/dedup"
	"transaction-dedup-service/internal/matcher"
	"transaction-dedup-service/internal/models"
	"transaction-dedup-service/internal/parsers"
	"transaction-dedup-service/internal/provenance"
	"transaction-dedup-service/internal/reporter"
	"transaction-dedup-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the import command
var (
	batchFile        string
	corpusFile       string
	exportFormat     string
	modeName         string
	dateTolerance    int
	corpusWindowDays int
	outputFormat     string
	outputFile       string
	noSuppress       bool
	historyDB        string
	forceImport      bool
	showProgress     bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Screen a transaction batch for duplicates before import",
	Long: `Import screens a batch of incoming transactions against an existing
transaction corpus. Duplicates within the batch are removed first, then
each surviving transaction is checked against the corpus and classified
as new or duplicate.

The batch file is fingerprinted, so re-running the same file is detected
and skipped unless --force is given.

Examples:
  # Basic screening against a corpus
  dedup import --batch-file export.csv --corpus-file ledger.csv

  # Strict mode with JSON output
  dedup import --batch-file export.csv --corpus-file ledger.csv \
    --mode strict --output-format json --output-file report.json

  # Wider date tolerance, restrict corpus comparisons to a 90 day window
  dedup import --batch-file export.csv --corpus-file ledger.csv \
    --date-tolerance 2 --corpus-window-days 90

  # Ledger-style export with posted_date/memo headers
  dedup import --batch-file export.csv --export-format ledger

  # Re-process a file that was already imported
  dedup import --batch-file export.csv --corpus-file ledger.csv --force`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	// Required flags
	importCmd.Flags().StringVarP(&batchFile, "batch-file", "b", "", "path to the incoming transaction CSV file (required)")

	// Corpus flags
	importCmd.Flags().StringVarP(&corpusFile, "corpus-file", "c", "", "path to the existing transaction corpus CSV file")
	importCmd.Flags().IntVar(&corpusWindowDays, "corpus-window-days", -1, "only compare against corpus records within this many days of the batch (-1 disables)")

	// Parsing flags
	importCmd.Flags().StringVar(&exportFormat, "export-format", "", "source export format: standard, ledger, semicolon, auto (default: standard columns with aliases)")

	// Matching configuration flags
	importCmd.Flags().StringVarP(&modeName, "mode", "m", "smart", "deduplication mode: smart, standard, strict")
	importCmd.Flags().IntVarP(&dateTolerance, "date-tolerance", "d", -1, "date matching tolerance in days (-1 uses the mode default)")
	importCmd.Flags().BoolVar(&noSuppress, "no-suppress-borderline", false, "report borderline duplicates instead of suppressing them in smart mode")

	// Output flags
	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	importCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Provenance flags
	importCmd.Flags().StringVar(&historyDB, "history-db", "dedup-history.db", "path to the import history database (empty disables tracking)")
	importCmd.Flags().BoolVar(&forceImport, "force", false, "process the batch even if the file was imported before")

	// UI flags
	importCmd.Flags().BoolVar(&showProgress, "progress", false, "log progress for large batches")

	importCmd.MarkFlagRequired("batch-file")

	// Bind flags to viper
	viper.BindPFlag("batch-file", importCmd.Flags().Lookup("batch-file"))
	viper.BindPFlag("corpus-file", importCmd.Flags().Lookup("corpus-file"))
	viper.BindPFlag("corpus-window-days", importCmd.Flags().Lookup("corpus-window-days"))
	viper.BindPFlag("export-format", importCmd.Flags().Lookup("export-format"))
	viper.BindPFlag("mode", importCmd.Flags().Lookup("mode"))
	viper.BindPFlag("date-tolerance", importCmd.Flags().Lookup("date-tolerance"))
	viper.BindPFlag("no-suppress-borderline", importCmd.Flags().Lookup("no-suppress-borderline"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", importCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("history-db", importCmd.Flags().Lookup("history-db"))
	viper.BindPFlag("force", importCmd.Flags().Lookup("force"))
	viper.BindPFlag("progress", importCmd.Flags().Lookup("progress"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	batchFile = viper.GetString("batch-file")
	corpusFile = viper.GetString("corpus-file")
	corpusWindowDays = viper.GetInt("corpus-window-days")
	exportFormat = viper.GetString("export-format")
	modeName = viper.GetString("mode")
	dateTolerance = viper.GetInt("date-tolerance")
	noSuppress = viper.GetBool("no-suppress-borderline")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	historyDB = viper.GetString("history-db")
	forceImport = viper.GetBool("force")
	showProgress = viper.GetBool("progress")

	if batchFile == "" {
		return fmt.Errorf("batch-file is required")
	}

	if err := validateFileExists(batchFile, "batch file"); err != nil {
		return err
	}

	if corpusFile != "" {
		if err := validateFileExists(corpusFile, "corpus file"); err != nil {
			return err
		}
	}

	switch strings.ToLower(strings.TrimSpace(exportFormat)) {
	case "", "standard", "ledger", "semicolon", "auto":
	default:
		return fmt.Errorf("invalid export format '%s'. Valid formats: standard, ledger, semicolon, auto", exportFormat)
	}

	if _, err := dedup.ParseMode(modeName); err != nil {
		return fmt.Errorf("invalid mode '%s'. Valid modes: smart, standard, strict", modeName)
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if dateTolerance < -1 {
		return fmt.Errorf("invalid date tolerance %d: use -1 for the mode default or a non-negative day count", dateTolerance)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting import screening...\n")
		fmt.Fprintf(os.Stderr, "Batch file: %s\n", batchFile)
		if corpusFile != "" {
			fmt.Fprintf(os.Stderr, "Corpus file: %s\n", corpusFile)
		}
		fmt.Fprintf(os.Stderr, "Mode: %s\n", modeName)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
	}

	// Check import history before doing any work
	tracker, err := openTracker(historyDB)
	if err != nil {
		return err
	}
	if tracker != nil {
		defer tracker.Close()

		info, err := os.Stat(batchFile)
		if err != nil {
			return errors.FileError(errors.CodeFileNotFound, batchFile, err)
		}

		seen, err := tracker.HasBeenImported(filepath.Base(batchFile), info.Size(), info.ModTime())
		if err != nil {
			return err
		}
		if seen && !forceImport {
			return errors.BatchError(
				errors.CodeAlreadyImported,
				"import",
				fmt.Errorf("file %s was already imported", filepath.Base(batchFile)),
			).WithContext("file", batchFile).
				WithSuggestion("Use --force to process the file again")
		}
	}

	// Parse input files
	parserConfig, err := resolveParserConfig(exportFormat, batchFile)
	if err != nil {
		return fmt.Errorf("failed to create parser config: %w", err)
	}

	parser, err := parsers.NewTransactionParser(parserConfig)
	if err != nil {
		return err
	}

	candidates, batchStats, err := parser.ParseTransactions(batchFile)
	if err != nil {
		return err
	}

	var existing []*models.Transaction
	if corpusFile != "" {
		corpus, corpusStats, err := parser.ParseTransactions(corpusFile)
		if err != nil {
			return err
		}
		existing = corpus

		if viper.GetBool("verbose") && corpusStats.HasErrors() {
			fmt.Fprintf(os.Stderr, "Corpus parsing: %s\n", corpusStats)
		}
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Batch parsing: %s\n", batchStats)
	}

	// Restrict corpus comparisons to the configured date window
	if corpusWindowDays >= 0 && len(existing) > 0 {
		filtered, stats := matcher.FilterCorpusByWindow(existing, candidates, corpusWindowDays)
		existing = filtered

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Corpus window: kept %d of %d records\n",
				stats.RetainedRecords, stats.TotalRecords)
		}
	}

	// Run deduplication
	mode, _ := dedup.ParseMode(modeName)
	scoringConfig := config.CreateScoringConfig(mode, dateTolerance)
	dedupConfig := config.CreateDedupConfig(mode, scoringConfig, !noSuppress, showProgress)

	deduplicator, err := dedup.NewDeduplicator(dedupConfig)
	if err != nil {
		return err
	}

	summary, err := deduplicator.Deduplicate(candidates, existing)
	if err != nil {
		return err
	}

	// Generate report
	reportConfig := config.CreateReportConfig(outputFormat)
	reportGenerator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(summary, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Record the batch file so re-imports are detected
	if tracker != nil {
		info, err := os.Stat(batchFile)
		if err == nil {
			if markErr := tracker.MarkImported(filepath.Base(batchFile), info.Size(), info.ModTime()); markErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to record import history: %v\n", markErr)
			}
		}
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nImport screening completed.\n")
		fmt.Fprintf(os.Stderr, "Processed %d transactions: %d new, %d duplicates, %d skipped.\n",
			summary.TotalTransactions, summary.NewTransactions,
			summary.DuplicateTransactions, summary.SkippedTransactions)
		fmt.Fprintf(os.Stderr, "Processing time: %v\n", summary.Duration)
	}

	return nil
}

// resolveParserConfig picks the parser configuration for the batch. With no
// explicit format, the default configuration applies with aliases for common
// alternate header names. A named format selects that export preset, and
// "auto" detects the preset from the batch file's header row.
func resolveParserConfig(format, filePath string) (*parsers.TransactionParserConfig, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return config.CreateTransactionParserConfig()
	case "auto":
		headers, err := readHeaderRow(filePath)
		if err != nil {
			return nil, err
		}
		return parsers.AutoDetectExportConfig(headers), nil
	default:
		if exportConfig := parsers.GetExportConfig(format); exportConfig != nil {
			return exportConfig, nil
		}
		return nil, fmt.Errorf("unknown export format '%s'", format)
	}
}

// readHeaderRow reads the first line of a CSV file for format detection.
// Semicolon-delimited exports are recognized by the absence of commas.
func readHeaderRow(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
		}
		return nil, fmt.Errorf("cannot detect export format: %s is empty", filePath)
	}

	line := scanner.Text()
	delimiter := ","
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		delimiter = ";"
	}

	headers := strings.Split(line, delimiter)
	for i, header := range headers {
		headers[i] = strings.TrimSpace(header)
	}
	return headers, nil
}

// trackerCloser pairs a tracker with its underlying store for cleanup
type trackerCloser struct {
	*provenance.Tracker
	store provenance.Store
}

func (tc *trackerCloser) Close() error {
	return tc.store.Close()
}

// openTracker opens the import history tracker, or returns nil when
// tracking is disabled.
func openTracker(path string) (*trackerCloser, error) {
	if path == "" {
		return nil, nil
	}

	store, err := provenance.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	tracker, err := provenance.NewTracker(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &trackerCloser{Tracker: tracker, store: store}, nil
}
