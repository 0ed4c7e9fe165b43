package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"transaction-dedup-service/internal/dedup"
	"transaction-dedup-service/internal/matcher"
	"transaction-dedup-service/internal/models"

	"github.com/shopspring/decimal"
)

func testTransaction(id string, day int, amount string) *models.Transaction {
	amt, _ := decimal.NewFromString(amount)
	return models.NewTransaction(
		id,
		time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		amt,
		"Grocery Store",
		models.TransactionTypeExpense,
		"groceries",
	)
}

func testSummary() *dedup.ImportSummary {
	accepted := testTransaction("TX1", 10, "100.00")
	rejected := testTransaction("TX2", 11, "50.00")
	corpus := testTransaction("EX1", 11, "50.00")
	skipped := testTransaction("TX3", 10, "100.00")

	return &dedup.ImportSummary{
		BatchID:               "batch-123",
		Mode:                  dedup.ModeSmart,
		ModeName:              "smart",
		TotalTransactions:     3,
		NewTransactions:       1,
		DuplicateTransactions: 1,
		SkippedTransactions:   1,
		Accepted:              []*models.Transaction{accepted},
		Rejected:              []*models.Transaction{rejected},
		ExternalDuplicates: []*matcher.Match{
			{Candidate: rejected, Matched: corpus, Confidence: 100},
		},
		InternalDuplicates: []*matcher.Match{
			{Candidate: skipped, Matched: accepted, Confidence: 100},
		},
		ProcessedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Duration:    42 * time.Millisecond,
	}
}

func TestNewReportGenerator(t *testing.T) {
	generator, err := NewReportGenerator(nil)
	if err != nil {
		t.Fatalf("Expected nil config to fall back to defaults, got: %v", err)
	}
	if generator.GetConfiguration().Format != FormatConsole {
		t.Error("Expected console as the default format")
	}

	bad := DefaultReportConfig()
	bad.Format = OutputFormat("xml")
	if _, err := NewReportGenerator(bad); err == nil {
		t.Error("Expected error for unsupported format")
	}

	zeroItems := DefaultReportConfig()
	zeroItems.MaxListItems = 0
	if _, err := NewReportGenerator(zeroItems); err == nil {
		t.Error("Expected error for non-positive max list items")
	}
}

func TestGenerateReport_NilSummary(t *testing.T) {
	generator, _ := NewReportGenerator(nil)
	if err := generator.GenerateReport(nil, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for nil summary")
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	generator, _ := NewReportGenerator(nil)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testSummary(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	expected := []string{
		"IMPORT REPORT",
		"Batch:     batch-123",
		"Mode:      smart",
		"=== SUMMARY ===",
		"Total:      3",
		"New:        1 (33.3%)",
		"=== DUPLICATES OF EXISTING TRANSACTIONS ===",
		"=== DUPLICATES WITHIN THE BATCH ===",
		"TX2 (2024-01-11, 50.00) matches EX1 at confidence 100",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected console output to contain %q", want)
		}
	}

	// Accepted section is off by default
	if strings.Contains(output, "=== ACCEPTED TRANSACTIONS ===") {
		t.Error("Expected accepted section to be excluded by default")
	}
}

func TestGenerateConsoleReport_IncludeAccepted(t *testing.T) {
	config := DefaultReportConfig()
	config.IncludeAccepted = true
	generator, _ := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testSummary(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "=== ACCEPTED TRANSACTIONS ===") {
		t.Error("Expected accepted section in output")
	}
	if !strings.Contains(output, "ID: TX1") {
		t.Error("Expected accepted transaction details in output")
	}
}

func TestGenerateConsoleReport_Truncation(t *testing.T) {
	config := DefaultReportConfig()
	config.MaxListItems = 2
	generator, _ := NewReportGenerator(config)

	summary := testSummary()
	summary.ExternalDuplicates = nil
	for i := 0; i < 5; i++ {
		candidate := testTransaction("TX", 10, "100.00")
		corpus := testTransaction("EX", 10, "100.00")
		summary.ExternalDuplicates = append(summary.ExternalDuplicates,
			&matcher.Match{Candidate: candidate, Matched: corpus, Confidence: 100})
	}

	var buf bytes.Buffer
	if err := generator.GenerateReport(summary, &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	if !strings.Contains(buf.String(), "... and 3 more") {
		t.Error("Expected the match list to be truncated")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	generator, _ := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testSummary(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON output: %v", err)
	}

	if decoded["batch_id"] != "batch-123" {
		t.Errorf("Expected batch_id batch-123, got %v", decoded["batch_id"])
	}
	if decoded["mode"] != "smart" {
		t.Errorf("Expected mode smart, got %v", decoded["mode"])
	}
	if decoded["total_transactions"] != float64(3) {
		t.Errorf("Expected 3 total transactions, got %v", decoded["total_transactions"])
	}
	if _, ok := decoded["external_duplicates"]; !ok {
		t.Error("Expected external duplicates in JSON output")
	}
	if _, ok := decoded["accepted"]; ok {
		t.Error("Expected accepted list excluded by default")
	}
}

func TestGenerateCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	config.IncludeAccepted = true
	generator, _ := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testSummary(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV output: %v", err)
	}

	// Header plus one accepted, one duplicate, one skipped
	if len(records) != 4 {
		t.Fatalf("Expected 4 CSV rows, got %d", len(records))
	}
	if records[0][0] != "Status" {
		t.Errorf("Expected header row, got %v", records[0])
	}
	if records[1][0] != "New" || records[1][1] != "TX1" {
		t.Errorf("Expected accepted row first, got %v", records[1])
	}
	if records[2][0] != "Duplicate" || records[2][6] != "EX1" || records[2][7] != "100" {
		t.Errorf("Expected duplicate row with match details, got %v", records[2])
	}
	if records[3][0] != "Skipped" {
		t.Errorf("Expected skipped row, got %v", records[3])
	}
}

func TestGenerateCSVReport_NoHeaders(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	config.CSVHeaders = false
	generator, _ := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testSummary(), &buf); err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Expected valid CSV output: %v", err)
	}

	// Accepted excluded by default, so one duplicate plus one skipped
	if len(records) != 2 {
		t.Fatalf("Expected 2 CSV rows, got %d", len(records))
	}
	if records[0][0] != "Duplicate" {
		t.Errorf("Expected duplicate row first, got %v", records[0])
	}
}

func TestUpdateConfiguration(t *testing.T) {
	generator, _ := NewReportGenerator(nil)

	updated := DefaultReportConfig()
	updated.Format = FormatJSON
	if err := generator.UpdateConfiguration(updated); err != nil {
		t.Fatalf("UpdateConfiguration failed: %v", err)
	}
	if generator.GetConfiguration().Format != FormatJSON {
		t.Error("Expected configuration to be updated")
	}

	invalid := DefaultReportConfig()
	invalid.MaxListItems = -1
	if err := generator.UpdateConfiguration(invalid); err == nil {
		t.Error("Expected error for invalid configuration")
	}
}
