package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the category of money movement for a transaction
type TransactionType string

const (
	// TransactionTypeIncome represents incoming funds (salary, refunds, interest)
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense represents outgoing funds (purchases, bills, fees)
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeInvestment represents transfers into investment vehicles
	TransactionTypeInvestment TransactionType = "investment"
	// TransactionTypeInsurance represents insurance premium payments
	TransactionTypeInsurance TransactionType = "insurance"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is one of the known categories
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeInvestment, TransactionTypeInsurance:
		return true
	default:
		return false
	}
}

// Transaction represents a single financial transaction record.
//
// Transactions are immutable inputs to the deduplication engine: the engine
// never modifies a record, and every result references candidates and corpus
// entries by pointer identity. The ID field is opaque and used only for
// reporting; matching never considers it.
type Transaction struct {
	ID          string          `json:"id,omitempty" csv:"id"`
	Date        time.Time       `json:"date" csv:"date"`
	Amount      decimal.Decimal `json:"amount" csv:"amount"`
	Description string          `json:"description" csv:"description"`
	Type        TransactionType `json:"type" csv:"type"`
	Category    string          `json:"category,omitempty" csv:"category"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(id string, date time.Time, amount decimal.Decimal, description string, txType TransactionType, category string) *Transaction {
	return &Transaction{
		ID:          id,
		Date:        date,
		Amount:      amount,
		Description: description,
		Type:        txType,
		Category:    category,
	}
}

// Validate performs basic validation on the Transaction.
// Descriptions may be empty (they simply earn no similarity credit), but a
// transaction without a parseable date cannot be matched and is rejected here.
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Amount: %s, Description: %q, Type: %s, Category: %s}",
		t.ID, t.Date.Format("2006-01-02"), t.Amount.String(), t.Description, t.Type, t.Category)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Date:   t.Date.Format("2006-01-02"),
		Amount: t.Amount.String(),
		Alias:  (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	t.Date, err = ParseDateWithFormats(aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}

	return nil
}

// Day returns the transaction date truncated to its calendar day (midnight UTC).
// Matching operates on calendar days; time-of-day carries no semantics.
func (t *Transaction) Day() time.Time {
	year, month, day := t.Date.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two transactions fall on the same calendar day
func (t *Transaction) SameDay(other *Transaction) bool {
	if other == nil {
		return false
	}
	return t.Day().Equal(other.Day())
}

// DaysApart returns the absolute whole-day distance between two transaction dates
func (t *Transaction) DaysApart(other *Transaction) int {
	diff := t.Day().Sub(other.Day())
	if diff < 0 {
		diff = -diff
	}
	return int(diff / (24 * time.Hour))
}

// Utility functions for type conversion and validation

// ParseDecimalFromString parses a decimal amount from string with validation
func ParseDecimalFromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string cannot be empty")
	}

	// Remove common currency symbols and thousand separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format '%s': %w", s, err)
	}

	return d, nil
}

// ParseTransactionType parses and validates a transaction type from string
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "income", "credit", "in":
		return TransactionTypeIncome, nil
	case "expense", "debit", "out":
		return TransactionTypeExpense, nil
	case "investment", "invest":
		return TransactionTypeInvestment, nil
	case "insurance":
		return TransactionTypeInsurance, nil
	default:
		return "", fmt.Errorf("invalid transaction type '%s': must be income, expense, investment or insurance", s)
	}
}

// ParseDateWithFormats attempts to parse a date from string using multiple common formats
func ParseDateWithFormats(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	// Common date formats used in exported statements and CSV files
	formats := []string{
		"2006-01-02",          // "2006-01-02"
		time.RFC3339,          // "2006-01-02T15:04:05Z07:00"
		"2006-01-02 15:04:05", // "2006-01-02 15:04:05"
		"2006-01-02T15:04:05", // "2006-01-02T15:04:05"
		"01/02/2006",          // "01/02/2006"
		"02-01-2006",          // "02-01-2006"
		"2006/01/02",          // "2006/01/02"
		"Jan 2, 2006",         // "Jan 2, 2006"
		"January 2, 2006",     // "January 2, 2006"
	}

	var lastErr error
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// CreateTransactionFromCSV creates a Transaction from CSV field values.
// A missing or malformed description is treated as an empty string rather
// than an error; the similarity scorer simply awards it no credit.
func CreateTransactionFromCSV(id, dateStr, amountStr, description, typeStr, category string) (*Transaction, error) {
	date, err := ParseDateWithFormats(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date in CSV: %w", err)
	}

	amount, err := ParseDecimalFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in CSV: %w", err)
	}

	txType, err := ParseTransactionType(typeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type in CSV: %w", err)
	}

	transaction := NewTransaction(
		strings.TrimSpace(id),
		date,
		amount,
		strings.TrimSpace(description),
		txType,
		strings.TrimSpace(category),
	)

	if err := transaction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction data: %w", err)
	}

	return transaction, nil
}
