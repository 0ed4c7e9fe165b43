package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionType_IsValid(t *testing.T) {
	valid := []TransactionType{
		TransactionTypeIncome,
		TransactionTypeExpense,
		TransactionTypeInvestment,
		TransactionTypeInsurance,
	}

	for _, tt := range valid {
		if !tt.IsValid() {
			t.Errorf("Expected %s to be valid", tt)
		}
	}

	if TransactionType("transfer").IsValid() {
		t.Error("Expected unknown type to be invalid")
	}
	if TransactionType("").IsValid() {
		t.Error("Expected empty type to be invalid")
	}
}

func TestTransaction_Validate(t *testing.T) {
	valid := NewTransaction(
		"TX001",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(125.50),
		"Grocery Store",
		TransactionTypeExpense,
		"groceries",
	)

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid transaction, got error: %v", err)
	}

	noDate := *valid
	noDate.Date = time.Time{}
	if err := noDate.Validate(); err == nil {
		t.Error("Expected error for zero date")
	}

	badType := *valid
	badType.Type = "transfer"
	if err := badType.Validate(); err == nil {
		t.Error("Expected error for invalid type")
	}

	// Empty descriptions are allowed; they simply earn no matching credit
	noDescription := *valid
	noDescription.Description = ""
	if err := noDescription.Validate(); err != nil {
		t.Errorf("Expected empty description to be valid, got: %v", err)
	}
}

func TestTransaction_SameDay(t *testing.T) {
	a := &Transaction{Date: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)}
	b := &Transaction{Date: time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)}
	c := &Transaction{Date: time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)}

	if !a.SameDay(b) {
		t.Error("Expected same calendar day regardless of time of day")
	}
	if a.SameDay(c) {
		t.Error("Expected different calendar days")
	}
	if a.SameDay(nil) {
		t.Error("Expected nil comparison to be false")
	}
}

func TestTransaction_DaysApart(t *testing.T) {
	a := &Transaction{Date: time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)}
	b := &Transaction{Date: time.Date(2024, 1, 18, 1, 0, 0, 0, time.UTC)}

	// Distance is between calendar days, not 24h periods
	if got := a.DaysApart(b); got != 3 {
		t.Errorf("Expected 3 days apart, got %d", got)
	}
	if got := b.DaysApart(a); got != 3 {
		t.Errorf("Expected symmetric distance, got %d", got)
	}
	if got := a.DaysApart(a); got != 0 {
		t.Errorf("Expected zero distance to self, got %d", got)
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	original := NewTransaction(
		"TX001",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(125.50),
		"Grocery Store",
		TransactionTypeExpense,
		"groceries",
	)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Transaction
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("Expected ID %s, got %s", original.ID, decoded.ID)
	}
	if !decoded.Amount.Equal(original.Amount) {
		t.Errorf("Expected amount %s, got %s", original.Amount, decoded.Amount)
	}
	if !decoded.Date.Equal(original.Date) {
		t.Errorf("Expected date %v, got %v", original.Date, decoded.Date)
	}
	if decoded.Type != original.Type {
		t.Errorf("Expected type %s, got %s", original.Type, decoded.Type)
	}
}

func TestParseDecimalFromString(t *testing.T) {
	cases := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"123.45", "123.45", false},
		{"$1,234.56", "1234.56", false},
		{"  99.99  ", "99.99", false},
		{"-45.00", "-45", false},
		{"0", "0", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tc := range cases {
		got, err := ParseDecimalFromString(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalFromString(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalFromString(%q): unexpected error: %v", tc.input, err)
			continue
		}

		expected, _ := decimal.NewFromString(tc.expected)
		if !got.Equal(expected) {
			t.Errorf("ParseDecimalFromString(%q) = %s, expected %s", tc.input, got, expected)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		input    string
		expected TransactionType
		wantErr  bool
	}{
		{"income", TransactionTypeIncome, false},
		{"credit", TransactionTypeIncome, false},
		{"IN", TransactionTypeIncome, false},
		{"expense", TransactionTypeExpense, false},
		{"debit", TransactionTypeExpense, false},
		{"  Expense  ", TransactionTypeExpense, false},
		{"investment", TransactionTypeInvestment, false},
		{"invest", TransactionTypeInvestment, false},
		{"insurance", TransactionTypeInsurance, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		got, err := ParseTransactionType(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTransactionType(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTransactionType(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseTransactionType(%q) = %s, expected %s", tc.input, got, tc.expected)
		}
	}
}

func TestParseDateWithFormats(t *testing.T) {
	cases := []string{
		"2024-01-15",
		"2024-01-15T10:30:00Z",
		"2024-01-15 10:30:00",
		"01/15/2024",
		"2024/01/15",
		"Jan 15, 2024",
	}

	for _, input := range cases {
		got, err := ParseDateWithFormats(input)
		if err != nil {
			t.Errorf("ParseDateWithFormats(%q): unexpected error: %v", input, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
			t.Errorf("ParseDateWithFormats(%q) = %v, expected January 15 2024", input, got)
		}
	}

	if _, err := ParseDateWithFormats("not-a-date"); err == nil {
		t.Error("Expected error for unparseable date")
	}
	if _, err := ParseDateWithFormats(""); err == nil {
		t.Error("Expected error for empty date")
	}
}

func TestCreateTransactionFromCSV(t *testing.T) {
	tx, err := CreateTransactionFromCSV("TX001", "2024-01-15", "$125.50", " Grocery Store ", "expense", "groceries")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if tx.ID != "TX001" {
		t.Errorf("Expected ID TX001, got %s", tx.ID)
	}
	if !tx.Amount.Equal(decimal.NewFromFloat(125.50)) {
		t.Errorf("Expected amount 125.50, got %s", tx.Amount)
	}
	if tx.Description != "Grocery Store" {
		t.Errorf("Expected trimmed description, got %q", tx.Description)
	}
	if tx.Type != TransactionTypeExpense {
		t.Errorf("Expected expense type, got %s", tx.Type)
	}

	if _, err := CreateTransactionFromCSV("TX002", "bad-date", "125.50", "x", "expense", ""); err == nil {
		t.Error("Expected error for invalid date")
	}
	if _, err := CreateTransactionFromCSV("TX003", "2024-01-15", "not-a-number", "x", "expense", ""); err == nil {
		t.Error("Expected error for invalid amount")
	}
	if _, err := CreateTransactionFromCSV("TX004", "2024-01-15", "125.50", "x", "transfer", ""); err == nil {
		t.Error("Expected error for invalid type")
	}
}
