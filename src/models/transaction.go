// backend/src/models/transaction.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the canonical, validated representation of a single bank
// statement row. Amount is signed: negative is a debit/expense, positive a
// credit/income. Each parser is responsible for producing the final signed
// amount before the transaction reaches the store.
type Transaction struct {
	ID          int64           `json:"id,omitempty"` // Database primary key
	DatasetID   string          `json:"dataset_id"`
	Date        time.Time       `json:"date"`
	Merchant    string          `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	RawType     string          `json:"raw_type,omitempty"` // Original "type" cell, if the source had one
	Line        int             `json:"line,omitempty"`     // 1-based line in the source file, for diagnostics
}

// Month returns the transaction's month key in YYYY-MM form.
func (t Transaction) Month() string {
	return t.Date.Format("2006-01")
}

// IsDebit reports whether the transaction is an expense (negative amount).
func (t Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// IsCoreExpense reports whether the transaction is consumption spending:
// a debit whose category is not a non-consumption category.
func (t Transaction) IsCoreExpense() bool {
	return t.IsDebit() && !t.Category.IsNonConsumption()
}

// Dataset describes one ingested file/session.
type Dataset struct {
	ID         string    `json:"id"`
	SourceName string    `json:"source_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
}

// RejectedRow records a source row that failed normalization. Row failures are
// non-fatal; they are collected into the IngestionResult instead of aborting
// the upload.
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// IngestionResult is the outcome of ingesting a single uploaded file.
type IngestionResult struct {
	DatasetID    string        `json:"dataset_id"`
	Accepted     int           `json:"accepted_count"`
	Rejected     int           `json:"rejected_count"`
	RejectedRows []RejectedRow `json:"rejected_rows,omitempty"`
}
