// backend/src/parsers/normalize.go
package parsers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// ErrNoValidRows is returned when normalization rejects every row of a file.
var ErrNoValidRows = errors.New("no valid rows found in file")

// supportedDateFormats is tried in order; the first successful parse wins.
var supportedDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
}

// Raw "type" cell values that force the amount sign.
var (
	expenseTypeHints = map[string]bool{"expense": true, "debit": true, "outflow": true, "purchase": true}
	incomeTypeHints  = map[string]bool{"income": true, "credit": true, "inflow": true, "deposit": true}
)

// NormalizeRows converts raw data rows (everything after the header) into
// canonical transactions using the resolved column map. Unparseable rows are
// rejected and recorded, never silently dropped; ErrNoValidRows is returned
// only when no row at all survives.
func NormalizeRows(rows [][]string, m ColumnMap) ([]models.Transaction, []models.RejectedRow, error) {
	var (
		accepted []models.Transaction
		rejected []models.RejectedRow
	)

	for i, row := range rows {
		line := i + 2 // 1-based, accounting for the header row
		tx, err := normalizeRow(row, m, line)
		if err != nil {
			rejected = append(rejected, models.RejectedRow{Line: line, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, tx)
	}

	if len(accepted) == 0 {
		return nil, rejected, ErrNoValidRows
	}
	return accepted, rejected, nil
}

func normalizeRow(row []string, m ColumnMap, line int) (models.Transaction, error) {
	date, err := parseDate(cell(row, m.Date))
	if err != nil {
		return models.Transaction{}, err
	}

	description := strings.TrimSpace(cell(row, m.Description))
	merchant := strings.TrimSpace(cell(row, m.Merchant))
	if merchant == "" {
		merchant = description
	}
	if merchant == "" {
		return models.Transaction{}, errors.New("merchant is required")
	}

	amount, err := resolveAmount(row, m)
	if err != nil {
		return models.Transaction{}, err
	}

	rawType := strings.TrimSpace(cell(row, m.Type))
	amount = applyTypeHint(amount, rawType)

	currency := strings.ToUpper(strings.TrimSpace(cell(row, m.Currency)))
	if currency == "" {
		currency = "USD"
	}

	return models.Transaction{
		Date:        date,
		Merchant:    merchant,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		RawType:     rawType,
		Line:        line,
	}, nil
}

// resolveAmount reads either the single signed amount column or the
// debit/credit pair, where amount = credit - debit and a missing side is zero.
func resolveAmount(row []string, m ColumnMap) (decimal.Decimal, error) {
	if m.HasSignedAmount() {
		return parseAmount(cell(row, m.Amount), false)
	}

	debit, err := parseAmount(cell(row, m.Debit), true)
	if err != nil {
		return decimal.Decimal{}, err
	}
	credit, err := parseAmount(cell(row, m.Credit), true)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return credit.Sub(debit), nil
}

// applyTypeHint coerces the amount sign when the source carries an explicit
// direction column that contradicts it.
func applyTypeHint(amount decimal.Decimal, rawType string) decimal.Decimal {
	hint := strings.ToLower(rawType)
	switch {
	case expenseTypeHints[hint] && amount.IsPositive():
		return amount.Neg()
	case incomeTypeHints[hint] && amount.IsNegative():
		return amount.Abs()
	}
	return amount
}

func parseDate(value string) (time.Time, error) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, format := range supportedDateFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", cleaned)
}

var currencySymbolReplacer = strings.NewReplacer("$", "", "€", "", "£", "", "₪", "", ",", "", " ", "")

// parseAmount parses a monetary cell as an exact decimal after stripping
// currency symbols and thousands separators. Accountant-style "(12.34)"
// negatives are honored.
func parseAmount(value string, allowEmpty bool) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.Trim(cleaned, "\"")
	if cleaned == "" {
		if allowEmpty {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, errors.New("amount is required")
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = currencySymbolReplacer.Replace(cleaned)

	if strings.HasPrefix(cleaned, "-") {
		negative = true
		cleaned = cleaned[1:]
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", value)
	}

	if negative {
		amount = amount.Abs().Neg()
	}
	return amount, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
