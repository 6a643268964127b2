// backend/src/parsers/schema.go
package parsers

import (
	"fmt"
	"strings"
)

// Per-field alias tables. Matching is case-insensitive and whitespace-trimmed.
var (
	dateAliases        = []string{"date", "transaction_date", "posted_at", "posted_date"}
	merchantAliases    = []string{"merchant", "payee", "vendor", "name"}
	descriptionAliases = []string{"description", "memo", "note", "details"}
	amountAliases      = []string{"amount", "transaction_amount", "value"}
	debitAliases       = []string{"debit", "withdrawal", "outflow"}
	creditAliases      = []string{"credit", "deposit", "inflow"}
	typeAliases        = []string{"type", "transaction_type", "direction"}
	currencyAliases    = []string{"currency", "ccy"}
)

// SchemaError reports a required canonical field with no usable source column.
type SchemaError struct {
	Field  string
	Header []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: no column found for required field %q in header %v", e.Field, e.Header)
}

// ColumnMap maps canonical fields to source column indices. An index of -1
// means the field has no source column.
type ColumnMap struct {
	Date        int
	Merchant    int
	Amount      int
	Debit       int
	Credit      int
	Description int
	Currency    int
	Type        int
}

// HasSignedAmount reports whether the source carries a single signed amount
// column rather than a debit/credit pair.
func (m ColumnMap) HasSignedAmount() bool {
	return m.Amount >= 0
}

// ResolveSchema maps a header row onto canonical fields using the alias
// tables. Required fields are date, merchant (a description column may stand
// in for it) and amount; a complete debit/credit column pair substitutes for
// amount. A lone debit or credit column is rejected: with only one side
// mapped, every row on the other side would silently normalize to zero.
// Empty cells within a mapped pair still contribute zero per row.
func ResolveSchema(header []string) (ColumnMap, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	m := ColumnMap{
		Date:        findColumn(normalized, dateAliases),
		Merchant:    findColumn(normalized, merchantAliases),
		Amount:      findColumn(normalized, amountAliases),
		Debit:       findColumn(normalized, debitAliases),
		Credit:      findColumn(normalized, creditAliases),
		Description: findColumn(normalized, descriptionAliases),
		Currency:    findColumn(normalized, currencyAliases),
		Type:        findColumn(normalized, typeAliases),
	}

	if m.Date < 0 {
		return ColumnMap{}, &SchemaError{Field: "date", Header: header}
	}
	if m.Merchant < 0 && m.Description < 0 {
		return ColumnMap{}, &SchemaError{Field: "merchant", Header: header}
	}
	if m.Amount < 0 && (m.Debit < 0 || m.Credit < 0) {
		return ColumnMap{}, &SchemaError{Field: "amount", Header: header}
	}
	return m, nil
}

// findColumn returns the index of the first header cell matching any alias,
// scanning aliases in table order so alias priority is stable.
func findColumn(normalized []string, aliases []string) int {
	for _, alias := range aliases {
		for i, cell := range normalized {
			if cell == alias {
				return i
			}
		}
	}
	return -1
}
