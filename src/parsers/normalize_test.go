package parsers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustResolve(t *testing.T, header []string) ColumnMap {
	t.Helper()
	m, err := ResolveSchema(header)
	require.NoError(t, err)
	return m
}

func TestNormalizeRows_SignedAmountColumn(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount"})
	rows := [][]string{
		{"2026-01-05", "Landlord", "-1200.00"},
		{"2026-01-10", "Employer", "$3,000.00"},
		{"2026-01-12", "Coffee Shop", "(4.50)"},
	}

	txs, rejected, err := NormalizeRows(rows, m)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Empty(t, rejected)

	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-1200.00")))
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("3000.00")))
	assert.True(t, txs[2].Amount.Equal(decimal.RequireFromString("-4.50")))
}

func TestNormalizeRows_DebitCreditPair(t *testing.T) {
	m := mustResolve(t, []string{"Posted Date", "Description", "Debit", "Credit"})
	rows := [][]string{
		{"2026-02-01", "Grocery Store", "52.10", ""},
		{"2026-02-03", "Employer Payroll", "", "3000.00"},
		{"2026-02-05", "Refund minus fee", "5.00", "20.00"},
	}

	txs, rejected, err := NormalizeRows(rows, m)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Empty(t, rejected)

	// amount = credit - debit, missing side contributes zero
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-52.10")))
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("3000.00")))
	assert.True(t, txs[2].Amount.Equal(decimal.RequireFromString("15.00")))

	// Description fills in for the missing merchant column.
	assert.Equal(t, "Grocery Store", txs[0].Merchant)
}

func TestNormalizeRows_TypeHintCoercesSign(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount", "Type"})
	rows := [][]string{
		{"2026-03-01", "Store", "25.00", "expense"},
		{"2026-03-02", "Employer", "-900.00", "income"},
		{"2026-03-03", "Store", "30.00", "unknown-hint"},
	}

	txs, _, err := NormalizeRows(rows, m)
	require.NoError(t, err)

	assert.True(t, txs[0].Amount.IsNegative(), "expense hint must flip positive amounts")
	assert.True(t, txs[1].Amount.IsPositive(), "income hint must flip negative amounts")
	assert.True(t, txs[2].Amount.IsPositive(), "unknown hints leave the sign alone")
}

func TestNormalizeRows_DateFormats(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount"})
	rows := [][]string{
		{"2026-01-15", "A", "-1"},
		{"01/15/2026", "B", "-1"},
		{"15/01/2026", "C", "-1"},
		{"2026/01/15", "D", "-1"},
	}

	txs, rejected, err := NormalizeRows(rows, m)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	assert.Empty(t, rejected)

	for _, tx := range txs {
		assert.Equal(t, "2026-01-15", tx.Date.Format("2006-01-02"))
	}
}

func TestNormalizeRows_RejectsBadRowsWithoutFailing(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount"})
	rows := [][]string{
		{"2026-01-05", "Landlord", "-1200.00"},
		{"not-a-date", "Landlord", "-1200.00"},
		{"2026-01-06", "   ", "-10.00"},
		{"2026-01-07", "Shop", "twelve"},
	}

	txs, rejected, err := NormalizeRows(rows, m)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Len(t, rejected, 3)

	// Line numbers are 1-based and account for the header row.
	assert.Equal(t, 3, rejected[0].Line)
	assert.Equal(t, 4, rejected[1].Line)
	assert.Equal(t, 5, rejected[2].Line)
	assert.Contains(t, rejected[0].Reason, "date")
	assert.Contains(t, rejected[1].Reason, "merchant")
	assert.Contains(t, rejected[2].Reason, "amount")
}

func TestNormalizeRows_AllRowsRejected(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount"})
	rows := [][]string{
		{"nope", "Landlord", "-1200.00"},
		{"2026-01-06", "", ""},
	}

	_, rejected, err := NormalizeRows(rows, m)
	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Len(t, rejected, 2)
}

func TestNormalizeRows_CurrencyDefaultsAndUppercases(t *testing.T) {
	m := mustResolve(t, []string{"Date", "Merchant", "Amount", "Currency"})
	rows := [][]string{
		{"2026-01-05", "Shop", "-10", "eur"},
		{"2026-01-06", "Shop", "-10", ""},
	}

	txs, _, err := NormalizeRows(rows, m)
	require.NoError(t, err)
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, "USD", txs[1].Currency)
}
