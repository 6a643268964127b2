// backend/src/processors/summary_processor.go
package processors

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// ErrNoTransactions is returned when a dataset, or the requested month within
// it, holds no transactions.
var ErrNoTransactions = errors.New("no transactions found for the requested dataset/month")

// SummaryProcessor computes the derived monthly figures for a dataset. It is
// a pure read over an already-committed transaction set.
type SummaryProcessor struct {
	topMerchantsLimit int
}

func NewSummaryProcessor(topMerchantsLimit int) *SummaryProcessor {
	if topMerchantsLimit <= 0 {
		topMerchantsLimit = 5
	}
	return &SummaryProcessor{topMerchantsLimit: topMerchantsLimit}
}

// Compute builds the MonthlySummary for the given month ("" selects the latest
// month present in the dataset). Income and expense totals are exact decimal
// sums; Break-even means Result is exactly zero.
func (p *SummaryProcessor) Compute(txs []models.Transaction, month string) (*models.MonthlySummary, error) {
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}
	if month == "" {
		month = LatestMonth(txs)
	}

	monthTxs := FilterByMonth(txs, month)
	if len(monthTxs) == 0 {
		return nil, fmt.Errorf("%w: month %s", ErrNoTransactions, month)
	}

	income := decimal.Zero
	totalExpenses := decimal.Zero
	coreExpenses := decimal.Zero
	categoryTotals := make(map[models.Category]decimal.Decimal)
	merchantTotals := make(map[string]decimal.Decimal)
	merchantCounts := make(map[string]int)

	for _, t := range monthTxs {
		if t.Amount.IsPositive() {
			income = income.Add(t.Amount)
			continue
		}
		if !t.Amount.IsNegative() {
			continue // zero-amount rows carry no spend signal
		}

		magnitude := t.Amount.Abs()
		totalExpenses = totalExpenses.Add(magnitude)
		if t.IsCoreExpense() {
			coreExpenses = coreExpenses.Add(magnitude)
		}
		categoryTotals[t.Category] = categoryTotals[t.Category].Add(magnitude)
		merchantTotals[t.Merchant] = merchantTotals[t.Merchant].Add(magnitude)
		merchantCounts[t.Merchant]++
	}

	result := income.Sub(totalExpenses)

	return &models.MonthlySummary{
		Month:             month,
		Income:            income,
		TotalExpenses:     totalExpenses,
		CoreExpenses:      coreExpenses,
		Result:            result,
		ResultLabel:       resultLabel(result),
		CategoryBreakdown: sortedBreakdown(categoryTotals),
		TopMerchants:      p.rankMerchants(merchantTotals, merchantCounts),
		Currency:          dominantCurrency(monthTxs),
		RowsAnalyzed:      len(monthTxs),
	}, nil
}

func resultLabel(result decimal.Decimal) string {
	switch result.Sign() {
	case 1:
		return models.ResultProfit
	case -1:
		return models.ResultLoss
	default:
		return models.ResultBreakEven
	}
}

// sortedBreakdown orders categories by total debit magnitude descending,
// breaking ties by category name ascending for determinism.
func sortedBreakdown(totals map[models.Category]decimal.Decimal) []models.CategoryTotal {
	breakdown := make([]models.CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		breakdown = append(breakdown, models.CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if cmp := breakdown[i].Amount.Cmp(breakdown[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// rankMerchants orders merchants by total debit magnitude descending, ties by
// merchant name ascending, truncated to the configured limit.
func (p *SummaryProcessor) rankMerchants(totals map[string]decimal.Decimal, counts map[string]int) []models.MerchantTotal {
	ranked := make([]models.MerchantTotal, 0, len(totals))
	for merchant, total := range totals {
		ranked = append(ranked, models.MerchantTotal{
			Merchant:   merchant,
			TotalSpend: total,
			Count:      counts[merchant],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if cmp := ranked[i].TotalSpend.Cmp(ranked[j].TotalSpend); cmp != 0 {
			return cmp > 0
		}
		return ranked[i].Merchant < ranked[j].Merchant
	})
	if len(ranked) > p.topMerchantsLimit {
		ranked = ranked[:p.topMerchantsLimit]
	}
	return ranked
}

// dominantCurrency picks the most frequent currency code, ties broken by code
// ascending.
func dominantCurrency(txs []models.Transaction) string {
	counts := make(map[string]int)
	for _, t := range txs {
		if t.Currency != "" {
			counts[t.Currency]++
		}
	}
	best := ""
	for code, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && code < best) {
			best = code
		}
	}
	return best
}

// LatestMonth returns the maximum YYYY-MM key over the transactions.
func LatestMonth(txs []models.Transaction) string {
	latest := ""
	for _, t := range txs {
		if m := t.Month(); m > latest {
			latest = m
		}
	}
	return latest
}

// FilterByMonth returns the transactions whose date falls in the given month.
func FilterByMonth(txs []models.Transaction, month string) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		if t.Month() == month {
			out = append(out, t)
		}
	}
	return out
}

// AvailableMonths returns the sorted distinct YYYY-MM keys of the dataset.
func AvailableMonths(txs []models.Transaction) []string {
	seen := make(map[string]bool)
	var months []string
	for _, t := range txs {
		m := t.Month()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Strings(months)
	return months
}

// DatasetDateRange returns the [min, max] date span over the whole dataset.
func DatasetDateRange(txs []models.Transaction) models.DateRange {
	if len(txs) == 0 {
		return models.DateRange{}
	}
	min, max := txs[0].Date, txs[0].Date
	for _, t := range txs[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return models.DateRange{From: min.Format("2006-01-02"), To: max.Format("2006-01-02")}
}
