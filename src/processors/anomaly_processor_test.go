package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finsight/backend/src/models"
)

func anomaliesOfType(findings []models.Anomaly, typ string) []models.Anomaly {
	var out []models.Anomaly
	for _, a := range findings {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

// Two prior months of steady history plus a target month.
func historyWithTarget(target ...models.Transaction) []models.Transaction {
	txs := []models.Transaction{
		tx("2025-11-03", "Employer", "3000", models.CategorySalary),
		tx("2025-11-05", "Grocer", "-100", models.CategoryGroceries),
		tx("2025-11-10", "Grocer", "-100", models.CategoryGroceries),
		tx("2025-12-03", "Employer", "3000", models.CategorySalary),
		tx("2025-12-05", "Grocer", "-100", models.CategoryGroceries),
		tx("2025-12-10", "Grocer", "-100", models.CategoryGroceries),
	}
	return append(txs, target...)
}

func TestAnomalyProcessor_LargeTransaction(t *testing.T) {
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		tx("2026-01-05", "Grocer", "-90", models.CategoryGroceries),
		tx("2026-01-15", "Fancy Foods", "-450", models.CategoryGroceries),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	large := anomaliesOfType(findings, models.AnomalyLargeTransaction)
	require.Len(t, large, 1)

	a := large[0]
	assert.Equal(t, "Fancy Foods", a.Merchant)
	assert.Equal(t, models.CategoryGroceries, a.Category)
	// Trailing mean grocery debit is 100, so 450 scores 4.5x.
	assert.InDelta(t, 4.5, a.Severity, 0.001)
	assert.True(t, a.Baseline.Equal(decimal.RequireFromString("100")))
}

func TestAnomalyProcessor_MerchantSpike(t *testing.T) {
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		tx("2026-01-05", "Grocer", "-250", models.CategoryGroceries),
		tx("2026-01-12", "Grocer", "-250", models.CategoryGroceries),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	spikes := anomaliesOfType(findings, models.AnomalyMerchantSpike)
	require.Len(t, spikes, 1)

	// Monthly average at Grocer was 200; this month is 500.
	assert.Equal(t, "Grocer", spikes[0].Merchant)
	assert.InDelta(t, 2.5, spikes[0].Severity, 0.001)
}

func TestAnomalyProcessor_CategoryAbsent(t *testing.T) {
	txs := historyWithTarget(
		// No grocery spending at all in the target month.
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		tx("2026-01-05", "Cafe Corner", "-20", models.CategoryDining),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	absent := anomaliesOfType(findings, models.AnomalyCategoryAbsent)
	require.Len(t, absent, 1)
	assert.Equal(t, models.CategoryGroceries, absent[0].Category)
	assert.InDelta(t, 1.0, absent[0].Severity, 0.001)
}

func TestAnomalyProcessor_IncomeAnomaly(t *testing.T) {
	t.Run("no income", func(t *testing.T) {
		txs := historyWithTarget(tx("2026-01-05", "Grocer", "-100", models.CategoryGroceries))
		findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
		income := anomaliesOfType(findings, models.AnomalyIncome)
		require.Len(t, income, 1)
		assert.InDelta(t, 1.0, income[0].Severity, 0.001)
	})

	t.Run("income well below trailing average", func(t *testing.T) {
		txs := historyWithTarget(
			tx("2026-01-04", "Employer", "900", models.CategorySalary),
			tx("2026-01-05", "Grocer", "-100", models.CategoryGroceries),
		)
		findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
		income := anomaliesOfType(findings, models.AnomalyIncome)
		require.Len(t, income, 1)
		// 900 against a 3000 average: severity = 1 - 0.3.
		assert.InDelta(t, 0.7, income[0].Severity, 0.001)
	})

	t.Run("normal income is quiet", func(t *testing.T) {
		txs := historyWithTarget(
			tx("2026-01-04", "Employer", "3000", models.CategorySalary),
			tx("2026-01-05", "Grocer", "-100", models.CategoryGroceries),
		)
		findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
		assert.Empty(t, anomaliesOfType(findings, models.AnomalyIncome))
	})
}

func TestAnomalyProcessor_CategoryGrowth(t *testing.T) {
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		// Groceries averaged 200 per prior month; this month is 500.
		tx("2026-01-05", "Grocer", "-250", models.CategoryGroceries),
		tx("2026-01-12", "Grocer", "-250", models.CategoryGroceries),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	growth := anomaliesOfType(findings, models.AnomalyCategoryGrowth)
	require.Len(t, growth, 1)

	a := growth[0]
	assert.Equal(t, models.CategoryGroceries, a.Category)
	assert.InDelta(t, 2.5, a.Severity, 0.001)
	assert.True(t, a.Baseline.Equal(decimal.RequireFromString("200")))
}

func TestAnomalyProcessor_CategoryGrowthIgnoresSmallIncreases(t *testing.T) {
	// 270 against a 200 average clears the ratio but the increase is only 70.
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		tx("2026-01-05", "Grocer", "-270", models.CategoryGroceries),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyCategoryGrowth))
}

func TestAnomalyProcessor_SeverityIsCapped(t *testing.T) {
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		// 100x the trailing mean grocery debit of 100.
		tx("2026-01-15", "Auction House", "-10000", models.CategoryGroceries),
	)

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	large := anomaliesOfType(findings, models.AnomalyLargeTransaction)
	require.Len(t, large, 1)
	assert.InDelta(t, 10.0, large[0].Severity, 0.001)
}

func TestAnomalyProcessor_ColdStartSkipsTrailingRules(t *testing.T) {
	// Only one prior month: below the default MinPriorMonths of 2.
	txs := []models.Transaction{
		tx("2025-12-05", "Grocer", "-100", models.CategoryGroceries),
		tx("2026-01-15", "Fancy Foods", "-9000", models.CategoryGroceries),
	}

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyLargeTransaction))
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyMerchantSpike))
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyCategoryAbsent))
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyCategoryGrowth))
	assert.Empty(t, anomaliesOfType(findings, models.AnomalyIncome))
}

func TestAnomalyProcessor_RecurringCharge(t *testing.T) {
	txs := []models.Transaction{
		tx("2025-11-01", "Streamly", "-12.99", models.CategorySubscriptions),
		tx("2025-12-01", "Streamly", "-12.99", models.CategorySubscriptions),
		tx("2026-01-01", "Streamly", "-12.99", models.CategorySubscriptions),
		// Variable spend across the same months: not recurring.
		tx("2025-11-02", "Grocer", "-10", models.CategoryGroceries),
		tx("2025-12-02", "Grocer", "-200", models.CategoryGroceries),
		tx("2026-01-02", "Grocer", "-55", models.CategoryGroceries),
	}

	findings := NewAnomalyProcessor(DefaultAnomalyConfig()).Detect(txs, "2026-01")
	recurring := anomaliesOfType(findings, models.AnomalyRecurringCharge)
	require.Len(t, recurring, 1)
	assert.Equal(t, "Streamly", recurring[0].Merchant)
	assert.True(t, recurring[0].Amount.Equal(decimal.RequireFromString("12.99")))
}

func TestAnomalyProcessor_OutputOrderIsStable(t *testing.T) {
	txs := historyWithTarget(
		tx("2026-01-04", "Employer", "3000", models.CategorySalary),
		tx("2026-01-15", "Fancy Foods", "-450", models.CategoryGroceries),
		tx("2026-01-10", "Big Grocer", "-450", models.CategoryGroceries),
	)

	p := NewAnomalyProcessor(DefaultAnomalyConfig())
	first := p.Detect(txs, "2026-01")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.Detect(txs, "2026-01"))
	}

	// Within the large-transaction rule, findings order by date ascending.
	large := anomaliesOfType(first, models.AnomalyLargeTransaction)
	require.Len(t, large, 2)
	assert.Equal(t, "Big Grocer", large[0].Merchant)
	assert.Equal(t, "Fancy Foods", large[1].Merchant)
}
