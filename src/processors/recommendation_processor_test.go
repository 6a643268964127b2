package processors

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finsight/backend/src/models"
)

func summaryWithBreakdown(totals map[models.Category]string) *models.MonthlySummary {
	var breakdown []models.CategoryTotal
	for category, amount := range totals {
		breakdown = append(breakdown, models.CategoryTotal{
			Category: category,
			Amount:   decimal.RequireFromString(amount),
		})
	}
	return &models.MonthlySummary{
		Month:             "2026-01",
		CategoryBreakdown: sortedBreakdownFromSlice(breakdown),
	}
}

func sortedBreakdownFromSlice(breakdown []models.CategoryTotal) []models.CategoryTotal {
	totals := make(map[models.Category]decimal.Decimal, len(breakdown))
	for _, ct := range breakdown {
		totals[ct.Category] = ct.Amount
	}
	return sortedBreakdown(totals)
}

func TestRecommendationProcessor_RankingKey(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategoryRent:      "1000", // impact 100, no anomaly
		models.CategoryDining:    "200",  // impact 20, anomalous
		models.CategoryGroceries: "200",  // impact 20, no anomaly
		models.CategoryTransport: "200",  // impact 20, no anomaly
	})
	anomalies := []models.Anomaly{
		{Type: models.AnomalyMerchantSpike, Severity: 2.5, Category: models.CategoryDining},
	}

	recs := NewRecommendationProcessor(3).Generate(summary, anomalies, 4)
	require.Len(t, recs, 4)

	// Severity first: dining outranks the larger rent impact.
	assert.Equal(t, models.CategoryDining, recs[0].Category)
	assert.Equal(t, models.CategoryRent, recs[1].Category)
	// Remaining tie on severity and impact breaks by category name.
	assert.Equal(t, models.CategoryGroceries, recs[2].Category)
	assert.Equal(t, models.CategoryTransport, recs[3].Category)

	for i, rec := range recs {
		assert.Equal(t, i+1, rec.Rank)
	}
}

func TestRecommendationProcessor_ImpactIsTenPercent(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategorySubscriptions: "129.90",
	})

	recs := NewRecommendationProcessor(3).Generate(summary, nil, 1)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].EstimatedMonthlyImpact.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, "rule-based", recs[0].Source)
	assert.NotEmpty(t, recs[0].ActionSteps)
}

func TestRecommendationProcessor_RecurringChargeAudit(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategoryGroceries: "100",
	})
	anomalies := []models.Anomaly{
		{
			Type:        models.AnomalyRecurringCharge,
			Severity:    0.5,
			Merchant:    "Streamly",
			Amount:      decimal.RequireFromString("12.99"),
			Description: "Streamly looks like a recurring charge of about 12.99 across 3 months",
		},
	}

	recs := NewRecommendationProcessor(3).Generate(summary, anomalies, 2)
	require.Len(t, recs, 2)

	// The audit carries severity 0.5 and outranks the quiet groceries cut.
	assert.Equal(t, "Audit recurring charge: Streamly", recs[0].Title)
	assert.Equal(t, "anomaly", recs[0].Source)
	assert.Equal(t, models.CategoryGroceries, recs[1].Category)
}

func TestRecommendationProcessor_FallbackPadding(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategoryGroceries: "100",
	})

	recs := NewRecommendationProcessor(3).Generate(summary, nil, 4)
	require.Len(t, recs, 4)
	assert.Equal(t, "rule-based", recs[0].Source)
	for _, rec := range recs[1:] {
		assert.Equal(t, "fallback", rec.Source)
	}
}

func TestRecommendationProcessor_Deterministic(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategoryRent:      "1000",
		models.CategoryDining:    "200",
		models.CategoryGroceries: "200",
	})
	anomalies := []models.Anomaly{
		{Type: models.AnomalyMerchantSpike, Severity: 2.1, Category: models.CategoryDining},
	}

	p := NewRecommendationProcessor(3)
	first := p.Generate(summary, anomalies, 3)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, p.Generate(summary, anomalies, 3))
	}
}

func TestRecommendationProcessor_CountBounds(t *testing.T) {
	summary := summaryWithBreakdown(map[models.Category]string{
		models.CategoryRent:      "1000",
		models.CategoryDining:    "200",
		models.CategoryGroceries: "100",
		models.CategoryTransport: "50",
	})

	assert.Len(t, NewRecommendationProcessor(3).Generate(summary, nil, 0), 3, "default count")
	assert.Len(t, NewRecommendationProcessor(3).Generate(summary, nil, 2), 2, "explicit count")
}
