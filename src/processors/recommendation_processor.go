// backend/src/processors/recommendation_processor.go
package processors

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

const (
	minRecommendations = 1
	maxRecommendations = 10

	// Assumed achievable reduction on a category's monthly spend.
	savingsRate = "0.1"
)

// savingsPlaybook provides deterministic action steps per category. Categories
// without an entry use the generic template.
var savingsPlaybook = map[models.Category][]string{
	models.CategorySubscriptions: {
		"Review active subscriptions and cancel duplicates.",
		"Downgrade plans that are unused for 30+ days.",
	},
	models.CategoryTransfers: {
		"Group non-urgent transfers into one weekly transfer.",
		"Set a weekly transfer cap and alert threshold.",
	},
	models.CategoryTransport: {
		"Set a weekly transport budget and track against it.",
		"Batch errands to reduce fuel and ride-hailing usage.",
	},
	models.CategoryCardPayment: {
		"Set a card spend cap with a mid-month checkpoint.",
		"Move repeat discretionary purchases to a fixed envelope.",
	},
	models.CategoryDining: {
		"Set a weekly dining-out budget.",
		"Shift one delivery order a week to a home-cooked meal.",
	},
	models.CategoryGroceries: {
		"Plan meals for the week before shopping.",
		"Switch staple items to store brands.",
	},
}

var genericPlaybook = []string{
	"Flag this category for manual review and recategorization.",
	"Set a temporary 10% reduction target for this category.",
}

// fallbackIdeas pads the list when the dataset yields fewer signals than the
// requested recommendation count. Order is fixed.
var fallbackIdeas = []models.Recommendation{
	{
		Category: models.CategoryUncategorized,
		Title:    "Set a weekly cash-flow checkpoint",
		ActionSteps: []string{
			"Review income vs expenses every week.",
			"Freeze discretionary spend if weekly burn rises above target.",
		},
		Reason: "Baseline savings control for periods with few spending signals.",
		Source: "fallback",
	},
	{
		Category: models.CategoryUncategorized,
		Title:    "Introduce a fixed discretionary envelope",
		ActionSteps: []string{
			"Set one monthly cap for non-essential spending.",
			"Move all discretionary purchases under that cap.",
		},
		Reason: "Baseline savings control for periods with few spending signals.",
		Source: "fallback",
	},
	{
		Category: models.CategoryTransfers,
		Title:    "Create transfer guardrails",
		ActionSteps: []string{
			"Set transfer alerts for large outflows.",
			"Batch personal transfers to one weekly window.",
		},
		Reason: "Baseline savings control for periods with few spending signals.",
		Source: "fallback",
	},
}

// RecommendationProcessor produces ranked, deterministic savings suggestions
// from a monthly summary and the detector's findings.
type RecommendationProcessor struct {
	defaultCount int
}

func NewRecommendationProcessor(defaultCount int) *RecommendationProcessor {
	if defaultCount <= 0 {
		defaultCount = 3
	}
	return &RecommendationProcessor{defaultCount: defaultCount}
}

// Generate returns up to n recommendations (n <= 0 selects the default).
// Ranking key: anomaly severity descending, estimated monthly impact
// descending, category name ascending. The last key exists purely so equal
// candidates order identically across runs.
func (p *RecommendationProcessor) Generate(summary *models.MonthlySummary, anomalies []models.Anomaly, n int) []models.Recommendation {
	if n <= 0 {
		n = p.defaultCount
	}
	if n < minRecommendations {
		n = minRecommendations
	}
	if n > maxRecommendations {
		n = maxRecommendations
	}

	severityByCategory := make(map[models.Category]float64)
	for _, a := range anomalies {
		if a.Category != "" && a.Severity > severityByCategory[a.Category] {
			severityByCategory[a.Category] = a.Severity
		}
	}

	rate, _ := decimal.NewFromString(savingsRate)
	var candidates []models.Recommendation

	for _, ct := range summary.CategoryBreakdown {
		candidates = append(candidates, models.Recommendation{
			Category:               ct.Category,
			Title:                  fmt.Sprintf("Reduce %s spend by 10%%", ct.Category),
			ActionSteps:            playbookFor(ct.Category),
			EstimatedMonthlyImpact: ct.Amount.Mul(rate).Round(2),
			Severity:               severityByCategory[ct.Category],
			Source:                 "rule-based",
			Reason:                 fmt.Sprintf("%s is a top expense category in %s.", ct.Category, summary.Month),
		})
	}

	for _, a := range anomalies {
		if a.Type != models.AnomalyRecurringCharge {
			continue
		}
		candidates = append(candidates, models.Recommendation{
			Category: models.CategorySubscriptions,
			Title:    fmt.Sprintf("Audit recurring charge: %s", a.Merchant),
			ActionSteps: []string{
				"Confirm whether this merchant is still needed.",
				"Cancel or downgrade if usage is low.",
			},
			EstimatedMonthlyImpact: a.Amount.Round(2),
			Severity:               a.Severity,
			Source:                 "anomaly",
			Reason:                 a.Description,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Severity != candidates[j].Severity {
			return candidates[i].Severity > candidates[j].Severity
		}
		if cmp := candidates[i].EstimatedMonthlyImpact.Cmp(candidates[j].EstimatedMonthlyImpact); cmp != 0 {
			return cmp > 0
		}
		return candidates[i].Category < candidates[j].Category
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}

	// Pad with fallback ideas when signals run short. Fallbacks keep their
	// fixed order and never displace a computed candidate.
	for _, idea := range fallbackIdeas {
		if len(candidates) >= n {
			break
		}
		candidates = append(candidates, idea)
	}

	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}

func playbookFor(category models.Category) []string {
	if steps, ok := savingsPlaybook[category]; ok {
		return steps
	}
	return genericPlaybook
}
