// backend/src/models/report.go
package models

import (
	"github.com/shopspring/decimal"
)

// Result labels for a monthly summary. Break-even requires exact decimal
// equality with zero, no epsilon.
const (
	ResultProfit    = "Profit"
	ResultLoss      = "Loss"
	ResultBreakEven = "Break-even"
)

// CategoryTotal is one row of a monthly category breakdown. Amount is the
// total debit magnitude for the category, always non-negative.
type CategoryTotal struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MerchantTotal is one row of a top-merchants ranking.
type MerchantTotal struct {
	Merchant   string          `json:"merchant"`
	TotalSpend decimal.Decimal `json:"total_spend"`
	Count      int             `json:"transactions_count"`
}

// MonthlySummary holds the derived figures for one month of one dataset.
// It is computed on demand and never persisted.
type MonthlySummary struct {
	Month             string          `json:"month"` // YYYY-MM
	Income            decimal.Decimal `json:"income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"` // Debit magnitude
	CoreExpenses      decimal.Decimal `json:"core_expenses"`  // Excludes non-consumption categories
	Result            decimal.Decimal `json:"result"`         // Income - TotalExpenses
	ResultLabel       string          `json:"result_label"`
	CategoryBreakdown []CategoryTotal `json:"category_breakdown"`
	TopMerchants      []MerchantTotal `json:"top_merchants"`
	Currency          string          `json:"currency,omitempty"`
	RowsAnalyzed      int             `json:"rows_analyzed"`
}

// Anomaly type tags, one per detector rule.
const (
	AnomalyLargeTransaction = "large_transaction"
	AnomalyMerchantSpike    = "merchant_spike"
	AnomalyCategoryAbsent   = "category_absent"
	AnomalyCategoryGrowth   = "category_growth"
	AnomalyIncome           = "income_anomaly"
	AnomalyRecurringCharge  = "recurring_charge"
)

// Anomaly is one detector finding. Severity is the observed/baseline ratio for
// spend rules and a drop ratio for income; higher always means more unusual.
type Anomaly struct {
	Type        string          `json:"type"`
	Severity    float64         `json:"severity"`
	Category    Category        `json:"category,omitempty"`
	Merchant    string          `json:"merchant,omitempty"`
	Date        string          `json:"date,omitempty"` // YYYY-MM-DD, when tied to a single transaction
	Amount      decimal.Decimal `json:"amount"`
	Baseline    decimal.Decimal `json:"baseline"`
	Description string          `json:"description"`
}

// Recommendation is one ranked savings suggestion. Ordering is fully
// deterministic: severity desc, impact desc, category asc.
type Recommendation struct {
	Rank                   int             `json:"rank"`
	Category               Category        `json:"category"`
	Title                  string          `json:"title"`
	ActionSteps            []string        `json:"action_steps"`
	EstimatedMonthlyImpact decimal.Decimal `json:"estimated_monthly_impact"`
	Severity               float64         `json:"severity"`
	Source                 string          `json:"source"` // "rule-based", "anomaly" or "fallback"
	Reason                 string          `json:"reason"`
}

// DateRange is the [min, max] transaction date span of a dataset.
type DateRange struct {
	From string `json:"from"` // YYYY-MM-DD
	To   string `json:"to"`
}

// Narrative sources.
const (
	NarrativeSourceLLM      = "llm"
	NarrativeSourceFallback = "fallback"
)

// Report is the full structured output for one dataset/month. The narrative
// text is presentation only; every number and ranking is computed before the
// narrative layer runs and is never modified by it.
type Report struct {
	DatasetID       string           `json:"dataset_id"`
	Month           string           `json:"month"`
	Summary         MonthlySummary   `json:"summary"`
	Anomalies       []Anomaly        `json:"anomalies"`
	Recommendations []Recommendation `json:"recommendations"`
	AvailableMonths []string         `json:"available_months"`
	DateRange       DateRange        `json:"date_range"`
	Narrative       string           `json:"narrative"`
	NarrativeSource string           `json:"narrative_source"`
}
