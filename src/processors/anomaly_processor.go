// backend/src/processors/anomaly_processor.go
package processors

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/username/finsight/backend/src/models"
)

// AnomalyConfig carries the detection thresholds. Trailing-average rules are
// skipped entirely when the dataset has fewer than MinPriorMonths months of
// history before the target month; insufficient history is never an error.
type AnomalyConfig struct {
	OutlierMultiplier float64 // Rule: large_transaction
	SpikeMultiplier   float64 // Rule: merchant_spike
	MinPriorMonths    int
	IncomeDropRatio   float64 // Rule: income_anomaly
	GrowthMultiplier  float64 // Rule: category_growth
	MaxPerRule        int
}

func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		OutlierMultiplier: 3.0,
		SpikeMultiplier:   2.0,
		MinPriorMonths:    2,
		IncomeDropRatio:   0.5,
		GrowthMultiplier:  1.3,
		MaxPerRule:        10,
	}
}

// maxSeverity bounds ratio-based severities so a single extreme outlier
// cannot drown out every other finding in the ranking.
const maxSeverity = 10.0

// growthFloor is the minimum absolute month-over-month increase required
// before category growth is worth flagging.
var growthFloor = decimal.NewFromInt(100)

// AnomalyProcessor scans a dataset for outliers relative to the target month.
// Detection is a pure read; findings are produced fresh per report and their
// order is stable across runs (rule order, then date/merchant/category order
// within each rule).
type AnomalyProcessor struct {
	cfg AnomalyConfig
}

func NewAnomalyProcessor(cfg AnomalyConfig) *AnomalyProcessor {
	if cfg.OutlierMultiplier <= 0 {
		cfg.OutlierMultiplier = 3.0
	}
	if cfg.SpikeMultiplier <= 0 {
		cfg.SpikeMultiplier = 2.0
	}
	if cfg.MinPriorMonths <= 0 {
		cfg.MinPriorMonths = 2
	}
	if cfg.IncomeDropRatio <= 0 {
		cfg.IncomeDropRatio = 0.5
	}
	if cfg.GrowthMultiplier <= 0 {
		cfg.GrowthMultiplier = 1.3
	}
	if cfg.MaxPerRule <= 0 {
		cfg.MaxPerRule = 10
	}
	return &AnomalyProcessor{cfg: cfg}
}

// Detect runs every rule against the target month. The month must already be
// resolved (the report service passes the summary's month).
func (p *AnomalyProcessor) Detect(txs []models.Transaction, month string) []models.Anomaly {
	if len(txs) == 0 || month == "" {
		return nil
	}

	priorMonths := priorMonthsOf(txs, month)
	current := FilterByMonth(txs, month)

	var findings []models.Anomaly
	if len(priorMonths) >= p.cfg.MinPriorMonths {
		findings = append(findings, p.detectLargeTransactions(txs, current, month)...)
		findings = append(findings, p.detectMerchantSpikes(txs, current, month)...)
		findings = append(findings, p.detectAbsentCategories(txs, current, month, priorMonths)...)
		findings = append(findings, p.detectCategoryGrowth(txs, current, month)...)
		findings = append(findings, p.detectIncomeAnomaly(txs, current, month, priorMonths)...)
	}
	findings = append(findings, p.detectRecurringCharges(txs)...)
	return findings
}

// detectLargeTransactions flags single debits whose magnitude exceeds the
// configured multiple of the category's trailing mean debit over prior months.
func (p *AnomalyProcessor) detectLargeTransactions(txs, current []models.Transaction, month string) []models.Anomaly {
	sums := make(map[models.Category]decimal.Decimal)
	counts := make(map[models.Category]int)
	for _, t := range txs {
		if t.Month() < month && t.IsDebit() {
			sums[t.Category] = sums[t.Category].Add(t.Amount.Abs())
			counts[t.Category]++
		}
	}

	var findings []models.Anomaly
	for _, t := range current {
		if !t.IsDebit() || counts[t.Category] == 0 {
			continue
		}
		baseline := sums[t.Category].Div(decimal.NewFromInt(int64(counts[t.Category])))
		if !baseline.IsPositive() {
			continue
		}
		severity := ratio(t.Amount.Abs(), baseline)
		if severity > p.cfg.OutlierMultiplier {
			findings = append(findings, models.Anomaly{
				Type:     models.AnomalyLargeTransaction,
				Severity: severity,
				Category: t.Category,
				Merchant: t.Merchant,
				Date:     t.Date.Format("2006-01-02"),
				Amount:   t.Amount.Abs(),
				Baseline: baseline,
				Description: fmt.Sprintf("%s charge of %s is %.1fx the usual %s transaction",
					t.Merchant, t.Amount.Abs().StringFixed(2), severity, t.Category),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Date != findings[j].Date {
			return findings[i].Date < findings[j].Date
		}
		if findings[i].Merchant != findings[j].Merchant {
			return findings[i].Merchant < findings[j].Merchant
		}
		return findings[i].Amount.Cmp(findings[j].Amount) > 0
	})
	return capFindings(findings, p.cfg.MaxPerRule)
}

// detectMerchantSpikes flags merchants whose month debit total exceeds the
// configured multiple of their trailing monthly average.
func (p *AnomalyProcessor) detectMerchantSpikes(txs, current []models.Transaction, month string) []models.Anomaly {
	// merchant -> month -> debit total over prior months
	history := make(map[string]map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Month() >= month || !t.IsDebit() {
			continue
		}
		if history[t.Merchant] == nil {
			history[t.Merchant] = make(map[string]decimal.Decimal)
		}
		history[t.Merchant][t.Month()] = history[t.Merchant][t.Month()].Add(t.Amount.Abs())
	}

	currentTotals := make(map[string]decimal.Decimal)
	for _, t := range current {
		if t.IsDebit() {
			currentTotals[t.Merchant] = currentTotals[t.Merchant].Add(t.Amount.Abs())
		}
	}

	var findings []models.Anomaly
	for merchant, total := range currentTotals {
		months := history[merchant]
		if len(months) == 0 {
			continue
		}
		sum := decimal.Zero
		for _, v := range months {
			sum = sum.Add(v)
		}
		baseline := sum.Div(decimal.NewFromInt(int64(len(months))))
		if !baseline.IsPositive() {
			continue
		}
		severity := ratio(total, baseline)
		if severity > p.cfg.SpikeMultiplier {
			findings = append(findings, models.Anomaly{
				Type:     models.AnomalyMerchantSpike,
				Severity: severity,
				Merchant: merchant,
				Amount:   total,
				Baseline: baseline,
				Description: fmt.Sprintf("Spend at %s of %s is %.1fx its monthly average of %s",
					merchant, total.StringFixed(2), severity, baseline.StringFixed(2)),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Merchant < findings[j].Merchant
	})
	return capFindings(findings, p.cfg.MaxPerRule)
}

// detectAbsentCategories flags categories that had debits in more than half of
// the prior months but none in the target month.
func (p *AnomalyProcessor) detectAbsentCategories(txs, current []models.Transaction, month string, priorMonths []string) []models.Anomaly {
	presence := make(map[models.Category]map[string]bool)
	totals := make(map[models.Category]decimal.Decimal)
	for _, t := range txs {
		if t.Month() >= month || !t.IsDebit() {
			continue
		}
		if presence[t.Category] == nil {
			presence[t.Category] = make(map[string]bool)
		}
		presence[t.Category][t.Month()] = true
		totals[t.Category] = totals[t.Category].Add(t.Amount.Abs())
	}

	currentCategories := make(map[models.Category]bool)
	for _, t := range current {
		if t.IsDebit() {
			currentCategories[t.Category] = true
		}
	}

	var findings []models.Anomaly
	for category, months := range presence {
		if currentCategories[category] || len(months)*2 <= len(priorMonths) {
			continue
		}
		baseline := totals[category].Div(decimal.NewFromInt(int64(len(months))))
		severity := float64(len(months)) / float64(len(priorMonths))
		findings = append(findings, models.Anomaly{
			Type:     models.AnomalyCategoryAbsent,
			Severity: severity,
			Category: category,
			Baseline: baseline,
			Description: fmt.Sprintf("No %s spending this month; it appeared in %d of %d prior months",
				category, len(months), len(priorMonths)),
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Category < findings[j].Category
	})
	return capFindings(findings, p.cfg.MaxPerRule)
}

// detectCategoryGrowth flags categories whose month debit total exceeds the
// configured multiple of their trailing monthly average; increases smaller
// than growthFloor in absolute terms are ignored as noise.
func (p *AnomalyProcessor) detectCategoryGrowth(txs, current []models.Transaction, month string) []models.Anomaly {
	// category -> month -> debit total over prior months
	history := make(map[models.Category]map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Month() >= month || !t.IsDebit() {
			continue
		}
		if history[t.Category] == nil {
			history[t.Category] = make(map[string]decimal.Decimal)
		}
		history[t.Category][t.Month()] = history[t.Category][t.Month()].Add(t.Amount.Abs())
	}

	currentTotals := make(map[models.Category]decimal.Decimal)
	for _, t := range current {
		if t.IsDebit() {
			currentTotals[t.Category] = currentTotals[t.Category].Add(t.Amount.Abs())
		}
	}

	var findings []models.Anomaly
	for category, total := range currentTotals {
		months := history[category]
		if len(months) == 0 || !total.IsPositive() {
			continue
		}
		sum := decimal.Zero
		for _, v := range months {
			sum = sum.Add(v)
		}
		baseline := sum.Div(decimal.NewFromInt(int64(len(months))))
		if !baseline.IsPositive() {
			continue
		}
		severity := ratio(total, baseline)
		if severity > p.cfg.GrowthMultiplier && total.Sub(baseline).GreaterThan(growthFloor) {
			growthPct := (severity - 1.0) * 100.0
			findings = append(findings, models.Anomaly{
				Type:     models.AnomalyCategoryGrowth,
				Severity: severity,
				Category: category,
				Amount:   total,
				Baseline: baseline,
				Description: fmt.Sprintf("%s spending of %s is %.0f%% above its monthly average of %s",
					category, total.StringFixed(2), growthPct, baseline.StringFixed(2)),
			})
		}
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Category < findings[j].Category
	})
	return capFindings(findings, p.cfg.MaxPerRule)
}

// detectIncomeAnomaly flags zero/negative income, or income unusually low
// against the trailing monthly average.
func (p *AnomalyProcessor) detectIncomeAnomaly(txs, current []models.Transaction, month string, priorMonths []string) []models.Anomaly {
	income := decimal.Zero
	for _, t := range current {
		if t.Amount.IsPositive() {
			income = income.Add(t.Amount)
		}
	}

	priorIncome := decimal.Zero
	for _, t := range txs {
		if t.Month() < month && t.Amount.IsPositive() {
			priorIncome = priorIncome.Add(t.Amount)
		}
	}
	baseline := priorIncome.Div(decimal.NewFromInt(int64(len(priorMonths))))

	if !income.IsPositive() {
		return []models.Anomaly{{
			Type:        models.AnomalyIncome,
			Severity:    1.0,
			Amount:      income,
			Baseline:    baseline,
			Description: fmt.Sprintf("No income recorded for %s", month),
		}}
	}

	if !baseline.IsPositive() {
		return nil
	}
	r := ratio(income, baseline)
	if r < p.cfg.IncomeDropRatio {
		return []models.Anomaly{{
			Type:     models.AnomalyIncome,
			Severity: 1.0 - r,
			Amount:   income,
			Baseline: baseline,
			Description: fmt.Sprintf("Income of %s is well below the monthly average of %s",
				income.StringFixed(2), baseline.StringFixed(2)),
		}}
	}
	return nil
}

// detectRecurringCharges flags merchants that look like subscriptions: three
// or more debits across three or more months with amounts within 15% of their
// mean. This rule carries its own evidence window, so it runs even when the
// trailing-average rules are cold-starting.
func (p *AnomalyProcessor) detectRecurringCharges(txs []models.Transaction) []models.Anomaly {
	type charges struct {
		amounts []decimal.Decimal
		months  map[string]bool
	}
	byMerchant := make(map[string]*charges)
	for _, t := range txs {
		if !t.IsDebit() {
			continue
		}
		c := byMerchant[t.Merchant]
		if c == nil {
			c = &charges{months: make(map[string]bool)}
			byMerchant[t.Merchant] = c
		}
		c.amounts = append(c.amounts, t.Amount.Abs())
		c.months[t.Month()] = true
	}

	var findings []models.Anomaly
	for merchant, c := range byMerchant {
		if len(c.amounts) < 3 || len(c.months) < 3 {
			continue
		}
		sum := decimal.Zero
		for _, a := range c.amounts {
			sum = sum.Add(a)
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(c.amounts))))
		if !mean.IsPositive() {
			continue
		}

		steady := true
		for _, a := range c.amounts {
			deviation := a.Sub(mean).Abs().Div(mean)
			if deviation.GreaterThan(decimal.NewFromFloat(0.15)) {
				steady = false
				break
			}
		}
		if !steady {
			continue
		}

		findings = append(findings, models.Anomaly{
			Type:     models.AnomalyRecurringCharge,
			Severity: 0.5,
			Merchant: merchant,
			Amount:   mean,
			Baseline: mean,
			Description: fmt.Sprintf("%s looks like a recurring charge of about %s across %d months",
				merchant, mean.StringFixed(2), len(c.months)),
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Merchant < findings[j].Merchant
	})
	return capFindings(findings, p.cfg.MaxPerRule)
}

func priorMonthsOf(txs []models.Transaction, month string) []string {
	seen := make(map[string]bool)
	var months []string
	for _, t := range txs {
		m := t.Month()
		if m < month && !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Strings(months)
	return months
}

func ratio(observed, baseline decimal.Decimal) float64 {
	f, _ := observed.Div(baseline).Float64()
	if f > maxSeverity {
		return maxSeverity
	}
	return f
}

func capFindings(findings []models.Anomaly, max int) []models.Anomaly {
	if len(findings) > max {
		return findings[:max]
	}
	return findings
}
