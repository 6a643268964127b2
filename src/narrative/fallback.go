// backend/src/narrative/fallback.go
package narrative

import (
	"fmt"
	"strings"

	"github.com/username/finsight/backend/src/models"
)

// RenderFallback produces the deterministic narrative used whenever the LLM
// layer is disabled, unavailable, or fails. It reads the computed figures
// verbatim, so a report rendered twice is byte-identical.
func RenderFallback(report *models.Report) string {
	var b strings.Builder
	s := report.Summary

	fmt.Fprintf(&b, "%s closed with a %s: income %s against expenses %s (net %s).",
		s.Month, strings.ToLower(s.ResultLabel), s.Income.StringFixed(2),
		s.TotalExpenses.StringFixed(2), s.Result.StringFixed(2))
	fmt.Fprintf(&b, " Consumption spending was %s after excluding transfers and other money movement.",
		s.CoreExpenses.StringFixed(2))

	if len(s.CategoryBreakdown) > 0 {
		top := s.CategoryBreakdown[0]
		fmt.Fprintf(&b, " The largest expense category was %s at %s.",
			top.Category, top.Amount.StringFixed(2))
	}

	if n := len(report.Anomalies); n == 1 {
		b.WriteString(" 1 anomaly was detected this month.")
	} else if n > 1 {
		fmt.Fprintf(&b, " %d anomalies were detected this month.", n)
	}

	if len(report.Recommendations) > 0 {
		rec := report.Recommendations[0]
		fmt.Fprintf(&b, " Top suggestion: %s (estimated monthly impact %s).",
			rec.Title, rec.EstimatedMonthlyImpact.StringFixed(2))
	}

	return b.String()
}
