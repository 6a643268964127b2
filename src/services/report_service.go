// backend/src/services/report_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/patrickmn/go-cache"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/narrative"
	"github.com/username/finsight/backend/src/processors"
	"github.com/username/finsight/backend/src/storage"
)

const ckReport = "report_%s_%s_%d"

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type reportServiceImpl struct {
	store           storage.Store
	summaries       *processors.SummaryProcessor
	anomalies       *processors.AnomalyProcessor
	recommendations *processors.RecommendationProcessor
	narrativeSvc    narrative.Service
	reportCache     *cache.Cache
}

func NewReportService(
	store storage.Store,
	summaries *processors.SummaryProcessor,
	anomalies *processors.AnomalyProcessor,
	recommendations *processors.RecommendationProcessor,
	narrativeSvc narrative.Service,
	reportCache *cache.Cache,
) ReportService {
	return &reportServiceImpl{
		store:           store,
		summaries:       summaries,
		anomalies:       anomalies,
		recommendations: recommendations,
		narrativeSvc:    narrativeSvc,
		reportCache:     reportCache,
	}
}

// GenerateReport runs the deterministic pipeline — summary, anomalies,
// recommendations — over the committed dataset, then attaches a narrative.
// Narrative failure is never fatal: the structured report falls back to
// deterministic phrasing instead.
func (s *reportServiceImpl) GenerateReport(ctx context.Context, datasetID, month string, recommendations int) (*models.Report, error) {
	if month != "" && !monthPattern.MatchString(month) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}

	cacheKey := fmt.Sprintf(ckReport, datasetID, month, recommendations)
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			return cached.(*models.Report), nil
		}
	}

	exists, err := s.store.DatasetExists(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("checking dataset: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
	}

	// The whole dataset is loaded once: anomaly rules need prior months even
	// when the summary covers a single month.
	txs, err := s.store.GetTransactions(ctx, datasetID, "")
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	summary, err := s.summaries.Compute(txs, month)
	if err != nil {
		return nil, err
	}

	findings := s.anomalies.Detect(txs, summary.Month)
	recs := s.recommendations.Generate(summary, findings, recommendations)

	report := &models.Report{
		DatasetID:       datasetID,
		Month:           summary.Month,
		Summary:         *summary,
		Anomalies:       findings,
		Recommendations: recs,
		AvailableMonths: processors.AvailableMonths(txs),
		DateRange:       processors.DatasetDateRange(txs),
	}

	text, err := s.narrativeSvc.GenerateSummary(ctx, report)
	if err != nil {
		if !errors.Is(err, narrative.ErrUnavailable) {
			logger.FromContext(ctx).Warn("Unexpected narrative error, using fallback text", "error", err)
		}
		report.Narrative = narrative.RenderFallback(report)
		report.NarrativeSource = models.NarrativeSourceFallback
	} else {
		report.Narrative = text
		report.NarrativeSource = models.NarrativeSourceLLM
	}

	if s.reportCache != nil {
		s.reportCache.SetDefault(cacheKey, report)
	}
	return report, nil
}

func (s *reportServiceImpl) GetMonths(ctx context.Context, datasetID string) ([]string, error) {
	exists, err := s.store.DatasetExists(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("checking dataset: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
	}
	return s.store.GetMonths(ctx, datasetID)
}
