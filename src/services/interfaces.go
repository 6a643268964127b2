// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"
	"io"

	"github.com/username/finsight/backend/src/models"
)

// Define common service errors
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrInvalidMonth    = errors.New("month must be in YYYY-MM format")
	ErrEmptyFile       = errors.New("uploaded file is empty")
)

// IngestionService turns one uploaded statement file into a committed
// dataset. Row-level failures are collected into the result; only an
// unresolvable schema or a file with zero valid rows fails the call.
type IngestionService interface {
	IngestFile(ctx context.Context, file io.Reader, filename, sourceName string) (*models.IngestionResult, error)
}

// ReportService assembles the full monthly report for a dataset.
type ReportService interface {
	// GenerateReport computes the report for the given month ("" selects the
	// dataset's latest month) with up to `recommendations` suggestions
	// (<= 0 selects the configured default).
	GenerateReport(ctx context.Context, datasetID, month string, recommendations int) (*models.Report, error)
	GetMonths(ctx context.Context, datasetID string) ([]string, error)
}
