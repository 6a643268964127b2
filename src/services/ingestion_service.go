// backend/src/services/ingestion_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/username/finsight/backend/src/categorize"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/parsers"
	"github.com/username/finsight/backend/src/storage"
)

type ingestionServiceImpl struct {
	store storage.Store
}

func NewIngestionService(store storage.Store) IngestionService {
	return &ingestionServiceImpl{store: store}
}

// IngestFile reads the uploaded file, resolves its schema, normalizes and
// classifies every row, and commits the accepted rows as a new dataset in one
// atomic batch.
func (s *ingestionServiceImpl) IngestFile(ctx context.Context, file io.Reader, filename, sourceName string) (*models.IngestionResult, error) {
	rows, err := parsers.ReadTabular(file, filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	columnMap, err := parsers.ResolveSchema(rows[0])
	if err != nil {
		return nil, err
	}

	txs, rejected, err := parsers.NormalizeRows(rows[1:], columnMap)
	if err != nil {
		return nil, err
	}

	datasetID := uuid.New().String()
	for i := range txs {
		txs[i].DatasetID = datasetID
		txs[i].Category = categorize.ClassifyTransaction(txs[i])
	}

	if err := s.store.InsertDataset(ctx, models.Dataset{
		ID:         datasetID,
		SourceName: sourceName,
		CreatedAt:  time.Now().UTC(),
		Accepted:   len(txs),
		Rejected:   len(rejected),
	}); err != nil {
		return nil, fmt.Errorf("persisting dataset: %w", err)
	}

	inserted, err := s.store.InsertTransactions(ctx, datasetID, txs)
	if err != nil {
		// Remove the dataset row so no empty dataset survives the failure.
		if delErr := s.store.DeleteDataset(ctx, datasetID); delErr != nil {
			logger.FromContext(ctx).Error("Failed to clean up dataset after insert failure",
				"datasetID", datasetID, "error", delErr)
		}
		return nil, fmt.Errorf("persisting transactions: %w", err)
	}

	logger.FromContext(ctx).Info("Ingested statement file",
		"datasetID", datasetID, "file", filename, "accepted", inserted, "rejected", len(rejected))

	return &models.IngestionResult{
		DatasetID:    datasetID,
		Accepted:     inserted,
		Rejected:     len(rejected),
		RejectedRows: rejected,
	}, nil
}
