// backend/src/storage/interface.go
package storage

import (
	"context"

	"github.com/username/finsight/backend/src/models"
)

// Store is the persistence collaborator for datasets and their transactions.
// Implementations must make InsertTransactions atomic per dataset and provide
// read-after-write consistency within one ingestion call.
type Store interface {
	InsertDataset(ctx context.Context, ds models.Dataset) error
	// InsertTransactions writes all transactions in a single atomic batch and
	// returns the number inserted.
	InsertTransactions(ctx context.Context, datasetID string, txs []models.Transaction) (int, error)
	DatasetExists(ctx context.Context, datasetID string) (bool, error)
	// DeleteDataset removes the dataset row and any transactions under it.
	// Deleting an unknown dataset is not an error.
	DeleteDataset(ctx context.Context, datasetID string) error
	// GetTransactions returns the dataset's transactions ordered by date then
	// insertion order. An empty month returns the whole dataset; otherwise
	// month filters to a YYYY-MM key.
	GetTransactions(ctx context.Context, datasetID, month string) ([]models.Transaction, error)
	// GetMonths returns the sorted distinct YYYY-MM keys of the dataset.
	GetMonths(ctx context.Context, datasetID string) ([]string, error)
}
