package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finsight/backend/src/models"
	"github.com/username/finsight/backend/src/parsers"
	"github.com/username/finsight/backend/src/storage"
)

const sampleCSV = `Date,Merchant,Amount,Description
2026-01-05,Landlord,-1200.00,January rent
2026-01-10,Employer Payroll,3000.00,Salary
2026-01-12,Bank Transfer,-500.00,To savings
bad-date,Shop,-10.00,Broken row
`

func TestIngestionService_IngestFile(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewIngestionService(store)

	result, err := svc.IngestFile(context.Background(), strings.NewReader(sampleCSV), "statement.csv", "test-bank")
	require.NoError(t, err)

	assert.NotEmpty(t, result.DatasetID)
	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 1, result.Rejected)
	require.Len(t, result.RejectedRows, 1)
	assert.Equal(t, 5, result.RejectedRows[0].Line)

	// Read-after-write within the same ingestion flow.
	txs, err := store.GetTransactions(context.Background(), result.DatasetID, "")
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, "Landlord", txs[0].Merchant)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("-1200.00")))
	assert.Equal(t, models.CategoryRent, txs[0].Category)
	assert.Equal(t, models.CategorySalary, txs[1].Category)
	assert.Equal(t, models.CategoryTransfers, txs[2].Category)
}

func TestIngestionService_SchemaErrorPropagates(t *testing.T) {
	svc := NewIngestionService(storage.NewMemoryStore())

	_, err := svc.IngestFile(context.Background(), strings.NewReader("Foo,Bar\n1,2\n"), "statement.csv", "")
	var schemaErr *parsers.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestIngestionService_NoValidRows(t *testing.T) {
	svc := NewIngestionService(storage.NewMemoryStore())

	csv := "Date,Merchant,Amount\nnope,Shop,ten\n"
	_, err := svc.IngestFile(context.Background(), strings.NewReader(csv), "statement.csv", "")
	assert.ErrorIs(t, err, parsers.ErrNoValidRows)
}

// failingTxStore wraps a MemoryStore, fails every transaction batch, and
// remembers which dataset the service created.
type failingTxStore struct {
	*storage.MemoryStore
	createdDatasetID string
}

func (s *failingTxStore) InsertDataset(ctx context.Context, ds models.Dataset) error {
	s.createdDatasetID = ds.ID
	return s.MemoryStore.InsertDataset(ctx, ds)
}

func (s *failingTxStore) InsertTransactions(ctx context.Context, datasetID string, txs []models.Transaction) (int, error) {
	return 0, errors.New("disk full")
}

func TestIngestionService_InsertFailureLeavesNoDataset(t *testing.T) {
	store := &failingTxStore{MemoryStore: storage.NewMemoryStore()}
	svc := NewIngestionService(store)

	_, err := svc.IngestFile(context.Background(), strings.NewReader(sampleCSV), "statement.csv", "")
	require.Error(t, err)
	require.NotEmpty(t, store.createdDatasetID)

	// The dataset row written before the batch must not survive the failure.
	exists, err := store.DatasetExists(context.Background(), store.createdDatasetID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIngestionService_EmptyFile(t *testing.T) {
	svc := NewIngestionService(storage.NewMemoryStore())

	_, err := svc.IngestFile(context.Background(), strings.NewReader(""), "statement.csv", "")
	assert.ErrorIs(t, err, ErrEmptyFile)
}
