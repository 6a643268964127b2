// backend/src/storage/memory.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/username/finsight/backend/src/models"
)

// MemoryStore is an in-memory Store used by tests and the CLI's one-shot
// analyze mode. Transactions are kept in insertion order per dataset.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]models.Dataset
	txs      map[string][]models.Transaction
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]models.Dataset),
		txs:      make(map[string][]models.Transaction),
	}
}

func (s *MemoryStore) InsertDataset(ctx context.Context, ds models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.datasets[ds.ID]; exists {
		return fmt.Errorf("dataset %s already exists", ds.ID)
	}
	s.datasets[ds.ID] = ds
	return nil
}

func (s *MemoryStore) InsertTransactions(ctx context.Context, datasetID string, txs []models.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txs {
		s.nextID++
		t.ID = s.nextID
		t.DatasetID = datasetID
		s.txs[datasetID] = append(s.txs[datasetID], t)
	}
	return len(txs), nil
}

func (s *MemoryStore) DatasetExists(ctx context.Context, datasetID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.datasets[datasetID]
	return ok, nil
}

func (s *MemoryStore) DeleteDataset(ctx context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, datasetID)
	delete(s.txs, datasetID)
	return nil
}

func (s *MemoryStore) GetTransactions(ctx context.Context, datasetID, month string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, t := range s.txs[datasetID] {
		if month == "" || t.Month() == month {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetMonths(ctx context.Context, datasetID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var months []string
	for _, t := range s.txs[datasetID] {
		m := t.Month()
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}
	sort.Strings(months)
	return months, nil
}
