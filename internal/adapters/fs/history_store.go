package fs

import (
	"context"
	"errors"

	"github.com/unlock-community/updelegate/internal/domain"
)

// HistoryStoreAdapter implements usecase.HistoryStore on LocalStorage
type HistoryStoreAdapter struct {
	storage *LocalStorage
}

// NewHistoryStoreAdapter creates a new HistoryStoreAdapter
func NewHistoryStoreAdapter(storage *LocalStorage) *HistoryStoreAdapter {
	return &HistoryStoreAdapter{storage: storage}
}

// Load returns the stored history, newest first. No history yet is an
// empty list.
func (a *HistoryStoreAdapter) Load(ctx context.Context) ([]domain.DelegationRecord, error) {
	var records []domain.DelegationRecord
	err := a.storage.Get(ctx, domain.DelegationHistoryKey, &records)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.DelegationRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.DelegationRecord{}
	}
	return records, nil
}

// Save rewrites the whole history
func (a *HistoryStoreAdapter) Save(ctx context.Context, records []domain.DelegationRecord) error {
	if records == nil {
		records = []domain.DelegationRecord{}
	}
	return a.storage.Set(ctx, domain.DelegationHistoryKey, records)
}
