package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/unlock-community/updelegate/internal/domain"
)

// ListHistoryParams contains parameters for listing delegation history
type ListHistoryParams struct {
	Status  domain.DelegationStatus // empty means all
	Account string                  // only records sent from this address
	Limit   int
}

// HistorySummary counts records per status
type HistorySummary struct {
	Total     int
	Completed int
	Failed    int
	Pending   int
}

// HistoryResult contains the result of listing the history
type HistoryResult struct {
	Records []domain.DelegationRecord
	Summary HistorySummary
}

// ListHistory is the use case for showing past delegations
type ListHistory struct {
	manager *DelegationManager
}

// NewListHistory creates a new ListHistory use case
func NewListHistory(manager *DelegationManager) *ListHistory {
	return &ListHistory{manager: manager}
}

// Run filters the history, newest first
func (uc *ListHistory) Run(_ context.Context, params ListHistoryParams) (*HistoryResult, error) {
	records := lo.Filter(uc.manager.History(), func(r domain.DelegationRecord, _ int) bool {
		if params.Status != "" && r.Status != params.Status {
			return false
		}
		if params.Account != "" && !domain.EqualAddressFold(r.FromAddress, params.Account) {
			return false
		}
		return true
	})

	counts := lo.CountValuesBy(records, func(r domain.DelegationRecord) domain.DelegationStatus {
		return r.Status
	})
	summary := HistorySummary{
		Total:     len(records),
		Completed: counts[domain.StatusCompleted],
		Failed:    counts[domain.StatusFailed],
		Pending:   counts[domain.StatusPending],
	}

	if params.Limit > 0 && len(records) > params.Limit {
		records = records[:params.Limit]
	}

	return &HistoryResult{Records: records, Summary: summary}, nil
}
