package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/unlock-community/updelegate/internal/domain"
)

// ListStewards is the use case for listing the steward roster
type ListStewards struct {
	repo    StewardRepository
	manager *DelegationManager
}

// NewListStewards creates a new ListStewards use case
func NewListStewards(repo StewardRepository, manager *DelegationManager) *ListStewards {
	return &ListStewards{
		repo:    repo,
		manager: manager,
	}
}

// Run returns the roster, ordered by voting power, with the current
// delegate marked
func (uc *ListStewards) Run(ctx context.Context) ([]StewardView, error) {
	stewards, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stewards: %w", err)
	}

	current := uc.manager.State().CurrentDelegate
	views := lo.Map(stewards, func(s domain.Steward, _ int) StewardView {
		return StewardView{
			Steward:           s,
			IsCurrentDelegate: current != nil && s.Matches(*current),
		}
	})

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].VotingPower > views[j].VotingPower
	})
	return views, nil
}

// Resolve finds a steward by id, name or address. Name matching ignores case.
func (uc *ListStewards) Resolve(ctx context.Context, query string) (*domain.Steward, error) {
	stewards, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stewards: %w", err)
	}

	query = strings.TrimSpace(query)
	steward, ok := lo.Find(stewards, func(s domain.Steward) bool {
		return s.ID == query ||
			strings.EqualFold(s.Name, query) ||
			domain.EqualAddressFold(s.Address, query)
	})
	if !ok {
		return nil, fmt.Errorf("steward %q: %w", query, domain.ErrNotFound)
	}
	return &steward, nil
}
