package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// ShowDashboardParams contains parameters for the dashboard
type ShowDashboardParams struct {
	Refresh      bool // re-read chain state before rendering
	HistoryLimit int
}

// DashboardView is everything the status screen shows
type DashboardView struct {
	Session         domain.SessionState
	NetworkMismatch bool
	Token           config.TokenConfig
	Network         domain.Chain

	Balance         string
	VotingPower     string
	CurrentDelegate *common.Address
	DelegateSteward *domain.Steward
	SelfDelegated   bool
	IsLoading       bool

	Stewards      []StewardView
	RecentHistory []domain.DelegationRecord
}

// ShowDashboard is the use case behind status and watch
type ShowDashboard struct {
	config   *config.RuntimeConfig
	session  *WalletSession
	manager  *DelegationManager
	stewards *ListStewards
}

// NewShowDashboard creates a new ShowDashboard use case
func NewShowDashboard(cfg *config.RuntimeConfig, session *WalletSession, manager *DelegationManager, stewards *ListStewards) *ShowDashboard {
	return &ShowDashboard{
		config:   cfg,
		session:  session,
		manager:  manager,
		stewards: stewards,
	}
}

// Run builds the dashboard view. A wallet on another network only gets the
// network gate.
func (uc *ShowDashboard) Run(ctx context.Context, params ShowDashboardParams) (*DashboardView, error) {
	session := uc.session.State()
	view := &DashboardView{
		Session:         session,
		NetworkMismatch: session.NetworkMismatch(),
		Token:           uc.config.Token,
		Network:         domain.BaseChain,
	}

	if base, ok := uc.config.NetworkByChainID(domain.TargetChainID); ok && base.ExplorerURL != "" {
		view.Network = base.Chain()
	}

	if !session.IsConnected || view.NetworkMismatch {
		return view, nil
	}

	if params.Refresh {
		uc.manager.Refresh(ctx)
	}

	state := uc.manager.State()
	view.Balance = state.UserBalance
	view.VotingPower = state.VotingPower
	view.CurrentDelegate = state.CurrentDelegate
	view.IsLoading = state.IsLoading
	view.SelfDelegated = session.Address != nil && domain.SameAddress(state.CurrentDelegate, session.Address)

	stewards, err := uc.stewards.Run(ctx)
	if err != nil {
		return nil, err
	}
	view.Stewards = stewards
	for i := range stewards {
		if stewards[i].IsCurrentDelegate {
			steward := stewards[i].Steward
			view.DelegateSteward = &steward
			break
		}
	}

	history := uc.manager.History()
	if params.HistoryLimit > 0 && len(history) > params.HistoryLimit {
		history = history[:params.HistoryLimit]
	}
	view.RecentHistory = history

	return view, nil
}
