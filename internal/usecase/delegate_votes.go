package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// DelegateVotesParams contains parameters for delegating votes
type DelegateVotesParams struct {
	Type    domain.DelegationType
	Steward string // id, name or address; empty picks interactively
	Address string // target for custom delegations
	Amount  string
}

// DelegateVotesResult contains the outcome of a delegation
type DelegateVotesResult struct {
	TxHash    common.Hash
	Delegatee common.Address
	Steward   *domain.Steward
	Record    *domain.DelegationRecord
}

// DelegateVotes is the use case for delegating to self, a steward or an address
type DelegateVotes struct {
	config   *config.RuntimeConfig
	session  *WalletSession
	manager  *DelegationManager
	stewards *ListStewards
	selector StewardSelector
}

// NewDelegateVotes creates a new DelegateVotes use case
func NewDelegateVotes(
	cfg *config.RuntimeConfig,
	session *WalletSession,
	manager *DelegationManager,
	stewards *ListStewards,
	selector StewardSelector,
) *DelegateVotes {
	return &DelegateVotes{
		config:   cfg,
		session:  session,
		manager:  manager,
		stewards: stewards,
		selector: selector,
	}
}

// Run resolves the delegation target and delegates to it
func (uc *DelegateVotes) Run(ctx context.Context, params DelegateVotesParams) (*DelegateVotesResult, error) {
	session := uc.session.State()
	if !session.IsConnected || session.Address == nil {
		return nil, domain.ErrNotConnected
	}
	if !session.OnTargetNetwork() {
		return nil, domain.ErrNetworkMismatch
	}

	result := &DelegateVotesResult{}
	delegate := DelegateParams{Type: params.Type, Amount: params.Amount}

	switch params.Type {
	case domain.DelegationSelf:
		delegate.To = session.Address.Hex()
	case domain.DelegationSteward:
		steward, err := uc.resolveSteward(ctx, params.Steward)
		if err != nil {
			return nil, err
		}
		result.Steward = steward
		delegate.To = steward.Address
		delegate.StewardName = steward.Name
	case domain.DelegationCustom:
		delegate.To = params.Address
	default:
		return nil, fmt.Errorf("unknown delegation type %q", params.Type)
	}

	return uc.delegate(ctx, result, delegate, func(ctx context.Context) (*domain.DelegationRecord, error) {
		return uc.manager.Delegate(ctx, delegate)
	})
}

// Undelegate removes the account's delegate
func (uc *DelegateVotes) Undelegate(ctx context.Context) (*DelegateVotesResult, error) {
	return uc.delegate(ctx, &DelegateVotesResult{}, DelegateParams{To: domain.ZeroAddress.Hex()}, uc.manager.Undelegate)
}

func (uc *DelegateVotes) delegate(
	ctx context.Context,
	result *DelegateVotesResult,
	params DelegateParams,
	submit func(context.Context) (*domain.DelegationRecord, error),
) (*DelegateVotesResult, error) {
	record, err := submit(ctx)
	if to, normErr := domain.NormalizeAddress(params.To); normErr == nil {
		result.Delegatee = to
	}
	if record != nil {
		result.Record = record
		if record.TransactionHash != "" {
			result.TxHash = common.HexToHash(record.TransactionHash)
		}
	}
	return result, err
}

func (uc *DelegateVotes) resolveSteward(ctx context.Context, query string) (*domain.Steward, error) {
	if query != "" {
		return uc.stewards.Resolve(ctx, query)
	}
	if uc.config.NonInteractive || uc.selector == nil {
		return nil, fmt.Errorf("a steward name, id or address is required in non-interactive mode")
	}

	views, err := uc.stewards.Run(ctx)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, fmt.Errorf("steward roster is empty: %w", domain.ErrNotFound)
	}
	return uc.selector.SelectSteward(ctx, views, "Select a steward to delegate to")
}
