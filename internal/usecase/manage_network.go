package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// ManageNetwork is the use case for switching and adding wallet networks
type ManageNetwork struct {
	config  *config.RuntimeConfig
	session *WalletSession
}

// NewManageNetwork creates a new ManageNetwork use case
func NewManageNetwork(cfg *config.RuntimeConfig, session *WalletSession) *ManageNetwork {
	return &ManageNetwork{
		config:  cfg,
		session: session,
	}
}

// ResolveChain finds a chain by configured network name or chain id. An
// empty ref means the delegation network.
func (uc *ManageNetwork) ResolveChain(ref string) (domain.Chain, error) {
	if ref == "" {
		ref = strconv.FormatUint(domain.TargetChainID, 10)
	}

	if network, ok := uc.config.Networks[ref]; ok {
		return network.Chain(), nil
	}

	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		if id, err = domain.ParseChainID(ref); err != nil {
			return domain.Chain{}, fmt.Errorf("network %q: %w", ref, domain.ErrNotFound)
		}
	}
	if network, ok := uc.config.NetworkByChainID(id); ok {
		return network.Chain(), nil
	}
	if id == domain.TargetChainID {
		return domain.BaseChain, nil
	}
	return domain.Chain{}, fmt.Errorf("chain %d is not configured: %w", id, domain.ErrNotFound)
}

// Switch asks the wallet to select the referenced network. A wallet that
// does not know the network gets it added when addIfMissing is set.
func (uc *ManageNetwork) Switch(ctx context.Context, ref string, addIfMissing bool) (domain.SessionState, error) {
	chain, err := uc.ResolveChain(ref)
	if err != nil {
		return uc.session.State(), err
	}

	err = uc.session.SwitchNetwork(ctx, chain.ID)
	if err != nil && addIfMissing && domain.IsChainNotAdded(err) {
		err = uc.session.AddNetwork(ctx, chain)
	}
	return uc.session.State(), err
}

// Add asks the wallet to add the referenced network
func (uc *ManageNetwork) Add(ctx context.Context, ref string) (domain.SessionState, error) {
	chain, err := uc.ResolveChain(ref)
	if err != nil {
		return uc.session.State(), err
	}
	if len(chain.RPCURLs) == 0 || chain.RPCURLs[0] == "" {
		return uc.session.State(), fmt.Errorf("network %q has no rpc url", ref)
	}
	err = uc.session.AddNetwork(ctx, chain)
	return uc.session.State(), err
}
