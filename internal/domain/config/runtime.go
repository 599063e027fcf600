package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
)

// WalletKind selects the provider implementation behind the wallet session
type WalletKind string

const (
	WalletKindKeystore WalletKind = "keystore"
	WalletKindRPC      WalletKind = "rpc"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Config source tracking
	ConfigSource string // path of updelegate.toml, or "defaults"

	// Resolved configurations
	Token        TokenConfig
	Wallet       WalletConfig
	Networks     map[string]*Network
	StewardsFile string // optional roster override
}

// TokenConfig describes the governance token delegations are made on
type TokenConfig struct {
	Address  common.Address
	Symbol   string
	Decimals int
}

// WalletConfig describes how the wallet provider is built
type WalletConfig struct {
	Kind         WalletKind
	KeystoreDir  string
	Account      string // preferred keystore account, empty means first
	Endpoint     string // external wallet JSON-RPC endpoint
	PollInterval time.Duration

	KeyringService string
	KeyringBackend string // empty lets keyring pick the OS default
}

// Network represents network configuration
type Network struct {
	Name           string                `json:"name"`
	ChainID        uint64                `json:"chainId"`
	RPCURL         string                `json:"rpcUrl"`
	ExplorerURL    string                `json:"explorerUrl,omitempty"`
	NativeCurrency domain.NativeCurrency `json:"nativeCurrency"`
}

// Chain converts the network into the chain parameters a wallet understands
func (n *Network) Chain() domain.Chain {
	chain := domain.Chain{
		ID:             n.ChainID,
		Name:           n.Name,
		NativeCurrency: n.NativeCurrency,
		RPCURLs:        []string{n.RPCURL},
	}
	if n.ExplorerURL != "" {
		chain.BlockExplorerURLs = []string{n.ExplorerURL}
	}
	if chain.NativeCurrency.Symbol == "" {
		chain.NativeCurrency = domain.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}
	}
	return chain
}

// NetworkByChainID finds a configured network by chain id
func (c *RuntimeConfig) NetworkByChainID(chainID uint64) (*Network, bool) {
	for _, n := range c.Networks {
		if n.ChainID == chainID {
			return n, true
		}
	}
	return nil, false
}
