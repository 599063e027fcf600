package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TargetChainID is the only network delegation is supported on (Base mainnet)
const TargetChainID uint64 = 8453

// NativeCurrency describes a chain's gas token
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// Chain holds the canonical parameters of an EVM network
type Chain struct {
	ID                uint64         `yaml:"id"`
	Name              string         `yaml:"name"`
	NativeCurrency    NativeCurrency `yaml:"nativeCurrency"`
	RPCURLs           []string       `yaml:"rpcUrls"`
	BlockExplorerURLs []string       `yaml:"blockExplorerUrls,omitempty"`
}

// BaseChain is Base mainnet as registered with wallets
var BaseChain = Chain{
	ID:   TargetChainID,
	Name: "Base",
	NativeCurrency: NativeCurrency{
		Name:     "Ether",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:           []string{"https://mainnet.base.org"},
	BlockExplorerURLs: []string{"https://basescan.org"},
}

// MainnetChain is Ethereum mainnet
var MainnetChain = Chain{
	ID:   1,
	Name: "Ethereum",
	NativeCurrency: NativeCurrency{
		Name:     "Ether",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURLs:           []string{"https://cloudflare-eth.com"},
	BlockExplorerURLs: []string{"https://etherscan.io"},
}

// Explorer returns the first block explorer url, or ""
func (c Chain) Explorer() string {
	if len(c.BlockExplorerURLs) == 0 {
		return ""
	}
	return strings.TrimRight(c.BlockExplorerURLs[0], "/")
}

// TxURL returns the explorer link for a transaction hash, or "" without an explorer
func (c Chain) TxURL(hash string) string {
	explorer := c.Explorer()
	if explorer == "" || hash == "" {
		return ""
	}
	return explorer + "/tx/" + hash
}

// AddParams converts the chain to wallet_addEthereumChain parameters
func (c Chain) AddParams() AddChainParams {
	return AddChainParams{
		ChainID:           ChainIDHex(c.ID),
		ChainName:         c.Name,
		NativeCurrency:    c.NativeCurrency,
		RPCURLs:           c.RPCURLs,
		BlockExplorerURLs: c.BlockExplorerURLs,
	}
}

// ChainIDHex encodes a chain id the way wallets expect it (0x2105)
func ChainIDHex(id uint64) string {
	return hexutil.EncodeUint64(id)
}

// ParseChainID decodes a hex chain id as returned by eth_chainId
func ParseChainID(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, fmt.Errorf("chain id %q is not hex encoded", s)
	}
	id, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q: %w", s, err)
	}
	return id, nil
}
