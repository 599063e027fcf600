package domain

import (
	"fmt"
)

// Wallet provider request methods
const (
	MethodAccounts         = "eth_accounts"
	MethodRequestAccounts  = "eth_requestAccounts"
	MethodChainID          = "eth_chainId"
	MethodSwitchChain      = "wallet_switchEthereumChain"
	MethodAddChain         = "wallet_addEthereumChain"
	MethodCall             = "eth_call"
	MethodSendTransaction  = "eth_sendTransaction"
	MethodGetTransactionRx = "eth_getTransactionReceipt"
)

// Wallet provider events
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// SwitchChainParams is the wallet_switchEthereumChain parameter object
type SwitchChainParams struct {
	ChainID string `json:"chainId"`
}

// AddChainParams is the wallet_addEthereumChain parameter object
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// Chain converts the parameters back into a Chain
func (p AddChainParams) Chain() (Chain, error) {
	id, err := ParseChainID(p.ChainID)
	if err != nil {
		return Chain{}, err
	}
	if len(p.RPCURLs) == 0 {
		return Chain{}, fmt.Errorf("chain %s has no rpc urls", p.ChainID)
	}
	return Chain{
		ID:                id,
		Name:              p.ChainName,
		NativeCurrency:    p.NativeCurrency,
		RPCURLs:           p.RPCURLs,
		BlockExplorerURLs: p.BlockExplorerURLs,
	}, nil
}
