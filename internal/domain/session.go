package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// SessionState is a snapshot of the wallet connection
type SessionState struct {
	Address      *common.Address
	ChainID      *uint64
	IsConnected  bool
	IsConnecting bool
}

// OnTargetNetwork reports whether the wallet is on the delegation network
func (s SessionState) OnTargetNetwork() bool {
	return s.ChainID != nil && *s.ChainID == TargetChainID
}

// NetworkMismatch reports whether a known chain id differs from the target network
func (s SessionState) NetworkMismatch() bool {
	return s.ChainID != nil && *s.ChainID != TargetChainID
}
