package domain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DelegationHistoryKey is the local storage key holding the delegation log
const DelegationHistoryKey = "unlock-delegation-history"

// DelegationType classifies the intent of a delegation. On-chain all delegations are identical.
type DelegationType string

const (
	DelegationSelf    DelegationType = "self"
	DelegationSteward DelegationType = "steward"
	DelegationCustom  DelegationType = "custom"
)

// Valid reports whether t is a known delegation type
func (t DelegationType) Valid() bool {
	switch t {
	case DelegationSelf, DelegationSteward, DelegationCustom:
		return true
	}
	return false
}

// DelegationStatus is the lifecycle state of a delegation attempt
type DelegationStatus string

const (
	StatusPending   DelegationStatus = "pending"
	StatusCompleted DelegationStatus = "completed"
	StatusFailed    DelegationStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible
func (s DelegationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DelegationRecord is one entry of the local delegation log.
// Only Status and TransactionHash change after creation.
type DelegationRecord struct {
	ID              string           `json:"id"`
	Timestamp       int64            `json:"timestamp"`
	FromAddress     string           `json:"fromAddress"`
	ToAddress       string           `json:"toAddress"`
	DelegationType  DelegationType   `json:"delegationType"`
	StewardName     string           `json:"stewardName,omitempty"`
	Amount          string           `json:"amount,omitempty"`
	TransactionHash string           `json:"transactionHash,omitempty"`
	Status          DelegationStatus `json:"status"`
}

// Time returns the creation time
func (r DelegationRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// IsUndelegation reports whether the record cleared the delegate
func (r DelegationRecord) IsUndelegation() bool {
	return EqualAddressFold(r.ToAddress, ZeroAddress.Hex())
}

// Transition moves a pending record to a terminal status.
// The hash is attached only when non-empty.
func (r *DelegationRecord) Transition(status DelegationStatus, txHash string) error {
	if r.Status != StatusPending || !status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, status)
	}
	r.Status = status
	if txHash != "" {
		r.TransactionHash = txHash
	}
	return nil
}

// TxReceipt is the subset of a transaction receipt delegation cares about
type TxReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Success     bool
}
