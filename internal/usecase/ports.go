package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
)

// Provider is an EIP-1193 style wallet: JSON-RPC requests plus events
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	On(event string, handler func(payload json.RawMessage)) (unsubscribe func())
}

// AuthorizationRevoker is implemented by providers that can forget a prior
// authorization, so a later silent lookup no longer finds an account
type AuthorizationRevoker interface {
	Revoke(ctx context.Context) error
}

// WalletClient reads and writes contracts through the connected wallet
type WalletClient interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
	SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*domain.TxReceipt, error)
}

// ClientFactory builds the session client once an account is connected
type ClientFactory func(provider Provider) WalletClient

// HistoryStore persists the delegation history as one list
type HistoryStore interface {
	Load(ctx context.Context) ([]domain.DelegationRecord, error)
	Save(ctx context.Context, records []domain.DelegationRecord) error
}

// StewardRepository provides the curated steward roster
type StewardRepository interface {
	List(ctx context.Context) ([]domain.Steward, error)
}

// StewardSelector handles interactive selection of stewards
type StewardSelector interface {
	SelectSteward(ctx context.Context, stewards []StewardView, prompt string) (*domain.Steward, error)
}

// Clock abstracts time for record ids and timestamps
type Clock interface {
	Now() time.Time
}

// Progress tracking interfaces

// Progress stages
const (
	StageConnecting = "connecting"
	StageConnected  = "connected"
	StageSubmitting = "submitting"
	StageConfirming = "confirming"
	StageCompleted  = "completed"
	StageFailed     = "failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Use case result types

// StewardView is a steward annotated for display
type StewardView struct {
	domain.Steward
	IsCurrentDelegate bool
}

// DelegationState is a snapshot of the manager's derived state
type DelegationState struct {
	CurrentDelegate *common.Address
	UserBalance     string
	VotingPower     string
	IsLoading       bool
}
