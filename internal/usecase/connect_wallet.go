package usecase

import (
	"context"
	"fmt"

	"github.com/unlock-community/updelegate/internal/domain"
)

// ConnectWallet is the use case for connecting and disconnecting the wallet
type ConnectWallet struct {
	session  *WalletSession
	provider Provider
	sink     ProgressSink
}

// NewConnectWallet creates a new ConnectWallet use case
func NewConnectWallet(session *WalletSession, provider Provider, sink ProgressSink) *ConnectWallet {
	return &ConnectWallet{
		session:  session,
		provider: provider,
		sink:     sink,
	}
}

// Run connects the wallet and returns the resulting session
func (uc *ConnectWallet) Run(ctx context.Context) (domain.SessionState, error) {
	// no spinner: the wallet may prompt on the same terminal
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageConnecting,
		Message: "Waiting for the wallet to approve the connection",
	})

	err := uc.session.Connect(ctx)

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageConnected, Message: "Connection finished"})
	return uc.session.State(), err
}

// Disconnect forgets the session and, when the wallet supports it, the
// authorization that would let a later run restore it silently
func (uc *ConnectWallet) Disconnect(ctx context.Context) error {
	uc.session.Disconnect()

	revoker, ok := uc.provider.(AuthorizationRevoker)
	if !ok {
		return nil
	}
	if err := revoker.Revoke(ctx); err != nil {
		return fmt.Errorf("failed to revoke wallet authorization: %w", err)
	}
	return nil
}
