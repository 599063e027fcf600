package provider

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chainService answers the eth_ methods the keystore wallet forwards or uses to sign
type chainService struct {
	mu   sync.Mutex
	sent []*types.Transaction
}

func (s *chainService) ChainId() hexutil.Uint64 { return hexutil.Uint64(domain.TargetChainID) }

func (s *chainService) GetTransactionCount(common.Address, string) hexutil.Uint64 { return 7 }

func (s *chainService) MaxPriorityFeePerGas() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1_000_000))
}

func (s *chainService) GetBlockByNumber(string, bool) *types.Header {
	return &types.Header{
		Number:     big.NewInt(100),
		Difficulty: big.NewInt(0),
		GasLimit:   30_000_000,
		BaseFee:    big.NewInt(50_000_000),
	}
}

func (s *chainService) EstimateGas(map[string]any, *string) hexutil.Uint64 { return 50_000 }

func (s *chainService) Call(map[string]any, *string) hexutil.Bytes { return hexutil.Bytes{0x2a} }

func (s *chainService) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	s.mu.Lock()
	s.sent = append(s.sent, tx)
	s.mu.Unlock()
	return tx.Hash(), nil
}

func (s *chainService) transactions() []*types.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*types.Transaction(nil), s.sent...)
}

// walletService is an external wallet reachable over JSON-RPC
type walletService struct {
	mu       sync.Mutex
	accounts []string
	chainID  uint64
	known    map[uint64]bool
	revoked  bool
}

func (w *walletService) Accounts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.accounts...)
}

func (w *walletService) RequestAccounts() []string { return w.Accounts() }

func (w *walletService) ChainId() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.ChainIDHex(w.chainID)
}

func (w *walletService) set(accounts []string, chainID uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accounts = accounts
	w.chainID = chainID
}

// permissionService serves the wallet_ namespace
type permissionService struct{ w *walletService }

func (p *permissionService) SwitchEthereumChain(params domain.SwitchChainParams) error {
	id, err := domain.ParseChainID(params.ChainID)
	if err != nil {
		return err
	}
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	if !p.w.known[id] {
		return &domain.ProviderError{Code: domain.ProviderCodeChainNotAdded, Message: "Unrecognized chain ID"}
	}
	p.w.chainID = id
	return nil
}

func (p *permissionService) RevokePermissions(map[string]any) error {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	p.w.revoked = true
	p.w.accounts = nil
	return nil
}

// inProcDialer serves every dial from server, closing both on cleanup
func inProcDialer(t *testing.T, server *rpc.Server) func(context.Context, string) (*rpc.Client, error) {
	t.Helper()
	t.Cleanup(server.Stop)
	return func(context.Context, string) (*rpc.Client, error) {
		return rpc.DialInProc(server), nil
	}
}

func newServer(t *testing.T, services map[string]any) *rpc.Server {
	t.Helper()
	server := rpc.NewServer()
	for name, svc := range services {
		require.NoError(t, server.RegisterName(name, svc))
	}
	return server
}
