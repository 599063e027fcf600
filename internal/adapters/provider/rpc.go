package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// RPCProvider bridges to an external wallet that speaks JSON-RPC, such as
// Frame or a Clef-style signer. Events are derived by polling because
// plain HTTP endpoints cannot push them.
type RPCProvider struct {
	Emitter

	endpoint string
	interval time.Duration
	log      *slog.Logger
	dial     func(ctx context.Context, url string) (*rpc.Client, error)

	mu      sync.Mutex
	client  *rpc.Client
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	account []string
	chainID string
}

// NewRPCProvider creates a provider for the configured wallet endpoint.
// The connection is opened on first use.
func NewRPCProvider(cfg *config.RuntimeConfig, log *slog.Logger) *RPCProvider {
	return &RPCProvider{
		endpoint: cfg.Wallet.Endpoint,
		interval: cfg.Wallet.PollInterval,
		log:      log.With("component", "rpc-wallet", "endpoint", cfg.Wallet.Endpoint),
		dial:     rpc.DialContext,
	}
}

// Request implements usecase.Provider
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	c, err := p.conn(ctx)
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := c.CallContext(ctx, &result, method, params...); err != nil {
		return nil, toProviderError(err)
	}
	return result, nil
}

// On subscribes to a wallet event and starts the watcher
func (p *RPCProvider) On(event string, handler func(payload json.RawMessage)) func() {
	unsubscribe := p.Emitter.On(event, handler)
	p.startWatcher()
	return unsubscribe
}

// Revoke asks the wallet to drop the eth_accounts permission (EIP-2255).
// Wallets without the method are left as they are.
func (p *RPCProvider) Revoke(ctx context.Context) error {
	_, err := p.Request(ctx, "wallet_revokePermissions", map[string]any{"eth_accounts": map[string]any{}})
	var pe *domain.ProviderError
	if errors.As(err, &pe) && (pe.Code == codeMethodNotFound || pe.Code == domain.ProviderCodeUnsupportedMethod) {
		p.log.Debug("wallet cannot revoke permissions", "error", err)
		return nil
	}
	return err
}

// Close stops the watcher and closes the connection. It is safe to call twice.
func (p *RPCProvider) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

func (p *RPCProvider) conn(ctx context.Context) (*rpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("wallet provider closed")
	}
	if p.client != nil {
		return p.client, nil
	}
	if p.endpoint == "" {
		return nil, domain.ErrProviderUnavailable
	}
	c, err := p.dial(ctx, p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	p.client = c
	return c, nil
}

func (p *RPCProvider) startWatcher() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.cancel != nil || p.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.watch(ctx, p.done)
}

// watch polls accounts and chain id and emits on change. The first poll
// only records a baseline.
func (p *RPCProvider) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	first := true
	for {
		p.poll(ctx, first)
		first = false

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *RPCProvider) poll(ctx context.Context, baseline bool) {
	var accounts []string
	if raw, err := p.Request(ctx, domain.MethodAccounts); err != nil {
		p.log.Debug("poll accounts failed", "error", err)
		return
	} else if err := json.Unmarshal(raw, &accounts); err != nil {
		p.log.Debug("unexpected eth_accounts result", "error", err)
		return
	}

	var chainID string
	if raw, err := p.Request(ctx, domain.MethodChainID); err != nil {
		p.log.Debug("poll chain id failed", "error", err)
		return
	} else if err := json.Unmarshal(raw, &chainID); err != nil {
		p.log.Debug("unexpected eth_chainId result", "error", err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}

	p.mu.Lock()
	accountsChanged := !baseline && !slices.Equal(p.account, accounts)
	chainChanged := !baseline && p.chainID != chainID
	p.account, p.chainID = accounts, chainID
	p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if chainChanged {
		p.Emit(domain.EventChainChanged, chainID)
	}
	if accountsChanged {
		p.Emit(domain.EventAccountsChanged, accounts)
	}
}
