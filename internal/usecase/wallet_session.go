package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
)

// SessionListener observes session state changes. It is called without any
// session lock held.
type SessionListener func(ctx context.Context, prev, next domain.SessionState)

// WalletSession owns the connection to a wallet provider
type WalletSession struct {
	provider Provider
	factory  ClientFactory
	log      *slog.Logger

	mu     sync.RWMutex
	state  domain.SessionState
	client WalletClient

	listenersMu  sync.Mutex
	listeners    map[int]SessionListener
	nextListener int

	lifecycleMu sync.Mutex
	eventCtx    context.Context
	cancel      context.CancelFunc
	unsubs      []func()
}

// NewWalletSession creates a session. A nil provider yields a session whose
// Connect reports ErrProviderUnavailable.
func NewWalletSession(provider Provider, factory ClientFactory, log *slog.Logger) *WalletSession {
	return &WalletSession{
		provider:  provider,
		factory:   factory,
		log:       log.With("component", "WalletSession"),
		listeners: make(map[int]SessionListener),
		eventCtx:  context.Background(),
	}
}

// Start subscribes to provider events. Events are delivered to listeners
// with a context derived from ctx, which Close cancels.
func (s *WalletSession) Start(ctx context.Context) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.provider == nil || s.cancel != nil {
		return
	}

	s.eventCtx, s.cancel = context.WithCancel(ctx)
	s.unsubs = append(s.unsubs,
		s.provider.On(domain.EventAccountsChanged, s.handleAccountsChanged),
		s.provider.On(domain.EventChainChanged, s.handleChainChanged),
	)
}

// Close removes every provider subscription. It is safe to call repeatedly.
func (s *WalletSession) Close() {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	for _, unsubscribe := range s.unsubs {
		unsubscribe()
	}
	s.unsubs = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Subscribe registers a listener and returns a function removing it
func (s *WalletSession) Subscribe(fn SessionListener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// State returns a snapshot of the session
func (s *WalletSession) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Client returns the client of a connected session, or nil
func (s *WalletSession) Client() WalletClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// HasProvider reports whether a wallet provider is configured
func (s *WalletSession) HasProvider() bool {
	return s.provider != nil
}

// Connect requests account access, moves the wallet to the target network
// when possible and publishes the connected state.
func (s *WalletSession) Connect(ctx context.Context) error {
	if s.provider == nil {
		return domain.ErrProviderUnavailable
	}

	s.mu.Lock()
	if s.state.IsConnected {
		s.mu.Unlock()
		return nil
	}
	if s.state.IsConnecting {
		s.mu.Unlock()
		return fmt.Errorf("connect: %w", domain.ErrAlreadyInProgress)
	}
	prev := copyState(s.state)
	s.state.IsConnecting = true
	next := copyState(s.state)
	s.mu.Unlock()
	s.notify(ctx, prev, next)

	address, chainID, err := s.handshake(ctx)

	s.mu.Lock()
	prev = copyState(s.state)
	s.state.IsConnecting = false
	if err == nil {
		s.state.Address = &address
		s.state.ChainID = &chainID
		s.state.IsConnected = true
		s.client = s.factory(s.provider)
	}
	next = copyState(s.state)
	s.mu.Unlock()
	s.notify(ctx, prev, next)

	if err != nil {
		return fmt.Errorf("failed to connect wallet: %w", err)
	}

	s.log.Info("wallet connected", "address", address.Hex(), "chainId", chainID)
	return nil
}

func (s *WalletSession) handshake(ctx context.Context) (common.Address, uint64, error) {
	accounts, err := s.requestAccounts(ctx, domain.MethodRequestAccounts)
	if err != nil {
		return common.Address{}, 0, err
	}
	if len(accounts) == 0 {
		return common.Address{}, 0, fmt.Errorf("wallet returned no accounts: %w", domain.ErrNotConnected)
	}

	chainID, err := s.readChainID(ctx)
	if err != nil {
		return common.Address{}, 0, err
	}

	if chainID != domain.TargetChainID {
		if err := s.switchOrAdd(ctx); err != nil {
			s.log.Warn("could not move wallet to target network", "chainId", chainID, "error", err)
		}
		if chainID, err = s.readChainID(ctx); err != nil {
			return common.Address{}, 0, err
		}
	}

	return accounts[0], chainID, nil
}

func (s *WalletSession) switchOrAdd(ctx context.Context) error {
	err := s.SwitchNetwork(ctx, domain.TargetChainID)
	if err == nil || !domain.IsChainNotAdded(err) {
		return err
	}
	s.log.Info("target network unknown to wallet, adding it", "chain", domain.BaseChain.Name)
	return s.AddNetwork(ctx, domain.BaseChain)
}

// Disconnect forgets the connection locally
func (s *WalletSession) Disconnect() {
	s.disconnect(s.currentEventCtx())
}

func (s *WalletSession) disconnect(ctx context.Context) {
	s.mu.Lock()
	prev := copyState(s.state)
	s.state = domain.SessionState{}
	s.client = nil
	next := copyState(s.state)
	s.mu.Unlock()

	if prev != next {
		s.notify(ctx, prev, next)
	}
}

// SwitchNetwork asks the wallet to select chainID
func (s *WalletSession) SwitchNetwork(ctx context.Context, chainID uint64) error {
	if s.provider == nil {
		return domain.ErrProviderUnavailable
	}
	params := domain.SwitchChainParams{ChainID: domain.ChainIDHex(chainID)}
	if _, err := s.provider.Request(ctx, domain.MethodSwitchChain, params); err != nil {
		return fmt.Errorf("failed to switch network: %w", err)
	}
	s.syncChainID(ctx)
	return nil
}

// AddNetwork asks the wallet to add chain
func (s *WalletSession) AddNetwork(ctx context.Context, chain domain.Chain) error {
	if s.provider == nil {
		return domain.ErrProviderUnavailable
	}
	if _, err := s.provider.Request(ctx, domain.MethodAddChain, chain.AddParams()); err != nil {
		return fmt.Errorf("failed to add network: %w", err)
	}
	s.syncChainID(ctx)
	return nil
}

// Restore silently rehydrates a session the wallet already authorized.
// Failures are logged and leave the session disconnected.
func (s *WalletSession) Restore(ctx context.Context) {
	if s.provider == nil || s.State().IsConnected {
		return
	}

	accounts, err := s.requestAccounts(ctx, domain.MethodAccounts)
	if err != nil {
		s.log.Debug("silent account lookup failed", "error", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	chainID, err := s.readChainID(ctx)
	if err != nil {
		s.log.Debug("chain id lookup failed", "error", err)
		return
	}

	s.mu.Lock()
	if s.state.IsConnected || s.state.IsConnecting {
		s.mu.Unlock()
		return
	}
	prev := copyState(s.state)
	s.state = domain.SessionState{Address: &accounts[0], ChainID: &chainID, IsConnected: true}
	s.client = s.factory(s.provider)
	next := copyState(s.state)
	s.mu.Unlock()

	s.log.Debug("session restored", "address", accounts[0].Hex(), "chainId", chainID)
	s.notify(ctx, prev, next)
}

func (s *WalletSession) handleAccountsChanged(payload json.RawMessage) {
	ctx := s.currentEventCtx()

	var raw []string
	if err := json.Unmarshal(payload, &raw); err != nil {
		s.log.Warn("ignoring malformed accountsChanged payload", "error", err)
		return
	}

	if len(raw) == 0 {
		s.log.Info("wallet reported no accounts, disconnecting")
		s.disconnect(ctx)
		return
	}

	address, err := domain.NormalizeAddress(raw[0])
	if err != nil {
		s.log.Warn("ignoring invalid account from wallet", "error", err)
		return
	}

	s.mu.Lock()
	if !s.state.IsConnected || (s.state.Address != nil && *s.state.Address == address) {
		s.mu.Unlock()
		return
	}
	prev := copyState(s.state)
	s.state.Address = &address
	next := copyState(s.state)
	s.mu.Unlock()

	s.log.Info("wallet account changed", "address", address.Hex())
	s.notify(ctx, prev, next)
}

func (s *WalletSession) handleChainChanged(payload json.RawMessage) {
	var raw string
	if err := json.Unmarshal(payload, &raw); err != nil {
		s.log.Warn("ignoring malformed chainChanged payload", "error", err)
		return
	}
	chainID, err := domain.ParseChainID(raw)
	if err != nil {
		s.log.Warn("ignoring invalid chain id from wallet", "error", err)
		return
	}
	s.setChainID(s.currentEventCtx(), chainID)
}

func (s *WalletSession) syncChainID(ctx context.Context) {
	if !s.State().IsConnected {
		return
	}
	chainID, err := s.readChainID(ctx)
	if err != nil {
		s.log.Warn("failed to read chain id", "error", err)
		return
	}
	s.setChainID(ctx, chainID)
}

func (s *WalletSession) setChainID(ctx context.Context, chainID uint64) {
	s.mu.Lock()
	if s.state.ChainID != nil && *s.state.ChainID == chainID {
		s.mu.Unlock()
		return
	}
	prev := copyState(s.state)
	s.state.ChainID = &chainID
	next := copyState(s.state)
	s.mu.Unlock()

	s.log.Debug("chain changed", "chainId", chainID)
	s.notify(ctx, prev, next)
}

func (s *WalletSession) requestAccounts(ctx context.Context, method string) ([]common.Address, error) {
	result, err := s.provider.Request(ctx, method)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	var raw []string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("%s: unexpected result: %w", method, err)
	}

	accounts := make([]common.Address, 0, len(raw))
	for _, a := range raw {
		addr, err := domain.NormalizeAddress(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		accounts = append(accounts, addr)
	}
	return accounts, nil
}

func (s *WalletSession) readChainID(ctx context.Context) (uint64, error) {
	result, err := s.provider.Request(ctx, domain.MethodChainID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", domain.MethodChainID, err)
	}
	var raw string
	if err := json.Unmarshal(result, &raw); err != nil {
		return 0, fmt.Errorf("%s: unexpected result: %w", domain.MethodChainID, err)
	}
	chainID, err := domain.ParseChainID(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid chain id: %w", domain.MethodChainID, err)
	}
	return chainID, nil
}

func (s *WalletSession) currentEventCtx() context.Context {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	return s.eventCtx
}

func (s *WalletSession) notify(ctx context.Context, prev, next domain.SessionState) {
	s.listenersMu.Lock()
	listeners := make([]SessionListener, 0, len(s.listeners))
	for i := 0; i < s.nextListener; i++ {
		if fn, ok := s.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(ctx, prev, next)
	}
}

// copyState detaches the pointers so snapshots never alias session state
func copyState(st domain.SessionState) domain.SessionState {
	out := st
	if st.Address != nil {
		addr := *st.Address
		out.Address = &addr
	}
	if st.ChainID != nil {
		id := *st.ChainID
		out.ChainID = &id
	}
	return out
}
