package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/bindings"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

var (
	tokenAddress = common.HexToAddress("0xaC27fa800955849d6D17cC8952Ba9dD6EAA66187")
	holder       = common.HexToAddress("0xD2BC5cb641aE6f7A880c3dD5Aee0450b5210BE23")
	otherHolder  = common.HexToAddress("0xE215A2F256731B3dA911E01f9707d281936519fd")
	ceciSakura   = common.HexToAddress("0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D")

	token = bindings.NewVotesToken()
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Token: config.TokenConfig{Address: tokenAddress, Symbol: "UP", Decimals: 18},
		Networks: map[string]*config.Network{
			"base": {Name: "base", ChainID: 8453, RPCURL: "https://mainnet.base.org", ExplorerURL: "https://basescan.org"},
			"optimism": {
				Name:        "optimism",
				ChainID:     10,
				RPCURL:      "https://mainnet.optimism.io",
				ExplorerURL: "https://optimistic.etherscan.io",
			},
		},
	}
}

// tokens converts a whole token amount into its 18 decimal uint256 encoding
func tokens(whole int64) []byte {
	v := new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	return math.U256Bytes(v)
}

func encodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

// fakeProvider is a scripted EIP-1193 wallet
type fakeProvider struct {
	mu          sync.Mutex
	approved    []string // returned by eth_requestAccounts
	authorized  []string // returned by eth_accounts
	chainID     uint64
	knownChains map[uint64]bool
	errs        map[string]error
	gate        map[string]chan struct{}
	calls       []string

	handlers map[string]map[int]func(json.RawMessage)
	nextID   int
	revoked  bool
}

func newFakeProvider(chainID uint64, accounts ...string) *fakeProvider {
	return &fakeProvider{
		approved:    accounts,
		chainID:     chainID,
		knownChains: map[uint64]bool{1: true, 8453: true},
		errs:        map[string]error{},
		gate:        map[string]chan struct{}{},
		handlers:    map[string]map[int]func(json.RawMessage){},
	}
}

func (p *fakeProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	p.mu.Lock()
	p.calls = append(p.calls, method)
	gate := p.gate[method]
	err := p.errs[method]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	switch method {
	case domain.MethodRequestAccounts:
		p.mu.Lock()
		p.authorized = p.approved
		out := p.approved
		p.mu.Unlock()
		return json.Marshal(orEmpty(out))
	case domain.MethodAccounts:
		p.mu.Lock()
		out := p.authorized
		p.mu.Unlock()
		return json.Marshal(orEmpty(out))
	case domain.MethodChainID:
		p.mu.Lock()
		id := p.chainID
		p.mu.Unlock()
		return json.Marshal(domain.ChainIDHex(id))
	case domain.MethodSwitchChain:
		id, err := domain.ParseChainID(params[0].(domain.SwitchChainParams).ChainID)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		known := p.knownChains[id]
		if known {
			p.chainID = id
		}
		p.mu.Unlock()
		if !known {
			return nil, &domain.ProviderError{Code: domain.ProviderCodeChainNotAdded, Message: "Unrecognized chain ID"}
		}
		p.Emit(domain.EventChainChanged, domain.ChainIDHex(id))
		return json.RawMessage("null"), nil
	case domain.MethodAddChain:
		chain, err := params[0].(domain.AddChainParams).Chain()
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.knownChains[chain.ID] = true
		p.chainID = chain.ID
		p.mu.Unlock()
		p.Emit(domain.EventChainChanged, domain.ChainIDHex(chain.ID))
		return json.RawMessage("null"), nil
	}
	return nil, &domain.ProviderError{Code: domain.ProviderCodeUnsupportedMethod, Message: "unsupported method " + method}
}

func (p *fakeProvider) On(event string, handler func(json.RawMessage)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers[event] == nil {
		p.handlers[event] = map[int]func(json.RawMessage){}
	}
	id := p.nextID
	p.nextID++
	p.handlers[event][id] = handler
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers[event], id)
	}
}

func (p *fakeProvider) Revoke(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = true
	p.authorized = nil
	return nil
}

// Emit delivers an event to every subscriber, like a wallet would
func (p *fakeProvider) Emit(event string, payload any) {
	data, _ := json.Marshal(payload)
	p.mu.Lock()
	handlers := make([]func(json.RawMessage), 0, len(p.handlers[event]))
	for _, h := range p.handlers[event] {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(data)
	}
}

func (p *fakeProvider) subscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, hs := range p.handlers {
		n += len(hs)
	}
	return n
}

func (p *fakeProvider) called(method string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c == method {
			return true
		}
	}
	return false
}

func (p *fakeProvider) setError(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[method] = err
}

func (p *fakeProvider) block(method string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan struct{})
	p.gate[method] = ch
	return ch
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// MockWalletClient is a mock implementation of WalletClient. Reads stubbed
// with expectReads see delegate transactions once their receipt succeeds.
type MockWalletClient struct {
	mock.Mock

	mu        sync.Mutex
	delegates map[common.Address]common.Address
	pending   map[common.Hash][2]common.Address
}

func (m *MockWalletClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	args := m.Called(ctx, to, data)
	if read, ok := args.Get(0).(func() []byte); ok {
		return read(), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockWalletClient) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	args := m.Called(ctx, from, to, data)
	hash, err := args.Get(0).(common.Hash), args.Error(1)
	if err == nil && len(data) == 36 && bytes.Equal(data[:4], token.PackDelegate(common.Address{})[:4]) {
		m.mu.Lock()
		if m.pending == nil {
			m.pending = map[common.Hash][2]common.Address{}
		}
		m.pending[hash] = [2]common.Address{from, common.BytesToAddress(data[4:])}
		m.mu.Unlock()
	}
	return hash, err
}

func (m *MockWalletClient) WaitForReceipt(ctx context.Context, hash common.Hash) (*domain.TxReceipt, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	receipt := args.Get(0).(*domain.TxReceipt)
	if receipt.Success {
		m.mu.Lock()
		if tx, ok := m.pending[hash]; ok && m.delegates != nil {
			m.delegates[tx[0]] = tx[1]
		}
		delete(m.pending, hash)
		m.mu.Unlock()
	}
	return receipt, args.Error(1)
}

// expectReads stubs the three token reads for account
func (m *MockWalletClient) expectReads(account common.Address, balance, votes int64, delegate common.Address) {
	m.mu.Lock()
	if m.delegates == nil {
		m.delegates = map[common.Address]common.Address{}
	}
	m.delegates[account] = delegate
	m.mu.Unlock()

	m.On("CallContract", mock.Anything, tokenAddress, token.PackBalanceOf(account)).Return(tokens(balance), nil).Maybe()
	m.On("CallContract", mock.Anything, tokenAddress, token.PackGetVotes(account)).Return(tokens(votes), nil).Maybe()
	m.On("CallContract", mock.Anything, tokenAddress, token.PackDelegates(account)).Return(func() []byte {
		m.mu.Lock()
		defer m.mu.Unlock()
		return encodeAddress(m.delegates[account])
	}, nil).Maybe()
}

// memoryHistory is an in-memory HistoryStore
type memoryHistory struct {
	mu      sync.Mutex
	records []domain.DelegationRecord
	saves   int
	loadErr error
	saveErr error
}

func (h *memoryHistory) Load(context.Context) ([]domain.DelegationRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.loadErr != nil {
		return nil, h.loadErr
	}
	return append([]domain.DelegationRecord(nil), h.records...), nil
}

func (h *memoryHistory) Save(_ context.Context, records []domain.DelegationRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves++
	if h.saveErr != nil {
		return h.saveErr
	}
	h.records = append([]domain.DelegationRecord(nil), records...)
	return nil
}

func (h *memoryHistory) snapshot() []domain.DelegationRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.DelegationRecord(nil), h.records...)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// recordingSink collects progress events
type recordingSink struct {
	mu     sync.Mutex
	stages []string
}

func (s *recordingSink) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, event.Stage)
}
func (s *recordingSink) Info(string)  {}
func (s *recordingSink) Error(string) {}

func (s *recordingSink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stages...)
}

// testEnv wires a session and manager around a fake wallet
type testEnv struct {
	provider *fakeProvider
	client   *MockWalletClient
	history  *memoryHistory
	sink     *recordingSink
	cfg      *config.RuntimeConfig
	session  *usecase.WalletSession
	manager  *usecase.DelegationManager
}

func newTestEnv(t *testing.T, chainID uint64, accounts ...string) *testEnv {
	t.Helper()
	env := &testEnv{
		provider: newFakeProvider(chainID, accounts...),
		client:   &MockWalletClient{},
		history:  &memoryHistory{},
		sink:     &recordingSink{},
		cfg:      testConfig(),
	}
	env.session = usecase.NewWalletSession(env.provider, func(usecase.Provider) usecase.WalletClient {
		return env.client
	}, discardLogger())
	env.session.Start(context.Background())
	t.Cleanup(env.session.Close)
	return env
}

// withManager builds the manager after the history has been seeded
func (env *testEnv) withManager(t *testing.T) *testEnv {
	t.Helper()
	env.manager = usecase.NewDelegationManager(
		env.cfg, env.session, env.history,
		fixedClock{t: time.UnixMilli(1718000000000)},
		env.sink, discardLogger(),
	)
	t.Cleanup(env.manager.Close)
	return env
}

func (env *testEnv) connect(t *testing.T) {
	t.Helper()
	require.NoError(t, env.session.Connect(context.Background()))
}

var errBoom = errors.New("boom")
