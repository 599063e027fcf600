package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/bindings"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

// DelegateParams contains parameters for a delegation
type DelegateParams struct {
	To          string
	Type        domain.DelegationType
	StewardName string
	Amount      string // informational, delegation always covers the full balance
}

// DelegationManager owns the delegation state of the connected account and
// the persisted delegation history
type DelegationManager struct {
	session  *WalletSession
	token    *bindings.VotesToken
	address  common.Address
	decimals int
	history  HistoryStore
	clock    Clock
	sink     ProgressSink
	log      *slog.Logger

	busy atomic.Bool

	mu      sync.RWMutex
	state   DelegationState
	records []domain.DelegationRecord
	lastID  int64

	unsubscribe func()
}

// NewDelegationManager creates the manager, loads the history and starts
// following the session
func NewDelegationManager(
	cfg *config.RuntimeConfig,
	session *WalletSession,
	history HistoryStore,
	clock Clock,
	sink ProgressSink,
	log *slog.Logger,
) *DelegationManager {
	m := &DelegationManager{
		session:  session,
		token:    bindings.NewVotesToken(),
		address:  cfg.Token.Address,
		decimals: cfg.Token.Decimals,
		history:  history,
		clock:    clock,
		sink:     sink,
		log:      log.With("component", "DelegationManager"),
		state:    DelegationState{UserBalance: "0", VotingPower: "0"},
	}
	if m.decimals == 0 {
		m.decimals = domain.TokenDecimals
	}

	m.loadHistory(context.Background())
	m.unsubscribe = session.Subscribe(m.onSessionChange)
	return m
}

// Close stops following the session
func (m *DelegationManager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// State returns a snapshot of the delegation state
func (m *DelegationManager) State() DelegationState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := m.state
	if st.CurrentDelegate != nil {
		d := *st.CurrentDelegate
		st.CurrentDelegate = &d
	}
	return st
}

// History returns a copy of the delegation history, newest first
func (m *DelegationManager) History() []domain.DelegationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.DelegationRecord(nil), m.records...)
}

// Refresh re-reads balance, voting power and the current delegate
func (m *DelegationManager) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.RefreshAccountData(ctx)
	}()
	go func() {
		defer wg.Done()
		m.RefreshDelegate(ctx)
	}()
	wg.Wait()
}

// RefreshAccountData reads balance and voting power concurrently. On failure
// the previous values are kept.
func (m *DelegationManager) RefreshAccountData(ctx context.Context) {
	account, client, ok := m.readTarget()
	if !ok {
		return
	}

	var balance, votes *big.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := client.CallContract(gctx, m.address, m.token.PackBalanceOf(account))
		if err != nil {
			return fmt.Errorf("balanceOf: %w", err)
		}
		balance, err = m.token.UnpackBalanceOf(out)
		return err
	})
	g.Go(func() error {
		out, err := client.CallContract(gctx, m.address, m.token.PackGetVotes(account))
		if err != nil {
			return fmt.Errorf("getVotes: %w", err)
		}
		votes, err = m.token.UnpackGetVotes(out)
		return err
	})
	if err := g.Wait(); err != nil {
		m.log.Error("failed to refresh account data", "account", account.Hex(), "error", err)
		return
	}

	if !m.stillCurrent(account) {
		return
	}

	m.mu.Lock()
	m.state.UserBalance = domain.FormatUnits(balance, m.decimals)
	m.state.VotingPower = domain.FormatUnits(votes, m.decimals)
	m.mu.Unlock()
	m.log.Debug("account data refreshed", "account", account.Hex())
}

// RefreshDelegate reads the account's current delegate. The zero address
// means no delegate.
func (m *DelegationManager) RefreshDelegate(ctx context.Context) {
	account, client, ok := m.readTarget()
	if !ok {
		return
	}

	out, err := client.CallContract(ctx, m.address, m.token.PackDelegates(account))
	if err != nil {
		m.log.Error("failed to refresh delegate", "account", account.Hex(), "error", err)
		return
	}
	delegate, err := m.token.UnpackDelegates(out)
	if err != nil {
		m.log.Error("failed to decode delegate", "account", account.Hex(), "error", err)
		return
	}

	if !m.stillCurrent(account) {
		return
	}

	m.mu.Lock()
	m.state.CurrentDelegate = delegatePointer(delegate)
	m.mu.Unlock()
}

// Delegate moves the account's voting power to params.To and records the
// attempt. It returns the record it created, or nil when the attempt was
// rejected before a record existed. Once the wallet has returned a hash the
// record keeps it, even when confirmation fails.
func (m *DelegationManager) Delegate(ctx context.Context, params DelegateParams) (*domain.DelegationRecord, error) {
	session := m.session.State()
	client := m.session.Client()
	if !session.IsConnected || session.Address == nil || client == nil {
		return nil, domain.ErrNotConnected
	}
	if !session.OnTargetNetwork() {
		return nil, domain.ErrNetworkMismatch
	}

	to, err := domain.NormalizeAddress(params.To)
	if err != nil {
		return nil, err
	}
	if !params.Type.Valid() {
		return nil, fmt.Errorf("unknown delegation type %q", params.Type)
	}
	if params.Amount != "" {
		if err := domain.ValidateAmount(params.Amount, m.State().UserBalance); err != nil {
			return nil, err
		}
	}

	if !m.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrAlreadyInProgress
	}
	defer m.busy.Store(false)

	account := *session.Address
	record := m.newRecord(account, to, params)
	m.prepend(ctx, record)

	m.setLoading(true)
	defer m.setLoading(false)

	m.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Submitting delegation to %s", domain.ShortAddress(to.Hex())),
		Spinner: true,
	})

	hash, err := client.SendTransaction(ctx, account, m.address, m.token.PackDelegate(to))
	if err != nil {
		record = m.finish(ctx, record, domain.StatusFailed, "")
		m.sink.OnProgress(ctx, ProgressEvent{Stage: StageFailed, Message: "Delegation was not submitted"})
		return &record, fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
	}

	m.sink.OnProgress(ctx, ProgressEvent{
		Stage:    StageConfirming,
		Message:  fmt.Sprintf("Waiting for confirmation of %s", hash.Hex()),
		Spinner:  true,
		Metadata: hash,
	})

	receipt, err := client.WaitForReceipt(ctx, hash)
	if err != nil {
		// the transaction is broadcast and may still mine
		m.log.Warn("receipt wait failed", "tx", hash.Hex(), "error", err)
		record = m.finish(ctx, record, domain.StatusFailed, hash.Hex())
		m.sink.OnProgress(ctx, ProgressEvent{Stage: StageFailed, Message: "Confirmation failed", Metadata: hash})
		return &record, fmt.Errorf("%w: %s: %w", domain.ErrTransactionFailed, hash.Hex(), err)
	}

	if !receipt.Success {
		record = m.finish(ctx, record, domain.StatusFailed, hash.Hex())
		m.sink.OnProgress(ctx, ProgressEvent{Stage: StageFailed, Message: "Transaction reverted", Metadata: hash})
		return &record, fmt.Errorf("%w: %s", domain.ErrTransactionReverted, hash.Hex())
	}

	record = m.finish(ctx, record, domain.StatusCompleted, hash.Hex())

	m.mu.Lock()
	m.state.CurrentDelegate = delegatePointer(to)
	m.mu.Unlock()

	m.sink.OnProgress(ctx, ProgressEvent{Stage: StageCompleted, Message: "Delegation confirmed", Metadata: hash})
	m.log.Info("delegation confirmed", "to", to.Hex(), "tx", hash.Hex(), "block", receipt.BlockNumber)

	m.Refresh(ctx)
	return &record, nil
}

// Undelegate delegates to the zero address
func (m *DelegationManager) Undelegate(ctx context.Context) (*domain.DelegationRecord, error) {
	return m.Delegate(ctx, DelegateParams{
		To:   domain.ZeroAddress.Hex(),
		Type: domain.DelegationCustom,
	})
}

func (m *DelegationManager) onSessionChange(ctx context.Context, prev, next domain.SessionState) {
	switch {
	case prev.IsConnected && !next.IsConnected:
		m.mu.Lock()
		m.state = DelegationState{UserBalance: "0", VotingPower: "0", IsLoading: m.state.IsLoading}
		m.mu.Unlock()
	case next.IsConnected && !prev.IsConnected,
		next.IsConnected && !domain.SameAddress(prev.Address, next.Address),
		next.IsConnected && next.OnTargetNetwork() && !prev.OnTargetNetwork():
		m.Refresh(ctx)
	}
}

// readTarget returns the account and client to read with. Reads are skipped
// while disconnected or on another network.
func (m *DelegationManager) readTarget() (common.Address, WalletClient, bool) {
	session := m.session.State()
	client := m.session.Client()
	if !session.IsConnected || session.Address == nil || client == nil {
		return common.Address{}, nil, false
	}
	if !session.OnTargetNetwork() {
		m.log.Debug("skipping reads on wrong network", "chainId", session.ChainID)
		return common.Address{}, nil, false
	}
	return *session.Address, client, true
}

// stillCurrent drops results read for an account the session has since left
func (m *DelegationManager) stillCurrent(account common.Address) bool {
	session := m.session.State()
	return session.IsConnected && session.Address != nil && *session.Address == account
}

func (m *DelegationManager) setLoading(loading bool) {
	m.mu.Lock()
	m.state.IsLoading = loading
	m.mu.Unlock()
}

func (m *DelegationManager) newRecord(from, to common.Address, params DelegateParams) domain.DelegationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UnixMilli()
	id := now
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id

	record := domain.DelegationRecord{
		ID:             strconv.FormatInt(id, 10),
		Timestamp:      now,
		FromAddress:    from.Hex(),
		ToAddress:      to.Hex(),
		DelegationType: params.Type,
		Amount:         params.Amount,
		Status:         domain.StatusPending,
	}
	if params.Type == domain.DelegationSteward {
		record.StewardName = params.StewardName
	}
	return record
}

func (m *DelegationManager) prepend(ctx context.Context, record domain.DelegationRecord) {
	m.mu.Lock()
	m.records = append([]domain.DelegationRecord{record}, m.records...)
	snapshot := append([]domain.DelegationRecord(nil), m.records...)
	m.mu.Unlock()

	m.persist(ctx, snapshot)
}

// finish settles record and returns its final state
func (m *DelegationManager) finish(ctx context.Context, record domain.DelegationRecord, status domain.DelegationStatus, txHash string) domain.DelegationRecord {
	if err := record.Transition(status, txHash); err != nil {
		m.log.Error("unexpected record transition", "id", record.ID, "error", err)
	}

	m.mu.Lock()
	for i := range m.records {
		if m.records[i].ID == record.ID {
			m.records[i] = record
			break
		}
	}
	snapshot := append([]domain.DelegationRecord(nil), m.records...)
	m.mu.Unlock()

	m.persist(ctx, snapshot)
	return record
}

// persist rewrites the whole history. Failures are logged only, the history
// is display data.
func (m *DelegationManager) persist(ctx context.Context, records []domain.DelegationRecord) {
	if err := m.history.Save(context.WithoutCancel(ctx), records); err != nil {
		m.log.Warn("failed to persist delegation history", "error", err)
	}
}

func (m *DelegationManager) loadHistory(ctx context.Context) {
	records, err := m.history.Load(ctx)
	if err != nil {
		m.log.Warn("failed to load delegation history, starting empty", "error", err)
		records = nil
	}

	var lastID int64
	for _, r := range records {
		if id, err := strconv.ParseInt(r.ID, 10, 64); err == nil && id > lastID {
			lastID = id
		}
	}

	m.mu.Lock()
	m.records = records
	m.lastID = lastID
	m.mu.Unlock()
}

func delegatePointer(addr common.Address) *common.Address {
	if addr == domain.ZeroAddress {
		return nil
	}
	return &addr
}
