package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/samber/lo"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// PasswordEnvVar supplies the keystore password without prompting
const PasswordEnvVar = "UPDELEGATE_WALLET_PASSWORD"

// gasLimitPercent pads the node's gas estimate by 20%
const gasLimitPercent = 120

// PasswordStore keeps keystore passwords between runs
type PasswordStore interface {
	// Get returns "" when nothing is stored for account
	Get(account string) (string, error)
	Set(account, password string) error
	Delete(account string) error
}

// PasswordPrompter asks the user for a keystore password
type PasswordPrompter interface {
	PromptPassword(label string) (string, error)
}

// KeystoreProvider is a local wallet backed by a geth keystore directory.
// It signs EIP-1559 transactions itself and forwards everything else to
// the active chain's RPC endpoint.
type KeystoreProvider struct {
	Emitter

	ks       *keystore.KeyStore
	want     string
	chains   *ChainRegistry
	secrets  PasswordStore
	prompter PasswordPrompter
	log      *slog.Logger
	dial     func(ctx context.Context, url string) (*rpc.Client, error)

	mu       sync.Mutex
	unlocked *accounts.Account
	clients  map[uint64]*rpc.Client
}

// NewKeystoreProvider opens the configured keystore and chain registry
func NewKeystoreProvider(
	cfg *config.RuntimeConfig,
	secrets PasswordStore,
	prompter PasswordPrompter,
	log *slog.Logger,
) (*KeystoreProvider, error) {
	if err := os.MkdirAll(cfg.Wallet.KeystoreDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	configured := lo.MapToSlice(cfg.Networks, func(_ string, n *config.Network) domain.Chain {
		return n.Chain()
	})
	chains, err := NewChainRegistry(filepath.Join(cfg.DataDir, "wallet", ChainsFileName), configured, domain.TargetChainID)
	if err != nil {
		return nil, err
	}

	return newKeystoreProvider(
		keystore.NewKeyStore(cfg.Wallet.KeystoreDir, keystore.StandardScryptN, keystore.StandardScryptP),
		cfg.Wallet.Account, chains, secrets, prompter, log,
	), nil
}

func newKeystoreProvider(
	ks *keystore.KeyStore,
	account string,
	chains *ChainRegistry,
	secrets PasswordStore,
	prompter PasswordPrompter,
	log *slog.Logger,
) *KeystoreProvider {
	return &KeystoreProvider{
		ks:       ks,
		want:     account,
		chains:   chains,
		secrets:  secrets,
		prompter: prompter,
		log:      log.With("component", "keystore-wallet"),
		dial:     rpc.DialContext,
		clients:  make(map[uint64]*rpc.Client),
	}
}

// Request implements usecase.Provider
func (p *KeystoreProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	switch method {
	case domain.MethodAccounts:
		return p.accounts(ctx, false)
	case domain.MethodRequestAccounts:
		return p.accounts(ctx, true)
	case domain.MethodChainID:
		return marshalResult(domain.ChainIDHex(p.chains.Active()))
	case domain.MethodSwitchChain:
		return p.switchChain(params)
	case domain.MethodAddChain:
		return p.addChain(params)
	case domain.MethodSendTransaction:
		return p.sendTransaction(ctx, params)
	}
	return p.forward(ctx, method, params...)
}

// Revoke locks the account and forgets the stored password, so the next
// silent lookup finds nothing
func (p *KeystoreProvider) Revoke(ctx context.Context) error {
	p.mu.Lock()
	acct := p.unlocked
	p.unlocked = nil
	p.mu.Unlock()

	if acct == nil {
		resolved, err := p.account()
		if err != nil {
			return nil
		}
		acct = &resolved
	}
	_ = p.ks.Lock(acct.Address)

	if err := p.secrets.Delete(acct.Address.Hex()); err != nil {
		p.log.Warn("failed to remove stored password", "account", acct.Address.Hex(), "error", err)
	}
	p.Emit(domain.EventAccountsChanged, []string{})
	return nil
}

// Chains exposes the wallet's network registry
func (p *KeystoreProvider) Chains() *ChainRegistry {
	return p.chains
}

// Close releases RPC connections
func (p *KeystoreProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}

func (p *KeystoreProvider) accounts(ctx context.Context, interactive bool) (json.RawMessage, error) {
	p.mu.Lock()
	unlocked := p.unlocked
	p.mu.Unlock()
	if unlocked != nil {
		return marshalResult([]string{unlocked.Address.Hex()})
	}

	acct, err := p.account()
	if err != nil {
		p.log.Debug("no keystore account", "error", err)
		return marshalResult([]string{})
	}

	if p.unlockSilently(acct) {
		return marshalResult([]string{acct.Address.Hex()})
	}
	if !interactive {
		return marshalResult([]string{})
	}

	password, err := p.prompter.PromptPassword(fmt.Sprintf("Password for %s", domain.ShortAddress(acct.Address.Hex())))
	if err != nil {
		return nil, &domain.ProviderError{Code: domain.ProviderCodeUserRejected, Message: "User rejected the request: " + err.Error()}
	}
	if err := p.unlock(acct, password); err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, &domain.ProviderError{Code: domain.ProviderCodeUnauthorized, Message: "incorrect keystore password"}
		}
		return nil, err
	}
	if err := p.secrets.Set(acct.Address.Hex(), password); err != nil {
		p.log.Warn("password not saved to keyring, you will be asked again next time", "error", err)
	}
	return marshalResult([]string{acct.Address.Hex()})
}

// unlockSilently tries the stored and environment passwords
func (p *KeystoreProvider) unlockSilently(acct accounts.Account) bool {
	candidates := make([]string, 0, 2)
	if stored, err := p.secrets.Get(acct.Address.Hex()); err != nil {
		p.log.Debug("keyring unavailable", "error", err)
	} else if stored != "" {
		candidates = append(candidates, stored)
	}
	if env := os.Getenv(PasswordEnvVar); env != "" {
		candidates = append(candidates, env)
	}

	for _, password := range candidates {
		err := p.unlock(acct, password)
		if err == nil {
			return true
		}
		p.log.Debug("silent unlock failed", "account", acct.Address.Hex(), "error", err)
	}
	return false
}

func (p *KeystoreProvider) unlock(acct accounts.Account, password string) error {
	if err := p.ks.Unlock(acct, password); err != nil {
		return err
	}
	p.mu.Lock()
	p.unlocked = &acct
	p.mu.Unlock()
	return nil
}

// account resolves the configured account, or the first one in the keystore
func (p *KeystoreProvider) account() (accounts.Account, error) {
	if p.want != "" {
		return p.ks.Find(accounts.Account{Address: common.HexToAddress(p.want)})
	}
	all := p.ks.Accounts()
	if len(all) == 0 {
		return accounts.Account{}, keystore.ErrNoMatch
	}
	return all[0], nil
}

func (p *KeystoreProvider) switchChain(params []any) (json.RawMessage, error) {
	var req domain.SwitchChainParams
	if err := decodeParam(params, 0, &req); err != nil {
		return nil, err
	}
	id, err := domain.ParseChainID(req.ChainID)
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	prev := p.chains.Active()
	if err := p.chains.Switch(id); err != nil {
		return nil, err
	}
	if prev != id {
		p.Emit(domain.EventChainChanged, domain.ChainIDHex(id))
	}
	return json.RawMessage("null"), nil
}

func (p *KeystoreProvider) addChain(params []any) (json.RawMessage, error) {
	var req domain.AddChainParams
	if err := decodeParam(params, 0, &req); err != nil {
		return nil, err
	}
	chain, err := req.Chain()
	if err != nil {
		return nil, invalidParams(err.Error())
	}
	prev := p.chains.Active()
	if err := p.chains.Add(chain); err != nil {
		return nil, err
	}
	if prev != chain.ID {
		p.Emit(domain.EventChainChanged, domain.ChainIDHex(chain.ID))
	}
	return json.RawMessage("null"), nil
}

func (p *KeystoreProvider) sendTransaction(ctx context.Context, params []any) (json.RawMessage, error) {
	var args sendTxArgs
	if err := decodeParam(params, 0, &args); err != nil {
		return nil, err
	}

	p.mu.Lock()
	acct := p.unlocked
	p.mu.Unlock()
	if acct == nil || acct.Address != args.From {
		return nil, &domain.ProviderError{
			Code:    domain.ProviderCodeUnauthorized,
			Message: fmt.Sprintf("account %s is not authorized", args.From.Hex()),
		}
	}

	chainID := p.chains.Active()
	rc, err := p.client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	client := ethclient.NewClient(rc)

	tx, err := p.buildTx(ctx, client, chainID, args)
	if err != nil {
		return nil, err
	}
	signed, err := p.ks.SignTx(*acct, tx, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	p.log.Debug("transaction sent", "hash", signed.Hash().Hex(), "chain", chainID, "nonce", signed.Nonce())
	return marshalResult(signed.Hash())
}

// buildTx fills nonce, fees and gas: tip plus twice the base fee as cap
func (p *KeystoreProvider) buildTx(ctx context.Context, client *ethclient.Client, chainID uint64, args sendTxArgs) (*types.Transaction, error) {
	nonce, err := client.PendingNonceAt(ctx, args.From)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas tip: %w", err)
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block: %w", err)
	}
	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	value := new(big.Int)
	if args.Value != nil {
		value = args.Value.ToInt()
	}

	var gas uint64
	if args.Gas != nil {
		gas = uint64(*args.Gas)
	} else {
		estimate, err := client.EstimateGas(ctx, ethereum.CallMsg{
			From:  args.From,
			To:    args.To,
			Value: value,
			Data:  args.Data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		gas = estimate * gasLimitPercent / 100
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        args.To,
		Value:     value,
		Data:      args.Data,
	}), nil
}

func (p *KeystoreProvider) forward(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	rc, err := p.client(ctx, p.chains.Active())
	if err != nil {
		return nil, err
	}
	var result json.RawMessage
	if err := rc.CallContext(ctx, &result, method, params...); err != nil {
		return nil, toProviderError(err)
	}
	return result, nil
}

// client returns a cached connection to the chain's first rpc url. The dial
// runs without p.mu held so a slow endpoint does not block the wallet.
func (p *KeystoreProvider) client(ctx context.Context, chainID uint64) (*rpc.Client, error) {
	p.mu.Lock()
	c, ok := p.clients[chainID]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	chain, ok := p.chains.Get(chainID)
	if !ok || len(chain.RPCURLs) == 0 || chain.RPCURLs[0] == "" {
		return nil, fmt.Errorf("no rpc url configured for chain %d", chainID)
	}
	dialed, err := p.dial(ctx, chain.RPCURLs[0])
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s rpc: %w", chain.Name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[chainID]; ok {
		// lost a race with a concurrent dial
		dialed.Close()
		return c, nil
	}
	p.clients[chainID] = dialed
	return dialed, nil
}

// toProviderError keeps JSON-RPC error codes visible to callers
func toProviderError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &domain.ProviderError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return err
}
