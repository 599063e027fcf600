package blockchain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

const defaultReceiptPoll = 2 * time.Second

type callArgs struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

type txArgs struct {
	From common.Address `json:"from"`
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// receipt holds the fields read from eth_getTransactionReceipt. Wallets
// differ in what else they return, so the full types.Receipt is not used.
type receipt struct {
	TxHash      common.Hash    `json:"transactionHash"`
	BlockNumber hexutil.Uint64 `json:"blockNumber"`
	Status      hexutil.Uint64 `json:"status"`
}

// ProviderClient implements usecase.WalletClient on top of a wallet provider
type ProviderClient struct {
	provider usecase.Provider
	interval time.Duration
	log      *slog.Logger
}

// NewProviderClient creates a client sending every call through provider
func NewProviderClient(provider usecase.Provider, interval time.Duration, log *slog.Logger) *ProviderClient {
	if interval <= 0 {
		interval = defaultReceiptPoll
	}
	return &ProviderClient{provider: provider, interval: interval, log: log}
}

// NewClientFactory builds the factory the wallet session uses on connect
func NewClientFactory(cfg *config.RuntimeConfig, log *slog.Logger) usecase.ClientFactory {
	return func(provider usecase.Provider) usecase.WalletClient {
		return NewProviderClient(provider, cfg.Wallet.PollInterval, log)
	}
}

// CallContract executes a read-only call at the latest block
func (c *ProviderClient) CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	raw, err := c.provider.Request(ctx, domain.MethodCall, callArgs{To: to, Data: data}, "latest")
	if err != nil {
		return nil, err
	}
	var out hexutil.Bytes
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unexpected eth_call result: %w", err)
	}
	return out, nil
}

// SendTransaction asks the wallet to sign and broadcast a transaction
func (c *ProviderClient) SendTransaction(ctx context.Context, from, to common.Address, data []byte) (common.Hash, error) {
	raw, err := c.provider.Request(ctx, domain.MethodSendTransaction, txArgs{From: from, To: to, Data: data})
	if err != nil {
		return common.Hash{}, err
	}
	var hash common.Hash
	if err := json.Unmarshal(raw, &hash); err != nil {
		return common.Hash{}, fmt.Errorf("unexpected eth_sendTransaction result: %w", err)
	}
	return hash, nil
}

// WaitForReceipt polls until the transaction is mined or ctx ends
func (c *ProviderClient) WaitForReceipt(ctx context.Context, hash common.Hash) (*domain.TxReceipt, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		raw, err := c.provider.Request(ctx, domain.MethodGetTransactionRx, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to get transaction receipt: %w", err)
		}
		if len(raw) > 0 && string(raw) != "null" {
			var r receipt
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("unexpected receipt: %w", err)
			}
			return &domain.TxReceipt{
				TxHash:      hash,
				BlockNumber: uint64(r.BlockNumber),
				Success:     uint64(r.Status) == types.ReceiptStatusSuccessful,
			}, nil
		}

		c.log.Debug("waiting for transaction", "hash", hash.Hex())
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ usecase.WalletClient = (*ProviderClient)(nil)
