package adapters

import (
	"fmt"
	"log/slog"

	"github.com/google/wire"
	"github.com/unlock-community/updelegate/internal/adapters/blockchain"
	"github.com/unlock-community/updelegate/internal/adapters/clock"
	"github.com/unlock-community/updelegate/internal/adapters/fs"
	"github.com/unlock-community/updelegate/internal/adapters/interactive"
	"github.com/unlock-community/updelegate/internal/adapters/progress"
	"github.com/unlock-community/updelegate/internal/adapters/provider"
	"github.com/unlock-community/updelegate/internal/adapters/secrets"
	"github.com/unlock-community/updelegate/internal/adapters/stewards"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// ProvideWalletProvider builds the provider selected by wallet.kind. The
// cleanup closes its connections and watcher.
func ProvideWalletProvider(
	cfg *config.RuntimeConfig,
	passwords provider.PasswordStore,
	prompter provider.PasswordPrompter,
	log *slog.Logger,
) (usecase.Provider, func(), error) {
	switch cfg.Wallet.Kind {
	case config.WalletKindRPC:
		p := provider.NewRPCProvider(cfg, log)
		return p, p.Close, nil
	case config.WalletKindKeystore, "":
		p, err := provider.NewKeystoreProvider(cfg, passwords, prompter, log)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown wallet kind %q", cfg.Wallet.Kind)
	}
}

// StorageSet provides local persistence
var StorageSet = wire.NewSet(
	fs.NewLocalStorage,
	fs.NewHistoryStoreAdapter,
	wire.Bind(new(usecase.HistoryStore), new(*fs.HistoryStoreAdapter)),

	stewards.NewRosterRepository,
	wire.Bind(new(usecase.StewardRepository), new(*stewards.RosterRepository)),
)

// WalletSet provides the wallet provider and the client built on top of it
var WalletSet = wire.NewSet(
	secrets.NewKeyringStore,
	wire.Bind(new(provider.PasswordStore), new(*secrets.KeyringStore)),

	ProvideWalletProvider,
	blockchain.NewClientFactory,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.StewardSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(provider.PasswordPrompter), new(*interactive.SelectorAdapter)),
)

// ProgressSet provides terminal progress reporting
var ProgressSet = wire.NewSet(
	progress.NewProgressSink,
)

// ClockSet provides the wall clock
var ClockSet = wire.NewSet(
	clock.NewSystemClock,
	wire.Bind(new(usecase.Clock), new(clock.SystemClock)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	StorageSet,
	WalletSet,
	InteractiveSet,
	ProgressSet,
	ClockSet,
)
