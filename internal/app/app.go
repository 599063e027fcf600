package app

import (
	"context"
	"log/slog"

	"github.com/unlock-community/updelegate/internal/adapters/interactive"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Session  *usecase.WalletSession
	Manager  *usecase.DelegationManager
	Selector *interactive.SelectorAdapter

	// Use cases
	ConnectWallet *usecase.ConnectWallet
	ShowDashboard *usecase.ShowDashboard
	ListStewards  *usecase.ListStewards
	DelegateVotes *usecase.DelegateVotes
	ManageNetwork *usecase.ManageNetwork
	ListHistory   *usecase.ListHistory
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	session *usecase.WalletSession,
	manager *usecase.DelegationManager,
	selector *interactive.SelectorAdapter,
	connectWallet *usecase.ConnectWallet,
	showDashboard *usecase.ShowDashboard,
	listStewards *usecase.ListStewards,
	delegateVotes *usecase.DelegateVotes,
	manageNetwork *usecase.ManageNetwork,
	listHistory *usecase.ListHistory,
) *App {
	return &App{
		Config:        cfg,
		Log:           log,
		Session:       session,
		Manager:       manager,
		Selector:      selector,
		ConnectWallet: connectWallet,
		ShowDashboard: showDashboard,
		ListStewards:  listStewards,
		DelegateVotes: delegateVotes,
		ManageNetwork: manageNetwork,
		ListHistory:   listHistory,
	}
}

// Restore reconnects a previously authorized wallet without prompting.
// Delegation state is refreshed by the manager as the session connects.
func (a *App) Restore(ctx context.Context) {
	a.Session.Restore(ctx)
}

// ProvideWalletSession creates the session and subscribes it to provider
// events for the lifetime of the app
func ProvideWalletSession(provider usecase.Provider, factory usecase.ClientFactory, log *slog.Logger) (*usecase.WalletSession, func()) {
	session := usecase.NewWalletSession(provider, factory, log)
	session.Start(context.Background())
	return session, session.Close
}

// ProvideDelegationManager creates the manager and stops it following the
// session on cleanup
func ProvideDelegationManager(
	cfg *config.RuntimeConfig,
	session *usecase.WalletSession,
	history usecase.HistoryStore,
	clock usecase.Clock,
	sink usecase.ProgressSink,
	log *slog.Logger,
) (*usecase.DelegationManager, func()) {
	manager := usecase.NewDelegationManager(cfg, session, history, clock, sink, log)
	return manager, manager.Close
}
