//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/unlock-community/updelegate/internal/adapters"
	"github.com/unlock-community/updelegate/internal/config"
	"github.com/unlock-community/updelegate/internal/logging"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Core components
		ProvideWalletSession,
		ProvideDelegationManager,

		// Use cases
		usecase.NewConnectWallet,
		usecase.NewListStewards,
		usecase.NewShowDashboard,
		usecase.NewDelegateVotes,
		usecase.NewManageNetwork,
		usecase.NewListHistory,

		// App
		NewApp,
	)
	return nil, nil, nil
}
