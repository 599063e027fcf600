package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/app"
	"github.com/unlock-community/updelegate/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"

	// noTimeoutAnnotation exempts a command from --timeout. Commands that
	// send transactions wait for the wallet and the receipt without a deadline.
	noTimeoutAnnotation = "updelegate/no-timeout"
)

// lifecycle holds what PersistentPreRunE sets up so it can be torn down
// whether or not the command succeeded
type lifecycle struct {
	cleanup func()
	cancel  context.CancelFunc
}

func (l *lifecycle) close() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.cleanup != nil {
		l.cleanup()
		l.cleanup = nil
	}
}

// Execute runs the command line and releases the wallet afterwards.
// Ctrl-C cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd, lc := newRootCmd()
	defer lc.close()
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd, _ := newRootCmd()
	return rootCmd
}

func newRootCmd() (*cobra.Command, *lifecycle) {
	lc := &lifecycle{}

	rootCmd := &cobra.Command{
		Use:   "updelegate",
		Short: "Delegate Unlock Protocol (UP) voting power on Base",
		Long: `updelegate connects a wallet, shows your UP balance and voting power, and
delegates your votes to yourself, a community steward or any address.

Delegation happens on Base (chain 8453). Every attempt is recorded in a local
history so you can review what was sent and whether it confirmed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, cleanup, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			lc.cleanup = cleanup

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 && cmd.Annotations[noTimeoutAnnotation] == "" {
				ctx, lc.cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.SetContext(ctx)

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			lc.close()
		},
	}

	bindGlobalFlags(rootCmd)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "wallet",
		Title: "Wallet Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "delegation",
		Title: "Delegation Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewConnectCmd(),
		NewDisconnectCmd(),
		NewStatusCmd(),
		NewWatchCmd(),
		NewNetworkCmd(),
	} {
		cmd.GroupID = "wallet"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewStewardsCmd(),
		NewDelegateCmd(),
		NewUndelegateCmd(),
		NewHistoryCmd(),
	} {
		cmd.GroupID = "delegation"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd, lc
}

// bindGlobalFlags declares the persistent flags. Each one is bound to the
// viper key of the same name with dashes replaced by underscores, so local
// command flags must not reuse these names.
func bindGlobalFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.Bool("json", false, "Output in JSON format")
	flags.Duration("timeout", config.DefaultTimeout, "Deadline for the whole command")
	flags.String("config", "", "Path to updelegate.toml")
	flags.String("data-dir", "", "Directory holding the keystore, history and wallet state")

	flags.StringP("wallet", "w", "", "Wallet kind: keystore or rpc")
	flags.String("endpoint", "", "JSON-RPC endpoint of an external wallet (rpc wallet)")
	flags.String("keystore", "", "Keystore directory (keystore wallet)")
	flags.StringP("account", "a", "", "Keystore account to use (keystore wallet)")
	flags.String("poll-interval", "", "How often an rpc wallet is polled for account and chain changes")

	flags.String("token", "", "Governance token address")
	flags.String("stewards-file", "", "YAML file replacing the built-in steward roster")
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
