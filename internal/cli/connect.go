package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
)

// NewConnectCmd creates the connect command
func NewConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet and select the Base network",
		Long: `Connect the configured wallet. The wallet is asked for account access and,
when it is on another network, to switch to Base (adding Base first if the
wallet does not know it).

Keystore wallets unlock with the password stored in the OS keyring, the
UPDELEGATE_WALLET_PASSWORD environment variable or an interactive prompt. A
password entered at the prompt is saved to the keyring so later commands
reconnect silently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			app.Restore(cmd.Context())
			state, err := app.ConnectWallet.Run(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), render.NewSessionJSON(state))
			}
			return render.NewSessionRenderer(cmd.OutOrStdout()).Render(state)
		},
	}
}

// NewDisconnectCmd creates the disconnect command
func NewDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet and forget its authorization",
		Long: `Disconnect the wallet. The stored keystore password is removed from the OS
keyring and external wallets are asked to revoke account access, so the next
command will not reconnect silently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			if err := app.ConnectWallet.Disconnect(cmd.Context()); err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), render.NewSessionJSON(app.Session.State()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatSuccess("Wallet disconnected"))
			return nil
		},
	}
}
