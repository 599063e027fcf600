package cli

import (
	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
	"github.com/unlock-community/updelegate/internal/domain"
)

// NewNetworkCmd creates the network command
func NewNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Switch or add wallet networks",
		Long: `Ask the connected wallet to switch networks or to add one it does not know.
Networks are referenced by name from the [networks] table of updelegate.toml
(base and mainnet are built in) or by chain id.`,
	}

	cmd.AddCommand(newNetworkSwitchCmd(), newNetworkAddCmd())

	return cmd
}

func newNetworkSwitchCmd() *cobra.Command {
	var noAdd bool

	cmd := &cobra.Command{
		Use:   "switch [network]",
		Short: "Switch the wallet to a network (Base by default)",
		Long: `Switch the wallet to a network. A wallet that does not know the network is
asked to add it, unless --no-add is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			app.Restore(cmd.Context())
			if !app.Session.State().IsConnected {
				return domain.ErrNotConnected
			}

			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			state, err := app.ManageNetwork.Switch(cmd.Context(), ref, !noAdd)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), render.NewSessionJSON(state))
			}
			return render.NewSessionRenderer(cmd.OutOrStdout()).Render(state)
		},
	}

	cmd.Flags().BoolVar(&noAdd, "no-add", false, "Fail instead of adding an unknown network")

	return cmd
}

func newNetworkAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <network>",
		Short: "Add a configured network to the wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			app.Restore(cmd.Context())
			if !app.Session.State().IsConnected {
				return domain.ErrNotConnected
			}

			state, err := app.ManageNetwork.Add(cmd.Context(), args[0])
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
