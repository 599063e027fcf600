package cli

import (
	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show balance, voting power and current delegate",
		Long: `Show the connected account, its UP balance and voting power, who it delegates
to and the steward roster.

A wallet on another network only gets the Wrong Network notice: switch to Base
with 'updelegate network switch base' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			app.Restore(cmd.Context())
			view, err := app.ShowDashboard.Run(cmd.Context(), usecase.ShowDashboardParams{
				HistoryLimit: historyLimit,
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), render.NewDashboardJSON(view))
			}
			return render.NewDashboardRenderer(cmd.OutOrStdout()).Render(view)
		},
	}

	cmd.Flags().IntVar(&historyLimit, "recent", 3, "Number of recent delegations to show")

	return cmd
}
