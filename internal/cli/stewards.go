package cli

import (
	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
)

// NewStewardsCmd creates the stewards command
func NewStewardsCmd() *cobra.Command {
	var showBios bool

	cmd := &cobra.Command{
		Use:   "stewards",
		Short: "List the community stewards you can delegate to",
		Long: `List the Unlock community stewards with their voting power and governance
participation. When a wallet is connected the steward you currently delegate to
is marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			app.Restore(cmd.Context())
			stewards, err := app.ListStewards.Run(cmd.Context())
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), render.NewStewardsJSON(stewards))
			}
			r := render.NewStewardsRenderer(cmd.OutOrStdout())
			if showBios {
				r = r.WithBios()
			}
			return r.Render(stewards)
		},
	}

	cmd.Flags().BoolVar(&showBios, "bio", false, "Show each steward's bio")

	return cmd
}
