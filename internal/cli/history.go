package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var (
		status string
		from   string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past delegations recorded on this machine",
		Long: `Show the local delegation log, newest first. Every attempt is recorded,
including ones rejected in the wallet or reverted on chain.

The log is local: delegations made from another tool or machine do not appear.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListHistoryParams{Account: from, Limit: limit}
			if status != "" {
				params.Status = domain.DelegationStatus(status)
				if params.Status != domain.StatusPending && !params.Status.IsTerminal() {
					return fmt.Errorf("invalid status %q (expected pending, completed or failed)", status)
				}
			}
			if from != "" && !domain.IsValidAddress(from) {
				return fmt.Errorf("--from %q: %w", from, domain.ErrInvalidAddress)
			}

			result, err := app.ListHistory.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.WriteJSON(cmd.OutOrStdout(), result.Records)
			}
			return render.NewHistoryRenderer(cmd.OutOrStdout(), domain.BaseChain).Render(result)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show pending, completed or failed delegations")
	cmd.Flags().StringVar(&from, "from", "", "Only show delegations sent from this address")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of delegations to show (0 for all)")

	return cmd
}
