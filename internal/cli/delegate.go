package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/app"
	"github.com/unlock-community/updelegate/internal/cli/render"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// delegateOptions are shared by the delegate subcommands
type delegateOptions struct {
	amount string
	yes    bool
}

func (o *delegateOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.amount, "amount", "", "Amount to record with the delegation (votes are always delegated in full)")
	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "Skip the confirmation prompt")
}

// NewDelegateCmd creates the delegate command
func NewDelegateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delegate",
		Short: "Delegate your UP voting power",
		Long: `Delegate the voting power of your whole UP balance to yourself, a community
steward or any address. Delegation does not move tokens and can be changed or
removed at any time.

Examples:
  updelegate delegate self
  updelegate delegate steward "CeCi Sakura"
  updelegate delegate steward            # pick interactively
  updelegate delegate address 0xE215A2F256731B3dA911E01f9707d281936519fd`,
	}

	cmd.AddCommand(newDelegateSelfCmd(), newDelegateStewardCmd(), newDelegateAddressCmd())

	return cmd
}

func newDelegateSelfCmd() *cobra.Command {
	opts := &delegateOptions{}
	cmd := &cobra.Command{
		Use:         "self",
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		Short:       "Delegate to your own address to vote directly",
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelegate(cmd, opts, usecase.DelegateVotesParams{Type: domain.DelegationSelf}, "yourself")
		},
	}
	opts.bind(cmd)
	return cmd
}

func newDelegateStewardCmd() *cobra.Command {
	opts := &delegateOptions{}
	cmd := &cobra.Command{
		Use:         "steward [id|name|address]",
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		Short:       "Delegate to a community steward",
		Long: `Delegate to a community steward, matched by id, name or address. Without an
argument the steward is picked from a searchable list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := usecase.DelegateVotesParams{Type: domain.DelegationSteward}
			target := ""
			if len(args) == 1 {
				app, err := getApp(cmd)
				if err != nil {
					return err
				}
				steward, err := app.ListStewards.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				params.Steward = steward.ID
				target = fmt.Sprintf("%s (%s)", steward.Name, steward.Address)
			}
			return runDelegate(cmd, opts, params, target)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newDelegateAddressCmd() *cobra.Command {
	opts := &delegateOptions{}
	cmd := &cobra.Command{
		Use:         "address <address>",
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		Short:       "Delegate to any address",
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.IsValidAddress(args[0]) {
				return fmt.Errorf("%q: %w", args[0], domain.ErrInvalidAddress)
			}
			params := usecase.DelegateVotesParams{Type: domain.DelegationCustom, Address: args[0]}
			return runDelegate(cmd, opts, params, args[0])
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewUndelegateCmd creates the undelegate command
func NewUndelegateCmd() *cobra.Command {
	opts := &delegateOptions{}
	cmd := &cobra.Command{
		Use:         "undelegate",
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		Short:       "Remove your delegate",
		Long: `Delegate to the zero address, which removes your current delegate. Your votes
are not counted until you delegate again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := connectedApp(cmd)
			if err != nil {
				return err
			}
			if !confirm(cmd, app, opts, "Remove your current delegate?") {
				return nil
			}

			result, err := app.DelegateVotes.Undelegate(cmd.Context())
			return renderDelegation(cmd, app, result, err)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// runDelegate confirms and sends a delegation. An empty target means the
// steward is picked interactively, which doubles as the confirmation.
func runDelegate(cmd *cobra.Command, opts *delegateOptions, params usecase.DelegateVotesParams, target string) error {
	app, err := connectedApp(cmd)
	if err != nil {
		return err
	}

	params.Amount = opts.amount
	if opts.amount != "" && !app.Config.JSON {
		render.NewDelegationRenderer(cmd.ErrOrStderr(), domain.BaseChain).RenderAmountNotice(opts.amount, app.Config.Token.Symbol)
	}

	if target != "" && !confirm(cmd, app, opts, fmt.Sprintf("Delegate all your %s votes to %s?", app.Config.Token.Symbol, target)) {
		return nil
	}

	result, err := app.DelegateVotes.Run(cmd.Context(), params)
	return renderDelegation(cmd, app, result, err)
}

// connectedApp restores the session and refuses to continue unless the
// wallet is connected to the delegation network
func connectedApp(cmd *cobra.Command) (*app.App, error) {
	app, err := getApp(cmd)
	if err != nil {
		return nil, err
	}

	app.Restore(cmd.Context())
	state := app.Session.State()
	switch {
	case !state.IsConnected:
		return nil, domain.ErrNotConnected
	case !state.OnTargetNetwork():
		return nil, domain.ErrNetworkMismatch
	}
	return app, nil
}

func confirm(cmd *cobra.Command, a *app.App, opts *delegateOptions, label string) bool {
	if opts.yes || a.Config.NonInteractive {
		return true
	}
	ok, err := a.Selector.Confirm(label)
	if err != nil {
		a.Log.Debug("confirmation failed", "error", err)
		return false
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
	}
	return ok
}

func renderDelegation(cmd *cobra.Command, a *app.App, result *usecase.DelegateVotesResult, err error) error {
	r := render.NewDelegationRenderer(cmd.OutOrStdout(), domain.BaseChain)
	if err != nil {
		if !a.Config.JSON {
			r.RenderFailure(result)
		}
		return err
	}
	if a.Config.JSON {
		return render.WriteJSON(cmd.OutOrStdout(), render.NewDelegationJSON(result))
	}
	return r.Render(result)
}
