package render

import (
	"fmt"
	"io"

	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// DashboardRenderer renders the status screen
type DashboardRenderer struct {
	out io.Writer
}

// NewDashboardRenderer creates a new dashboard renderer
func NewDashboardRenderer(out io.Writer) *DashboardRenderer {
	return &DashboardRenderer{out: out}
}

// Render prints the connection gate, or the delegation overview when the
// wallet is connected to the delegation network
func (r *DashboardRenderer) Render(view *usecase.DashboardView) error {
	session := view.Session

	switch {
	case session.IsConnecting:
		fmt.Fprintln(r.out, pendingStyle.Sprint("⏳ Connecting to wallet..."))
		return nil
	case !session.IsConnected:
		r.renderDisconnected()
		return nil
	case view.NetworkMismatch:
		r.renderWrongNetwork(view)
		return nil
	}

	fmt.Fprintln(r.out, headerStyle.Sprintf("🗳  %s Delegation", view.Token.Symbol))
	fmt.Fprintln(r.out)
	field(r.out, "Account", addressStyle.Sprint(session.Address.Hex()))
	field(r.out, "Network", fmt.Sprintf("%s (%d)", view.Network.Name, domain.TargetChainID))

	if view.IsLoading && view.Balance == "" {
		field(r.out, "Balance", faintStyle.Sprint("loading..."))
	} else {
		field(r.out, "Balance", r.amount(view.Balance, view.Token.Symbol))
		field(r.out, "Voting Power", r.amount(view.VotingPower, view.Token.Symbol))
	}
	field(r.out, "Delegate", r.delegate(view))

	if len(view.Stewards) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, headerStyle.Sprint("Stewards"))
		if err := NewStewardsRenderer(r.out).Render(view.Stewards); err != nil {
			return err
		}
	}

	if len(view.RecentHistory) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, headerStyle.Sprint("Recent Delegations"))
		NewHistoryRenderer(r.out, view.Network).renderTable(view.RecentHistory)
	}
	return nil
}

func (r *DashboardRenderer) renderDisconnected() {
	fmt.Fprintln(r.out, headerStyle.Sprint("🔌 No wallet connected"))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Connect a wallet to see your balance, voting power and delegate:")
	fmt.Fprintln(r.out, "  updelegate connect")
}

func (r *DashboardRenderer) renderWrongNetwork(view *usecase.DashboardView) {
	fmt.Fprintln(r.out, warningStyle.Sprint("⚠️  Wrong Network"))
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Your wallet is connected to chain %d.\n", *view.Session.ChainID)
	fmt.Fprintf(r.out, "Delegation is only available on %s (chain %d).\n", view.Network.Name, domain.TargetChainID)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Switch networks to continue:")
	fmt.Fprintln(r.out, "  updelegate network switch base")
}

func (r *DashboardRenderer) amount(value, symbol string) string {
	if value == "" {
		return faintStyle.Sprint("unavailable")
	}
	return fmt.Sprintf("%s %s", valueStyle.Sprint(domain.FormatCompact(value)), symbolStyle.Sprint(symbol))
}

func (r *DashboardRenderer) delegate(view *usecase.DashboardView) string {
	switch {
	case view.CurrentDelegate == nil:
		return faintStyle.Sprint("not delegated")
	case view.SelfDelegated:
		return completedStyle.Sprint("Self")
	case view.DelegateSteward != nil:
		return fmt.Sprintf("%s %s", valueStyle.Sprint(view.DelegateSteward.Name), addressStyle.Sprintf("(%s)", view.CurrentDelegate.Hex()))
	default:
		return addressStyle.Sprint(view.CurrentDelegate.Hex())
	}
}

// DashboardJSON is the machine readable status
type DashboardJSON struct {
	Connected       bool                      `json:"connected"`
	Address         string                    `json:"address,omitempty"`
	ChainID         *uint64                   `json:"chainId,omitempty"`
	NetworkMismatch bool                      `json:"networkMismatch"`
	Token           string                    `json:"token"`
	Symbol          string                    `json:"symbol"`
	Balance         string                    `json:"balance,omitempty"`
	VotingPower     string                    `json:"votingPower,omitempty"`
	Delegate        string                    `json:"delegate,omitempty"`
	DelegateSteward string                    `json:"delegateSteward,omitempty"`
	SelfDelegated   bool                      `json:"selfDelegated"`
	RecentHistory   []domain.DelegationRecord `json:"recentHistory,omitempty"`
}

// NewDashboardJSON flattens the view for --json output
func NewDashboardJSON(view *usecase.DashboardView) DashboardJSON {
	out := DashboardJSON{
		Connected:       view.Session.IsConnected,
		ChainID:         view.Session.ChainID,
		NetworkMismatch: view.NetworkMismatch,
		Token:           view.Token.Address.Hex(),
		Symbol:          view.Token.Symbol,
		Balance:         view.Balance,
		VotingPower:     view.VotingPower,
		SelfDelegated:   view.SelfDelegated,
		RecentHistory:   view.RecentHistory,
	}
	if view.Session.Address != nil {
		out.Address = view.Session.Address.Hex()
	}
	if view.CurrentDelegate != nil {
		out.Delegate = view.CurrentDelegate.Hex()
	}
	if view.DelegateSteward != nil {
		out.DelegateSteward = view.DelegateSteward.Name
	}
	return out
}
