package render

import (
	"fmt"
	"io"

	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// DelegationRenderer renders the outcome of delegate and undelegate
type DelegationRenderer struct {
	out   io.Writer
	chain domain.Chain
}

// NewDelegationRenderer creates a new delegation renderer
func NewDelegationRenderer(out io.Writer, chain domain.Chain) *DelegationRenderer {
	return &DelegationRenderer{out: out, chain: chain}
}

// Render prints the confirmed delegation
func (r *DelegationRenderer) Render(result *usecase.DelegateVotesResult) error {
	switch {
	case result.Delegatee == domain.ZeroAddress:
		fmt.Fprintln(r.out, FormatSuccess("Votes undelegated"))
	case result.Steward != nil:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Delegated to %s (%s)", result.Steward.Name, result.Delegatee.Hex())))
	case result.Record != nil && result.Record.DelegationType == domain.DelegationSelf:
		fmt.Fprintln(r.out, FormatSuccess("Delegated to yourself"))
	default:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Delegated to %s", result.Delegatee.Hex())))
	}
	r.renderTx(result.TxHash.Hex())
	return nil
}

// RenderFailure prints whatever is known about a failed attempt. The error
// itself is reported by the caller.
func (r *DelegationRenderer) RenderFailure(result *usecase.DelegateVotesResult) {
	if result == nil || result.Record == nil || result.Record.TransactionHash == "" {
		return
	}
	r.renderTx(result.Record.TransactionHash)
}

// RenderAmountNotice explains that --amount does not limit the delegation
func (r *DelegationRenderer) RenderAmountNotice(amount, symbol string) {
	fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf(
		"Delegation always covers your full %s balance; the amount %s is only recorded in the history",
		symbol, amount,
	)))
}

func (r *DelegationRenderer) renderTx(hash string) {
	field(r.out, "Transaction", hash)
	if url := r.chain.TxURL(hash); url != "" {
		field(r.out, "Explorer", url)
	}
}

// DelegationJSON is the --json output of delegate and undelegate
type DelegationJSON struct {
	TxHash    string                   `json:"txHash"`
	Delegatee string                   `json:"delegatee"`
	Steward   *domain.Steward          `json:"steward,omitempty"`
	Record    *domain.DelegationRecord `json:"record,omitempty"`
}

// NewDelegationJSON converts a delegation result for --json output
func NewDelegationJSON(result *usecase.DelegateVotesResult) DelegationJSON {
	return DelegationJSON{
		TxHash:    result.TxHash.Hex(),
		Delegatee: result.Delegatee.Hex(),
		Steward:   result.Steward,
		Record:    result.Record,
	}
}
