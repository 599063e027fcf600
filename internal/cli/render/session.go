package render

import (
	"fmt"
	"io"

	"github.com/unlock-community/updelegate/internal/domain"
)

// SessionRenderer renders the wallet connection after connect and network changes
type SessionRenderer struct {
	out io.Writer
}

// NewSessionRenderer creates a new session renderer
func NewSessionRenderer(out io.Writer) *SessionRenderer {
	return &SessionRenderer{out: out}
}

// Render prints the connected account and warns when the wallet is not on
// the delegation network
func (r *SessionRenderer) Render(state domain.SessionState) error {
	if !state.IsConnected || state.Address == nil {
		fmt.Fprintln(r.out, FormatWarning("Wallet is not connected"))
		return nil
	}

	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Connected %s", addressStyle.Sprint(state.Address.Hex()))))
	if state.ChainID != nil {
		field(r.out, "Chain", fmt.Sprintf("%d", *state.ChainID))
	}
	if state.NetworkMismatch() {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf(
			"Wrong network: delegation needs %s (chain %d). Run `updelegate network switch base`",
			domain.BaseChain.Name, domain.TargetChainID,
		)))
	}
	return nil
}

// SessionJSON is the --json output for connect and network commands
type SessionJSON struct {
	Connected       bool    `json:"connected"`
	Address         string  `json:"address,omitempty"`
	ChainID         *uint64 `json:"chainId,omitempty"`
	NetworkMismatch bool    `json:"networkMismatch"`
}

// NewSessionJSON converts a session for --json output
func NewSessionJSON(state domain.SessionState) SessionJSON {
	out := SessionJSON{
		Connected:       state.IsConnected,
		ChainID:         state.ChainID,
		NetworkMismatch: state.NetworkMismatch(),
	}
	if state.Address != nil {
		out.Address = state.Address.Hex()
	}
	return out
}
