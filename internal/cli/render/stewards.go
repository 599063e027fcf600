package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// StewardsRenderer renders the steward roster
type StewardsRenderer struct {
	out     io.Writer
	verbose bool
}

// NewStewardsRenderer creates a new stewards renderer
func NewStewardsRenderer(out io.Writer) *StewardsRenderer {
	return &StewardsRenderer{out: out}
}

// WithBios adds each steward's bio under the table row
func (r *StewardsRenderer) WithBios() *StewardsRenderer {
	r.verbose = true
	return r
}

// Render prints one row per steward, marking the current delegate
func (r *StewardsRenderer) Render(stewards []usecase.StewardView) error {
	if len(stewards) == 0 {
		fmt.Fprintln(r.out, "No stewards found")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"", "Steward", "Address", "Voting Power", "Proposals"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, s := range stewards {
		marker := " "
		name := s.Name
		if s.IsCurrentDelegate {
			marker = completedStyle.Sprint("●")
			name = completedStyle.Sprint(s.Name)
		}
		t.AppendRow(table.Row{
			marker,
			name,
			addressStyle.Sprint(s.Address),
			domain.FormatVotingPower(s.VotingPower),
			s.ProposalsVoted,
		})
		if r.verbose && s.Bio != "" {
			t.AppendRow(table.Row{"", faintStyle.Sprint(s.Bio)})
		}
	}

	fmt.Fprintln(r.out, t.Render())
	return nil
}

// StewardJSON is a roster entry for --json output
type StewardJSON struct {
	domain.Steward
	IsCurrentDelegate bool `json:"isCurrentDelegate"`
}

// NewStewardsJSON converts the roster for --json output
func NewStewardsJSON(stewards []usecase.StewardView) []StewardJSON {
	out := make([]StewardJSON, 0, len(stewards))
	for _, s := range stewards {
		out = append(out, StewardJSON{Steward: s.Steward, IsCurrentDelegate: s.IsCurrentDelegate})
	}
	return out
}
