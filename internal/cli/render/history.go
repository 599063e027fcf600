package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

const timeLayout = "2006-01-02 15:04"

// HistoryRenderer renders the local delegation log
type HistoryRenderer struct {
	out   io.Writer
	chain domain.Chain
}

// NewHistoryRenderer creates a new history renderer. Transaction links
// point at chain's explorer.
func NewHistoryRenderer(out io.Writer, chain domain.Chain) *HistoryRenderer {
	return &HistoryRenderer{out: out, chain: chain}
}

// Render prints the records and the per status summary
func (r *HistoryRenderer) Render(result *usecase.HistoryResult) error {
	if len(result.Records) == 0 {
		fmt.Fprintln(r.out, "No delegations recorded yet")
		return nil
	}

	r.renderTable(result.Records)

	s := result.Summary
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Total: %d (%s %d, %s %d, %s %d)\n",
		s.Total,
		completedStyle.Sprint("completed"), s.Completed,
		failedStyle.Sprint("failed"), s.Failed,
		pendingStyle.Sprint("pending"), s.Pending,
	)
	if len(result.Records) < s.Total {
		fmt.Fprintln(r.out, faintStyle.Sprintf("Showing the latest %d", len(result.Records)))
	}
	return nil
}

func (r *HistoryRenderer) renderTable(records []domain.DelegationRecord) {
	t := newTable()
	t.AppendHeader(table.Row{"Time", "Type", "Delegate", "Status", "Transaction"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			faintStyle.Sprint(rec.Time().Local().Format(timeLayout)),
			DelegationLabel(rec),
			addressStyle.Sprint(domain.ShortAddress(rec.ToAddress)),
			FormatStatus(rec.Status),
			r.txCell(rec.TransactionHash),
		})
	}
	fmt.Fprintln(r.out, t.Render())
}

func (r *HistoryRenderer) txCell(hash string) string {
	if hash == "" {
		return faintStyle.Sprint("-")
	}
	return lo.CoalesceOrEmpty(r.chain.TxURL(hash), hash)
}

// DelegationLabel describes what a record did, e.g. "Steward: CeCi Sakura"
func DelegationLabel(rec domain.DelegationRecord) string {
	switch {
	case rec.IsUndelegation():
		return "Undelegate"
	case rec.DelegationType == domain.DelegationSteward && rec.StewardName != "":
		return "Steward: " + rec.StewardName
	default:
		return titleCaser.String(string(rec.DelegationType))
	}
}
