package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/unlock-community/updelegate/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	labelStyle     = color.New(color.Faint)
	valueStyle     = color.New(color.FgHiWhite, color.Bold)
	addressStyle   = color.New(color.FgCyan)
	symbolStyle    = color.New(color.FgYellow)
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	warningStyle   = color.New(color.FgYellow, color.Bold)
	completedStyle = color.New(color.FgGreen)
	failedStyle    = color.New(color.FgRed)
	pendingStyle   = color.New(color.FgYellow)
	faintStyle     = color.New(color.Faint)

	titleCaser = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error for the terminal. Wallet errors keep their
// own message; wrapped chains are cut to the innermost cause.
func FormatError(err error) string {
	var msg string
	var perr *domain.ProviderError
	switch {
	case domain.IsUserRejected(err):
		msg = "Request rejected in the wallet"
	case errors.Is(err, domain.ErrNetworkMismatch):
		msg = fmt.Sprintf("Wrong network: switch the wallet to %s (chain %d) first", domain.BaseChain.Name, domain.TargetChainID)
	case errors.Is(err, domain.ErrProviderUnavailable):
		msg = "No wallet available: configure a keystore account or pass --wallet rpc --endpoint <url>"
	case errors.Is(err, domain.ErrNotConnected):
		msg = "No wallet connected: run `updelegate connect` first"
	case errors.As(err, &perr):
		msg = perr.Message
	default:
		parts := strings.Split(err.Error(), ": ")
		msg = parts[len(parts)-1]
	}

	// Capitalize first letter
	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatStatus renders a delegation status with its color
func FormatStatus(status domain.DelegationStatus) string {
	label := titleCaser.String(string(status))
	switch status {
	case domain.StatusCompleted:
		return completedStyle.Sprint(label)
	case domain.StatusFailed:
		return failedStyle.Sprint(label)
	default:
		return pendingStyle.Sprint(label)
	}
}

// WriteJSON prints v as indented JSON
func WriteJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// newTable returns a borderless table in the house style
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	t.Style().Options.SeparateHeader = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}
	return t
}

func field(out io.Writer, label, value string) {
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Sprintf("%-14s", label+":"), value)
}
