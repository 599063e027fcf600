package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/unlock-community/updelegate/internal/cli/render"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// dashboardMsg carries a freshly rendered dashboard
type dashboardMsg struct {
	content string
	err     error
}

// sessionMsg reports that the wallet changed account, chain or connection
type sessionMsg struct{}

// tickMsg asks for a refresh of the on-chain reads
type tickMsg time.Time

// dashboardFunc renders the dashboard, re-reading chain state when refresh is set
type dashboardFunc func(refresh bool) (string, error)

// watchModel is the bubbletea model behind watch
type watchModel struct {
	render   dashboardFunc
	interval time.Duration
	content  string
	err      error
	updated  time.Time
	quitting bool
}

func newWatchModel(render dashboardFunc, interval time.Duration) watchModel {
	return watchModel{
		render:   render,
		interval: interval,
	}
}

// Init renders the first frame and starts the refresh timer
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.redraw(false), m.tick())
}

// Update handles messages and updates the model
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.redraw(true)
		}
	case sessionMsg:
		return m, m.redraw(false)
	case tickMsg:
		return m, tea.Batch(m.redraw(true), m.tick())
	case dashboardMsg:
		m.err = msg.err
		if msg.err == nil {
			m.content = msg.content
			m.updated = time.Now()
		}
	}
	return m, nil
}

// View renders the UI
func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.content == "" && m.err == nil {
		b.WriteString("Loading...\n")
	}
	b.WriteString(m.content)
	if m.err != nil {
		b.WriteString("\n" + render.FormatError(m.err) + "\n")
	}
	b.WriteString("\n")
	footer := "r: refresh  q: quit"
	if !m.updated.IsZero() {
		footer = fmt.Sprintf("updated %s  %s", m.updated.Format("15:04:05"), footer)
	}
	b.WriteString(color.New(color.Faint).Sprint(footer) + "\n")
	return b.String()
}

func (m watchModel) redraw(refresh bool) tea.Cmd {
	return func() tea.Msg {
		content, err := m.render(refresh)
		return dashboardMsg{content: content, err: err}
	}
}

func (m watchModel) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard that follows wallet and chain changes",
		Long: `Show the status dashboard and keep it current. The screen is redrawn when the
wallet switches account or network and the on-chain reads are refreshed on a
timer. Press r to refresh now and q to quit.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if app.Config.JSON {
				return fmt.Errorf("watch is interactive and does not support --json; use status --json")
			}

			ctx := cmd.Context()
			app.Restore(ctx)

			draw := func(refresh bool) (string, error) {
				view, err := app.ShowDashboard.Run(ctx, usecase.ShowDashboardParams{
					Refresh:      refresh,
					HistoryLimit: 3,
				})
				if err != nil {
					return "", err
				}
				var b strings.Builder
				if err := render.NewDashboardRenderer(&b).Render(view); err != nil {
					return "", err
				}
				return b.String(), nil
			}

			p := tea.NewProgram(
				newWatchModel(draw, interval),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)

			unsubscribe := app.Session.Subscribe(func(context.Context, domain.SessionState, domain.SessionState) {
				p.Send(sessionMsg{})
			})
			defer unsubscribe()

			if _, err := p.Run(); err != nil && ctx.Err() == nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("watch failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 15*time.Second, "How often balances and the delegate are re-read")

	return cmd
}
