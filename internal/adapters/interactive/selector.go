package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

// ErrNonInteractive is returned when a prompt is needed but prompting is disabled
var ErrNonInteractive = errors.New("interactive input not available in non-interactive mode")

// SelectorAdapter handles interactive selection and prompts
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectSteward lets the user pick a steward with fuzzy search
func (s *SelectorAdapter) SelectSteward(ctx context.Context, stewards []usecase.StewardView, prompt string) (*domain.Steward, error) {
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}
	if len(stewards) == 0 {
		return nil, fmt.Errorf("no stewards to choose from")
	}

	options := formatStewardOptions(stewards)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, / to search, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(searchKeys(stewards)),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	selected := stewards[index].Steward
	return &selected, nil
}

// PromptPassword reads a password without echoing it
func (s *SelectorAdapter) PromptPassword(label string) (string, error) {
	if s.config.NonInteractive {
		return "", ErrNonInteractive
	}
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password cannot be empty")
			}
			return nil
		},
	}
	return prompt.Run()
}

// Confirm asks a yes/no question. Non-interactive mode answers yes.
func (s *SelectorAdapter) Confirm(label string) (bool, error) {
	if s.config.NonInteractive {
		return true, nil
	}
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// formatStewardOptions creates display strings for steward selection
func formatStewardOptions(stewards []usecase.StewardView) []string {
	options := make([]string, len(stewards))
	for i, s := range stewards {
		name := color.New(color.FgWhite, color.Bold).Sprint(s.Name)
		addr := color.New(color.FgBlue).Sprint(domain.ShortAddress(s.Address))
		power := color.New(color.FgHiBlack).Sprintf("%s UP", domain.FormatVotingPower(s.VotingPower))

		options[i] = fmt.Sprintf("%s (%s) %s", name, addr, power)
		if s.IsCurrentDelegate {
			options[i] += " " + color.New(color.FgGreen).Sprint("[current]")
		}
	}
	return options
}

// searchKeys holds the uncoloured text fuzzy search runs against
func searchKeys(stewards []usecase.StewardView) []string {
	keys := make([]string, len(stewards))
	for i, s := range stewards {
		keys[i] = s.Name + " " + s.Address
	}
	return keys
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

var _ usecase.StewardSelector = (*SelectorAdapter)(nil)
