package interactive

import (
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"github.com/unlock-community/updelegate/internal/usecase"
)

var views = []usecase.StewardView{
	{Steward: domain.Steward{ID: "1", Name: "CeCi Sakura", Address: "0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D", VotingPower: 301570}},
	{Steward: domain.Steward{ID: "5", Name: "Jae Shin", Address: "0xE215A2F256731B3dA911E01f9707d281936519fd", VotingPower: 22.66}, IsCurrentDelegate: true},
}

func TestFuzzySearch(t *testing.T) {
	search := createFuzzySearchFunc(searchKeys(views))

	assert.True(t, search("", 0))
	assert.True(t, search("sakura", 0))
	assert.True(t, search("cs", 0), "fuzzy match on initials")
	assert.True(t, search("0xe215", 1), "addresses are searchable")
	assert.False(t, search("jae", 0))
}

func TestFormatStewardOptions(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	options := formatStewardOptions(views)
	require.Len(t, options, 2)
	assert.Equal(t, "CeCi Sakura (0x38B8...1c5D) 301.6K UP", options[0])
	assert.Equal(t, "Jae Shin (0xE215...19fd) 22.66 UP [current]", options[1])
}

func TestSelectorAdapter_NonInteractive(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})

	_, err := s.SelectSteward(context.Background(), views, "Choose a steward")
	assert.True(t, errors.Is(err, ErrNonInteractive))

	_, err = s.PromptPassword("Password")
	assert.True(t, errors.Is(err, ErrNonInteractive))

	ok, err := s.Confirm("Delegate?")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSelectorAdapter_EmptyRoster(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{})
	_, err := s.SelectSteward(context.Background(), nil, "Choose a steward")
	assert.Error(t, err)
}
