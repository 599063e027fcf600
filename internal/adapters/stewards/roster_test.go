package stewards

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

func TestRosterRepository_Embedded(t *testing.T) {
	repo := NewRosterRepository(&config.RuntimeConfig{})

	stewards, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stewards, 6)

	ceci := stewards[0]
	assert.Equal(t, "CeCi Sakura", ceci.Name)
	assert.Equal(t, "0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D", ceci.Address)
	assert.Equal(t, float64(301570), ceci.VotingPower)
	assert.Equal(t, 42, ceci.ProposalsVoted)
	assert.Equal(t, 22.66, stewards[4].VotingPower)

	// callers get their own copy
	stewards[0].Name = "changed"
	again, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "CeCi Sakura", again[0].Name)
}

func TestRosterRepository_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stewards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stewards:
  - id: a
    name: Local Steward
    address: "0x9ded35aef86f3c826ff8fe9240f9e7a9fb2094e5"
    votingPower: 10
`), 0644))

	stewards, err := NewRosterRepository(&config.RuntimeConfig{StewardsFile: path}).List(context.Background())
	require.NoError(t, err)
	require.Len(t, stewards, 1)
	assert.Equal(t, "0x9dED35Aef86F3c826Ff8fe9240f9e7a9Fb2094e5", stewards[0].Address, "addresses are checksummed")
}

func TestParseRoster_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "stewards: [\n"},
		{name: "missing name", yaml: "stewards:\n  - id: a\n    address: \"0x9ded35aef86f3c826ff8fe9240f9e7a9fb2094e5\"\n"},
		{name: "duplicate id", yaml: "stewards:\n  - {id: a, name: A, address: \"0x9ded35aef86f3c826ff8fe9240f9e7a9fb2094e5\"}\n  - {id: a, name: B, address: \"0x9ded35aef86f3c826ff8fe9240f9e7a9fb2094e5\"}\n"},
		{name: "bad address", yaml: "stewards:\n  - {id: a, name: A, address: stellaachenbach.eth}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRoster([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}

	_, err := parseRoster([]byte("stewards:\n  - {id: a, name: A, address: \"0x12\"}\n"))
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
}

func TestRosterRepository_MissingFile(t *testing.T) {
	repo := NewRosterRepository(&config.RuntimeConfig{StewardsFile: filepath.Join(t.TempDir(), "nope.yaml")})
	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
