package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
)

var optimism = domain.Chain{
	ID:                10,
	Name:              "OP Mainnet",
	NativeCurrency:    domain.NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	RPCURLs:           []string{"https://mainnet.optimism.io"},
	BlockExplorerURLs: []string{"https://optimistic.etherscan.io"},
}

func TestChainRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet", ChainsFileName)
	configured := []domain.Chain{domain.BaseChain, domain.MainnetChain}

	reg, err := NewChainRegistry(path, configured, domain.TargetChainID)
	require.NoError(t, err)
	assert.Equal(t, domain.TargetChainID, reg.Active())
	assert.NoFileExists(t, path)

	err = reg.Switch(10)
	require.Error(t, err)
	assert.True(t, domain.IsChainNotAdded(err))
	assert.Equal(t, domain.TargetChainID, reg.Active())

	require.NoError(t, reg.Switch(1))
	require.NoError(t, reg.Add(optimism))
	assert.Equal(t, uint64(10), reg.Active())
	assert.Equal(t, []uint64{1, 10, 8453}, chainIDs(reg.List()))

	t.Run("reload restores added chains and the active chain", func(t *testing.T) {
		reloaded, err := NewChainRegistry(path, configured, domain.TargetChainID)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), reloaded.Active())

		chain, ok := reloaded.Get(10)
		require.True(t, ok)
		assert.Equal(t, optimism, chain)
	})

	t.Run("unknown persisted chain falls back to the default", func(t *testing.T) {
		reloaded, err := NewChainRegistry(path, []domain.Chain{domain.BaseChain}, domain.TargetChainID)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), reloaded.Active(), "added chains are part of the registry")

		other := filepath.Join(t.TempDir(), ChainsFileName)
		require.NoError(t, os.WriteFile(other, []byte("active: 999\n"), 0600))
		reloaded, err = NewChainRegistry(other, configured, domain.TargetChainID)
		require.NoError(t, err)
		assert.Equal(t, domain.TargetChainID, reloaded.Active())
	})

	t.Run("corrupted file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), ChainsFileName)
		require.NoError(t, os.WriteFile(bad, []byte("chains: {"), 0600))
		_, err := NewChainRegistry(bad, configured, domain.TargetChainID)
		assert.Error(t, err)
	})
}

func chainIDs(chains []domain.Chain) []uint64 {
	ids := make([]uint64, len(chains))
	for i, c := range chains {
		ids[i] = c.ID
	}
	return ids
}
