package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainIDHex(t *testing.T) {
	assert.Equal(t, "0x2105", ChainIDHex(8453))
	assert.Equal(t, "0x1", ChainIDHex(1))
}

func TestParseChainID(t *testing.T) {
	id, err := ParseChainID("0x2105")
	require.NoError(t, err)
	assert.Equal(t, uint64(8453), id)

	id, err = ParseChainID("0x01")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = ParseChainID("8453")
	assert.Error(t, err)

	_, err = ParseChainID("0xzz")
	assert.Error(t, err)
}

func TestAddChainParams_RoundTrip(t *testing.T) {
	params := BaseChain.AddParams()
	assert.Equal(t, "0x2105", params.ChainID)
	assert.Equal(t, "Base", params.ChainName)

	chain, err := params.Chain()
	require.NoError(t, err)
	assert.Equal(t, BaseChain, chain)

	params.RPCURLs = nil
	_, err = params.Chain()
	assert.Error(t, err)
}

func TestChain_TxURL(t *testing.T) {
	assert.Equal(t, "https://basescan.org/tx/0xabc", BaseChain.TxURL("0xabc"))
	assert.Equal(t, "", Chain{}.TxURL("0xabc"))
}

func TestSessionState_Network(t *testing.T) {
	base, mainnet := TargetChainID, uint64(1)

	assert.True(t, SessionState{ChainID: &base}.OnTargetNetwork())
	assert.False(t, SessionState{ChainID: &base}.NetworkMismatch())
	assert.True(t, SessionState{ChainID: &mainnet}.NetworkMismatch())
	assert.False(t, SessionState{}.NetworkMismatch())
	assert.False(t, SessionState{}.OnTargetNetwork())
}

func TestProviderErrorClassification(t *testing.T) {
	err := fmt.Errorf("failed to switch network: %w", &ProviderError{Code: ProviderCodeChainNotAdded, Message: "Unrecognized chain ID"})
	assert.True(t, IsChainNotAdded(err))
	assert.False(t, IsUserRejected(err))

	assert.True(t, IsUserRejected(&ProviderError{Code: ProviderCodeUserRejected}))
	assert.False(t, IsChainNotAdded(errors.New("boom")))
}
