package bindings

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var steward = common.HexToAddress("0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D")

func TestVotesToken_Selectors(t *testing.T) {
	token := NewVotesToken()

	tests := []struct {
		name     string
		data     []byte
		selector string
	}{
		{name: "balanceOf", data: token.PackBalanceOf(steward), selector: "70a08231"},
		{name: "getVotes", data: token.PackGetVotes(steward), selector: "9ab24eb0"},
		{name: "delegates", data: token.PackDelegates(steward), selector: "587cde1e"},
		{name: "delegate", data: token.PackDelegate(steward), selector: "5c19a95c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.data, 36)
			assert.Equal(t, tt.selector, hex.EncodeToString(tt.data[:4]))
			assert.Equal(t, common.LeftPadBytes(steward.Bytes(), 32), tt.data[4:])

			name, err := token.MethodName(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestVotesToken_Unpack(t *testing.T) {
	token := NewVotesToken()

	balance, _ := new(big.Int).SetString("301570123400000000000000", 10)
	got, err := token.UnpackBalanceOf(math.U256Bytes(new(big.Int).Set(balance)))
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(got))

	votes, err := token.UnpackGetVotes(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, int64(0), votes.Int64())

	delegate, err := token.UnpackDelegates(common.LeftPadBytes(steward.Bytes(), 32))
	require.NoError(t, err)
	assert.Equal(t, steward, delegate)

	_, err = token.UnpackBalanceOf([]byte{0x01})
	assert.Error(t, err)
}

func TestVotesToken_DecodeArgs(t *testing.T) {
	token := NewVotesToken()

	name, args, err := token.DecodeArgs(token.PackDelegate(steward))
	require.NoError(t, err)
	assert.Equal(t, "delegate", name)
	require.Len(t, args, 1)
	assert.Equal(t, steward, args[0])

	_, err = token.MethodName([]byte{0xde, 0xad})
	assert.Error(t, err)

	_, err = token.MethodName([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Error(t, err)
}
