package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegationRecord_Transition(t *testing.T) {
	t.Run("pending to completed attaches hash", func(t *testing.T) {
		r := DelegationRecord{Status: StatusPending}
		require.NoError(t, r.Transition(StatusCompleted, "0xabc"))
		assert.Equal(t, StatusCompleted, r.Status)
		assert.Equal(t, "0xabc", r.TransactionHash)
	})

	t.Run("pending to failed without hash", func(t *testing.T) {
		r := DelegationRecord{Status: StatusPending}
		require.NoError(t, r.Transition(StatusFailed, ""))
		assert.Equal(t, StatusFailed, r.Status)
		assert.Empty(t, r.TransactionHash)
	})

	t.Run("terminal states never change", func(t *testing.T) {
		for _, from := range []DelegationStatus{StatusCompleted, StatusFailed} {
			for _, to := range []DelegationStatus{StatusPending, StatusCompleted, StatusFailed} {
				r := DelegationRecord{Status: from}
				err := r.Transition(to, "0xdef")
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, from, r.Status)
				assert.Empty(t, r.TransactionHash)
			}
		}
	})

	t.Run("pending cannot move to pending", func(t *testing.T) {
		r := DelegationRecord{Status: StatusPending}
		assert.True(t, errors.Is(r.Transition(StatusPending, ""), ErrInvalidTransition))
	})
}

func TestDelegationRecord_JSONShape(t *testing.T) {
	r := DelegationRecord{
		ID:             "1718000000000",
		Timestamp:      1718000000000,
		FromAddress:    "0xD2BC5cb641aE6f7A880c3dD5Aee0450b5210BE23",
		ToAddress:      "0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D",
		DelegationType: DelegationSteward,
		StewardName:    "CeCi Sakura",
		Status:         StatusPending,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "steward", raw["delegationType"])
	assert.Equal(t, "CeCi Sakura", raw["stewardName"])
	assert.Equal(t, "pending", raw["status"])
	assert.NotContains(t, raw, "amount")
	assert.NotContains(t, raw, "transactionHash")
}

func TestDelegationType_Valid(t *testing.T) {
	assert.True(t, DelegationSelf.Valid())
	assert.True(t, DelegationSteward.Valid())
	assert.True(t, DelegationCustom.Valid())
	assert.False(t, DelegationType("partial").Valid())
}

func TestDelegationRecord_IsUndelegation(t *testing.T) {
	assert.True(t, DelegationRecord{ToAddress: "0x0000000000000000000000000000000000000000"}.IsUndelegation())
	assert.False(t, DelegationRecord{ToAddress: "0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D"}.IsUndelegation())
}
