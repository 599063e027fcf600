package fs

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

func newTestHistoryStore(t *testing.T) (*HistoryStoreAdapter, *LocalStorage) {
	t.Helper()
	cfg := &config.RuntimeConfig{
		DataDir: t.TempDir(),
	}
	storage := NewLocalStorage(cfg)
	return NewHistoryStoreAdapter(storage), storage
}

func sampleHistory() []domain.DelegationRecord {
	return []domain.DelegationRecord{
		{
			ID:             "1718000000001",
			Timestamp:      1718000000001,
			FromAddress:    "0xD2BC5cb641aE6f7A880c3dD5Aee0450b5210BE23",
			ToAddress:      "0x0000000000000000000000000000000000000000",
			DelegationType: domain.DelegationCustom,
			Status:         domain.StatusFailed,
		},
		{
			ID:              "1718000000000",
			Timestamp:       1718000000000,
			FromAddress:     "0xD2BC5cb641aE6f7A880c3dD5Aee0450b5210BE23",
			ToAddress:       "0x38B826a4426A0D4d9b4377AC57C9Af0308281c5D",
			DelegationType:  domain.DelegationSteward,
			StewardName:     "CeCi Sakura",
			Amount:          "12.5",
			TransactionHash: "0x6f1c2b1d8e3a4f5b6c7d8e9f00112233445566778899aabbccddeeff00112233",
			Status:          domain.StatusCompleted,
		},
	}
}

func TestHistoryStore_LoadEmpty(t *testing.T) {
	store, _ := newTestHistoryStore(t)

	records, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestHistoryStore_SaveAndLoad(t *testing.T) {
	store, storage := newTestHistoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleHistory()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), loaded)

	// saving what was loaded leaves the file unchanged
	before, err := os.ReadFile(storage.Path(domain.DelegationHistoryKey))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))
	after, err := os.ReadFile(storage.Path(domain.DelegationHistoryKey))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHistoryStore_FileLayout(t *testing.T) {
	store, storage := newTestHistoryStore(t)
	require.NoError(t, store.Save(context.Background(), nil))

	path := storage.Path(domain.DelegationHistoryKey)
	assert.Equal(t, "unlock-delegation-history.json", filepath.Base(path))
	assert.Equal(t, "storage", filepath.Base(filepath.Dir(path)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestHistoryStore_Corrupted(t *testing.T) {
	store, storage := newTestHistoryStore(t)
	path := storage.Path(domain.DelegationHistoryKey)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestLocalStorage(t *testing.T) {
	_, storage := newTestHistoryStore(t)
	ctx := context.Background()

	var out map[string]string
	err := storage.Get(ctx, "missing", &out)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, storage.Set(ctx, "prefs", map[string]string{"theme": "dark"}))
	require.NoError(t, storage.Get(ctx, "prefs", &out))
	assert.Equal(t, "dark", out["theme"])

	require.NoError(t, storage.Remove(ctx, "prefs"))
	require.NoError(t, storage.Remove(ctx, "prefs"))
	assert.True(t, errors.Is(storage.Get(ctx, "prefs", &out), domain.ErrNotFound))

	assert.Error(t, storage.Set(ctx, "../escape", 1))
	assert.Error(t, storage.Get(ctx, "", &out))
}
