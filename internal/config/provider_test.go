package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

func newTestViper(t *testing.T) (*viper.Viper, string) {
	t.Helper()
	root := t.TempDir()
	v := viper.New()
	v.Set("project_root", root)
	v.Set("data_dir", filepath.Join(root, "data"))
	v.Set("timeout", "30s")
	return v, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestProvider_Defaults(t *testing.T) {
	v, root := newTestViper(t)

	cfg, err := Provider(v)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, "defaults", cfg.ConfigSource)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultTokenAddress, cfg.Token.Address.Hex())
	assert.Equal(t, "UP", cfg.Token.Symbol)
	assert.Equal(t, 18, cfg.Token.Decimals)

	assert.Equal(t, config.WalletKindKeystore, cfg.Wallet.Kind)
	assert.Equal(t, filepath.Join(root, "data", "keystore"), cfg.Wallet.KeystoreDir)
	assert.Equal(t, "updelegate", cfg.Wallet.KeyringService)
	assert.Equal(t, 4*time.Second, cfg.Wallet.PollInterval)

	require.Contains(t, cfg.Networks, "base")
	assert.Equal(t, domain.TargetChainID, cfg.Networks["base"].ChainID)
	assert.Equal(t, "https://basescan.org", cfg.Networks["base"].ExplorerURL)
	require.Contains(t, cfg.Networks, "mainnet")
}

func TestProvider_ConfigFile(t *testing.T) {
	v, root := newTestViper(t)
	t.Setenv("UPDELEGATE_TEST_BASE_RPC", "https://base.example.org")

	writeFile(t, filepath.Join(root, FileName), `
[token]
symbol = "UP"

[wallet]
kind = "rpc"
endpoint = "http://127.0.0.1:1248"
poll_interval = "2s"

[stewards]
file = "stewards.yaml"

[networks.base]
rpc_url = "${UPDELEGATE_TEST_BASE_RPC}"

[networks.optimism]
chain_id = 10
rpc_url = "https://mainnet.optimism.io"
explorer_url = "https://optimistic.etherscan.io"
`)

	cfg, err := Provider(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, FileName), cfg.ConfigSource)
	assert.Equal(t, config.WalletKindRPC, cfg.Wallet.Kind)
	assert.Equal(t, "http://127.0.0.1:1248", cfg.Wallet.Endpoint)
	assert.Equal(t, 2*time.Second, cfg.Wallet.PollInterval)
	assert.Equal(t, "stewards.yaml", cfg.StewardsFile)

	base := cfg.Networks["base"]
	assert.Equal(t, "https://base.example.org", base.RPCURL)
	assert.Equal(t, uint64(8453), base.ChainID)
	assert.Equal(t, "https://basescan.org", base.ExplorerURL)

	op, ok := cfg.NetworkByChainID(10)
	require.True(t, ok)
	assert.Equal(t, "optimism", op.Name)
	assert.Equal(t, []string{"https://optimistic.etherscan.io"}, op.Chain().BlockExplorerURLs)
}

func TestProvider_FlagsOverrideFile(t *testing.T) {
	v, root := newTestViper(t)
	writeFile(t, filepath.Join(root, FileName), `
[wallet]
kind = "rpc"
endpoint = "http://127.0.0.1:1248"
`)
	v.Set("wallet", "keystore")
	v.Set("account", "0x38b826a4426a0d4d9b4377ac57c9af0308281c5d")

	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, config.WalletKindKeystore, cfg.Wallet.Kind)
	assert.Equal(t, "0x38b826a4426a0d4d9b4377ac57c9af0308281c5d", cfg.Wallet.Account)
}

func TestProvider_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(v *viper.Viper, root string)
	}{
		{
			name: "rpc wallet without endpoint",
			setup: func(v *viper.Viper, _ string) {
				v.Set("wallet", "rpc")
			},
		},
		{
			name: "unknown wallet kind",
			setup: func(v *viper.Viper, _ string) {
				v.Set("wallet", "ledger")
			},
		},
		{
			name: "invalid token",
			setup: func(v *viper.Viper, _ string) {
				v.Set("token", "0x1234")
			},
		},
		{
			name: "invalid account",
			setup: func(v *viper.Viper, _ string) {
				v.Set("account", "vitalik.eth")
			},
		},
		{
			name: "unset rpc variable",
			setup: func(v *viper.Viper, root string) {
				writeFile(t, filepath.Join(root, FileName), "[networks.base]\nrpc_url = \"${UPDELEGATE_TEST_UNSET_RPC}\"\n")
			},
		},
		{
			name: "malformed toml",
			setup: func(v *viper.Viper, root string) {
				writeFile(t, filepath.Join(root, FileName), "[wallet\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, root := newTestViper(t)
			tt.setup(v, root)
			_, err := Provider(v)
			assert.Error(t, err)
		})
	}
}

func TestProvider_DotEnv(t *testing.T) {
	v, root := newTestViper(t)
	writeFile(t, filepath.Join(root, ".env"), "UPDELEGATE_TEST_DOTENV_RPC=https://dotenv.example.org\n")
	writeFile(t, filepath.Join(root, FileName), "[networks.base]\nrpc_url = \"${UPDELEGATE_TEST_DOTENV_RPC}\"\n")
	t.Cleanup(func() { os.Unsetenv("UPDELEGATE_TEST_DOTENV_RPC") })

	cfg, err := Provider(v)
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.org", cfg.Networks["base"].RPCURL)
}

func TestDetectEnvVar(t *testing.T) {
	name, ok := DetectEnvVar("${BASE_RPC_URL}")
	assert.True(t, ok)
	assert.Equal(t, "BASE_RPC_URL", name)

	_, ok = DetectEnvVar("https://mainnet.base.org")
	assert.False(t, ok)

	_, ok = DetectEnvVar("https://${HOST}/rpc")
	assert.False(t, ok)
}
