package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

const (
	// DefaultTokenAddress is the Unlock Protocol UP token on Base
	DefaultTokenAddress = "0xaC27fa800955849d6D17cC8952Ba9dD6EAA66187"
	DefaultTokenSymbol  = "UP"

	// DefaultTimeout bounds a whole command, receipt wait included
	DefaultTimeout = 5 * time.Minute

	defaultKeyringService = "updelegate"
	defaultPollInterval   = 4 * time.Second
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	dataDir := expandPath(v.GetString("data_dir"))
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        dataDir,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		ConfigSource:   "defaults",
	}

	// Load .env files first for variable expansion
	loadDotEnv(projectRoot, dataDir)

	file := &config.FileConfig{}
	path, found := v.GetString("config"), false
	if path != "" {
		found = true
	} else {
		path, found = findConfigFile(projectRoot, dataDir)
	}
	if found {
		loaded, err := loadFileConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		file = loaded
		cfg.ConfigSource = path
	}

	token, err := resolveToken(file.Token, v.GetString("token"))
	if err != nil {
		return nil, err
	}
	cfg.Token = token

	wallet, err := resolveWallet(v, file.Wallet, dataDir)
	if err != nil {
		return nil, err
	}
	cfg.Wallet = wallet

	cfg.Networks = resolveNetworks(file.Networks)
	cfg.StewardsFile = firstNonEmpty(expandPath(v.GetString("stewards_file")), file.Stewards.File)

	return cfg, nil
}

func resolveToken(section config.TokenSection, override string) (config.TokenConfig, error) {
	raw := firstNonEmpty(override, section.Address, DefaultTokenAddress)
	addr, err := domain.NormalizeAddress(raw)
	if err != nil {
		return config.TokenConfig{}, fmt.Errorf("invalid token address: %w", err)
	}
	decimals := section.Decimals
	if decimals == 0 {
		decimals = domain.TokenDecimals
	}
	return config.TokenConfig{
		Address:  addr,
		Symbol:   firstNonEmpty(section.Symbol, DefaultTokenSymbol),
		Decimals: decimals,
	}, nil
}

func resolveWallet(v *viper.Viper, section config.WalletSection, dataDir string) (config.WalletConfig, error) {
	wallet := config.WalletConfig{
		Kind:           config.WalletKind(firstNonEmpty(v.GetString("wallet"), section.Kind, string(config.WalletKindKeystore))),
		KeystoreDir:    firstNonEmpty(expandPath(v.GetString("keystore")), section.KeystoreDir, filepath.Join(dataDir, "keystore")),
		Account:        firstNonEmpty(v.GetString("account"), section.Account),
		Endpoint:       firstNonEmpty(v.GetString("endpoint"), section.Endpoint),
		KeyringService: firstNonEmpty(section.KeyringService, defaultKeyringService),
		KeyringBackend: section.KeyringBackend,
		PollInterval:   defaultPollInterval,
	}

	switch wallet.Kind {
	case config.WalletKindKeystore:
	case config.WalletKindRPC:
		if wallet.Endpoint == "" {
			return wallet, fmt.Errorf("wallet kind %q requires an endpoint (--endpoint or [wallet] endpoint)", wallet.Kind)
		}
	default:
		return wallet, fmt.Errorf("unknown wallet kind %q (expected keystore or rpc)", wallet.Kind)
	}

	if wallet.Account != "" && !domain.IsValidAddress(wallet.Account) {
		return wallet, fmt.Errorf("invalid wallet account: %w", domain.ErrInvalidAddress)
	}

	if raw := firstNonEmpty(v.GetString("poll_interval"), section.PollInterval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return wallet, fmt.Errorf("invalid poll interval %q", raw)
		}
		wallet.PollInterval = d
	}

	return wallet, nil
}

// resolveNetworks merges the built-in networks with [networks.<name>] tables
func resolveNetworks(sections map[string]config.NetworkSection) map[string]*config.Network {
	networks := map[string]*config.Network{
		"base":    networkFromChain("base", domain.BaseChain),
		"mainnet": networkFromChain("mainnet", domain.MainnetChain),
	}

	for name, section := range sections {
		network := &config.Network{
			Name:        name,
			ChainID:     section.ChainID,
			RPCURL:      section.RPCURL,
			ExplorerURL: section.ExplorerURL,
			NativeCurrency: domain.NativeCurrency{
				Name:     firstNonEmpty(section.CurrencyName, "Ether"),
				Symbol:   firstNonEmpty(section.CurrencySymbol, "ETH"),
				Decimals: 18,
			},
		}
		if existing, ok := networks[name]; ok {
			if network.ChainID == 0 {
				network.ChainID = existing.ChainID
			}
			if network.ExplorerURL == "" {
				network.ExplorerURL = existing.ExplorerURL
			}
			if network.RPCURL == "" {
				network.RPCURL = existing.RPCURL
			}
		}
		networks[name] = network
	}

	return networks
}

func networkFromChain(name string, chain domain.Chain) *config.Network {
	n := &config.Network{
		Name:           name,
		ChainID:        chain.ID,
		NativeCurrency: chain.NativeCurrency,
	}
	if len(chain.RPCURLs) > 0 {
		n.RPCURL = chain.RPCURLs[0]
	}
	n.ExplorerURL = chain.Explorer()
	return n
}

// FindProjectRoot walks up from current directory to find updelegate.toml,
// falling back to the current directory
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// DefaultDataDir returns the per-user directory holding wallet and history files
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "updelegate")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".updelegate")
	}
	return ".updelegate"
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("UPDELEGATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
