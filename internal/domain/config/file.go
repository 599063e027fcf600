package config

// FileConfig is the raw shape of updelegate.toml
type FileConfig struct {
	Token    TokenSection              `toml:"token"`
	Wallet   WalletSection             `toml:"wallet"`
	Stewards StewardsSection           `toml:"stewards"`
	Networks map[string]NetworkSection `toml:"networks"`
}

// TokenSection is the [token] table
type TokenSection struct {
	Address  string `toml:"address,omitempty"`
	Symbol   string `toml:"symbol,omitempty"`
	Decimals int    `toml:"decimals,omitempty"`
}

// WalletSection is the [wallet] table
type WalletSection struct {
	Kind           string `toml:"kind,omitempty"`
	KeystoreDir    string `toml:"keystore_dir,omitempty"`
	Account        string `toml:"account,omitempty"`
	Endpoint       string `toml:"endpoint,omitempty"`
	PollInterval   string `toml:"poll_interval,omitempty"`
	KeyringService string `toml:"keyring_service,omitempty"`
	KeyringBackend string `toml:"keyring_backend,omitempty"`
}

// StewardsSection is the [stewards] table
type StewardsSection struct {
	File string `toml:"file,omitempty"`
}

// NetworkSection is one [networks.<name>] table
type NetworkSection struct {
	ChainID        uint64 `toml:"chain_id"`
	RPCURL         string `toml:"rpc_url"`
	ExplorerURL    string `toml:"explorer_url,omitempty"`
	CurrencyName   string `toml:"currency_name,omitempty"`
	CurrencySymbol string `toml:"currency_symbol,omitempty"`
}
