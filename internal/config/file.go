package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// FileName is the optional project configuration file
const FileName = "updelegate.toml"

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// DetectEnvVar checks if a raw TOML value is a simple ${VAR_NAME} reference.
// Returns the variable name and true if the value is a pure env var reference.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// loadDotEnv loads .env files from the given directories, existing
// environment variables win.
func loadDotEnv(dirs ...string) {
	for _, dir := range dirs {
		for _, name := range []string{".env", ".env.local"} {
			envFile := filepath.Join(dir, name)
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				slog.Warn("failed to load env file", "path", envFile, "error", err)
			}
		}
	}
}

// findConfigFile returns the first updelegate.toml found in dirs
func findConfigFile(dirs ...string) (string, bool) {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// loadFileConfig parses updelegate.toml and expands environment references
func loadFileConfig(path string) (*config.FileConfig, error) {
	var raw config.FileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	raw.Token.Address = os.ExpandEnv(raw.Token.Address)
	raw.Wallet.Endpoint = os.ExpandEnv(raw.Wallet.Endpoint)
	raw.Wallet.KeystoreDir = expandPath(os.ExpandEnv(raw.Wallet.KeystoreDir))
	raw.Stewards.File = expandPath(os.ExpandEnv(raw.Stewards.File))

	for name, network := range raw.Networks {
		if envVar, ok := DetectEnvVar(network.RPCURL); ok && os.Getenv(envVar) == "" {
			return nil, fmt.Errorf("network %s: rpc_url references unset variable %s", name, envVar)
		}
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		network.ExplorerURL = os.ExpandEnv(network.ExplorerURL)
		raw.Networks[name] = network
	}

	return &raw, nil
}

// expandPath resolves a leading ~ to the user's home directory
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
