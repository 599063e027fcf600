package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"github.com/unlock-community/updelegate/internal/domain/config"
)

// FilePasswordEnvVar unlocks the encrypted-file keyring backend
const FilePasswordEnvVar = "UPDELEGATE_KEYRING_PASSWORD"

// KeyringStore keeps keystore passwords in the platform keyring, keyed by
// account address
type KeyringStore struct {
	cfg  keyring.Config
	open func(keyring.Config) (keyring.Keyring, error)
}

// NewKeyringStore configures the keyring from the wallet settings. The
// keyring itself is opened lazily, on first use.
func NewKeyringStore(cfg *config.RuntimeConfig) *KeyringStore {
	kc := keyring.Config{
		ServiceName:                    cfg.Wallet.KeyringService,
		AllowedBackends:                backends(cfg.Wallet.KeyringBackend),
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
		KeychainSynchronizable:         false,
		FileDir:                        filepath.Join(cfg.DataDir, "wallet", "keyring"),
		FilePasswordFunc:               keyring.FixedStringPrompt(os.Getenv(FilePasswordEnvVar)),
	}
	return &KeyringStore{cfg: kc, open: keyring.Open}
}

// Get returns the stored password, or "" when none is stored
func (s *KeyringStore) Get(account string) (string, error) {
	ring, err := s.ring()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key(account))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keyring: %w", err)
	}
	return string(item.Data), nil
}

// Set stores the password for account
func (s *KeyringStore) Set(account, password string) error {
	ring, err := s.ring()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:         key(account),
		Data:        []byte(password),
		Label:       "updelegate wallet password",
		Description: "Password for the updelegate keystore account " + account,
	})
	if err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// Delete removes the stored password. Missing entries are not an error.
func (s *KeyringStore) Delete(account string) error {
	ring, err := s.ring()
	if err != nil {
		return err
	}
	err = ring.Remove(key(account))
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return fmt.Errorf("failed to remove keyring entry: %w", err)
}

func (s *KeyringStore) ring() (keyring.Keyring, error) {
	if len(s.cfg.AllowedBackends) == 0 {
		return nil, fmt.Errorf("no keyring backend available on %s", runtime.GOOS)
	}
	ring, err := s.open(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return ring, nil
}

func key(account string) string {
	return "wallet-password-" + strings.ToLower(account)
}

// backends returns the configured backend, or the platform defaults
func backends(configured string) []keyring.BackendType {
	if configured != "" {
		return []keyring.BackendType{keyring.BackendType(configured)}
	}
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend}
	case "linux":
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
		}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	default:
		return nil
	}
}
