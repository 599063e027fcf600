package provider

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/unlock-community/updelegate/internal/domain"
	"gopkg.in/yaml.v3"
)

// ChainsFileName is the registry file under <data>/wallet
const ChainsFileName = "chains.yaml"

type chainsFile struct {
	Active uint64         `yaml:"active"`
	Chains []domain.Chain `yaml:"chains,omitempty"`
}

// ChainRegistry is the keystore wallet's view of known networks. Chains
// added at runtime and the active chain survive restarts.
type ChainRegistry struct {
	mu      sync.RWMutex
	path    string
	builtin map[uint64]domain.Chain
	added   map[uint64]domain.Chain
	active  uint64
}

// NewChainRegistry loads the registry persisted at path on top of the
// configured chains. A missing file starts on defaultChain.
func NewChainRegistry(path string, configured []domain.Chain, defaultChain uint64) (*ChainRegistry, error) {
	r := &ChainRegistry{
		path:    path,
		builtin: make(map[uint64]domain.Chain, len(configured)),
		added:   make(map[uint64]domain.Chain),
		active:  defaultChain,
	}
	for _, c := range configured {
		r.builtin[c.ID] = c
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chain registry: %w", err)
	}

	var file chainsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse chain registry %s: %w", path, err)
	}
	for _, c := range file.Chains {
		r.added[c.ID] = c
	}
	if _, ok := r.lookup(file.Active); ok {
		r.active = file.Active
	}
	return r, nil
}

// Active returns the current chain id
func (r *ChainRegistry) Active() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Get returns a known chain
func (r *ChainRegistry) Get(id uint64) (domain.Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

// Switch makes id the active chain. Unknown ids fail with code 4902.
func (r *ChainRegistry) Switch(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookup(id); !ok {
		return &domain.ProviderError{
			Code:    domain.ProviderCodeChainNotAdded,
			Message: fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", domain.ChainIDHex(id)),
		}
	}
	r.active = id
	return r.save()
}

// Add registers chain and makes it active
func (r *ChainRegistry) Add(chain domain.Chain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builtin[chain.ID]; !ok {
		r.added[chain.ID] = chain
	}
	r.active = chain.ID
	return r.save()
}

// List returns every known chain ordered by id
func (r *ChainRegistry) List() []domain.Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Chain, 0, len(r.builtin)+len(r.added))
	for _, c := range r.builtin {
		out = append(out, c)
	}
	for id, c := range r.added {
		if _, ok := r.builtin[id]; !ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *ChainRegistry) lookup(id uint64) (domain.Chain, bool) {
	if c, ok := r.builtin[id]; ok {
		return c, true
	}
	c, ok := r.added[id]
	return c, ok
}

// save must be called with the write lock held
func (r *ChainRegistry) save() error {
	if r.path == "" {
		return nil
	}
	file := chainsFile{Active: r.active}
	for _, c := range r.added {
		file.Chains = append(file.Chains, c)
	}
	sort.Slice(file.Chains, func(i, j int) bool { return file.Chains[i].ID < file.Chains[j].ID })

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode chain registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create wallet directory: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write chain registry: %w", err)
	}
	return nil
}
