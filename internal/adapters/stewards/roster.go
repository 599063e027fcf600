package stewards

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/unlock-community/updelegate/internal/domain"
	"github.com/unlock-community/updelegate/internal/domain/config"
	"gopkg.in/yaml.v3"
)

//go:embed roster.yaml
var embeddedRoster []byte

type rosterFile struct {
	Stewards []domain.Steward `yaml:"stewards"`
}

// RosterRepository implements usecase.StewardRepository from YAML
type RosterRepository struct {
	path string // empty means the embedded roster

	once     sync.Once
	stewards []domain.Steward
	err      error
}

// NewRosterRepository creates a repository reading the configured roster
// override, or the embedded roster
func NewRosterRepository(cfg *config.RuntimeConfig) *RosterRepository {
	return &RosterRepository{path: cfg.StewardsFile}
}

// List returns the roster. It is parsed once per process.
func (r *RosterRepository) List(_ context.Context) ([]domain.Steward, error) {
	r.once.Do(func() {
		data := embeddedRoster
		if r.path != "" {
			var err error
			if data, err = os.ReadFile(r.path); err != nil {
				r.err = fmt.Errorf("failed to read steward roster: %w", err)
				return
			}
		}
		r.stewards, r.err = parseRoster(data)
	})
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Steward(nil), r.stewards...), nil
}

func parseRoster(data []byte) ([]domain.Steward, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse steward roster: %w", err)
	}

	seen := make(map[string]bool, len(file.Stewards))
	for i, s := range file.Stewards {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("steward #%d: id and name are required", i+1)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("steward %s: duplicate id", s.ID)
		}
		seen[s.ID] = true

		addr, err := domain.NormalizeAddress(s.Address)
		if err != nil {
			return nil, fmt.Errorf("steward %s: %w", s.ID, err)
		}
		file.Stewards[i].Address = addr.Hex()
	}
	return file.Stewards, nil
}
