// Package telemetry sends anonymous usage events for taskgraph. Nothing is
// sent unless telemetry is enabled in the state file and an API key is
// configured.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StateFileName is stored next to the database in the data directory.
const StateFileName = "telemetry.json"

// State is the persisted opt-in choice and the anonymous install id.
type State struct {
	Enabled     bool   `json:"enabled"`
	AnonymousID string `json:"anonymous_id"`
}

// LoadState reads dir/telemetry.json. A missing file yields a disabled state
// with a fresh anonymous id.
func LoadState(dir string) (*State, error) {
	s := &State{}
	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read telemetry state: %w", err)
	default:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse telemetry state: %w", err)
		}
	}
	if s.AnonymousID == "" {
		s.AnonymousID = uuid.New().String()
	}
	return s, nil
}

// Save writes the state with owner-only permissions.
func (s *State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create telemetry dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal telemetry state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, StateFileName), data, 0o600); err != nil {
		return fmt.Errorf("write telemetry state: %w", err)
	}
	return nil
}

func (s *State) IsEnabled() bool { return s != nil && s.Enabled }
