package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MarketLens/internal/model"
)

// AlertState is the last RSI zone seen per symbol, persisted between runs
// so a restart does not repeat alerts.
type AlertState struct {
	Zones     map[string]model.RSIZone `json:"zones"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// LoadState reads the alert state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*AlertState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &AlertState{Zones: map[string]model.RSIZone{}}, nil
		}
		return nil, err
	}
	var state AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode alert state %s: %w", filePath, err)
	}
	if state.Zones == nil {
		state.Zones = map[string]model.RSIZone{}
	}
	return &state, nil
}

// SaveState writes the alert state to a JSON file via a temp file and rename.
func SaveState(filePath string, state *AlertState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
