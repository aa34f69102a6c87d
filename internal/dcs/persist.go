package dcs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// ErrNoEvaluation is returned when no evaluation has been saved yet.
var ErrNoEvaluation = errors.New("no DCS evaluation found: run evaluate first")

// SaveEvaluation writes an evaluation as JSON, replacing any previous one atomically.
func SaveEvaluation(path string, ev Evaluation) error {
	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write evaluation: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename evaluation file: %w", err)
	}

	log.Info().Str("path", path).Int("proposals", len(ev.Proposals)).Msg("Evaluation saved")
	return nil
}

// LoadEvaluation reads an evaluation written by SaveEvaluation.
func LoadEvaluation(path string) (Evaluation, error) {
	var ev Evaluation
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ev, ErrNoEvaluation
		}
		return ev, fmt.Errorf("failed to read evaluation: %w", err)
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("failed to parse evaluation %s: %w", path, err)
	}
	if ev.Proposals == nil {
		ev.Proposals = make(ProposalSet)
	}
	return ev, nil
}
