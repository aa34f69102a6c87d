package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore keeps the ledger as one JSON object per line.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by dir/dcs_decisions.jsonl.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "dcs_decisions.jsonl")}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load reads the ledger. A missing file is an empty ledger.
func (s *FileStore) Load() (Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Ledger{}, nil
		}
		return Ledger{}, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("Skipping invalid JSON line in ledger")
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return Ledger{}, fmt.Errorf("error reading ledger: %w", err)
	}

	log.Debug().Str("path", s.path).Int("count", len(entries)).Msg("Loaded decision ledger")
	return New(entries...), nil
}

// Save replaces the file with the ledger's entries.
func (s *FileStore) Save(l Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, e := range l.entries {
		if err := encoder.Encode(e); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode decision: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}

	log.Info().Str("path", s.path).Int("count", l.Len()).Msg("Decision ledger saved")
	return nil
}

// Reset discards all decisions. Used when a new proposal batch is imported.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to reset ledger: %w", err)
	}
	log.Info().Str("path", s.path).Msg("Decision ledger reset")
	return nil
}
