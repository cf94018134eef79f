package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pfrederiksen/matchcentre/internal/logger"
	"github.com/pfrederiksen/matchcentre/internal/match"
)

// ErrRecordNotFound is returned when no record is saved for a match.
var ErrRecordNotFound = errors.New("record not found")

// Storage handles persistence of extracted records and their tables
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Join(dataDir, "records"), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the expanded data directory.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// RecordPath returns the path of the saved record for a match
func (s *Storage) RecordPath(matchID int64) string {
	return filepath.Join(s.dataDir, "records", strconv.FormatInt(matchID, 10)+".json")
}

// MatchDir returns the directory holding a match's exported tables
func (s *Storage) MatchDir(matchID int64) string {
	return filepath.Join(s.dataDir, strconv.FormatInt(matchID, 10))
}

// SaveRecord writes the record as indented JSON with sorted keys and returns its path.
// An existing record for the same match is replaced.
func (s *Storage) SaveRecord(rec *match.MatchRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding record: %w", err)
	}

	path := s.RecordPath(rec.MatchID)
	if err := writeFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("writing record: %w", err)
	}

	return path, nil
}

// LoadRecord loads the saved record of a match
func (s *Storage) LoadRecord(matchID int64) (*match.MatchRecord, error) {
	rec, err := LoadRecordFile(s.RecordPath(matchID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: match %d", ErrRecordNotFound, matchID)
	}
	return rec, err
}

// LoadRecordFile loads a record from any path
func LoadRecordFile(path string) (*match.MatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}

	rec, err := match.DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// ListRecords loads every saved record, ordered by match ID. Files that fail
// to parse are logged and skipped.
func (s *Storage) ListRecords() ([]*match.MatchRecord, error) {
	paths, err := filepath.Glob(filepath.Join(s.dataDir, "records", "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]*match.MatchRecord, 0, len(paths))
	for _, path := range paths {
		rec, err := LoadRecordFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable record", logger.Fields{
				"path": path,
				"err":  err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].MatchID < records[j].MatchID
	})
	return records, nil
}

// writeFileAtomic writes through a temporary file so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
