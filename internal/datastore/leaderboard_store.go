package datastore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"bambara-asr-leaderboard/internal/logging"
)

// Column order of the persisted CSV. License and Model_URL are newer
// additions; readers tolerate their absence.
var storeColumns = []string{"Model_Name", "WER", "CER", "Combined_Score", "timestamp", "License", "Model_URL"}

// Weights used to synthesize Combined_Score when migrating a legacy table
// that predates the column.
const (
	legacyWERWeight = 0.7
	legacyCERWeight = 0.3
)

// LeaderboardStore persists the ranked table as a row-oriented CSV file,
// keyed uniquely by model name. All read-modify-write cycles go through a
// single mutex so concurrent submissions cannot lose each other's update,
// and every write lands via temp-file + rename so a load never observes a
// partial row.
type LeaderboardStore struct {
	mu   sync.Mutex
	path string
}

// NewLeaderboardStore creates a store backed by the CSV file at path. The
// file is created lazily on first persist; a missing file is a legitimate
// initial state.
func NewLeaderboardStore(path string) *LeaderboardStore {
	return &LeaderboardStore{path: path}
}

// Load reads the persisted table. A missing file yields an empty table. A
// malformed file is logged and degraded to an empty table: an empty
// leaderboard is a valid state, a crashed service is not. Legacy tables
// without a Combined_Score column are migrated in place and rewritten
// before being returned.
func (s *LeaderboardStore) Load() ([]LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *LeaderboardStore) loadLocked() ([]LeaderboardEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []LeaderboardEntry{}, nil
		}
		logging.Log.Warn().Err(err).Str("path", s.path).Msg("failed to open leaderboard file, using empty table")
		return []LeaderboardEntry{}, nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		logging.Log.Warn().Err(err).Str("path", s.path).Msg("failed to parse leaderboard file, using empty table")
		return []LeaderboardEntry{}, nil
	}
	if len(records) == 0 {
		return []LeaderboardEntry{}, nil
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	entries := make([]LeaderboardEntry, 0, len(records)-1)
	for _, rec := range records[1:] {
		entry, err := entryFromRecord(rec, colIndex)
		if err != nil {
			logging.Log.Warn().Err(err).Str("path", s.path).Msg("skipping malformed leaderboard row")
			continue
		}
		entries = append(entries, entry)
	}

	if _, ok := colIndex["Combined_Score"]; !ok {
		// Lazy migration: synthesize the column with the historical weights
		// and rewrite the table so the next reader sees the new schema.
		for i := range entries {
			entries[i].CombinedScore = entries[i].WER*legacyWERWeight + entries[i].CER*legacyCERWeight
		}
		if err := s.persistLocked(entries); err != nil {
			return nil, fmt.Errorf("failed to rewrite leaderboard after Combined_Score migration: %w", err)
		}
		logging.Log.Info().Str("path", s.path).Msg("migrated leaderboard: added Combined_Score column")
	}

	return entries, nil
}

func entryFromRecord(rec []string, colIndex map[string]int) (LeaderboardEntry, error) {
	field := func(name string) string {
		idx, ok := colIndex[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return rec[idx]
	}

	entry := LeaderboardEntry{
		ModelName: field("Model_Name"),
		Timestamp: field("timestamp"),
		License:   License(field("License")),
		ModelURL:  field("Model_URL"),
	}
	if entry.ModelName == "" {
		return entry, fmt.Errorf("row has empty Model_Name")
	}

	var err error
	if entry.WER, err = strconv.ParseFloat(field("WER"), 64); err != nil {
		return entry, fmt.Errorf("bad WER for model %s: %w", entry.ModelName, err)
	}
	if entry.CER, err = strconv.ParseFloat(field("CER"), 64); err != nil {
		return entry, fmt.Errorf("bad CER for model %s: %w", entry.ModelName, err)
	}
	if raw := field("Combined_Score"); raw != "" {
		if entry.CombinedScore, err = strconv.ParseFloat(raw, 64); err != nil {
			return entry, fmt.Errorf("bad Combined_Score for model %s: %w", entry.ModelName, err)
		}
	}
	return entry, nil
}

// Upsert merges entry into table: if a row with the same model name exists
// its metrics, timestamp, license and URL are replaced in place, otherwise
// the entry is appended. Exactly one row per model name exists afterwards.
func Upsert(table []LeaderboardEntry, entry LeaderboardEntry) []LeaderboardEntry {
	for i := range table {
		if table[i].ModelName == entry.ModelName {
			table[i] = entry
			return table
		}
	}
	return append(table, entry)
}

// Persist writes the full table back atomically: the rows are written to a
// temp file in the same directory and renamed over the store path, so a
// concurrent Load sees either the old table or the new one, never a
// partial write.
func (s *LeaderboardStore) Persist(table []LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(table)
}

func (s *LeaderboardStore) persistLocked(table []LeaderboardEntry) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp leaderboard file: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(storeColumns); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write leaderboard header: %w", err)
	}
	for _, entry := range table {
		rec := []string{
			entry.ModelName,
			formatFloat(entry.WER),
			formatFloat(entry.CER),
			formatFloat(entry.CombinedScore),
			entry.Timestamp,
			string(entry.License),
			entry.ModelURL,
		}
		if err := writer.Write(rec); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("failed to write leaderboard row for %s: %w", entry.ModelName, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush leaderboard rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp leaderboard file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace leaderboard file: %w", err)
	}
	return nil
}

// UpsertAndPersist performs load → upsert → persist as one serialized
// operation. This is the single writer path submissions go through;
// without it two racing submissions could both load, both persist, and
// the last writer would silently discard the other's row.
func (s *LeaderboardStore) UpsertAndPersist(entry LeaderboardEntry) ([]LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	table = Upsert(table, entry)
	if err := s.persistLocked(table); err != nil {
		return nil, err
	}
	return table, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
