package logstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rikuzen/chatferry/internal/dialog"
)

// Store keeps one JSON file per local day, keyed by record id. Writes are
// read-modify-write under a single lock, so concurrent merges never clobber
// each other's records.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logstore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Merge writes rec into its day file, replacing any existing record with the
// same id. It reports whether the id was new for that day.
func (s *Store) Merge(rec dialog.LogRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.dayPath(rec.Timestamp)
	day := readDay(path)

	_, exists := day[rec.ID]
	day[rec.ID] = rec

	data, err := json.MarshalIndent(day, "", "\t")
	if err != nil {
		return !exists, fmt.Errorf("logstore: marshal day: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return !exists, fmt.Errorf("logstore: write day: %w", err)
	}
	return !exists, nil
}

// Day returns the raw JSON for a date formatted as 2006-01-02. A missing day
// yields an empty object rather than an error.
func (s *Store) Day(date string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, date+".json"))
	if os.IsNotExist(err) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("logstore: read day: %w", err)
	}
	return data, nil
}

func (s *Store) dayPath(tsMillis int64) string {
	day := time.UnixMilli(tsMillis).Format("2006-01-02")
	return filepath.Join(s.dir, day+".json")
}

// readDay loads a day file, tolerating the trailing commas older log writers
// left behind. Unreadable or unparseable files start the day over empty.
func readDay(path string) map[string]dialog.LogRecord {
	day := make(map[string]dialog.LogRecord)
	data, err := os.ReadFile(path)
	if err != nil {
		return day
	}
	if err := json.Unmarshal(data, &day); err == nil {
		return day
	}
	if err := json.Unmarshal(stripTrailingCommas(data), &day); err != nil {
		return make(map[string]dialog.LogRecord)
	}
	return day
}

// stripTrailingCommas removes commas that directly precede a closing bracket,
// skipping string literals and their escapes.
func stripTrailingCommas(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	escaped := false
	for _, c := range data {
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if c == '}' || c == ']' {
			i := len(out) - 1
			for i >= 0 && (out[i] == ' ' || out[i] == '\t' || out[i] == '\n' || out[i] == '\r') {
				i--
			}
			if i >= 0 && out[i] == ',' {
				out = append(out[:i], out[i+1:]...)
			}
		}
		out = append(out, c)
	}
	return out
}
