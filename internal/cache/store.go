// Package cache persists per-query search results as one JSON file per query.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/berckan/domainfinder/internal/models"
)

const maxSlugLength = 48

// Store reads and writes query records under a directory
type Store struct {
	dir string
	now func() time.Time
	log *zap.Logger
}

// NewStore creates a Store rooted at dir. The directory is created on first save.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, now: time.Now, log: log}
}

// WithClock replaces the timestamp source used for search entries
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Dir returns the cache directory
func (s *Store) Dir() string {
	return s.dir
}

// NormalizeQuery lower-cases the query and collapses whitespace
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Path returns the file that holds the record for query
func (s *Store) Path(query string) string {
	normalized := NormalizeQuery(query)
	sum := sha256.Sum256([]byte(normalized))
	return filepath.Join(s.dir, slug(normalized)+"_"+hex.EncodeToString(sum[:4])+".json")
}

func slug(normalized string) string {
	var b strings.Builder
	dash := false
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLength {
		out = strings.TrimRight(out[:maxSlugLength], "-")
	}
	if out == "" {
		out = "query"
	}
	return out
}

// Load returns the record for query. A missing, unreadable or corrupt file
// yields an empty record; nothing is written until Save.
func (s *Store) Load(query string) *models.QueryRecord {
	normalized := NormalizeQuery(query)
	path := s.Path(query)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("could not read cache file, starting fresh", zap.String("path", path), zap.Error(err))
		}
		return models.NewQueryRecord(normalized)
	}

	var record models.QueryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.log.Warn("could not decode cache file, starting fresh", zap.String("path", path), zap.Error(err))
		return models.NewQueryRecord(normalized)
	}

	if record.Query == "" {
		record.Query = normalized
	}
	if record.AvailableDomains == nil {
		record.AvailableDomains = []string{}
	}
	if record.UnavailableDomains == nil {
		record.UnavailableDomains = []string{}
	}
	if record.Searches == nil {
		record.Searches = []models.SearchEntry{}
	}
	s.log.Debug("loaded cache record",
		zap.String("query", normalized),
		zap.Int("available", len(record.AvailableDomains)),
		zap.Int("unavailable", len(record.UnavailableDomains)))
	return &record
}

// Save merges one round into record and writes the result, replacing any
// previous file for the query. record is updated even when writing fails.
func (s *Store) Save(query string, newAvailable, newUnavailable []string, record *models.QueryRecord) (string, error) {
	if record == nil {
		record = models.NewQueryRecord(NormalizeQuery(query))
	}
	Merge(record, newAvailable, newUnavailable, s.now())

	path := s.Path(query)
	if err := s.write(path, record); err != nil {
		return path, errors.Wrapf(err, "save cache record for %q", record.Query)
	}
	s.log.Debug("saved cache record", zap.String("path", path))
	return path, nil
}

func (s *Store) write(path string, record *models.QueryRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create cache dir")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode record")
	}

	tmp, err := os.CreateTemp(s.dir, ".record-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replace cache file")
}

// Merge appends a search entry for this round and folds the new domains into
// the cumulative sets. A domain present in both sets afterwards is dropped
// from the unavailable set.
func Merge(record *models.QueryRecord, newAvailable, newUnavailable []string, now time.Time) models.SearchEntry {
	entry := models.SearchEntry{
		Timestamp:             now,
		NewAvailableDomains:   dedupe(nil, newAvailable),
		NewUnavailableDomains: dedupe(nil, newUnavailable),
	}
	record.Searches = append(record.Searches, entry)

	record.AvailableDomains = dedupe(record.AvailableDomains, newAvailable)
	record.UnavailableDomains = dedupe(record.UnavailableDomains, newUnavailable)

	available := make(map[string]struct{}, len(record.AvailableDomains))
	for _, d := range record.AvailableDomains {
		available[strings.ToLower(d)] = struct{}{}
	}
	record.UnavailableDomains = slices.DeleteFunc(record.UnavailableDomains, func(d string) bool {
		_, ok := available[strings.ToLower(d)]
		return ok
	})
	return entry
}

// dedupe appends the domains in add that are not already in base, keeping order
func dedupe(base, add []string) []string {
	out := make([]string, 0, len(base)+len(add))
	seen := make(map[string]struct{}, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, d := range list {
			key := strings.ToLower(strings.TrimSpace(d))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}
