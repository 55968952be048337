package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"donordash/internal/core"
	applog "donordash/internal/log"
)

// Dataset is one immutable load of the donations file: the cleaned record
// set plus everything derived once per load.
type Dataset struct {
	Path     string
	ModTime  time.Time
	LoadedAt time.Time
	Gifts    []core.Gift
	Summary  core.CleaningSummary
	// Options maps each filterable column to its ordered distinct values
	// (sorted, without the "All" sentinel; the query layer prepends it).
	Options map[string][]string
}

// Store caches one Dataset per file, keyed by path plus file modification
// time. Concurrent first loads collapse into a single read; a changed mtime
// or an explicit Invalidate forces a fresh load. Cached datasets are treated
// as immutable after load.
type Store struct {
	path string

	mu  sync.Mutex
	cur *Dataset

	group singleflight.Group
}

// NewStore creates a store for the donations file at path. Nothing is read
// until the first Get.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the cached dataset, loading it when absent or when the file
// has changed on disk since the cached load.
func (s *Store) Get() (*Dataset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	s.mu.Lock()
	if s.cur != nil && s.cur.ModTime.Equal(info.ModTime()) {
		ds := s.cur
		s.mu.Unlock()
		return ds, nil
	}
	s.mu.Unlock()

	key := fmt.Sprintf("%s@%d", s.path, info.ModTime().UnixNano())
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.load(info.ModTime())
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Invalidate drops the cached dataset; the next Get reloads from disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}

// Reload invalidates and immediately loads fresh.
func (s *Store) Reload() (*Dataset, error) {
	s.Invalidate()
	return s.Get()
}

func (s *Store) load(modTime time.Time) (*Dataset, error) {
	raw, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	gifts, summary := Clean(raw)

	ds := &Dataset{
		Path:     s.path,
		ModTime:  modTime,
		LoadedAt: time.Now(),
		Gifts:    gifts,
		Summary:  summary,
		Options:  collectOptions(gifts),
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentDataset).
		WithOperation(applog.OpLoad).
		WithCleaning(summary.RowsRead, summary.RowsKept, summary.BadDates, summary.BadAmounts, summary.Unresolved)
	fields[applog.FieldDatasetPath] = s.path
	slog.Info("Loaded donations dataset", fields.ToSlice()...)
	if summary.BadDates > 0 || summary.BadAmounts > 0 {
		slog.Warn("Rows dropped during cleaning",
			applog.FieldBadDates, summary.BadDates,
			applog.FieldBadAmounts, summary.BadAmounts)
	}

	s.mu.Lock()
	s.cur = ds
	s.mu.Unlock()
	return ds, nil
}

// collectOptions builds the per-column distinct value lists, sorted the way
// the sidebar presents them.
func collectOptions(gifts []core.Gift) map[string][]string {
	options := make(map[string][]string, len(core.FilterColumns()))
	for _, col := range core.FilterColumns() {
		seen := map[string]struct{}{}
		var values []string
		for _, g := range gifts {
			v, err := g.ColumnValue(col)
			if err != nil || v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		options[col] = values
	}
	return options
}
