package query

import (
	"context"
	"fmt"
	"strconv"

	"donordash/internal/core"
	"donordash/internal/dataset"
)

// Service answers dashboard queries from the cached in-memory dataset.
// Every ApplyFilters call is a pure function of the current dataset plus the
// constraints; it owns no state beyond the dataset store.
type Service struct {
	store *dataset.Store
}

func NewService(store *dataset.Store) *Service {
	return &Service{store: store}
}

var (
	_ OptionLister  = (*Service)(nil)
	_ Viewer        = (*Service)(nil)
	_ SummaryReader = (*Service)(nil)
	_ Versioner     = (*Service)(nil)
)

// CategoryOptions returns the All sentinel followed by the sorted distinct
// values observed for the column in the current dataset.
func (s *Service) CategoryOptions(_ context.Context, column string) ([]string, error) {
	if !core.IsFilterColumn(column) {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, column)
	}
	ds, err := s.store.Get()
	if err != nil {
		return nil, err
	}
	values := ds.Options[column]
	out := make([]string, 0, len(values)+1)
	out = append(out, All)
	out = append(out, values...)
	return out, nil
}

// ApplyFilters filters the cleaned set and recomputes all chart aggregates.
func (s *Service) ApplyFilters(_ context.Context, constraints []Constraint) (*View, error) {
	ds, err := s.store.Get()
	if err != nil {
		return nil, err
	}
	records, err := Apply(ds.Gifts, constraints)
	if err != nil {
		return nil, err
	}

	byCollege, err := ByCategory(records, core.ColCollege)
	if err != nil {
		return nil, err
	}
	bySubcategory, err := ByCategory(records, core.ColSubcategory)
	if err != nil {
		return nil, err
	}
	byYear, err := ByCategory(records, core.ColYear)
	if err != nil {
		return nil, err
	}

	return &View{
		Records:       records,
		ByGeo:         ByGeo(records),
		ByCollege:     byCollege,
		BySubcategory: bySubcategory,
		ByYear:        byYear,
	}, nil
}

// CleaningSummary reports the current dataset's cleaning outcome.
func (s *Service) CleaningSummary(_ context.Context) (core.CleaningSummary, error) {
	ds, err := s.store.Get()
	if err != nil {
		return core.CleaningSummary{}, err
	}
	return ds.Summary, nil
}

// DatasetVersion identifies the current load by the file's modification
// time, so a changed file yields a new version on the next Get.
func (s *Service) DatasetVersion(_ context.Context) (string, error) {
	ds, err := s.store.Get()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(ds.ModTime.UnixNano(), 10), nil
}

// Reload forces a fresh load of the underlying file and returns the new
// cleaning summary.
func (s *Service) Reload(_ context.Context) (core.CleaningSummary, error) {
	ds, err := s.store.Reload()
	if err != nil {
		return core.CleaningSummary{}, err
	}
	return ds.Summary, nil
}
