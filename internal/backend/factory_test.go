package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"donordash/internal/dataset"
)

const factoryCSV = `State,Gift Date,Gift Amount,College,Gift Allocation,Allocation Subcategory
CA,1/2/20,$100,Engineering,Scholarship,Undergraduate
TX,1/3/21,250,Law,Building,Library
`

func writeFactoryCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "donations.csv")
	if err := os.WriteFile(path, []byte(factoryCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateMemoryBackend(t *testing.T) {
	path := writeFactoryCSV(t, t.TempDir())

	factory := NewFactory(nil)
	result, err := factory.CreateBackend(context.Background(), Config{
		Type:    MemoryBackend,
		CSVPath: path,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}

	summary, err := result.Backend.CleaningSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.RowsKept != 2 {
		t.Fatalf("RowsKept = %d, expected 2", summary.RowsKept)
	}
	if result.Reloader == nil {
		t.Fatal("memory backend must expose a reloader")
	}
}

func TestCreateMemoryBackendMissingCSV(t *testing.T) {
	factory := NewFactory(nil)
	_, err := factory.CreateBackend(context.Background(), Config{
		Type:    MemoryBackend,
		CSVPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if err == nil {
		t.Fatal("expected startup failure for missing donations file")
	}
	if !errors.Is(err, dataset.ErrLoad) {
		t.Fatalf("err = %v, expected to wrap dataset.ErrLoad", err)
	}
}

func TestCreateSQLiteBackendMissingCSVFreshDB(t *testing.T) {
	dir := t.TempDir()

	factory := NewFactory(nil)
	_, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		CSVPath:      filepath.Join(dir, "missing.csv"),
		SQLiteDBPath: filepath.Join(dir, "donordash.db"),
	})
	if err == nil {
		t.Fatal("expected startup failure: fresh database and no donations file")
	}
	if !errors.Is(err, dataset.ErrLoad) {
		t.Fatalf("err = %v, expected to wrap dataset.ErrLoad", err)
	}
}

func TestCreateSQLiteBackendServesPersistedData(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFactoryCSV(t, dir)
	dbPath := filepath.Join(dir, "donordash.db")

	factory := NewFactory(nil)

	// First start imports the CSV.
	result, err := factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		CSVPath:      csvPath,
		SQLiteDBPath: dbPath,
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if err := result.Cleanup(); err != nil {
		t.Fatal(err)
	}

	// Second start without the CSV serves the previous import.
	if err := os.Remove(csvPath); err != nil {
		t.Fatal(err)
	}
	result, err = factory.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		CSVPath:      csvPath,
		SQLiteDBPath: dbPath,
	})
	if err != nil {
		t.Fatalf("CreateBackend with persisted data: %v", err)
	}
	defer result.Cleanup()

	summary, err := result.Backend.CleaningSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.RowsKept != 2 {
		t.Fatalf("RowsKept = %d, expected 2 from previous import", summary.RowsKept)
	}
}
