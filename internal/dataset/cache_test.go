package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleCSV = `State,Gift Date,Gift Amount,College,Gift Allocation,Allocation Subcategory
CA,1/2/20,$100,Engineering,Scholarship,Undergraduate
TX,1/3/20,250,Law,Building,Library
CA,2/4/20,"$1,000",Engineering,Scholarship,Graduate
ZZ,1/5/20,75,Arts,Building,Library
NY,bad-date,50,Medicine,Scholarship,Undergraduate
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donations.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestLoadMissingColumn(t *testing.T) {
	path := writeSample(t, "State,Gift Date,College\nCA,1/2/20,Engineering\n")
	_, err := Load(path)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestLoadHeaderOnly(t *testing.T) {
	path := writeSample(t, "State,Gift Date,Gift Amount,College,Gift Allocation,Allocation Subcategory\n")
	records, err := Load(path)
	if err != nil {
		t.Fatalf("header-only file must load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty record set, got %d", len(records))
	}
}

func TestStoreGetCachesByModTime(t *testing.T) {
	path := writeSample(t, sampleCSV)
	store := NewStore(path)

	first, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("unchanged file must return the cached dataset")
	}
	if first.Summary.RowsKept != 4 {
		t.Fatalf("expected 4 kept rows, got %d", first.Summary.RowsKept)
	}
}

func TestStoreReloadIsByteIdentical(t *testing.T) {
	path := writeSample(t, sampleCSV)
	store := NewStore(path)

	first, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	reloaded, err := store.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if first == reloaded {
		t.Fatal("Reload must produce a fresh dataset")
	}
	if !reflect.DeepEqual(first.Gifts, reloaded.Gifts) {
		t.Fatal("reloading the same file must yield identical cleaned output")
	}
	if !reflect.DeepEqual(first.Summary, reloaded.Summary) {
		t.Fatal("reloading the same file must yield an identical summary")
	}
}

func TestStoreOptions(t *testing.T) {
	path := writeSample(t, sampleCSV)
	ds, err := NewStore(path).Get()
	if err != nil {
		t.Fatal(err)
	}

	colleges := ds.Options["College"]
	want := []string{"Arts", "Engineering", "Law"}
	if !reflect.DeepEqual(colleges, want) {
		t.Fatalf("College options = %v, expected %v", colleges, want)
	}
	// Unresolved state codes still contribute to non-geo option lists.
	states := ds.Options["State"]
	if !reflect.DeepEqual(states, []string{"CA", "TX", "ZZ"}) {
		t.Fatalf("State options = %v", states)
	}
}
