package query

import (
	"errors"
	"testing"

	"donordash/internal/core"
)

func sampleGifts() []core.Gift {
	return []core.Gift{
		{State: "CA", GeoID: "06", Amount: 100, College: "Engineering", Allocation: "Scholarship", Subcategory: "Undergraduate", Year: 2020, YearMonth: "2020-01"},
		{State: "CA", GeoID: "06", Amount: 50, College: "Law", Allocation: "Building", Subcategory: "Library", Year: 2020, YearMonth: "2020-02"},
		{State: "TX", GeoID: "48", Amount: 200, College: "Engineering", Allocation: "Scholarship", Subcategory: "Graduate", Year: 2021, YearMonth: "2021-01"},
		{State: "ZZ", GeoID: "", Amount: 75, College: "Arts", Allocation: "Building", Subcategory: "Library", Year: 2021, YearMonth: "2021-03"},
	}
}

func TestApplyEmptyConstraintSet(t *testing.T) {
	gifts := sampleGifts()
	got, err := Apply(gifts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(gifts) {
		t.Fatalf("empty constraint set must return the full set, got %d of %d", len(got), len(gifts))
	}

	// The All sentinel behaves the same as no constraint.
	got, err = Apply(gifts, []Constraint{{Column: core.ColCollege, Value: All}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(gifts) {
		t.Fatalf("All sentinel must not narrow the set, got %d rows", len(got))
	}
}

func TestApplyConjunction(t *testing.T) {
	got, err := Apply(sampleGifts(), []Constraint{
		{Column: core.ColCollege, Value: "Engineering"},
		{Column: core.ColState, Value: "CA"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Amount != 100 {
		t.Fatalf("expected the single CA Engineering row, got %+v", got)
	}
}

func TestApplyUnknownColumn(t *testing.T) {
	_, err := Apply(sampleGifts(), []Constraint{{Column: "Donor Name", Value: "x"}})
	if !errors.Is(err, core.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}

	// Unknown columns fail even when the value is the All sentinel; the
	// column name is a programmer error, not a data condition.
	_, err = Apply(sampleGifts(), []Constraint{{Column: "Donor Name", Value: All}})
	if !errors.Is(err, core.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for sentinel value, got %v", err)
	}
}

func TestApplyStaleValue(t *testing.T) {
	got, err := Apply(sampleGifts(), []Constraint{{Column: core.ColCollege, Value: "Divinity"}})
	if err != nil {
		t.Fatalf("stale value must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("stale value must yield an empty set, got %d rows", len(got))
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]Constraint{
		{Column: core.ColState, Value: "CA"},
		{Column: core.ColCollege, Value: "Engineering"},
	})
	b := Fingerprint([]Constraint{
		{Column: core.ColCollege, Value: "Engineering"},
		{Column: core.ColState, Value: All},
		{Column: core.ColState, Value: "CA"},
	})
	if a != "College=Engineering&State=CA" {
		t.Fatalf("unexpected fingerprint %q", a)
	}
	if a != b {
		t.Fatalf("fingerprint must ignore order and inactive constraints: %q vs %q", a, b)
	}
	if Fingerprint(nil) != "" {
		t.Fatal("empty constraint set must fingerprint to empty string")
	}
}
