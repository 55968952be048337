package query

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"donordash/internal/core"
	"donordash/internal/dataset"
	"donordash/internal/geo"
)

func newTestService(t *testing.T, csv string) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donations.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewService(dataset.NewStore(path))
}

const header = "State,Gift Date,Gift Amount,College,Gift Allocation,Allocation Subcategory\n"

// The end-to-end scenario: one resolved CA row, one unresolved ZZ row.
func TestServiceEndToEnd(t *testing.T) {
	svc := newTestService(t, header+
		"CA,1/2/20,$100,Engineering,Scholarship,Undergraduate\n"+
		"ZZ,1/3/20,200,Law,Building,Library\n")
	ctx := context.Background()

	view, err := svc.ApplyFilters(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Records) != 2 {
		t.Fatalf("cleaned set must keep both rows, got %d", len(view.Records))
	}

	if len(view.ByGeo) != geo.Count() {
		t.Fatalf("geo aggregate has %d rows, expected %d", len(view.ByGeo), geo.Count())
	}
	for _, gt := range view.ByGeo {
		switch gt.Code {
		case "CA":
			if gt.Total != 100 || gt.Count != 1 {
				t.Fatalf("CA = %+v", gt)
			}
		default:
			if gt.Total != 0 || gt.Count != 0 {
				t.Fatalf("%s expected zero totals, got %+v", gt.Code, gt)
			}
		}
	}

	// The unresolved ZZ row still shows up in the by-college aggregate.
	found := false
	for _, ct := range view.ByCollege {
		if ct.Key == "Law" {
			found = true
			if ct.Total != 200 {
				t.Fatalf("Law = %v, expected 200", ct.Total)
			}
		}
	}
	if !found {
		t.Fatal("unresolved row missing from by-college aggregate")
	}
}

func TestServiceCategoryOptions(t *testing.T) {
	svc := newTestService(t, header+
		"CA,1/2/20,10,Law,Building,Library\n"+
		"TX,1/3/20,20,Arts,Building,Library\n"+
		"CA,1/4/20,30,Law,Building,Library\n")
	ctx := context.Background()

	opts, err := svc.CategoryOptions(ctx, core.ColCollege)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 3 || opts[0] != All || opts[1] != "Arts" || opts[2] != "Law" {
		t.Fatalf("options = %v, expected [All Arts Law]", opts)
	}

	if _, err := svc.CategoryOptions(ctx, "Donor Name"); !errors.Is(err, core.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestServiceCleaningSummary(t *testing.T) {
	svc := newTestService(t, header+
		"CA,1/2/20,$100,Engineering,Scholarship,Undergraduate\n"+
		"CA,bogus,50,Law,Building,Library\n"+
		"NY,1/4/20,N/A,Arts,Building,Library\n")

	summary, err := svc.CleaningSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.RowsRead != 3 || summary.RowsKept != 1 {
		t.Fatalf("summary = %+v, expected 3 read / 1 kept", summary)
	}
	if summary.BadDates != 1 || summary.BadAmounts != 1 {
		t.Fatalf("defect counts = %d/%d, expected 1/1", summary.BadDates, summary.BadAmounts)
	}
	if summary.MinAmount != 100 || summary.MaxAmount != 100 {
		t.Fatalf("amount bounds = %v/%v", summary.MinAmount, summary.MaxAmount)
	}
}

func TestServiceFilteredView(t *testing.T) {
	svc := newTestService(t, header+
		"CA,1/2/20,100,Engineering,Scholarship,Undergraduate\n"+
		"TX,1/3/21,200,Law,Building,Library\n")
	ctx := context.Background()

	view, err := svc.ApplyFilters(ctx, []Constraint{{Column: core.ColCollege, Value: "Law"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Records) != 1 || view.Records[0].State != "TX" {
		t.Fatalf("filtered records = %+v", view.Records)
	}
	if len(view.ByYear) != 1 || view.ByYear[0].Key != "2021" || view.ByYear[0].Total != 200 {
		t.Fatalf("by-year aggregate = %+v", view.ByYear)
	}
}
