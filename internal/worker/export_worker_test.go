package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"donordash/internal/amqp"
	"donordash/internal/core"
	"donordash/internal/query"
	"donordash/internal/storage"
)

const workerCSV = `State,Gift Date,Gift Amount,College,Gift Allocation,Allocation Subcategory
CA,1/2/20,$100,Engineering,Scholarship,Undergraduate
TX,1/3/21,250,Law,Building,Library
`

type fakeExporter struct {
	calls   int
	lastGeo int
	err     error
}

func (f *fakeExporter) Export(_ context.Context, view *query.View, _ core.CleaningSummary) error {
	f.calls++
	f.lastGeo = len(view.ByGeo)
	return f.err
}

func newWorkerFixture(t *testing.T, exporter AggregateExporter) (*ExportWorker, string) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "donations.csv")
	if err := os.WriteFile(csvPath, []byte(workerCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "donordash.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewExportWorker(repo, exporter), csvPath
}

func TestHandleReloadMessage(t *testing.T) {
	exporter := &fakeExporter{}
	w, csvPath := newWorkerFixture(t, exporter)

	msg := &amqp.DatasetReloadMessage{Path: csvPath, RowsKept: 2}
	if err := w.HandleReloadMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleReloadMessage: %v", err)
	}

	if exporter.calls != 1 {
		t.Fatalf("exporter called %d times", exporter.calls)
	}
	if exporter.lastGeo != 51 {
		t.Fatalf("exported %d geo rows, expected 51", exporter.lastGeo)
	}

	summary, err := w.storage.CleaningSummary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.RowsKept != 2 {
		t.Fatalf("imported %d rows, expected 2", summary.RowsKept)
	}
}

func TestHandleReloadMessageMissingFile(t *testing.T) {
	exporter := &fakeExporter{}
	w, csvPath := newWorkerFixture(t, exporter)

	msg := &amqp.DatasetReloadMessage{Path: csvPath + ".gone"}
	if err := w.HandleReloadMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for missing file")
	}
	if exporter.calls != 0 {
		t.Fatal("exporter must not run when the import fails")
	}
}

func TestExportAggregatesPropagatesError(t *testing.T) {
	wantErr := errors.New("sheets unavailable")
	exporter := &fakeExporter{err: wantErr}
	w, csvPath := newWorkerFixture(t, exporter)

	msg := &amqp.DatasetReloadMessage{Path: csvPath, RowsKept: 2}
	if err := w.HandleReloadMessage(context.Background(), msg); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, expected %v", err, wantErr)
	}
}

func TestStartupExportCheckEmptyStorage(t *testing.T) {
	exporter := &fakeExporter{}
	w, _ := newWorkerFixture(t, exporter)

	if err := w.StartupExportCheck(context.Background()); err != nil {
		t.Fatalf("StartupExportCheck: %v", err)
	}
	if exporter.calls != 0 {
		t.Fatal("must skip export when nothing was imported")
	}
}
