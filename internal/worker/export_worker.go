// Package worker keeps the SQLite copy and the exported spreadsheet in step
// with the donations file. It consumes reload notifications from AMQP,
// re-imports the CSV, and re-exports the aggregates.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"donordash/internal/amqp"
	"donordash/internal/core"
	"donordash/internal/dataset"
	"donordash/internal/query"
	"donordash/internal/storage"
)

// AggregateExporter receives the unfiltered view after every import. The
// Google Sheets exporter is the production implementation.
type AggregateExporter interface {
	Export(ctx context.Context, view *query.View, summary core.CleaningSummary) error
}

// ExportWorker imports reloaded datasets into SQLite and pushes the
// resulting aggregates to the configured exporter.
type ExportWorker struct {
	storage  *storage.SQLiteRepository
	exporter AggregateExporter
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter AggregateExporter) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		exporter: exporter,
	}
}

// HandleReloadMessage processes a single dataset reload notification: it
// re-reads the CSV named in the message, replaces the SQLite copy, and
// re-exports. Returning an error nacks the message for redelivery.
func (w *ExportWorker) HandleReloadMessage(ctx context.Context, msg *amqp.DatasetReloadMessage) error {
	slog.InfoContext(ctx, "Processing reload message",
		"path", msg.Path,
		"rows_kept", msg.RowsKept,
		"mod_time", msg.ModTime)

	raw, err := dataset.Load(msg.Path)
	if err != nil {
		return fmt.Errorf("load dataset from message: %w", err)
	}
	gifts, summary := dataset.Clean(raw)

	if err := w.storage.ReplaceDataset(ctx, gifts, summary); err != nil {
		return fmt.Errorf("replace dataset in storage: %w", err)
	}

	if summary.RowsKept != msg.RowsKept {
		slog.WarnContext(ctx, "Row count differs from reload notification, file changed since publish",
			"notified", msg.RowsKept,
			"imported", summary.RowsKept)
	}

	return w.ExportAggregates(ctx)
}

// ExportAggregates reads the unfiltered view from storage and pushes every
// aggregate to the exporter. A nil exporter makes this a no-op so the worker
// can run as an import-only mirror.
func (w *ExportWorker) ExportAggregates(ctx context.Context) error {
	if w.exporter == nil {
		slog.InfoContext(ctx, "No exporter configured, skipping aggregate export")
		return nil
	}

	var (
		view    *query.View
		summary core.CleaningSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := w.storage.ApplyFilters(gctx, nil)
		if err != nil {
			return fmt.Errorf("read unfiltered view: %w", err)
		}
		view = v
		return nil
	})
	g.Go(func() error {
		s, err := w.storage.CleaningSummary(gctx)
		if err != nil {
			return fmt.Errorf("read cleaning summary: %w", err)
		}
		summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := w.exporter.Export(ctx, view, summary); err != nil {
		return fmt.Errorf("export aggregates: %w", err)
	}

	slog.InfoContext(ctx, "Exported aggregates",
		"rows", summary.RowsKept,
		"geo_rows", len(view.ByGeo),
		"colleges", len(view.ByCollege))
	return nil
}

// StartupExportCheck re-exports once at worker startup so a restart recovers
// from any reload notification missed while the worker was down.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	summary, err := w.storage.CleaningSummary(ctx)
	if err != nil {
		return fmt.Errorf("read summary for startup check: %w", err)
	}
	if summary.RowsRead == 0 {
		slog.InfoContext(ctx, "No dataset imported yet, skipping startup export")
		return nil
	}
	return w.ExportAggregates(ctx)
}
