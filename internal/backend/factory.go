package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"donordash/internal/amqp"
	"donordash/internal/dataset"
	"donordash/internal/query"
	"donordash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	store := dataset.NewStore(config.CSVPath)
	service := query.NewService(store)

	// Load eagerly: a missing or malformed donations file must abort
	// startup, not surface on the first request.
	ds, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("load donations dataset: %w", err)
	}

	amqpClient := f.dialAMQP(config)

	f.logger.Info("Initialized memory backend",
		"csv_path", config.CSVPath,
		"rows_kept", ds.Summary.RowsKept,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Backend:  service,
		Reloader: &memoryReloader{store: store, amqp: amqpClient, logger: f.logger},
		Cleanup:  closeAMQP(amqpClient),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	amqpClient := f.dialAMQP(config)

	reloader := &sqliteReloader{
		repo:    repo,
		csvPath: config.CSVPath,
		amqp:    amqpClient,
		logger:  f.logger,
	}

	// Seed from the CSV on startup. A missing source file is tolerated only
	// when the database already holds a previous import; a fresh database
	// with nothing to serve must abort startup.
	if err := reloader.Reload(ctx); err != nil {
		summary, serr := repo.CleaningSummary(ctx)
		if serr != nil || summary.RowsRead == 0 {
			repo.Close()
			if amqpClient != nil {
				amqpClient.Close()
			}
			return nil, fmt.Errorf("load donations dataset: %w", err)
		}
		f.logger.Warn("Failed to seed SQLite backend from CSV, serving persisted data",
			"csv_path", config.CSVPath, "error", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	cleanup := func() error {
		var closeErr error
		if amqpClient != nil {
			closeErr = amqpClient.Close()
		}
		if err := repo.Close(); err != nil {
			return err
		}
		return closeErr
	}

	return &Result{
		Backend:  repo,
		Reloader: reloader,
		Cleanup:  cleanup,
	}, nil
}

// dialAMQP connects the optional reload-notification channel. Failure is
// logged and tolerated; the backend works without the export worker.
func (f *DefaultFactory) dialAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without export notifications", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

func closeAMQP(client *amqp.Client) CleanupFunc {
	if client == nil {
		return nil
	}
	return client.Close
}

// memoryReloader re-reads the CSV into the dataset store and notifies the
// export worker.
type memoryReloader struct {
	store  *dataset.Store
	amqp   *amqp.Client
	logger *slog.Logger
}

func (r *memoryReloader) Reload(ctx context.Context) error {
	ds, err := r.store.Reload()
	if err != nil {
		return err
	}
	r.publish(ctx, ds.Path, ds.ModTime, ds.Summary.RowsKept)
	return nil
}

func (r *memoryReloader) publish(ctx context.Context, path string, modTime time.Time, rowsKept int) {
	if r.amqp == nil {
		return
	}
	if err := r.amqp.PublishDatasetReload(ctx, path, modTime, rowsKept); err != nil {
		r.logger.Warn("Failed to publish reload notification", "error", err)
	}
}

// sqliteReloader re-imports the CSV into the gifts table.
type sqliteReloader struct {
	repo    *storage.SQLiteRepository
	csvPath string
	amqp    *amqp.Client
	logger  *slog.Logger
}

func (r *sqliteReloader) Reload(ctx context.Context) error {
	raw, err := dataset.Load(r.csvPath)
	if err != nil {
		return err
	}
	gifts, summary := dataset.Clean(raw)
	if err := r.repo.ReplaceDataset(ctx, gifts, summary); err != nil {
		return err
	}

	modTime := time.Now()
	if info, err := os.Stat(r.csvPath); err == nil {
		modTime = info.ModTime()
	}
	if r.amqp != nil {
		if err := r.amqp.PublishDatasetReload(ctx, r.csvPath, modTime, summary.RowsKept); err != nil {
			r.logger.Warn("Failed to publish reload notification", "error", err)
		}
	}

	r.logger.Info("Imported dataset into SQLite",
		"csv_path", r.csvPath,
		"rows_kept", summary.RowsKept,
		"bad_dates", summary.BadDates,
		"bad_amounts", summary.BadAmounts)
	return nil
}
