// Package storage persists the cleaned donation dataset in SQLite and
// answers the same query ports as the in-memory service, pushing the
// filtering and aggregation into SQL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"donordash/internal/core"
	"donordash/internal/geo"
	"donordash/internal/query"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ query.OptionLister  = (*SQLiteRepository)(nil)
	_ query.Viewer        = (*SQLiteRepository)(nil)
	_ query.SummaryReader = (*SQLiteRepository)(nil)
	_ query.Versioner     = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.seedStateRef(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed state reference: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// seedStateRef mirrors the static reference table into SQLite so the geo
// aggregate's left join can pad missing geographies. The Go table stays the
// single source of truth.
func (r *SQLiteRepository) seedStateRef(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, s := range geo.States() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state_ref (code, fips, name) VALUES (?, ?, ?)
			 ON CONFLICT(code) DO UPDATE SET fips = excluded.fips, name = excluded.name`,
			s.Code, s.FIPS, s.Name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceDataset swaps the persisted gifts for a fresh cleaned load, in one
// transaction so readers never observe a half-replaced dataset.
func (r *SQLiteRepository) ReplaceDataset(ctx context.Context, gifts []core.Gift, summary core.CleaningSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM gifts`); err != nil {
		return fmt.Errorf("clear gifts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO gifts (state, geo_id, gift_date, amount, college, allocation, subcategory, gift_year, gift_year_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range gifts {
		if _, err := stmt.ExecContext(ctx,
			g.State, g.GeoID, g.Date.Format("2006-01-02"), g.Amount,
			g.College, g.Allocation, g.Subcategory, g.Year, g.YearMonth); err != nil {
			return fmt.Errorf("insert gift: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO load_summary (id, rows_read, rows_kept, bad_dates, bad_amounts, unresolved, min_amount, max_amount, loaded_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   rows_read = excluded.rows_read,
		   rows_kept = excluded.rows_kept,
		   bad_dates = excluded.bad_dates,
		   bad_amounts = excluded.bad_amounts,
		   unresolved = excluded.unresolved,
		   min_amount = excluded.min_amount,
		   max_amount = excluded.max_amount,
		   loaded_at = excluded.loaded_at`,
		summary.RowsRead, summary.RowsKept, summary.BadDates, summary.BadAmounts,
		summary.Unresolved, summary.MinAmount, summary.MaxAmount,
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("store load summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Dataset persisted to SQLite",
		"rows", len(gifts),
		"rows_read", summary.RowsRead)
	return nil
}

// giftColumns maps the public categorical column names onto SQL columns.
// Unknown names never reach SQL text; they fail with ErrUnknownColumn first.
var giftColumns = map[string]string{
	core.ColState:       "state",
	core.ColCollege:     "college",
	core.ColAllocation:  "allocation",
	core.ColSubcategory: "subcategory",
	core.ColYear:        "gift_year",
	core.ColYearMonth:   "gift_year_month",
}

func whereClause(constraints []query.Constraint) (string, []any, error) {
	var conds []string
	var args []any
	for _, c := range constraints {
		col, ok := giftColumns[c.Column]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, c.Column)
		}
		if !c.Active() {
			continue
		}
		if c.Column == core.ColYear {
			conds = append(conds, fmt.Sprintf("CAST(%s AS TEXT) = ?", col))
		} else {
			conds = append(conds, col+" = ?")
		}
		args = append(args, c.Value)
	}
	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// CategoryOptions implements query.OptionLister.
func (r *SQLiteRepository) CategoryOptions(ctx context.Context, column string) ([]string, error) {
	col, ok := giftColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownColumn, column)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT DISTINCT CAST(%s AS TEXT) FROM gifts WHERE %s != '' ORDER BY 1`, col, col))
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	out := []string{query.All}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ApplyFilters implements query.Viewer over the persisted dataset.
func (r *SQLiteRepository) ApplyFilters(ctx context.Context, constraints []query.Constraint) (*query.View, error) {
	where, args, err := whereClause(constraints)
	if err != nil {
		return nil, err
	}

	records, err := r.listGifts(ctx, where, args)
	if err != nil {
		return nil, err
	}
	byGeo, err := r.aggregateByGeo(ctx, where, args)
	if err != nil {
		return nil, err
	}

	view := &query.View{Records: records, ByGeo: byGeo}
	for _, agg := range []struct {
		column string
		dest   *[]core.CategoryTotal
	}{
		{core.ColCollege, &view.ByCollege},
		{core.ColSubcategory, &view.BySubcategory},
		{core.ColYear, &view.ByYear},
	} {
		totals, err := r.aggregateByCategory(ctx, agg.column, where, args)
		if err != nil {
			return nil, err
		}
		*agg.dest = totals
	}
	return view, nil
}

func (r *SQLiteRepository) listGifts(ctx context.Context, where string, args []any) ([]core.Gift, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state, geo_id, gift_date, amount, college, allocation, subcategory, gift_year, gift_year_month
		 FROM gifts`+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query gifts: %w", err)
	}
	defer rows.Close()

	var out []core.Gift
	for rows.Next() {
		var g core.Gift
		var date string
		if err := rows.Scan(&g.State, &g.GeoID, &date, &g.Amount,
			&g.College, &g.Allocation, &g.Subcategory, &g.Year, &g.YearMonth); err != nil {
			return nil, fmt.Errorf("scan gift: %w", err)
		}
		if t, err := time.Parse("2006-01-02", date); err == nil {
			g.Date = core.Date{Time: t}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// aggregateByGeo left-joins the reference table against the filtered gifts
// so every recognized geography comes back exactly once, zero-filled when
// nothing matched. Unresolved rows (empty geo_id) never join.
func (r *SQLiteRepository) aggregateByGeo(ctx context.Context, where string, args []any) ([]core.GeoTotal, error) {
	sub := "SELECT * FROM gifts" + where
	rows, err := r.db.QueryContext(ctx,
		`SELECT s.fips, s.code, s.name, COALESCE(SUM(g.amount), 0), COUNT(g.id)
		 FROM state_ref s
		 LEFT JOIN (`+sub+`) g ON g.geo_id = s.fips
		 GROUP BY s.fips, s.code, s.name
		 ORDER BY s.fips`, args...)
	if err != nil {
		return nil, fmt.Errorf("query geo aggregate: %w", err)
	}
	defer rows.Close()

	var out []core.GeoTotal
	for rows.Next() {
		var gt core.GeoTotal
		if err := rows.Scan(&gt.GeoID, &gt.Code, &gt.Name, &gt.Total, &gt.Count); err != nil {
			return nil, fmt.Errorf("scan geo aggregate: %w", err)
		}
		out = append(out, gt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) aggregateByCategory(ctx context.Context, column, where string, args []any) ([]core.CategoryTotal, error) {
	col := giftColumns[column]
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT CAST(%s AS TEXT), SUM(amount), COUNT(*)
		 FROM gifts%s
		 GROUP BY %s
		 ORDER BY MIN(id)`, col, where, col), args...)
	if err != nil {
		return nil, fmt.Errorf("query category aggregate: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Key, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category aggregate: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// CleaningSummary implements query.SummaryReader.
func (r *SQLiteRepository) CleaningSummary(ctx context.Context) (core.CleaningSummary, error) {
	var s core.CleaningSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT rows_read, rows_kept, bad_dates, bad_amounts, unresolved, min_amount, max_amount
		 FROM load_summary WHERE id = 1`).Scan(
		&s.RowsRead, &s.RowsKept, &s.BadDates, &s.BadAmounts, &s.Unresolved, &s.MinAmount, &s.MaxAmount)
	if err == sql.ErrNoRows {
		return core.CleaningSummary{}, nil
	}
	if err != nil {
		return core.CleaningSummary{}, fmt.Errorf("query load summary: %w", err)
	}
	return s, nil
}

// DatasetVersion implements query.Versioner: the import timestamp changes on
// every ReplaceDataset. An empty version means nothing was imported yet.
func (r *SQLiteRepository) DatasetVersion(ctx context.Context) (string, error) {
	var loadedAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT loaded_at FROM load_summary WHERE id = 1`).Scan(&loadedAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query dataset version: %w", err)
	}
	return loadedAt, nil
}
