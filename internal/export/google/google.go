// Package google exports the dashboard aggregates to a Google Spreadsheet
// using Service Account credentials. The worker re-exports after every
// dataset reload so the spreadsheet mirrors the current dataset.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"donordash/internal/core"
	"donordash/internal/query"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name; each aggregate lands on its own "<base> <suffix>" sheet.
	sheetBase string
}

// NewFromEnv creates a Sheets exporter using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Donations"),
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS for auth.
func NewFromEnv(ctx context.Context) (*Exporter, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Donations"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Export rewrites every aggregate sheet from the given unfiltered view. The
// geo sheet always carries all 51 reference rows, zeros included, so chart
// formulas over the full range stay valid.
func (e *Exporter) Export(ctx context.Context, view *query.View, summary core.CleaningSummary) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	if err := e.writeGeoSheet(ctx, view.ByGeo); err != nil {
		return err
	}
	for _, cat := range []struct {
		suffix string
		key    string
		totals []core.CategoryTotal
	}{
		{"Colleges", "College", view.ByCollege},
		{"Subcategories", "Subcategory", view.BySubcategory},
		{"Years", "Year", view.ByYear},
	} {
		if err := e.writeCategorySheet(ctx, cat.suffix, cat.key, cat.totals); err != nil {
			return err
		}
	}
	if err := e.writeSummarySheet(ctx, summary); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Exported aggregates to spreadsheet",
		"spreadsheet_id", e.spreadsheetID,
		"sheet_base", e.sheetBase,
		"geo_rows", len(view.ByGeo))
	return nil
}

func (e *Exporter) writeGeoSheet(ctx context.Context, totals []core.GeoTotal) error {
	values := make([][]any, 0, len(totals)+1)
	values = append(values, []any{"GeoID", "Code", "Name", "Total", "Count"})
	for _, gt := range totals {
		values = append(values, []any{gt.GeoID, gt.Code, gt.Name, gt.Total, gt.Count})
	}
	return e.replaceSheet(ctx, e.sheetBase+" States", values)
}

func (e *Exporter) writeCategorySheet(ctx context.Context, suffix, key string, totals []core.CategoryTotal) error {
	values := make([][]any, 0, len(totals)+1)
	values = append(values, []any{key, "Total", "Count"})
	for _, ct := range totals {
		values = append(values, []any{ct.Key, ct.Total, ct.Count})
	}
	return e.replaceSheet(ctx, e.sheetBase+" "+suffix, values)
}

func (e *Exporter) writeSummarySheet(ctx context.Context, summary core.CleaningSummary) error {
	values := [][]any{
		{"Metric", "Value"},
		{"Rows read", summary.RowsRead},
		{"Rows kept", summary.RowsKept},
		{"Bad dates", summary.BadDates},
		{"Bad amounts", summary.BadAmounts},
		{"Unresolved states", summary.Unresolved},
		{"Min amount", summary.MinAmount},
		{"Max amount", summary.MaxAmount},
	}
	return e.replaceSheet(ctx, e.sheetBase+" Summary", values)
}

// replaceSheet clears the sheet's data range and writes the rows from A1.
func (e *Exporter) replaceSheet(ctx context.Context, sheetName string, values [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheetName)
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", writeRange, err)
	}
	return nil
}
