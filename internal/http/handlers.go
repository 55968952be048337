package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"donordash/internal/core"
	"donordash/internal/geo"
	applog "donordash/internal/log"
	"donordash/internal/query"
)

// constraintParams maps URL query parameters onto filterable columns.
var constraintParams = map[string]string{
	"state":       core.ColState,
	"college":     core.ColCollege,
	"allocation":  core.ColAllocation,
	"subcategory": core.ColSubcategory,
	"year":        core.ColYear,
	"yearMonth":   core.ColYearMonth,
}

type giftJSON struct {
	State       string  `json:"state"`
	GeoID       string  `json:"geoId,omitempty"`
	Date        string  `json:"giftDate"`
	Amount      float64 `json:"giftAmount"`
	College     string  `json:"college"`
	Allocation  string  `json:"giftAllocation"`
	Subcategory string  `json:"allocationSubcategory"`
	Year        int     `json:"giftYear"`
	YearMonth   string  `json:"giftYearMonth"`
}

type geoTotalJSON struct {
	GeoID string  `json:"geoId"`
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type categoryTotalJSON struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type viewJSON struct {
	Records       []giftJSON          `json:"records"`
	ByGeo         []geoTotalJSON      `json:"byGeo"`
	ByCollege     []categoryTotalJSON `json:"byCollege"`
	BySubcategory []categoryTotalJSON `json:"bySubcategory"`
	ByYear        []categoryTotalJSON `json:"byYear"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleOptions returns the distinct values for one categorical column,
// preceded by the "All" sentinel.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	column := r.URL.Query().Get("column")
	if column == "" {
		http.Error(w, "missing column parameter", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	opts, err := s.options.CategoryOptions(ctx, column)
	if err != nil {
		s.writeError(w, r, err, "list options")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"column":  column,
		"options": opts,
	})
}

// handleView applies the constraints named in the URL query and returns the
// filtered record set plus every chart aggregate.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	var constraints []query.Constraint
	for param, column := range constraintParams {
		if v := r.URL.Query().Get(param); v != "" {
			constraints = append(constraints, query.Constraint{Column: column, Value: v})
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// The cache key carries the dataset version so a reloaded file misses
	// immediately instead of serving the previous dataset until the TTL.
	key := query.Fingerprint(constraints)
	if versioner, ok := s.viewer.(query.Versioner); ok {
		version, err := versioner.DatasetVersion(ctx)
		if err != nil {
			s.writeError(w, r, err, "read dataset version")
			return
		}
		key = version + "|" + key
	}

	if view, ok := s.viewCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toViewJSON(view))
		return
	}

	view, err := s.viewer.ApplyFilters(ctx, constraints)
	if err != nil {
		s.writeError(w, r, err, "apply filters")
		return
	}
	s.viewCache.Set(key, view)

	writeJSON(w, http.StatusOK, toViewJSON(view))
}

// handleSummary reports the cleaning outcome of the current dataset, in the
// sidebar-caption shape: rows kept plus the gift amount range.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	summary, err := s.summary.CleaningSummary(ctx)
	if err != nil {
		s.writeError(w, r, err, "read summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rowsRead":         summary.RowsRead,
		"rowCount":         summary.RowsKept,
		"badDates":         summary.BadDates,
		"badAmounts":       summary.BadAmounts,
		"unresolvedStates": summary.Unresolved,
		"minAmount":        summary.MinAmount,
		"maxAmount":        summary.MaxAmount,
	})
}

// handleStates exposes the static reference table so the front end can join
// the topology client-side.
func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	refs := geo.States()
	out := make([]map[string]string, len(refs))
	for i, ref := range refs {
		out[i] = map[string]string{
			"code":  ref.Code,
			"geoId": ref.FIPS,
			"name":  ref.Name,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleReload invalidates the dataset cache and reloads from disk.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.reloader == nil {
		http.Error(w, "reload not supported by this backend", http.StatusNotImplemented)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := s.reloader.Reload(ctx); err != nil {
		s.writeError(w, r, err, "reload dataset")
		return
	}
	s.viewCache.Flush()

	summary, err := s.summary.CleaningSummary(ctx)
	if err != nil {
		s.writeError(w, r, err, "read summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "reloaded",
		"rowCount": summary.RowsKept,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrUnknownColumn) {
		status = http.StatusBadRequest
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		applog.FieldOperation, op,
		applog.FieldPath, r.URL.Path,
		applog.FieldStatusCode, status,
		applog.FieldError, err.Error())
	http.Error(w, err.Error(), status)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func toViewJSON(view *query.View) viewJSON {
	out := viewJSON{
		Records:       make([]giftJSON, len(view.Records)),
		ByGeo:         make([]geoTotalJSON, len(view.ByGeo)),
		ByCollege:     make([]categoryTotalJSON, len(view.ByCollege)),
		BySubcategory: make([]categoryTotalJSON, len(view.BySubcategory)),
		ByYear:        make([]categoryTotalJSON, len(view.ByYear)),
	}
	for i, g := range view.Records {
		out.Records[i] = giftJSON{
			State:       g.State,
			GeoID:       g.GeoID,
			Date:        g.Date.Format("2006-01-02"),
			Amount:      g.Amount,
			College:     g.College,
			Allocation:  g.Allocation,
			Subcategory: g.Subcategory,
			Year:        g.Year,
			YearMonth:   g.YearMonth,
		}
	}
	for i, gt := range view.ByGeo {
		out.ByGeo[i] = geoTotalJSON{GeoID: gt.GeoID, Code: gt.Code, Name: gt.Name, Total: gt.Total, Count: gt.Count}
	}
	for i, ct := range view.ByCollege {
		out.ByCollege[i] = categoryTotalJSON(ct)
	}
	for i, ct := range view.BySubcategory {
		out.BySubcategory[i] = categoryTotalJSON(ct)
	}
	for i, ct := range view.ByYear {
		out.ByYear[i] = categoryTotalJSON(ct)
	}
	return out
}
