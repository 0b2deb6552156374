package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/ingest"
	"github.com/JonMunkholm/ecomrevenue/internal/report"
)

// maxRuns caps the limit parameter of /api/runs.
const maxRuns = 100

// ReportResponse is the body of GET /api/report.
type ReportResponse struct {
	GeneratedAt time.Time                   `json:"generatedAt"`
	Rows        []report.CustomerRevenueRow `json:"rows"`
	Summary     report.Summary              `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Query(r.Context(), "SELECT 1 AS ok"); err != nil {
		respondError(w, r, &core.StoreAccessError{Op: "ping", Err: err})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	counts, err := ingest.TableCounts(r.Context(), s.store)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	top, err := parseIntParam(r, "top", s.opts.TopN, 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows, err := s.engine.ComputeCustomerRevenue(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReportResponse{
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
		Summary:     report.ExportSummary(rows, top),
	})
}

func (s *Server) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.engine.ComputeCustomerRevenue(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="customer_revenue_output.csv"`)
	if err := report.WriteCSV(w, rows); err != nil {
		// Headers are already sent.
		return
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", 20, maxRuns)
	if err != nil {
		respondError(w, r, err)
		return
	}
	runs, err := ingest.ListRuns(r.Context(), s.store, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// parseIntParam parses a positive integer query parameter. max > 0 caps the
// value.
func parseIntParam(r *http.Request, name string, defaultVal, max int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return 0, &core.ConfigError{Err: fmt.Errorf("query parameter %s must be a positive integer, got %q", name, val)}
	}
	if max > 0 && i > max {
		i = max
	}
	return i, nil
}
