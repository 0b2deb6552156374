package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

// History tables.
var (
	RunsTable = store.Table{
		Name:       "load_runs",
		Columns:    []string{"run_id", "started_at", "duration_ms", "strict", "status", "entities"},
		Types:      []string{"TEXT", "TIMESTAMP", "BIGINT", "BOOLEAN", "TEXT", "TEXT"},
		NotNull:    []bool{true, true, true, true, true, true},
		PrimaryKey: "run_id",
	}
	RejectionsTable = store.Table{
		Name:    "load_rejections",
		Columns: []string{"run_id", "entity", "line", "key", "field", "reason", "message"},
		Types:   []string{"TEXT", "TEXT", "BIGINT", "TEXT", "TEXT", "TEXT", "TEXT"},
		NotNull: []bool{true, true, true, false, false, true, true},
	}
)

// EntityCounts is the per-entity summary stored with a run.
type EntityCounts struct {
	Entity        string `json:"entity"`
	Read          int    `json:"read"`
	Accepted      int    `json:"accepted"`
	Rejected      int    `json:"rejected"`
	Committed     bool   `json:"committed"`
	SkippedReason string `json:"skippedReason,omitempty"`
}

// RunSummary is one row of load_runs.
type RunSummary struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	DurationMS int64          `json:"durationMs"`
	Strict     bool           `json:"strict"`
	Status     string         `json:"status"`
	Entities   []EntityCounts `json:"entities"`
}

// recordHistory writes the run and its rejections. Failures are logged and
// never fail the load.
func (p *Pipeline) recordHistory(ctx context.Context, report *LoadReport) {
	if err := WriteHistory(ctx, p.store, report); err != nil {
		p.logger.Error("load history not recorded", "run_id", report.RunID, "error", err)
	}
}

// WriteHistory stores a load report in load_runs and load_rejections.
func WriteHistory(ctx context.Context, s store.Store, report *LoadReport) error {
	for _, t := range []store.Table{RunsTable, RejectionsTable} {
		if err := s.EnsureTable(ctx, t); err != nil {
			return store.Wrap("ensure", t.Name, err)
		}
	}

	counts := make([]EntityCounts, len(report.Entities))
	for i, e := range report.Entities {
		counts[i] = EntityCounts{
			Entity:        e.Entity,
			Read:          e.Read,
			Accepted:      e.Accepted,
			Rejected:      e.Rejected,
			Committed:     e.Committed,
			SkippedReason: e.SkippedReason,
		}
	}
	entities, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal entity counts: %w", err)
	}

	err = s.Exec(ctx, insertSQL(RunsTable),
		report.RunID,
		report.StartedAt.UTC(),
		report.Duration.Milliseconds(),
		report.Strict,
		report.Status(),
		string(entities),
	)
	if err != nil {
		return store.Wrap("exec", RunsTable.Name, err)
	}

	stmt := insertSQL(RejectionsTable)
	for _, r := range report.Rejections() {
		err := s.Exec(ctx, stmt,
			report.RunID,
			r.Entity,
			int64(r.Line),
			nullable(r.Key),
			nullable(r.Field),
			string(r.Reason),
			r.Message,
		)
		if err != nil {
			return store.Wrap("exec", RejectionsTable.Name, err)
		}
	}
	return nil
}

// ListRuns returns the most recent load runs, newest first. A store that
// never recorded history has no runs.
func ListRuns(ctx context.Context, s store.Store, limit int) ([]RunSummary, error) {
	missing, err := store.MissingTables(ctx, s, RunsTable.Name)
	if err != nil {
		return nil, store.Wrap("query", RunsTable.Name, err)
	}
	if len(missing) > 0 {
		return []RunSummary{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	recs, err := s.Query(ctx, fmt.Sprintf(
		"SELECT run_id, started_at, duration_ms, strict, status, entities FROM %s ORDER BY started_at DESC LIMIT $1",
		store.QuoteIdent(RunsTable.Name),
	), int64(limit))
	if err != nil {
		return nil, store.Wrap("query", RunsTable.Name, err)
	}

	runs := make([]RunSummary, 0, len(recs))
	for _, rec := range recs {
		run := RunSummary{
			RunID:      rec.String("run_id"),
			StartedAt:  rec.Time("started_at"),
			DurationMS: rec.Int64("duration_ms"),
			Strict:     rec.Bool("strict"),
			Status:     rec.String("status"),
		}
		if err := json.Unmarshal([]byte(rec.String("entities")), &run.Entities); err != nil {
			return nil, fmt.Errorf("decode entities of run %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func insertSQL(t store.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = store.QuoteIdent(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		store.QuoteIdent(t.Name), strings.Join(cols, ", "), store.Placeholders(len(cols)))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
