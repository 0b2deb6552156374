package ingest

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// Rejection records one row that was not loaded.
type Rejection struct {
	Entity  string
	Line    int    // source line, or 1-based position for in-memory data
	Key     string // natural key of the row, empty if it could not be read
	Field   string
	Value   string
	Reason  core.Reason
	Message string
}

// Ref returns the row reference used in messages: the key when known,
// otherwise the line.
func (r Rejection) Ref() string {
	if r.Key != "" {
		return r.Key
	}
	return "line " + strconv.Itoa(r.Line)
}

// EntityReport holds the outcome of one entity.
// Accepted + Rejected always equals Read.
type EntityReport struct {
	Entity        string
	Read          int
	Accepted      int
	Rejected      int
	Committed     bool   // the table was replaced with the accepted rows
	Aborted       bool   // not committed; the table keeps its previous contents
	SkippedReason string // why an aborted entity was skipped, if not its own rejections
	Rejections    []Rejection
}

// ByReason counts the rejections per reason code.
func (e EntityReport) ByReason() map[core.Reason]int {
	counts := make(map[core.Reason]int)
	for _, r := range e.Rejections {
		counts[r.Reason]++
	}
	return counts
}

// LoadReport is the result of one pipeline run.
type LoadReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Strict    bool
	Entities  []EntityReport // dependency order
}

// Entity returns the report of one entity, or nil.
func (r *LoadReport) Entity(name string) *EntityReport {
	for i := range r.Entities {
		if r.Entities[i].Entity == name {
			return &r.Entities[i]
		}
	}
	return nil
}

// Totals sums the row counts over all entities.
func (r *LoadReport) Totals() (read, accepted, rejected int) {
	for _, e := range r.Entities {
		read += e.Read
		accepted += e.Accepted
		rejected += e.Rejected
	}
	return read, accepted, rejected
}

// Rejections returns every rejection in dependency order.
func (r *LoadReport) Rejections() []Rejection {
	var all []Rejection
	for _, e := range r.Entities {
		all = append(all, e.Rejections...)
	}
	return all
}

// Status summarises the run: "ok", "partial" (rows rejected) or "aborted".
func (r *LoadReport) Status() string {
	status := "ok"
	for _, e := range r.Entities {
		if e.Aborted {
			return "aborted"
		}
		if e.Rejected > 0 {
			status = "partial"
		}
	}
	return status
}
