// Package ingest validates raw source records and loads them into the store.
//
// A load processes every registered entity in dependency order. Rows are
// coerced, checked for key uniqueness, checked against the accepted keys of
// their parents and range checked on the typed record. Accepted rows replace
// the entity's table in one atomic step; rejected rows are reported with a
// reason code and never reach the store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

// Options configures a Pipeline.
type Options struct {
	Strict bool // abort an entity on its first rejection
	Audit  bool // record load_runs and load_rejections
	Logger *slog.Logger
}

// Pipeline loads validated datasets into a store.
type Pipeline struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates a pipeline writing to s.
func New(s store.Store, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: s, opts: opts, logger: logger, now: time.Now}
}

// validated is the outcome of validating one entity.
type validated struct {
	def  core.EntityDef
	rows [][]any
	keys keySet
}

// Load validates every dataset and replaces the tables with the accepted rows.
//
// A dataset missing for a registered entity fails with *core.SourceReadError
// before the store is touched. Store failures are fatal. In strict mode an
// entity with rejections is not committed, nor is any entity referencing it,
// and Load returns the report together with *core.ValidationFailure.
func (p *Pipeline) Load(ctx context.Context, datasets map[string][]core.RawRecord) (*LoadReport, error) {
	defs := core.All()
	for _, def := range defs {
		if _, ok := datasets[def.Name]; !ok {
			return nil, &core.SourceReadError{Entity: def.Name, Err: core.ErrSourceMissing}
		}
	}

	report := &LoadReport{
		RunID:     uuid.New().String(),
		StartedAt: p.now(),
		Strict:    p.opts.Strict,
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("load started", "entities", len(defs), "strict", p.opts.Strict)

	accepted := make(map[string]keySet, len(defs))
	results := make([]validated, 0, len(defs))
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, er := p.validate(def, datasets[def.Name], accepted)
		accepted[def.Name] = v.keys
		results = append(results, v)
		report.Entities = append(report.Entities, er)

		logger.Info("entity validated",
			"entity", def.Name,
			"read", er.Read,
			"accepted", er.Accepted,
			"rejected", er.Rejected,
		)
		for _, r := range er.Rejections {
			logger.Debug("row rejected",
				"entity", r.Entity,
				"line", r.Line,
				"key", r.Key,
				"reason", r.Reason,
				"message", r.Message,
			)
		}
	}

	failure := p.decideAborts(report)

	for _, v := range results {
		if err := p.store.EnsureTable(ctx, store.TableFor(v.def)); err != nil {
			return nil, store.Wrap("ensure", v.def.Name, err)
		}
	}

	for i, v := range results {
		er := &report.Entities[i]
		if er.Aborted {
			logger.Warn("entity not committed", "entity", er.Entity, "reason", abortReason(*er))
			continue
		}
		if err := p.store.ReplaceTable(ctx, store.TableFor(v.def), v.rows); err != nil {
			return nil, store.Wrap("replace", v.def.Name, err)
		}
		er.Committed = true
	}

	report.Duration = p.now().Sub(report.StartedAt)
	read, acc, rej := report.Totals()
	logger.Info("load finished",
		"status", report.Status(),
		"read", read,
		"accepted", acc,
		"rejected", rej,
		"duration_ms", report.Duration.Milliseconds(),
	)

	if p.opts.Audit {
		p.recordHistory(ctx, report)
	}

	if failure != nil {
		return report, failure
	}
	return report, nil
}

// validate runs every row check of one entity. parents holds the accepted
// keys of the entities processed before it.
func (p *Pipeline) validate(def core.EntityDef, records []core.RawRecord, parents map[string]keySet) (validated, EntityReport) {
	v := validated{def: def, keys: make(keySet, len(records))}
	er := EntityReport{Entity: def.Name, Read: len(records)}

	pk := def.PrimaryKey()
	fks := def.ForeignKeys()
	rv := core.NewRowValidator(def)

	for i, rec := range records {
		line := rec.Line
		if line == 0 {
			line = i + 1
		}
		reject := func(verr *core.RowValidationError, key string) {
			er.Rejections = append(er.Rejections, Rejection{
				Entity:  def.Name,
				Line:    line,
				Key:     key,
				Field:   verr.Field,
				Value:   verr.Value,
				Reason:  verr.Reason,
				Message: verr.Message,
			})
		}

		row, verr := rv.Coerce(rec)
		if verr != nil {
			reject(verr, rawKey(rec, pk.Name))
			continue
		}
		key := row.String(pk.Name)

		if v.keys.has(key) {
			reject(&core.RowValidationError{
				Field:   pk.Name,
				Value:   key,
				Reason:  core.ReasonDuplicateKey,
				Message: fmt.Sprintf("duplicate key %q, first occurrence kept", key),
			}, key)
			continue
		}

		if verr := checkReferences(row, fks, parents); verr != nil {
			reject(verr, key)
			continue
		}

		record, err := def.Build(row)
		if err != nil {
			reject(&core.RowValidationError{
				Reason:  core.ReasonTypeMismatch,
				Message: err.Error(),
			}, key)
			continue
		}
		if verr := core.CheckRange(record); verr != nil {
			reject(verr, key)
			continue
		}

		v.keys.add(key)
		v.rows = append(v.rows, def.Values(record))
	}

	er.Accepted = len(v.rows)
	er.Rejected = len(er.Rejections)
	return v, er
}

// checkReferences returns the first foreign key that does not resolve to an
// accepted parent row. Null references are allowed.
func checkReferences(row core.Row, fks []core.FieldSpec, parents map[string]keySet) *core.RowValidationError {
	for _, fk := range fks {
		if row[fk.Name] == nil {
			continue
		}
		ref := row.String(fk.Name)
		if parents[fk.References].has(ref) {
			continue
		}
		return &core.RowValidationError{
			Field:   fk.Name,
			Value:   ref,
			Reason:  core.ReasonDanglingReference,
			Message: fmt.Sprintf("%s %q not found in %s", fk.Name, ref, fk.References),
		}
	}
	return nil
}

// decideAborts marks entities that must not be committed in strict mode and
// returns the failure to report, if any.
//
// An abort spreads both ways along foreign keys until nothing changes: a child
// of an aborted entity could reference keys that are not committed, and a
// parent committed under an aborted child could drop keys the child's previous
// rows still reference.
func (p *Pipeline) decideAborts(report *LoadReport) *core.ValidationFailure {
	if !p.opts.Strict {
		return nil
	}

	aborted := make(map[string]bool)
	for i := range report.Entities {
		er := &report.Entities[i]
		if er.Rejected > 0 {
			er.Aborted = true
			aborted[er.Entity] = true
		}
	}
	if len(aborted) == 0 {
		return nil
	}

	for changed := true; changed; {
		changed = false
		for i := range report.Entities {
			er := &report.Entities[i]
			if er.Aborted {
				continue
			}
			if parent := abortedParent(er.Entity, aborted); parent != "" {
				er.SkippedReason = fmt.Sprintf("parent %s aborted", parent)
			} else if child := abortedChild(er.Entity, aborted); child != "" {
				er.SkippedReason = fmt.Sprintf("child %s aborted", child)
			} else {
				continue
			}
			er.Aborted = true
			aborted[er.Entity] = true
			changed = true
		}
	}

	failure := &core.ValidationFailure{Counts: make(map[string]int)}
	for _, er := range report.Entities {
		if er.Aborted {
			failure.Entities = append(failure.Entities, er.Entity)
			failure.Counts[er.Entity] = er.Rejected
		}
	}
	return failure
}

// abortedParent returns the first referenced entity that was aborted.
func abortedParent(entity string, aborted map[string]bool) string {
	def, ok := core.Get(entity)
	if !ok {
		return ""
	}
	for _, fk := range def.ForeignKeys() {
		if aborted[fk.References] {
			return fk.References
		}
	}
	return ""
}

// abortedChild returns the first aborted entity that references entity.
func abortedChild(entity string, aborted map[string]bool) string {
	for _, def := range core.All() {
		if !aborted[def.Name] {
			continue
		}
		for _, fk := range def.ForeignKeys() {
			if fk.References == entity {
				return def.Name
			}
		}
	}
	return ""
}

func abortReason(er EntityReport) string {
	if er.SkippedReason != "" {
		return er.SkippedReason
	}
	return fmt.Sprintf("%d rows rejected", er.Rejected)
}

// rawKey returns the cleaned key cell of a record that failed coercion.
func rawKey(rec core.RawRecord, field string) string {
	for k, v := range rec.Values {
		if strings.EqualFold(strings.TrimSpace(k), field) {
			return core.CleanCell(v)
		}
	}
	return ""
}
