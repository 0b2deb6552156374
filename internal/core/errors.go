package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel causes wrapped by SourceReadError.
var (
	ErrSourceMissing  = errors.New("source file not found")
	ErrSourceTooLarge = errors.New("source file exceeds size limit")
	ErrSourceHeader   = errors.New("source header invalid")
	ErrSourceEmpty    = errors.New("source file has no header row")
)

// SourceReadError means the input for an entity could not be read.
// It aborts the run before any table is touched.
type SourceReadError struct {
	Entity string
	Path   string
	Err    error
}

func (e *SourceReadError) Error() string {
	loc := e.Entity
	if e.Path != "" {
		loc = fmt.Sprintf("%s (%s)", e.Entity, e.Path)
	}
	return fmt.Sprintf("read source %s: %v", loc, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// ValidationFailure is returned in strict mode when at least one entity was
// aborted because of rejected rows. Entities lists the aborted ones.
type ValidationFailure struct {
	Entities []string
	Counts   map[string]int // rejections per aborted entity
}

func (e *ValidationFailure) Error() string {
	names := append([]string(nil), e.Entities...)
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s (%d rejected)", n, e.Counts[n])
	}
	return fmt.Sprintf("strict mode: load aborted for %s", strings.Join(parts, ", "))
}

// StoreAccessError wraps a failure of the persistence layer.
type StoreAccessError struct {
	Op    string // open, replace, query, exec, ensure
	Table string
	Err   error
}

func (e *StoreAccessError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreAccessError) Unwrap() error { return e.Err }

// ReportComputeError means the revenue report could not be computed.
// Table names the missing table, Relationship the join that needs it.
type ReportComputeError struct {
	Table        string
	Relationship string
	Err          error
}

func (e *ReportComputeError) Error() string {
	switch {
	case e.Table != "" && e.Relationship != "":
		return fmt.Sprintf("compute report: table %q missing (needed for %s)", e.Table, e.Relationship)
	case e.Table != "":
		return fmt.Sprintf("compute report: table %q missing", e.Table)
	default:
		return fmt.Sprintf("compute report: %v", e.Err)
	}
}

func (e *ReportComputeError) Unwrap() error { return e.Err }

// ConfigError marks invalid configuration or command usage.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("configuration: %v", e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

// Process exit codes.
const (
	ExitOK         = 0
	ExitConfig     = 1
	ExitSource     = 2
	ExitValidation = 3
	ExitStore      = 4
	ExitReport     = 5
)

// ExitCode maps an error from a run to the process exit code.
// Unknown errors are treated as usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		srcErr    *SourceReadError
		valErr    *ValidationFailure
		storeErr  *StoreAccessError
		reportErr *ReportComputeError
	)
	switch {
	case errors.As(err, &srcErr):
		return ExitSource
	case errors.As(err, &valErr):
		return ExitValidation
	case errors.As(err, &reportErr):
		return ExitReport
	case errors.As(err, &storeErr):
		return ExitStore
	default:
		return ExitConfig
	}
}
