// Package source reads the CSV datasets of a load from a directory.
//
// Each registered entity is read from <dir>/<entity>.csv. Files pass through
// BOM skipping, UTF-8 sanitizing and a size limit before parsing, and cells
// keep their raw text: conversion and validation belong to the pipeline.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// DefaultMaxFileSize is the size limit used when Options.MaxFileSize is zero.
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// MaxHeaderSearchRows is how many leading rows are searched for the header.
// Some exports put a title or a timestamp above it.
var MaxHeaderSearchRows = 20

// ContextCheckInterval is how many rows are parsed between cancellation checks.
var ContextCheckInterval = 100

// Options configures a read.
type Options struct {
	MaxFileSize int64 // 0 means DefaultMaxFileSize, negative disables the limit
	Logger      *slog.Logger
}

func (o Options) maxSize() int64 {
	if o.MaxFileSize == 0 {
		return DefaultMaxFileSize
	}
	return o.MaxFileSize
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Dataset is the parsed content of one source file.
type Dataset struct {
	Entity  string
	Path    string
	Header  []string
	Records []core.RawRecord
	Bytes   int64
}

// FileName returns the source file name of an entity.
func FileName(entity string) string {
	return entity + ".csv"
}

// ReadDir reads the source file of every registered entity in dir.
// The first unreadable file aborts the read with a *core.SourceReadError.
func ReadDir(ctx context.Context, dir string, opts Options) (map[string][]core.RawRecord, error) {
	datasets := make(map[string][]core.RawRecord)
	for _, def := range core.All() {
		ds, err := ReadFile(ctx, def, filepath.Join(dir, FileName(def.Name)), opts)
		if err != nil {
			return nil, err
		}
		opts.logger().Info("source read",
			"entity", ds.Entity,
			"path", ds.Path,
			"rows", len(ds.Records),
			"bytes", ds.Bytes,
		)
		datasets[def.Name] = ds.Records
	}
	return datasets, nil
}

// ReadFile reads and parses the source file of one entity.
func ReadFile(ctx context.Context, def core.EntityDef, path string, opts Options) (*Dataset, error) {
	fail := func(err error) error {
		return &core.SourceReadError{Entity: def.Name, Path: path, Err: err}
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fail(core.ErrSourceMissing)
	case err != nil:
		return nil, fail(err)
	case info.IsDir():
		return nil, fail(fmt.Errorf("%s is a directory", path))
	case opts.maxSize() > 0 && info.Size() > opts.maxSize():
		return nil, fail(fmt.Errorf("%w: %d bytes exceeds %d", core.ErrSourceTooLarge, info.Size(), opts.maxSize()))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fail(err)
	}
	defer f.Close()

	ds, err := Parse(ctx, def, f, opts)
	if err != nil {
		return nil, fail(err)
	}
	ds.Path = path
	return ds, nil
}

// Parse reads CSV data for one entity from r.
// Record lines are the physical line numbers of the source, header included.
func Parse(ctx context.Context, def core.EntityDef, r io.Reader, opts Options) (*Dataset, error) {
	counter := wrapSource(r, opts.maxSize())

	cr := csv.NewReader(counter)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, idx, err := findHeader(cr, def)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Entity: def.Name, Header: header}
	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}

		line, _ := cr.FieldPos(0)
		ds.Records = append(ds.Records, core.RawRecord{
			Line:   line,
			Values: rowValues(row, idx),
		})
	}

	ds.Bytes = counter.bytesRead
	return ds, nil
}

// findHeader consumes rows until one holds every required column of def.
func findHeader(cr *csv.Reader, def core.EntityDef) ([]string, core.HeaderIndex, error) {
	var firstErr error
	for i := 0; i < MaxHeaderSearchRows; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}

		idx, err := core.ValidateHeaders(row, def)
		if err == nil {
			return row, idx, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		return nil, nil, core.ErrSourceEmpty
	}
	return nil, nil, fmt.Errorf("%w: %v", core.ErrSourceHeader, firstErr)
}

// rowValues maps every known header column to its raw cell.
// Cells missing from a short row are left out.
func rowValues(row []string, idx core.HeaderIndex) map[string]string {
	values := make(map[string]string, len(idx))
	for name, pos := range idx {
		if name == "" || pos >= len(row) {
			continue
		}
		values[name] = row[pos]
	}
	return values
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
