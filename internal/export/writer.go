// Package export serializes accumulated tables to delimited text files,
// one file per table.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/oculab/gazeport/internal/table"
)

// Writer writes tables into a target directory. Writes are atomic: each
// file is written to a temp name and renamed into place.
type Writer struct {
	dir          string
	delimiter    rune
	missingToken string
	gzip         bool
	logger       zerolog.Logger
}

// Options configures a Writer.
type Options struct {
	Dir          string
	Delimiter    rune   // defaults to tab
	MissingToken string // rendered for missing cells; empty is valid
	Gzip         bool   // gzip each output file
}

// NewWriter creates the output directory and returns a writer for it.
func NewWriter(opts Options, logger zerolog.Logger) (*Writer, error) {
	absPath, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = '\t'
	}
	return &Writer{
		dir:          absPath,
		delimiter:    delim,
		missingToken: opts.MissingToken,
		gzip:         opts.Gzip,
		logger:       logger.With().Str("component", "export-writer").Logger(),
	}, nil
}

// WriteAll writes every table in acc to its own file named
// <prefix>_<tableID>.tsv (plus .gz when compressing). Tables are written
// concurrently; the first failure cancels the remaining writes.
func (w *Writer) WriteAll(ctx context.Context, acc *table.Accumulator, prefix string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range acc.TableIDs() {
		id := id
		t, ok := acc.Table(id)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := w.WriteTable(id, prefix, t)
			if err != nil {
				return fmt.Errorf("failed to write table %q: %w", id, err)
			}
			w.logger.Debug().
				Str("table", id).
				Str("path", path).
				Int("rows", t.Rows()).
				Int("columns", len(t.Names())).
				Msg("Wrote table")
			return nil
		})
	}
	return g.Wait()
}

// WriteTable writes one table and returns the final file path.
func (w *Writer) WriteTable(id, prefix string, t *table.Table) (string, error) {
	name := fmt.Sprintf("%s_%s.tsv", prefix, id)
	if w.gzip {
		name += ".gz"
	}
	fullPath := filepath.Join(w.dir, name)

	tmpFile, err := os.CreateTemp(w.dir, ".gazeport-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := w.writeDelimited(tmpFile, t)
	closeErr := tmpFile.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", writeErr
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}
	return fullPath, nil
}

// writeDelimited emits the header row followed by the table rows.
func (w *Writer) writeDelimited(out io.Writer, t *table.Table) error {
	var gz *gzip.Writer
	if w.gzip {
		gz = gzip.NewWriter(out)
		out = gz
	}

	cw := csv.NewWriter(out)
	cw.Comma = w.delimiter

	names := t.Names()
	if err := cw.Write(names); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cols := make([]table.Column, len(names))
	for i, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("missing column %q", name)
		}
		cols[i] = col
	}

	record := make([]string, len(cols))
	for row := 0; row < t.Rows(); row++ {
		for i, col := range cols {
			record[i] = col[row].Render(w.missingToken)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	return nil
}
