// Package loader reads budget files and normalizes them into the canonical
// budget.Data schema. Two source formats are supported:
//   - Spreadsheet workbooks (.xlsx) with Income, Balance and one sheet per
//     expense category
//   - Delimited text (.csv) with Category, Item, Projected Cost and Actual
//     Cost columns
//
// Whatever the source, the result has the same shape: uppercase category
// keys and the same line item fields. Callers never branch on the format.
//
// Loading never touches shared state. Failures are reported as typed errors
// (FileNotFoundError, SchemaMismatchError, ParseError) rather than an empty
// result, so "file missing" and "file empty" can be told apart.
//
// Example usage:
//
//	// Pick the format from the file extension
//	ldr := loader.New()
//	data, err := ldr.Load(ctx, "budget.xlsx")
//
//	// Force a format, e.g. for stdin
//	ldr := loader.New(loader.WithFormat(loader.FormatDelimited))
//	data, err := ldr.LoadReader(ctx, os.Stdin, "<stdin>")
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/telemetry"
)

// Format identifies a supported input format.
type Format int

const (
	// FormatAuto selects the format from the file extension.
	FormatAuto Format = iota
	// FormatSpreadsheet is an .xlsx workbook.
	FormatSpreadsheet
	// FormatDelimited is comma separated text.
	FormatDelimited
)

func (f Format) String() string {
	switch f {
	case FormatSpreadsheet:
		return "xlsx"
	case FormatDelimited:
		return "csv"
	default:
		return "auto"
	}
}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatSpreadsheet, nil
	case ".csv", ".txt":
		return FormatDelimited, nil
	default:
		return FormatAuto, &SchemaMismatchError{
			Path:   path,
			Reason: fmt.Sprintf("unsupported file type %q (expected .xlsx or .csv)", filepath.Ext(path)),
		}
	}
}

// decoder turns the raw bytes of one format into canonical data.
type decoder interface {
	decode(ctx context.Context, r io.Reader, name string) (*budget.Data, error)
}

func decoderFor(f Format) decoder {
	switch f {
	case FormatSpreadsheet:
		return spreadsheetDecoder{}
	case FormatDelimited:
		return delimitedDecoder{}
	default:
		return nil
	}
}

// Loader loads budget files in any supported format.
//
// Configure the loader using functional options passed to New:
//
//	loader := New(WithFormat(FormatDelimited))
type Loader struct {
	// Format forces a decoder. FormatAuto picks one from the extension.
	Format Format
}

// Option configures how files are loaded.
type Option func(*Loader)

// WithFormat forces the given format regardless of file extension.
func WithFormat(f Format) Option {
	return func(l *Loader) {
		l.Format = f
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		Format: FormatAuto,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the file at path and returns its canonical data.
func (l *Loader) Load(ctx context.Context, path string) (*budget.Data, error) {
	format, err := l.resolveFormat(path)
	if err != nil {
		return nil, err
	}

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.%s %s", format, filepath.Base(path)))
	defer timer.End()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return decoderFor(format).decode(ctx, f, path)
}

// LoadBytes decodes in-memory content. name is used for format detection
// and error messages.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (*budget.Data, error) {
	return l.LoadReader(ctx, bytes.NewReader(data), name)
}

// LoadReader decodes content from r. name is used for format detection
// and error messages.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, name string) (*budget.Data, error) {
	format, err := l.resolveFormat(name)
	if err != nil {
		return nil, err
	}

	timer := telemetry.StartTimer(ctx, fmt.Sprintf("loader.%s %s", format, name))
	defer timer.End()

	return decoderFor(format).decode(ctx, r, name)
}

func (l *Loader) resolveFormat(path string) (Format, error) {
	if l.Format == FormatAuto {
		return FormatFromPath(path)
	}
	if decoderFor(l.Format) == nil {
		return FormatAuto, &SchemaMismatchError{
			Path:   path,
			Reason: fmt.Sprintf("unknown format %d", int(l.Format)),
		}
	}
	return l.Format, nil
}

// columnIndex maps trimmed header names to their column positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
