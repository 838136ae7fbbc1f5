// Package cli provides common utilities for building command-line interfaces.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/config"
	"github.com/robinvdvleuten/moneymanager/loader"
	"github.com/robinvdvleuten/moneymanager/logging"
	"github.com/robinvdvleuten/moneymanager/output"
	"github.com/robinvdvleuten/moneymanager/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

func printSuccess(w io.Writer, message string) {
	styles := output.NewStyles(w)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		styles.Render(output.RoleGood, successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	styles := output.NewStyles(w)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		styles.Render(output.RoleBad, errorSymbol),
		styles.Render(output.RoleBad, message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		output.NewStyles(w).Render(output.RoleInfo, infoSymbol),
		formatted,
	)
}

// stylePath shortens path for display and colors it for w.
func stylePath(w io.Writer, path string) string {
	return output.NewStyles(w).Render(output.RolePath, displayPath(path))
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	err := form.Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// runtime carries what every command needs: a context with telemetry
// attached, the resolved config and a logger.
type runtime struct {
	ctx    context.Context
	cfg    *config.Config
	logger *log.Logger

	collector telemetry.Collector
	stderr    io.Writer
}

// setup resolves config and logging for a command. Flags override config
// values.
func (g *Globals) setup(kctx *kong.Context) (*runtime, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}

	logger, err := logging.New(kctx.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		ctx:    context.Background(),
		cfg:    cfg,
		logger: logger,
		stderr: kctx.Stderr,
	}

	if g.Telemetry {
		rt.collector = telemetry.NewTimingCollector()
		rt.ctx = telemetry.WithCollector(rt.ctx, rt.collector)
	}

	return rt, nil
}

// report prints the timing tree when telemetry is enabled.
func (rt *runtime) report() {
	if rt.collector == nil {
		return
	}
	_, _ = fmt.Fprintln(rt.stderr)
	rt.collector.Report(rt.stderr, output.NewStyles(rt.stderr))
}

// FileOrStdin accepts either a file path or "-" for stdin.
// For stdin: Filename="<stdin>", Contents populated.
// For files: Filename set, Contents nil (read by loader).
type FileOrStdin struct {
	Filename string
	Contents []byte
}

const stdinName = "<stdin>"

// Decode implements kong.MapperValue.
func (f *FileOrStdin) Decode(ctx *kong.DecodeContext) error {
	var filename string
	if err := ctx.Scan.PopValueInto("filename", &filename); err != nil {
		return err
	}

	if filename == "-" || filename == "" {
		return f.readStdin()
	}

	f.Filename = filename
	f.Contents = nil

	return nil
}

// EnsureContents populates Contents from stdin if Filename is empty.
func (f *FileOrStdin) EnsureContents() error {
	if f.Filename == "" {
		return f.readStdin()
	}
	return nil
}

func (f *FileOrStdin) readStdin() error {
	contents, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read from stdin: %w", err)
	}
	f.Filename = stdinName
	f.Contents = contents
	return nil
}

// IsStdin reports whether the input was read from stdin.
func (f *FileOrStdin) IsStdin() bool {
	return f.Filename == stdinName
}

// GetSourceContent returns source content for error formatting. Only
// delimited text is worth quoting; workbooks return nil.
func (f *FileOrStdin) GetSourceContent() []byte {
	if f.IsStdin() {
		return f.Contents
	}
	if format, err := loader.FormatFromPath(f.Filename); err != nil || format != loader.FormatDelimited {
		return nil
	}
	content, err := os.ReadFile(f.Filename)
	if err != nil {
		return nil
	}
	return content
}

// GetAbsoluteFilename returns the absolute path, or "<stdin>" for stdin.
func (f *FileOrStdin) GetAbsoluteFilename() string {
	if f.IsStdin() {
		return f.Filename
	}
	absPath, err := filepath.Abs(f.Filename)
	if err != nil {
		return f.Filename
	}
	return absPath
}

// Loader returns a session loader for this input. Stdin is read as
// delimited text unless it looks like a workbook.
func (f *FileOrStdin) Loader() loaderFunc {
	if !f.IsStdin() {
		return loader.New().Load
	}

	format := loader.FormatDelimited
	if bytes.HasPrefix(f.Contents, []byte("PK")) {
		format = loader.FormatSpreadsheet
	}
	ldr := loader.New(loader.WithFormat(format))
	contents := f.Contents
	return func(ctx context.Context, path string) (*budget.Data, error) {
		return ldr.LoadBytes(ctx, path, contents)
	}
}

// loaderFunc adapts a function to session.Loader.
type loaderFunc func(ctx context.Context, path string) (*budget.Data, error)

func (fn loaderFunc) Load(ctx context.Context, path string) (*budget.Data, error) {
	return fn(ctx, path)
}

// displayPath shortens absolute paths under the working directory.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
