package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneymanager/exporter"
)

type ConvertCmd struct {
	File   FileOrStdin `help:"Budget file (.xlsx or .csv; use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Output string      `help:"Output workbook (defaults to export_path)." short:"o" type:"path"`
}

func (cmd *ConvertCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	rt, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer rt.report()

	data, err := cmd.File.Loader().Load(rt.ctx, cmd.File.GetAbsoluteFilename())
	if err != nil {
		return failLoad(rt, &cmd.File, err)
	}

	out := rt.cfg.ExportPath
	if cmd.Output != "" {
		out = cmd.Output
	}
	if !strings.EqualFold(filepath.Ext(out), ".xlsx") {
		return fmt.Errorf("output must be an .xlsx file: %s", out)
	}

	path, err := exporter.New(exporter.WithPath(out)).Save(rt.ctx, nil, data)
	if err != nil {
		return err
	}

	rt.logger.Debug("converted", "from", cmd.File.Filename, "to", path, "categories", len(data.Categories()))
	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s", stylePath(ctx.Stdout, path)))

	return nil
}
