package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneymanager/exporter"
)

type TemplateCmd struct {
	Output string `help:"Template workbook to write." short:"o" type:"path" default:"BudgetTemplate.xlsx"`
	Force  bool   `help:"Overwrite an existing file without asking." short:"f"`
}

func (cmd *TemplateCmd) Run(ctx *kong.Context, globals *Globals) error {
	rt, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer rt.report()

	out := cmd.Output

	if _, err := os.Stat(out); err == nil {
		overwrite := cmd.Force
		if !overwrite {
			confirmed, err := promptYesNo(fmt.Sprintf("File %q already exists. Overwrite it?", displayPath(out)))
			if err != nil {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
			overwrite = confirmed
		}
		if !overwrite {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", out)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to access file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := exporter.WriteTemplate(rt.ctx, out); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote template %s", stylePath(ctx.Stdout, out)))
	return nil
}
