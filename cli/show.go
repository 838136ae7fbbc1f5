package cli

import (
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/dashboard"
	"github.com/robinvdvleuten/moneymanager/exporter"
	"github.com/robinvdvleuten/moneymanager/logging"
	"github.com/robinvdvleuten/moneymanager/session"
)

type ShowCmd struct {
	File  FileOrStdin `help:"Budget file (.xlsx or .csv; use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Limit string      `help:"Spending limit to check the expenses against (overrides budget_limit)." short:"l"`
	Watch bool        `help:"Redraw the dashboard whenever the file changes." short:"w"`
}

func (cmd *ShowCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	rt, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer rt.report()

	limit := rt.cfg.BudgetLimit
	if cmd.Limit != "" {
		limit = cmd.Limit
	}

	// Hold back the dashboard until the limit has been applied, so it is
	// drawn once.
	var live atomic.Bool
	dash := dashboard.New(ctx.Stdout)
	presenter := session.PresenterFunc(func(s session.State) {
		if live.Load() {
			dash.Present(s)
		}
	})

	controller := session.New(
		budget.NewManager(),
		cmd.File.Loader(),
		exporter.New(exporter.WithPath(rt.cfg.ExportPath)),
		session.WithPresenter(presenter),
		session.WithLogger(logging.For(rt.logger, "session")),
		session.WithDebounce(rt.cfg.WatchDebounce),
	)

	if err := controller.Upload(rt.ctx, cmd.File.GetAbsoluteFilename()); err != nil {
		return failLoad(rt, &cmd.File, err)
	}
	if limit != "" {
		if status := controller.SetBudget(rt.ctx, limit); status.Kind == budget.StatusInvalidInput {
			printError(ctx.Stderr, "invalid limit "+limit)
			return NewCommandError(1)
		}
	}

	live.Store(true)
	controller.Refresh(rt.ctx)

	if !cmd.Watch {
		return nil
	}
	if cmd.File.IsStdin() {
		printError(ctx.Stderr, "--watch needs a file, not stdin")
		return NewCommandError(1)
	}

	watchCtx, stop := signal.NotifyContext(rt.ctx, os.Interrupt)
	defer stop()

	if err := controller.Watch(watchCtx, cmd.File.GetAbsoluteFilename()); err != nil {
		return err
	}
	printInfof(ctx.Stderr, "Watching %s (Ctrl+C to stop)", stylePath(ctx.Stderr, cmd.File.GetAbsoluteFilename()))

	<-watchCtx.Done()
	return nil
}
