package cli

import (
	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/moneymanager/budget"
)

// DoctorCmd provides doctor utilities for debugging budget files.
type DoctorCmd struct {
	Dump DumpCmd `cmd:"" help:"Dump the canonical data loaded from a budget file."`
}

// DumpCmd prints the data exactly as the loader normalized it.
type DumpCmd struct {
	File FileOrStdin `help:"Budget file (.xlsx or .csv; use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

// dumpLineItem and friends mirror budget.Data with amounts as strings, so
// the dump shows values rather than decimal internals.
type dumpLineItem struct {
	Item          string
	ProjectedCost string
	ActualCost    string
}

type dumpCategory struct {
	Category string
	Items    []dumpLineItem
}

type dumpData struct {
	Income   map[string]string
	Balance  map[string]string
	Expenses []dumpCategory
	Trend    []string
}

// Run executes the dump command.
func (cmd *DumpCmd) Run(ctx *kong.Context, globals *Globals) error {
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

	repr.New(ctx.Stdout, repr.Indent("  ")).Println(newDumpData(data))
	return nil
}

func newDumpData(data *budget.Data) dumpData {
	out := dumpData{
		Income: map[string]string{
			budget.FieldProjectedMonthlyIncome: data.Income.ProjectedMonthlyIncome.String(),
			budget.FieldActualMonthlyIncome:    data.Income.ActualMonthlyIncome.String(),
		},
		Balance: map[string]string{
			budget.FieldProjectedBalance: data.Balance.ProjectedBalance.String(),
			budget.FieldActualBalance:    data.Balance.ActualBalance.String(),
			budget.FieldDifference:       data.Balance.Difference.String(),
		},
	}

	for _, c := range data.Categories() {
		dc := dumpCategory{Category: string(c)}
		for _, item := range data.Expenses[c] {
			dc.Items = append(dc.Items, dumpLineItem{
				Item:          item.Item,
				ProjectedCost: item.ProjectedCost.String(),
				ActualCost:    item.ActualCost.String(),
			})
		}
		out.Expenses = append(out.Expenses, dc)
	}

	for _, v := range data.WeeklyTrend() {
		out.Trend = append(out.Trend, v.String())
	}

	return out
}
