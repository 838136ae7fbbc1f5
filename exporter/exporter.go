// Package exporter writes budget data back to a spreadsheet workbook in the
// layout the loader reads: an Income sheet, a Balance sheet and one sheet
// per expense category. A non-empty transaction log is added as a
// Transactions sheet, which the loader skips when the file is read back.
//
// Example usage:
//
//	exp := exporter.New(exporter.WithPath("july.xlsx"))
//	path, err := exp.Save(ctx, manager.Transactions(), data)
package exporter

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/telemetry"
)

// DefaultPath is the file written by Save when no path is configured.
const DefaultPath = "UserBudgetExport.xlsx"

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// defaultSheet is created by excelize.NewFile.
const defaultSheet = "Sheet1"

// Exporter writes workbooks.
//
// Configure the exporter using functional options passed to New:
//
//	exp := New(WithPath("out.xlsx"))
type Exporter struct {
	// Path is where Save writes the workbook.
	Path string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPath sets the output path used by Save. An empty path keeps the
// default.
func WithPath(path string) Option {
	return func(e *Exporter) {
		if path != "" {
			e.Path = path
		}
	}
}

// New creates a new Exporter with the given options.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		Path: DefaultPath,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Save writes transactions and data to the configured path and returns it.
func (e *Exporter) Save(ctx context.Context, transactions []budget.Transaction, data *budget.Data) (string, error) {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("exporter.save %s", filepath.Base(e.Path)))
	defer timer.End()

	f, err := build(ctx, transactions, data)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(e.Path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", e.Path, err)
	}
	return e.Path, nil
}

// Write streams the workbook to w instead of a file.
func (e *Exporter) Write(ctx context.Context, w io.Writer, transactions []budget.Transaction, data *budget.Data) error {
	timer := telemetry.StartTimer(ctx, "exporter.write")
	defer timer.End()

	f, err := build(ctx, transactions, data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteTemplate writes an empty workbook with zeroed Income and Balance
// sheets and a header-only sheet for every registered category.
func WriteTemplate(ctx context.Context, path string) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("exporter.template %s", filepath.Base(path)))
	defer timer.End()

	data := budget.NewData()
	for _, c := range budget.AllCategories() {
		data.AddCategory(c)
	}

	f, err := build(ctx, nil, data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type sheet struct {
	name     string
	rows     [][]any
	category bool
}

func build(ctx context.Context, transactions []budget.Transaction, data *budget.Data) (*excelize.File, error) {
	if data == nil {
		data = budget.NewData()
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(defaultSheet, budget.SheetIncome); err != nil {
		_ = f.Close()
		return nil, err
	}

	sheets := []sheet{
		{name: budget.SheetIncome, rows: incomeRows(data.Income)},
		{name: budget.SheetBalance, rows: balanceRows(data.Balance)},
	}
	for _, c := range data.Categories() {
		sheets = append(sheets, sheet{name: SheetName(c), rows: lineItemRows(data.Expenses[c]), category: true})
	}
	if len(transactions) > 0 {
		sheets = append(sheets, sheet{name: budget.SheetTransactions, rows: transactionRows(transactions)})
	}

	// Sheet names are case-insensitive within a workbook. The reserved
	// names are claimed even when the Transactions sheet is not written,
	// since the loader never reads them back as categories.
	seen := map[string]bool{
		strings.ToLower(budget.SheetIncome):       true,
		strings.ToLower(budget.SheetBalance):      true,
		strings.ToLower(budget.SheetTransactions): true,
	}
	for _, sh := range sheets {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if sh.category {
			key := strings.ToLower(sh.name)
			if seen[key] {
				_ = f.Close()
				return nil, fmt.Errorf("sheet %q is written twice; rename the category", sh.name)
			}
			seen[key] = true
		}

		if sh.name != budget.SheetIncome {
			if _, err := f.NewSheet(sh.name); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("failed to create sheet %q: %w", sh.name, err)
			}
		}
		if err := writeRows(f, sh.name, sh.rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return f, nil
}

// SheetName is the sheet title for a category: title-cased and cut to the
// workbook limit.
func SheetName(c budget.Category) string {
	name := []rune(c.Title())
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return string(name)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func incomeRows(in budget.Income) [][]any {
	return [][]any{
		{budget.FieldProjectedMonthlyIncome, budget.FieldActualMonthlyIncome},
		{number(in.ProjectedMonthlyIncome), number(in.ActualMonthlyIncome)},
	}
}

func balanceRows(b budget.Balance) [][]any {
	return [][]any{
		{budget.FieldProjectedBalance, budget.FieldActualBalance, budget.FieldDifference},
		{number(b.ProjectedBalance), number(b.ActualBalance), number(b.Difference)},
	}
}

func lineItemRows(items []budget.LineItem) [][]any {
	rows := make([][]any, 0, len(items)+1)
	rows = append(rows, []any{budget.ColumnItem, budget.ColumnProjectedCost, budget.ColumnActualCost})
	for _, item := range items {
		rows = append(rows, []any{item.Item, number(item.ProjectedCost), number(item.ActualCost)})
	}
	return rows
}

func transactionRows(transactions []budget.Transaction) [][]any {
	rows := make([][]any, 0, len(transactions)+1)
	header := make([]any, len(budget.TransactionColumns))
	for i, col := range budget.TransactionColumns {
		header[i] = col
	}
	rows = append(rows, header)

	for _, t := range transactions {
		fields := t.Fields()
		row := make([]any, len(fields))
		for i, field := range fields {
			if d, ok := field.Value.(decimal.Decimal); ok {
				row[i] = number(d)
				continue
			}
			row[i] = field.Value
		}
		rows = append(rows, row)
	}
	return rows
}

// number converts a money value to a spreadsheet numeric cell.
func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
