package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/moneymanager/budget"
)

var lineItemColumns = []string{
	budget.ColumnItem,
	budget.ColumnProjectedCost,
	budget.ColumnActualCost,
}

// IsReservedSheet reports whether name is a summary or log sheet rather
// than an expense category.
func IsReservedSheet(name string) bool {
	switch name {
	case budget.SheetIncome, budget.SheetBalance, budget.SheetTransactions:
		return true
	}
	return false
}

type spreadsheetDecoder struct{}

func (spreadsheetDecoder) decode(ctx context.Context, r io.Reader, name string) (*budget.Data, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Path: name, Err: fmt.Errorf("not a valid workbook: %w", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if !slices.Contains(sheets, budget.SheetIncome) {
		return nil, &SchemaMismatchError{Path: name, Sheet: budget.SheetIncome, Reason: "missing sheet"}
	}
	if !slices.Contains(sheets, budget.SheetBalance) {
		return nil, &SchemaMismatchError{Path: name, Sheet: budget.SheetBalance, Reason: "missing sheet"}
	}

	data := budget.NewData()

	income, err := readRecord(f, name, budget.SheetIncome, []string{
		budget.FieldProjectedMonthlyIncome,
		budget.FieldActualMonthlyIncome,
	})
	if err != nil {
		return nil, err
	}
	data.Income = budget.Income{
		ProjectedMonthlyIncome: income[budget.FieldProjectedMonthlyIncome],
		ActualMonthlyIncome:    income[budget.FieldActualMonthlyIncome],
	}

	balance, err := readRecord(f, name, budget.SheetBalance, []string{
		budget.FieldProjectedBalance,
		budget.FieldActualBalance,
		budget.FieldDifference,
	})
	if err != nil {
		return nil, err
	}
	data.Balance = budget.Balance{
		ProjectedBalance: balance[budget.FieldProjectedBalance],
		ActualBalance:    balance[budget.FieldActualBalance],
		Difference:       balance[budget.FieldDifference],
	}

	for _, sheet := range sheets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if IsReservedSheet(sheet) {
			continue
		}
		if err := readCategory(f, name, sheet, data); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// readRecord reads the header row and the first data row of a summary
// sheet as a field -> value record.
func readRecord(f *excelize.File, path, sheet string, fields []string) (map[string]decimal.Decimal, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Path: path, Sheet: sheet, Err: err}
	}
	if len(rows) < 2 {
		return nil, &SchemaMismatchError{Path: path, Sheet: sheet, Reason: "expected a header row and one data row"}
	}

	idx := columnIndex(rows[0])
	record := make(map[string]decimal.Decimal, len(fields))
	for _, field := range fields {
		i, ok := idx[field]
		if !ok {
			return nil, &SchemaMismatchError{Path: path, Sheet: sheet, Column: field, Reason: "missing column"}
		}
		v, err := parseCost(path, sheet, 2, field, cell(rows[1], i), true)
		if err != nil {
			return nil, err
		}
		record[field] = v
	}
	return record, nil
}

// readCategory adds every non-blank row of a category sheet as a line item.
// The sheet name, uppercased, is the category key.
func readCategory(f *excelize.File, path, sheet string, data *budget.Data) error {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return &ParseError{Path: path, Sheet: sheet, Err: err}
	}

	category := budget.NormalizeCategory(sheet)
	data.AddCategory(category)
	if len(rows) == 0 {
		return nil
	}

	idx := columnIndex(rows[0])
	for _, col := range lineItemColumns {
		if _, ok := idx[col]; !ok {
			return &SchemaMismatchError{Path: path, Sheet: sheet, Column: col, Reason: "missing column"}
		}
	}

	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2

		projected, err := parseCost(path, sheet, rowNum, budget.ColumnProjectedCost, cell(row, idx[budget.ColumnProjectedCost]), true)
		if err != nil {
			return err
		}
		actual, err := parseCost(path, sheet, rowNum, budget.ColumnActualCost, cell(row, idx[budget.ColumnActualCost]), true)
		if err != nil {
			return err
		}

		data.AddLineItem(category, budget.LineItem{
			Item:          cell(row, idx[budget.ColumnItem]),
			ProjectedCost: projected,
			ActualCost:    actual,
		})
	}

	return nil
}
