package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/moneymanager/budget"
)

const (
	columnCategory = "Category"
)

// Delimited files carry no income or balance summary, so one is
// synthesized. These figures are stand-in arithmetic kept for
// compatibility with files produced by earlier versions; they are not a
// financial derivation.
var (
	// PlaceholderIncomeOffset is added to the projected and actual cost
	// totals to fill in the income figures.
	PlaceholderIncomeOffset = decimal.NewFromInt(500)

	// PlaceholderBalance fills both the projected and actual balance.
	PlaceholderBalance = decimal.NewFromInt(500)
)

var delimitedColumns = []string{
	columnCategory,
	budget.ColumnItem,
	budget.ColumnProjectedCost,
	budget.ColumnActualCost,
}

type delimitedDecoder struct{}

func (delimitedDecoder) decode(ctx context.Context, r io.Reader, name string) (*budget.Data, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Trailing commas are common in hand-edited files. Short rows still
	// fail on their blank cost cells.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaMismatchError{Path: name, Reason: "missing header row"}
		}
		return nil, csvParseError(name, err)
	}

	idx := columnIndex(header)
	for _, col := range delimitedColumns {
		if _, ok := idx[col]; !ok {
			return nil, &SchemaMismatchError{Path: name, Column: col, Reason: "missing column"}
		}
	}

	data := budget.NewData()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(name, err)
		}

		if isBlankRow(record) {
			continue
		}

		// Quoted fields may span lines, so rows are reported by the
		// physical line of the offending field.
		category := cell(record, idx[columnCategory])
		if category == "" {
			return nil, &ParseError{
				Path:   name,
				Row:    fieldLine(reader, record, idx[columnCategory]),
				Column: columnCategory,
				Err:    fmt.Errorf("category is required"),
			}
		}

		projectedCol := idx[budget.ColumnProjectedCost]
		projected, err := parseCost(name, "", fieldLine(reader, record, projectedCol), budget.ColumnProjectedCost, cell(record, projectedCol), false)
		if err != nil {
			return nil, err
		}
		actualCol := idx[budget.ColumnActualCost]
		actual, err := parseCost(name, "", fieldLine(reader, record, actualCol), budget.ColumnActualCost, cell(record, actualCol), false)
		if err != nil {
			return nil, err
		}

		data.AddLineItem(budget.NormalizeCategory(category), budget.LineItem{
			Item:          cell(record, idx[budget.ColumnItem]),
			ProjectedCost: projected,
			ActualCost:    actual,
		})
	}

	synthesizeSummary(data)

	return data, nil
}

// synthesizeSummary fills Income and Balance with placeholder values
// derived from the line item totals.
func synthesizeSummary(data *budget.Data) {
	data.Income = budget.Income{
		ProjectedMonthlyIncome: data.TotalProjected().Add(PlaceholderIncomeOffset),
		ActualMonthlyIncome:    data.TotalActual().Add(PlaceholderIncomeOffset),
	}
	data.Balance = budget.Balance{
		ProjectedBalance: PlaceholderBalance,
		ActualBalance:    PlaceholderBalance,
		Difference:       decimal.Zero,
	}
}

// parseCost parses a numeric cell. Blank cells are zero only when
// allowBlank is set.
func parseCost(path, sheet string, row int, column, value string, allowBlank bool) (decimal.Decimal, error) {
	if value == "" && allowBlank {
		return decimal.Zero, nil
	}

	d, err := budget.ParseAmount(value)
	if err != nil {
		return decimal.Zero, &ParseError{
			Path:   path,
			Sheet:  sheet,
			Row:    row,
			Column: column,
			Value:  value,
			Err:    err,
		}
	}
	return d, nil
}

// fieldLine returns the line on which field i of the last record starts.
// Missing fields report the line the record ends on.
func fieldLine(r *csv.Reader, record []string, i int) int {
	if i >= len(record) {
		i = len(record) - 1
	}
	line, _ := r.FieldPos(i)
	return line
}

func csvParseError(name string, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Path: name, Row: perr.Line, Err: perr.Err}
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}
