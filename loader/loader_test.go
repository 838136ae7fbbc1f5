package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/robinvdvleuten/moneymanager/budget"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)
	return path
}

// writeWorkbook saves a workbook whose sheets are given as rows of cells.
// Sheets are created in the order of names.
func writeWorkbook(t *testing.T, names []string, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, name := range names {
		_, err := f.NewSheet(name)
		assert.NoError(t, err)
		for i, row := range sheets[name] {
			cellRef, err := excelize.CoordinatesToCellName(1, i+1)
			assert.NoError(t, err)
			assert.NoError(t, f.SetSheetRow(name, cellRef, &row))
		}
	}
	assert.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	assert.NoError(t, f.SaveAs(path))
	return path
}

func validSheets() map[string][][]any {
	return map[string][][]any{
		"Income": {
			{"Projected Monthly Income", "Actual Monthly Income"},
			{4000, 4100.5},
		},
		"Balance": {
			{"Projected Balance", "Actual Balance", "Difference"},
			{1000, 900, -100},
		},
		"Housing": {
			{"Item", "Projected Cost", "Actual Cost"},
			{"Rent", 1200, 1200},
			{"Utilities", 150, 172.35},
		},
		"Food": {
			{"Item", "Projected Cost", "Actual Cost"},
			{"Groceries", 400, nil},
		},
	}
}

func TestLoadDelimited(t *testing.T) {
	path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,3.00,3.50\n")

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	items := data.Expenses[budget.Food]
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "Milk", items[0].Item)
	assertDecimal(t, "3.00", items[0].ProjectedCost)
	assertDecimal(t, "3.50", items[0].ActualCost)

	// Placeholder summary: cost totals plus a fixed offset, fixed balances.
	assertDecimal(t, "503.00", data.Income.ProjectedMonthlyIncome)
	assertDecimal(t, "503.50", data.Income.ActualMonthlyIncome)
	assertDecimal(t, "500", data.Balance.ProjectedBalance)
	assertDecimal(t, "500", data.Balance.ActualBalance)
	assertDecimal(t, "0", data.Balance.Difference)
}

func TestLoadDelimitedPlaceholderIsOffsetFromTotals(t *testing.T) {
	path := writeFile(t, "budget.csv", `Category,Item,Projected Cost,Actual Cost
Housing,Rent,1200,1250
Food,Milk,3,3.5
`)

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	assertDecimal(t, "1203", data.Income.ProjectedMonthlyIncome.Sub(PlaceholderIncomeOffset))
	assertDecimal(t, "1253.5", data.Income.ActualMonthlyIncome.Sub(PlaceholderIncomeOffset))
	assert.True(t, data.Balance.ActualBalance.Equal(PlaceholderBalance))
}

func TestLoadDelimitedUppercasesCategories(t *testing.T) {
	path := writeFile(t, "budget.csv", `Category,Item,Projected Cost,Actual Cost
food,Milk,3.00,3.50
 personal care ,Soap,2,2
FOOD,Eggs,4,4.25
`)

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	assert.Equal(t, []budget.Category{budget.Food, budget.PersonalCare}, data.Categories())
	assert.Equal(t, 2, len(data.Expenses[budget.Food]))
	assert.Equal(t, "Eggs", data.Expenses[budget.Food][1].Item)
	_, lower := data.Expenses["food"]
	assert.False(t, lower)
}

func TestLoadDelimitedHeaderOrderAndWhitespace(t *testing.T) {
	path := writeFile(t, "budget.csv", "\ufeffItem, Actual Cost ,Category,Projected Cost\nBus pass,\"$1,020.00\",Transportation,1000\n")

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	items := data.Expenses[budget.Transportation]
	assert.Equal(t, 1, len(items))
	assertDecimal(t, "1020", items[0].ActualCost)
	assertDecimal(t, "1000", items[0].ProjectedCost)
}

func TestLoadDelimitedSkipsBlankRows(t *testing.T) {
	path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\n,,,\nFOOD,Milk,3,3\n")

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(data.Expenses[budget.Food]))
}

func TestLoadDelimitedAcceptsTrailingComma(t *testing.T) {
	path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nfood,Milk,3,3.5,\n")

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(data.Expenses[budget.Food]))
	assertDecimal(t, "3.5", data.Expenses[budget.Food][0].ActualCost)
}

func TestLoadDelimitedErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost\nFOOD,Milk,3\n")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsSchemaMismatch(err))

		var schemaErr *SchemaMismatchError
		assert.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, "Actual Cost", schemaErr.Column)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsSchemaMismatch(err))
	})

	t.Run("bad number", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,3,3\nFOOD,Eggs,three,3\n")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsParseError(err))

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 3, parseErr.GetRow())
		assert.Equal(t, "Projected Cost", parseErr.Column)
		assert.Equal(t, "three", parseErr.Value)
	})

	t.Run("bad number after multi-line field", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,\"Milk\nwhole\",3,3.5\nFOOD,Eggs,x,2\n")

		_, err := New().Load(context.Background(), path)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 4, parseErr.Row)
		assert.Equal(t, "x", parseErr.Value)
	})

	t.Run("short row", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,3\n")

		_, err := New().Load(context.Background(), path)

		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 2, parseErr.Row)
		assert.Equal(t, "Actual Cost", parseErr.Column)
	})

	t.Run("blank cost", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,3,\n")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsParseError(err))
	})

	t.Run("missing category", func(t *testing.T) {
		path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\n,Milk,3,3\n")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsParseError(err))
	})
}

func TestLoadFileNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	_, err := New().Load(context.Background(), path)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsSchemaMismatch(err))

	var notFound *FileNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, path, notFound.GetPath())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "budget.json", "{}")

	_, err := New().Load(context.Background(), path)
	assert.True(t, IsSchemaMismatch(err))
	assert.True(t, strings.Contains(err.Error(), ".json"))
}

func TestLoadReaderWithFormat(t *testing.T) {
	r := strings.NewReader("Category,Item,Projected Cost,Actual Cost\nSCHOOL,Books,80,75\n")

	data, err := New(WithFormat(FormatDelimited)).LoadReader(context.Background(), r, "<stdin>")
	assert.NoError(t, err)
	assertDecimal(t, "75", data.Expenses[budget.School][0].ActualCost)
}

func TestLoadBytes(t *testing.T) {
	data, err := New().LoadBytes(context.Background(), "upload.csv", []byte("Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,1,2\n"))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(data.Expenses[budget.Food]))
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, "budget.csv", "Category,Item,Projected Cost,Actual Cost\nFOOD,Milk,1,2\n")
	_, err := New().Load(ctx, path)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"budget.xlsx", FormatSpreadsheet, false},
		{"BUDGET.XLSX", FormatSpreadsheet, false},
		{"budget.csv", FormatDelimited, false},
		{"budget.txt", FormatDelimited, false},
		{"budget.ods", FormatAuto, true},
		{"budget", FormatAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSpreadsheet(t *testing.T) {
	path := writeWorkbook(t, []string{"Income", "Balance", "Housing", "Food"}, validSheets())

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)

	assertDecimal(t, "4000", data.Income.ProjectedMonthlyIncome)
	assertDecimal(t, "4100.5", data.Income.ActualMonthlyIncome)
	assertDecimal(t, "1000", data.Balance.ProjectedBalance)
	assertDecimal(t, "900", data.Balance.ActualBalance)
	assertDecimal(t, "-100", data.Balance.Difference)

	assert.Equal(t, []budget.Category{budget.Housing, budget.Food}, data.Categories())

	housing := data.Expenses[budget.Housing]
	assert.Equal(t, 2, len(housing))
	assert.Equal(t, "Utilities", housing[1].Item)
	assertDecimal(t, "172.35", housing[1].ActualCost)

	// A blank actual cost reads as zero.
	food := data.Expenses[budget.Food]
	assert.Equal(t, 1, len(food))
	assertDecimal(t, "0", food[0].ActualCost)
}

func TestLoadSpreadsheetSkipsTransactionsSheet(t *testing.T) {
	sheets := validSheets()
	sheets["Transactions"] = [][]any{
		{"ID", "Date", "Category", "Amount", "Description"},
		{"abc", "2024-01-01", "FOOD", 12.5, "lunch"},
	}

	path := writeWorkbook(t, []string{"Income", "Balance", "Housing", "Transactions"}, sheets)

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	_, ok := data.Expenses["TRANSACTIONS"]
	assert.False(t, ok)
	assert.Equal(t, []budget.Category{budget.Housing}, data.Categories())
}

func TestLoadSpreadsheetEmptyCategorySheet(t *testing.T) {
	sheets := validSheets()
	sheets["Pets"] = nil

	path := writeWorkbook(t, []string{"Income", "Balance", "Pets"}, sheets)

	data, err := New().Load(context.Background(), path)
	assert.NoError(t, err)
	items, ok := data.Expenses["PETS"]
	assert.True(t, ok)
	assert.Equal(t, 0, len(items))
}

func TestLoadSpreadsheetErrors(t *testing.T) {
	t.Run("missing balance sheet", func(t *testing.T) {
		path := writeWorkbook(t, []string{"Income", "Housing"}, validSheets())

		_, err := New().Load(context.Background(), path)
		var schemaErr *SchemaMismatchError
		assert.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, "Balance", schemaErr.GetSheet())
	})

	t.Run("missing income column", func(t *testing.T) {
		sheets := validSheets()
		sheets["Income"] = [][]any{{"Projected Monthly Income"}, {4000}}
		path := writeWorkbook(t, []string{"Income", "Balance"}, sheets)

		_, err := New().Load(context.Background(), path)
		var schemaErr *SchemaMismatchError
		assert.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, "Actual Monthly Income", schemaErr.Column)
	})

	t.Run("missing data row", func(t *testing.T) {
		sheets := validSheets()
		sheets["Balance"] = sheets["Balance"][:1]
		path := writeWorkbook(t, []string{"Income", "Balance"}, sheets)

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsSchemaMismatch(err))
	})

	t.Run("bad cost", func(t *testing.T) {
		sheets := validSheets()
		sheets["Housing"] = append(sheets["Housing"], []any{"Repairs", "lots", 0})
		path := writeWorkbook(t, []string{"Income", "Balance", "Housing"}, sheets)

		_, err := New().Load(context.Background(), path)
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "Housing", parseErr.Sheet)
		assert.Equal(t, 4, parseErr.Row)
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		path := writeFile(t, "budget.xlsx", "not a zip archive")

		_, err := New().Load(context.Background(), path)
		assert.True(t, IsParseError(err))
	})
}

func TestErrorMessages(t *testing.T) {
	err := &SchemaMismatchError{Path: "b.xlsx", Sheet: "Food", Column: "Item", Reason: "missing column"}
	assert.Equal(t, `b.xlsx[Food]: missing column: column "Item"`, err.Error())

	perr := &ParseError{Path: "b.csv", Row: 3, Column: "Actual Cost", Value: "x", Err: errors.New("bad")}
	assert.Equal(t, `b.csv:3: invalid Actual Cost value "x": bad`, perr.Error())

	nf := &FileNotFoundError{Path: "nope.csv"}
	assert.Equal(t, "nope.csv: file not found", nf.Error())
}
