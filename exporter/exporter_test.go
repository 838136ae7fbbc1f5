package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/loader"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleData() *budget.Data {
	data := budget.NewData()
	data.Income = budget.Income{
		ProjectedMonthlyIncome: dec("4000"),
		ActualMonthlyIncome:    dec("4100.50"),
	}
	data.Balance = budget.Balance{
		ProjectedBalance: dec("1000"),
		ActualBalance:    dec("900"),
		Difference:       dec("-100"),
	}
	data.AddLineItem(budget.Housing, budget.LineItem{Item: "Rent", ProjectedCost: dec("1200"), ActualCost: dec("1200")})
	data.AddLineItem(budget.PersonalCare, budget.LineItem{Item: "Haircut", ProjectedCost: dec("25"), ActualCost: dec("30.25")})
	data.AddLineItem(budget.Housing, budget.LineItem{Item: "Utilities", ProjectedCost: dec("150"), ActualCost: dec("172.35")})
	return data
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	ctx := context.Background()

	got, err := New(WithPath(path)).Save(ctx, nil, sampleData())
	assert.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := loader.New().Load(ctx, path)
	assert.NoError(t, err)

	assert.True(t, dec("4100.50").Equal(data.Income.ActualMonthlyIncome))
	assert.True(t, dec("-100").Equal(data.Balance.Difference))
	assert.Equal(t, []budget.Category{budget.Housing, budget.PersonalCare}, data.Categories())

	housing := data.Expenses[budget.Housing]
	assert.Equal(t, 2, len(housing))
	assert.Equal(t, "Utilities", housing[1].Item)
	assert.True(t, dec("172.35").Equal(housing[1].ActualCost))
	assert.True(t, dec("30.25").Equal(data.Expenses[budget.PersonalCare][0].ActualCost))
}

func TestSaveSheetLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	_, err := New(WithPath(path)).Save(context.Background(), nil, sampleData())
	assert.NoError(t, err)

	f, err := excelize.OpenFile(path)
	assert.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Income", "Balance", "Housing", "Personal Care"}, f.GetSheetList())

	rows, err := f.GetRows("Housing")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Item", "Projected Cost", "Actual Cost"}, rows[0])
	assert.Equal(t, 3, len(rows))
}

func TestSaveWritesTransactions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txns := []budget.Transaction{
		budget.NewTransaction(day, budget.Food, dec("12.50"), "lunch"),
		budget.NewTransaction(day, budget.Transportation, dec("2.75"), ""),
	}

	_, err := New(WithPath(path)).Save(context.Background(), txns, sampleData())
	assert.NoError(t, err)

	f, err := excelize.OpenFile(path)
	assert.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Transactions", excelize.Options{RawCellValue: true})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(rows))
	assert.Equal(t, budget.TransactionColumns, rows[0])
	assert.Equal(t, txns[0].ID().String(), rows[1][0])
	assert.Equal(t, "2024-03-01", rows[1][1])
	assert.Equal(t, "FOOD", rows[1][2])
	assert.Equal(t, "12.5", rows[1][3])
	assert.Equal(t, "lunch", rows[1][4])

	// The log does not leak into the expenses when read back.
	data, err := loader.New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(data.Categories()))
}

func TestSaveWithoutTransactionsOmitsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	_, err := New(WithPath(path)).Save(context.Background(), []budget.Transaction{}, sampleData())
	assert.NoError(t, err)

	f, err := excelize.OpenFile(path)
	assert.NoError(t, err)
	defer func() { _ = f.Close() }()

	for _, name := range f.GetSheetList() {
		assert.NotEqual(t, "Transactions", name)
	}
}

func TestSaveRejectsCollidingSheets(t *testing.T) {
	data := budget.NewData()
	data.AddCategory("BALANCE")

	_, err := New(WithPath(filepath.Join(t.TempDir(), "x.xlsx"))).Save(context.Background(), nil, data)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Balance"))
}

func TestSaveRejectsReservedCategoryWithoutTransactions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.csv")
	assert.NoError(t, os.WriteFile(path, []byte("Category,Item,Projected Cost,Actual Cost\ntransactions,Fee,1,2\nfood,Milk,3,3.5\n"), 0644))

	data, err := loader.New().Load(ctx, path)
	assert.NoError(t, err)
	assert.Equal(t, []budget.Category{"TRANSACTIONS", budget.Food}, data.Categories())

	// Without a transaction log the Transactions sheet is not written, but a
	// category of that name would still vanish on reload.
	out := filepath.Join(t.TempDir(), "out.xlsx")
	_, err = New(WithPath(out)).Save(ctx, nil, data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Transactions")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := New().Write(context.Background(), &buf, nil, sampleData())
	assert.NoError(t, err)

	data, err := loader.New(loader.WithFormat(loader.FormatSpreadsheet)).LoadReader(context.Background(), &buf, "<buffer>")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(data.Expenses[budget.Housing]))
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	assert.NoError(t, WriteTemplate(context.Background(), path))

	data, err := loader.New().Load(context.Background(), path)
	assert.NoError(t, err)
	assert.Equal(t, budget.AllCategories(), data.Categories())
	assert.True(t, data.TotalActual().IsZero())
	assert.True(t, data.Income.ActualMonthlyIncome.IsZero())
}

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, DefaultPath, New().Path)
	assert.Equal(t, DefaultPath, New(WithPath("")).Path)
	assert.Equal(t, "out.xlsx", New(WithPath("out.xlsx")).Path)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Holiday Expenses", SheetName(budget.HolidayExpenses))

	long := budget.Category(strings.Repeat("A", 40))
	assert.Equal(t, 31, len(SheetName(long)))
}
