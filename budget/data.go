package budget

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Column and field names of the canonical schema. Loaders match headers
// against these and the exporter writes them verbatim.
const (
	ColumnItem          = "Item"
	ColumnProjectedCost = "Projected Cost"
	ColumnActualCost    = "Actual Cost"

	FieldProjectedMonthlyIncome = "Projected Monthly Income"
	FieldActualMonthlyIncome    = "Actual Monthly Income"

	FieldProjectedBalance = "Projected Balance"
	FieldActualBalance    = "Actual Balance"
	FieldDifference       = "Difference"
)

// Sheet names of a spreadsheet workbook. Every other sheet is an expense
// category.
const (
	SheetIncome       = "Income"
	SheetBalance      = "Balance"
	SheetTransactions = "Transactions"
)

// TrendLength is the number of points in the weekly spending trend.
const TrendLength = 7

// Income is the monthly income summary.
type Income struct {
	ProjectedMonthlyIncome decimal.Decimal
	ActualMonthlyIncome    decimal.Decimal
}

// Balance is the monthly balance summary.
type Balance struct {
	ProjectedBalance decimal.Decimal
	ActualBalance    decimal.Decimal
	Difference       decimal.Decimal
}

// LineItem is one expense row within a category.
type LineItem struct {
	Item          string
	ProjectedCost decimal.Decimal
	ActualCost    decimal.Decimal
}

// Data is the canonical budget schema. Every loader produces it regardless
// of the source file format, and the exporter consumes it.
//
// Expenses is keyed by uppercase category label. The order in which
// categories were first seen is kept separately so that charts and exports
// are stable.
type Data struct {
	Income   Income
	Balance  Balance
	Expenses map[Category][]LineItem

	order []Category
}

// NewData returns an empty Data ready for use.
func NewData() *Data {
	return &Data{
		Expenses: make(map[Category][]LineItem),
	}
}

// AddLineItem appends item to the category, normalizing the label.
func (d *Data) AddLineItem(category Category, item LineItem) {
	d.ensureCategory(category)
	c := NormalizeCategory(string(category))
	d.Expenses[c] = append(d.Expenses[c], item)
}

// AddCategory registers a category with no line items yet. Loaders use it
// for sheets that exist but are empty.
func (d *Data) AddCategory(category Category) {
	d.ensureCategory(category)
}

func (d *Data) ensureCategory(category Category) {
	if d.Expenses == nil {
		d.Expenses = make(map[Category][]LineItem)
	}
	c := NormalizeCategory(string(category))
	if _, ok := d.Expenses[c]; ok {
		return
	}
	d.Expenses[c] = nil
	d.order = append(d.order, c)
}

// Categories returns expense categories in source order. Categories added
// to Expenses directly (not through AddLineItem) follow in registry order,
// then any unregistered labels.
func (d *Data) Categories() []Category {
	if d == nil {
		return nil
	}

	seen := make(map[Category]bool, len(d.Expenses))
	out := make([]Category, 0, len(d.Expenses))
	for _, c := range d.order {
		if _, ok := d.Expenses[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	if len(out) == len(d.Expenses) {
		return out
	}

	for _, c := range categories {
		if _, ok := d.Expenses[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	var rest []Category
	for c := range d.Expenses {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sortCategories(rest)
	return append(out, rest...)
}

// IsEmpty reports whether there is nothing to display: no expenses and an
// all-zero summary. An empty Data is not the same as "zero income".
func (d *Data) IsEmpty() bool {
	if d == nil {
		return true
	}
	return len(d.Expenses) == 0 &&
		d.Income.ProjectedMonthlyIncome.IsZero() &&
		d.Income.ActualMonthlyIncome.IsZero() &&
		d.Balance.ProjectedBalance.IsZero() &&
		d.Balance.ActualBalance.IsZero() &&
		d.Balance.Difference.IsZero()
}

// TotalActual sums the actual cost of every line item. This is the
// expense-derived spend figure, independent of the transaction log.
func (d *Data) TotalActual() decimal.Decimal {
	total := decimal.Zero
	if d == nil {
		return total
	}
	for _, items := range d.Expenses {
		for _, item := range items {
			total = total.Add(item.ActualCost)
		}
	}
	return total
}

// TotalProjected sums the projected cost of every line item.
func (d *Data) TotalProjected() decimal.Decimal {
	total := decimal.Zero
	if d == nil {
		return total
	}
	for _, items := range d.Expenses {
		for _, item := range items {
			total = total.Add(item.ProjectedCost)
		}
	}
	return total
}

// CategoryTotal is the actual spend of one category.
type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

// CategoryTotals returns per-category actual totals in category order.
func (d *Data) CategoryTotals() []CategoryTotal {
	cats := d.Categories()
	out := make([]CategoryTotal, 0, len(cats))
	for _, c := range cats {
		total := decimal.Zero
		for _, item := range d.Expenses[c] {
			total = total.Add(item.ActualCost)
		}
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	return out
}

// WeeklyTrend reduces the category totals to exactly TrendLength points:
// the first seven totals, zero-padded when fewer categories exist.
func (d *Data) WeeklyTrend() []decimal.Decimal {
	trend := make([]decimal.Decimal, TrendLength)
	for i := range trend {
		trend[i] = decimal.Zero
	}
	for i, ct := range d.CategoryTotals() {
		if i >= TrendLength {
			break
		}
		trend[i] = ct.Total
	}
	return trend
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	if d == nil {
		return NewData()
	}
	out := &Data{
		Income:   d.Income,
		Balance:  d.Balance,
		Expenses: make(map[Category][]LineItem, len(d.Expenses)),
		order:    append([]Category(nil), d.order...),
	}
	for c, items := range d.Expenses {
		out.Expenses[c] = append([]LineItem(nil), items...)
	}
	return out
}

func sortCategories(cs []Category) {
	slices.Sort(cs)
}
