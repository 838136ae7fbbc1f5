// Package dashboard renders a session as text: the income and balance
// summary, one table per expense category, the budget status and the
// weekly spending trend chart.
package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/session"
)

const (
	// DefaultChartHeight is the number of rows of the trend chart.
	DefaultChartHeight = 8

	// ChartTitle heads the trend chart.
	ChartTitle = "Spending Trends"

	columnGap = 3
	barWidth  = 5
)

// Days labels the seven trend points.
var Days = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Dashboard renders session state to a writer.
type Dashboard struct {
	w           io.Writer
	chartHeight int

	heading lipgloss.Style
	dim     lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	bar     lipgloss.Style
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithChartHeight sets the number of rows of the trend chart.
func WithChartHeight(h int) Option {
	return func(d *Dashboard) {
		if h > 0 {
			d.chartHeight = h
		}
	}
}

// New creates a Dashboard writing to w. Colors follow w's terminal
// capabilities; plain writers get plain text.
func New(w io.Writer, opts ...Option) *Dashboard {
	r := lipgloss.NewRenderer(w)
	d := &Dashboard{
		w:           w,
		chartHeight: DefaultChartHeight,
		heading:     r.NewStyle().Bold(true),
		dim:         r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"}),
		good:        r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"}),
		bad:         r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}).Bold(true),
		bar:         r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Present renders s, dropping write errors. It satisfies session.Presenter.
func (d *Dashboard) Present(s session.State) {
	_ = d.Render(s)
}

// Render writes the full dashboard for s.
func (d *Dashboard) Render(s session.State) error {
	var buf strings.Builder

	data := s.Data
	if data == nil {
		data = budget.NewData()
	}

	if s.Path != "" {
		buf.WriteString(d.dim.Render(s.Path))
		buf.WriteString("\n\n")
	}

	buf.WriteString(IncomeLine(data.Income))
	buf.WriteByte('\n')
	buf.WriteString(BalanceLine(data.Balance))
	buf.WriteString("\n\n")

	for _, c := range displayCategories(data) {
		d.writeCategory(&buf, c, data.Expenses[c])
		buf.WriteByte('\n')
	}

	d.writeStatus(&buf, s)
	buf.WriteByte('\n')

	trend := s.Trend
	if len(trend) == 0 {
		trend = data.WeeklyTrend()
	}
	d.writeChart(&buf, trend)

	_, err := io.WriteString(d.w, buf.String())
	return err
}

// IncomeLine formats the income summary.
func IncomeLine(in budget.Income) string {
	return fmt.Sprintf("Projected Income: %s | Actual Income: %s",
		budget.FormatDollar(in.ProjectedMonthlyIncome),
		budget.FormatDollar(in.ActualMonthlyIncome))
}

// BalanceLine formats the balance summary.
func BalanceLine(b budget.Balance) string {
	return fmt.Sprintf("Projected Balance: %s | Actual Balance: %s | Difference: %s",
		budget.FormatDollar(b.ProjectedBalance),
		budget.FormatDollar(b.ActualBalance),
		budget.FormatDollar(b.Difference))
}

// displayCategories lists every registered category, then any others the
// data carries.
func displayCategories(data *budget.Data) []budget.Category {
	out := budget.AllCategories()
	for _, c := range data.Categories() {
		if !c.Registered() {
			out = append(out, c)
		}
	}
	return out
}

func (d *Dashboard) writeCategory(buf *strings.Builder, c budget.Category, items []budget.LineItem) {
	buf.WriteString(d.heading.Render(c.Title()))
	buf.WriteByte('\n')

	if len(items) == 0 {
		buf.WriteString("  ")
		buf.WriteString(d.dim.Render("no items"))
		buf.WriteByte('\n')
		return
	}

	rows := make([][3]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, [3]string{
			item.Item,
			budget.FormatDollar(item.ProjectedCost),
			budget.FormatDollar(item.ActualCost),
		})
	}
	writeTable(buf, [3]string{budget.ColumnItem, budget.ColumnProjectedCost, budget.ColumnActualCost}, rows, d.dim)
}

// writeTable left-aligns the first column and right-aligns the amounts.
// Widths are display widths so wide runes line up.
func writeTable(buf *strings.Builder, header [3]string, rows [][3]string, headerStyle lipgloss.Style) {
	var widths [3]int
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	gap := strings.Repeat(" ", columnGap)
	line := func(row [3]string) string {
		return "  " + runewidth.FillRight(row[0], widths[0]) +
			gap + runewidth.FillLeft(row[1], widths[1]) +
			gap + runewidth.FillLeft(row[2], widths[2])
	}

	buf.WriteString(headerStyle.Render(line(header)))
	buf.WriteByte('\n')
	for _, row := range rows {
		buf.WriteString(line(row))
		buf.WriteByte('\n')
	}
}

func (d *Dashboard) writeStatus(buf *strings.Builder, s session.State) {
	text := s.Status.String()
	switch s.Status.Kind {
	case budget.StatusOverBudget, budget.StatusInvalidInput:
		text = d.bad.Render(text)
	case budget.StatusRemaining, budget.StatusLimitSet:
		text = d.good.Render(text)
	}
	buf.WriteString(text)
	buf.WriteByte('\n')

	if len(s.Transactions) > 0 {
		total := decimal.Zero
		for _, t := range s.Transactions {
			total = total.Add(t.Amount())
		}
		buf.WriteString(d.dim.Render(fmt.Sprintf("%d transactions logged, %s total", len(s.Transactions), budget.FormatDollar(total))))
		buf.WriteByte('\n')
	}
}

// writeChart draws one vertical bar per day, scaled to the largest value.
func (d *Dashboard) writeChart(buf *strings.Builder, trend []decimal.Decimal) {
	buf.WriteString(d.heading.Render(ChartTitle))
	buf.WriteByte('\n')

	heights := BarHeights(trend, d.chartHeight)
	for row := d.chartHeight; row >= 1; row-- {
		var line strings.Builder
		for _, h := range heights {
			if h >= row {
				line.WriteString(d.bar.Render(runewidth.FillRight(" ███", barWidth)))
			} else {
				line.WriteString(strings.Repeat(" ", barWidth))
			}
		}
		buf.WriteString(strings.TrimRight(line.String(), " "))
		buf.WriteByte('\n')
	}

	var labels strings.Builder
	for i := range heights {
		labels.WriteString(runewidth.FillRight(" "+Days[i%len(Days)], barWidth))
	}
	buf.WriteString(d.dim.Render(strings.TrimRight(labels.String(), " ")))
	buf.WriteByte('\n')
}

// BarHeights scales values to bars of at most height rows. Any positive
// value gets at least one row; zero and negative values get none.
func BarHeights(values []decimal.Decimal, height int) []int {
	peak := decimal.Zero
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
	}

	out := make([]int, len(values))
	if peak.IsZero() {
		return out
	}

	h := decimal.NewFromInt(int64(height))
	for i, v := range values {
		if !v.IsPositive() {
			continue
		}
		out[i] = max(1, int(v.Mul(h).Div(peak).Round(0).IntPart()))
	}
	return out
}
