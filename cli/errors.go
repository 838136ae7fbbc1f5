package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/loader"
	"github.com/robinvdvleuten/moneymanager/output"
)

// ErrorRenderer renders errors with terminal styling and source context.
type ErrorRenderer struct {
	source []byte
	styles *output.Styles
}

// NewErrorRenderer creates a renderer for output written to w, with source
// content for context. source may be nil, e.g. for workbooks.
func NewErrorRenderer(w io.Writer, source []byte) *ErrorRenderer {
	return &ErrorRenderer{source: source, styles: output.NewStyles(w)}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	var parseErr *loader.ParseError
	if errors.As(err, &parseErr) && parseErr.Sheet == "" && parseErr.Row > 0 && r.source != nil {
		return r.renderWithSourceContext(parseErr.Row, parseErr.Value, err.Error())
	}

	var schemaErr *loader.SchemaMismatchError
	if errors.As(err, &schemaErr) {
		if hint := schemaHint(schemaErr); hint != "" {
			return r.styles.Render(output.RoleBad, err.Error()) + "\n\n   " + r.styles.Render(output.RoleMuted, hint)
		}
	}

	return err.Error()
}

// schemaHint tells the user what layout was expected.
func schemaHint(err *loader.SchemaMismatchError) string {
	switch {
	case err.Sheet == budget.SheetIncome:
		return fmt.Sprintf("expected columns: %s, %s", budget.FieldProjectedMonthlyIncome, budget.FieldActualMonthlyIncome)
	case err.Sheet == budget.SheetBalance:
		return fmt.Sprintf("expected columns: %s, %s, %s", budget.FieldProjectedBalance, budget.FieldActualBalance, budget.FieldDifference)
	case err.Sheet != "":
		return fmt.Sprintf("expected columns: %s, %s, %s", budget.ColumnItem, budget.ColumnProjectedCost, budget.ColumnActualCost)
	case err.Column != "":
		return fmt.Sprintf("expected header: Category, %s, %s, %s", budget.ColumnItem, budget.ColumnProjectedCost, budget.ColumnActualCost)
	}
	return ""
}

// renderWithSourceContext quotes the lines around row and points a caret
// at the offending value.
func (r *ErrorRenderer) renderWithSourceContext(row int, value, message string) string {
	var buf strings.Builder

	buf.WriteString(r.styles.Render(output.RoleBad, message))
	buf.WriteString("\n\n")

	sourceLines := strings.Split(string(r.source), "\n")

	startLine := max(row-3, 0)
	endLine := min(row+1, len(sourceLines)-1)

	for i := startLine; i <= endLine; i++ {
		buf.WriteString("   ")
		buf.WriteString(r.styles.Render(output.RoleMuted, sourceLines[i]))
		buf.WriteByte('\n')

		if i == row-1 {
			column := 0
			if value != "" {
				column = max(strings.Index(sourceLines[i], value), 0)
			}
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", column))
			buf.WriteString(r.styles.Render(output.RoleBad, "^"))
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}
