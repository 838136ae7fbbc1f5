package budget

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the ISO 8601 calendar date form used for transaction dates.
const DateLayout = "2006-01-02"

// Transaction is one spending event. It has no setters; once built it does
// not change.
type Transaction struct {
	id          uuid.UUID
	date        time.Time
	category    Category
	amount      decimal.Decimal
	description string
}

// NewTransaction creates a transaction. Negative amounts are clamped to zero
// and the category label is normalized to uppercase.
func NewTransaction(date time.Time, category Category, amount decimal.Decimal, description string) Transaction {
	y, m, d := date.Date()
	return Transaction{
		id:          uuid.New(),
		date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		category:    NormalizeCategory(string(category)),
		amount:      Clamp(amount),
		description: description,
	}
}

// ParseTransactionDate parses an ISO 8601 date ("2024-03-01").
func ParseTransactionDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

func (t Transaction) ID() uuid.UUID { return t.id }
func (t Transaction) Date() time.Time { return t.date }
func (t Transaction) Category() Category { return t.category }
func (t Transaction) Amount() decimal.Decimal { return t.amount }
func (t Transaction) Description() string { return t.description }
func (t Transaction) DateString() string { return t.date.Format(DateLayout) }

// Fields returns the transaction as an ordered record, matching the columns
// written to the Transactions sheet of an export.
func (t Transaction) Fields() []TransactionField {
	return []TransactionField{
		{Name: "ID", Value: t.id.String()},
		{Name: "Date", Value: t.DateString()},
		{Name: "Category", Value: t.category.String()},
		{Name: "Amount", Value: t.amount},
		{Name: "Description", Value: t.description},
	}
}

// TransactionField is a single named column of a transaction record.
type TransactionField struct {
	Name  string
	Value any
}

// TransactionColumns lists the record columns in export order.
var TransactionColumns = []string{"ID", "Date", "Category", "Amount", "Description"}
