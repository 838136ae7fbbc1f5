package budget

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StatusKind classifies a budget status message.
type StatusKind int

const (
	StatusNotSet StatusKind = iota
	StatusRemaining
	StatusOverBudget
	StatusLimitSet
	StatusInvalidInput
)

// Status is what the presentation shows under the category tables.
type Status struct {
	Kind   StatusKind
	Amount decimal.Decimal
}

// Evaluate computes the status of spending the given amount against limit.
// The spend figure may come from the transaction log or from the loaded
// file's expenses; the two are tracked separately.
func Evaluate(limit, spent decimal.Decimal) Status {
	b := NewBudget(limit)
	b.UpdateSpent(spent)
	if b.IsOverBudget() {
		return Status{Kind: StatusOverBudget, Amount: b.TotalSpent()}
	}
	return Status{Kind: StatusRemaining, Amount: b.Remaining()}
}

func (s Status) String() string {
	switch s.Kind {
	case StatusRemaining:
		return fmt.Sprintf("Budget Remaining: %s", FormatDollar(s.Amount))
	case StatusOverBudget:
		return fmt.Sprintf("Warning: Over Budget! %s spent.", FormatDollar(s.Amount))
	case StatusLimitSet:
		return fmt.Sprintf("Budget Set: %s", FormatDollar(s.Amount))
	case StatusInvalidInput:
		return "Invalid input!"
	default:
		return "Budget Status: Not Set"
	}
}
