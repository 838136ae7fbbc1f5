// Package budget holds the in-memory model of a personal budget: the
// spending limit, the session transaction log, the fixed category registry
// and the canonical schema every file loader produces.
//
// Negative amounts are never rejected. Every constructor and setter clamps
// them to zero, so a Budget or Transaction can always be displayed.
//
// Example usage:
//
//	m := budget.NewManager()
//	m.SetBudget(decimal.NewFromInt(500))
//	m.AddTransaction(budget.NewTransaction(date, budget.Food, decimal.NewFromInt(42), "groceries"))
//	fmt.Println(m.Budget().Remaining()) // 458
package budget

import (
	"github.com/shopspring/decimal"
)

// Budget tracks a spending limit against the amount spent so far.
// Both fields are always >= 0.
type Budget struct {
	limit      decimal.Decimal
	totalSpent decimal.Decimal
}

// NewBudget creates a Budget with the given limit and nothing spent.
func NewBudget(limit decimal.Decimal) Budget {
	return Budget{
		limit:      Clamp(limit),
		totalSpent: decimal.Zero,
	}
}

// Limit returns the spending limit.
func (b Budget) Limit() decimal.Decimal {
	return b.limit
}

// TotalSpent returns the amount spent.
func (b Budget) TotalSpent() decimal.Decimal {
	return b.totalSpent
}

// UpdateSpent replaces the total spent. It is not additive.
func (b *Budget) UpdateSpent(amount decimal.Decimal) {
	b.totalSpent = Clamp(amount)
}

// Remaining returns limit - spent, never below zero.
func (b Budget) Remaining() decimal.Decimal {
	return Clamp(b.limit.Sub(b.totalSpent))
}

// IsOverBudget reports whether spend strictly exceeds the limit.
func (b Budget) IsOverBudget() bool {
	return b.totalSpent.GreaterThan(b.limit)
}
