package budget

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Manager holds the state of one session: the active budget and the
// ordered transaction log. Create one per session with NewManager and pass
// it to whatever needs it.
//
// Mutations are serialized, so the budget's spend is always computed from a
// consistent view of the log.
type Manager struct {
	mu           sync.RWMutex
	budget       Budget
	transactions []Transaction
}

// NewManager creates a Manager with a zero-limit budget and an empty log.
func NewManager() *Manager {
	return &Manager{
		budget: NewBudget(decimal.Zero),
	}
}

// SetBudget replaces the budget with a fresh one at the given limit.
// Spend tracking restarts at zero; it is recomputed on the next
// AddTransaction.
func (m *Manager) SetBudget(limit decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.budget = NewBudget(limit)
}

// AddTransaction appends t to the log and recomputes the total spent from
// every logged transaction. Duplicates are kept.
func (m *Manager) AddTransaction(t Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append(m.transactions, t)
	m.recomputeSpent()
}

func (m *Manager) recomputeSpent() {
	total := decimal.Zero
	for _, t := range m.transactions {
		total = total.Add(t.Amount())
	}
	m.budget.UpdateSpent(total)
}

// Reset discards the budget and the transaction log.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.budget = NewBudget(decimal.Zero)
	m.transactions = nil
}

// Budget returns a copy of the current budget.
func (m *Manager) Budget() Budget {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.budget
}

// Transactions returns a copy of the transaction log in insertion order.
func (m *Manager) Transactions() []Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// TotalSpent returns the sum of all logged transactions.
func (m *Manager) TotalSpent() decimal.Decimal {
	return m.Budget().TotalSpent()
}
