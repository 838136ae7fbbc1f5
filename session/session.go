// Package session coordinates one budgeting session: loading a file into
// the budget manager, keeping the presentation up to date and saving the
// result.
//
// The Controller owns the current view and the loaded data. Every change is
// followed by an explicit call to the Presenter with a fresh State, so a
// presenter never has to poll.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/telemetry"
)

// ErrEmptyData is returned by Upload when a file loads without error but
// holds nothing to display.
var ErrEmptyData = errors.New("file contains no budget data")

// View is the screen the session is on.
type View int

const (
	ViewWelcome View = iota
	ViewMain
	ViewClosed
)

func (v View) String() string {
	switch v {
	case ViewMain:
		return "main"
	case ViewClosed:
		return "closed"
	default:
		return "welcome"
	}
}

// Loader turns a file path into canonical budget data.
type Loader interface {
	Load(ctx context.Context, path string) (*budget.Data, error)
}

// Exporter writes the transaction log and data to a file and returns its
// path.
type Exporter interface {
	Save(ctx context.Context, transactions []budget.Transaction, data *budget.Data) (string, error)
}

// Presenter displays session state.
type Presenter interface {
	Present(State)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(State)

func (f PresenterFunc) Present(s State) { f(s) }

// State is a snapshot of the session for presentation.
type State struct {
	View         View
	Path         string
	Data         *budget.Data
	Budget       budget.Budget
	Transactions []budget.Transaction
	Trend        []decimal.Decimal
	Status       budget.Status
}

// Controller runs the session workflows.
type Controller struct {
	manager   *budget.Manager
	loader    Loader
	exporter  Exporter
	presenter Presenter
	logger    *log.Logger
	debounce  time.Duration

	mu     sync.Mutex
	view   View
	path   string
	data   *budget.Data
	status budget.Status
}

// Option configures a Controller.
type Option func(*Controller)

// WithPresenter sets the presenter notified after every change.
func WithPresenter(p Presenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithDebounce sets how long Watch waits for a file to settle before
// reloading it.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a Controller on the welcome view.
func New(manager *budget.Manager, loader Loader, exporter Exporter, opts ...Option) *Controller {
	c := &Controller{
		manager:   manager,
		loader:    loader,
		exporter:  exporter,
		presenter: PresenterFunc(func(State) {}),
		logger:    log.New(io.Discard),
		debounce:  100 * time.Millisecond,
		view:      ViewWelcome,
		data:      budget.NewData(),
		status:    budget.Status{Kind: budget.StatusNotSet},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Upload loads path and, on success, starts a fresh session showing its
// data. A failed or empty load leaves the session untouched and returns the
// error, so a missing file and an empty one can be told apart.
func (c *Controller) Upload(ctx context.Context, path string) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("session.upload %s", path))
	defer timer.End()

	data, err := c.loader.Load(ctx, path)
	if err != nil {
		c.logger.Warn("upload failed", "path", path, "err", err)
		return err
	}
	if data.IsEmpty() {
		c.logger.Warn("upload ignored", "path", path, "err", ErrEmptyData)
		return fmt.Errorf("%s: %w", path, ErrEmptyData)
	}

	// c.mu is taken before the manager's lock, as everywhere else, so the
	// reset and the data swap are one step for concurrent callers.
	c.mu.Lock()
	c.manager.Reset()
	c.data = data
	c.path = path
	c.view = ViewMain
	c.status = c.expenseStatus()
	c.mu.Unlock()

	c.logger.Info("loaded budget", "path", path, "categories", len(data.Categories()))
	c.present(ctx)
	return nil
}

// ContinueWithoutFile starts a fresh, empty session.
func (c *Controller) ContinueWithoutFile(ctx context.Context) {
	c.mu.Lock()
	c.manager.Reset()
	c.data = budget.NewData()
	c.path = ""
	c.view = ViewMain
	c.status = budget.Status{Kind: budget.StatusNotSet}
	c.mu.Unlock()

	c.present(ctx)
}

// SaveAndExit exports the transaction log and the loaded data, then closes
// the session. On failure the session stays open.
func (c *Controller) SaveAndExit(ctx context.Context) (string, error) {
	timer := telemetry.StartTimer(ctx, "session.save")
	defer timer.End()

	c.mu.Lock()
	data := c.data.Clone()
	c.mu.Unlock()

	path, err := c.exporter.Save(ctx, c.manager.Transactions(), data)
	if err != nil {
		c.logger.Error("save failed", "err", err)
		return "", err
	}

	c.mu.Lock()
	c.view = ViewClosed
	c.mu.Unlock()

	c.logger.Info("saved budget", "path", path)
	c.present(ctx)
	return path, nil
}

// SetBudget parses a user-entered limit. Invalid input changes nothing but
// the status message; it is not an error.
func (c *Controller) SetBudget(ctx context.Context, input string) budget.Status {
	amount, err := budget.ParseAmount(input)

	c.mu.Lock()
	if err != nil {
		c.status = budget.Status{Kind: budget.StatusInvalidInput}
	} else {
		c.manager.SetBudget(amount)
		c.status = budget.Status{Kind: budget.StatusLimitSet, Amount: c.manager.Budget().Limit()}
	}
	status := c.status
	c.mu.Unlock()

	c.present(ctx)
	return status
}

// AddTransaction logs a spend event and reports the budget status against
// the transaction log total.
func (c *Controller) AddTransaction(ctx context.Context, t budget.Transaction) budget.Status {
	c.mu.Lock()
	c.manager.AddTransaction(t)
	status := budget.Evaluate(c.manager.Budget().Limit(), c.manager.TotalSpent())
	c.status = status
	c.mu.Unlock()

	c.present(ctx)
	return status
}

// Refresh re-evaluates the limit against the loaded expenses and presents
// the result. With nothing loaded the status is left alone.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	if !c.data.IsEmpty() {
		c.status = c.expenseStatus()
	}
	c.mu.Unlock()

	c.present(ctx)
}

// BackToWelcome returns to the welcome view, keeping the session state.
func (c *Controller) BackToWelcome(ctx context.Context) {
	c.mu.Lock()
	c.view = ViewWelcome
	c.mu.Unlock()

	c.present(ctx)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		View:         c.view,
		Path:         c.path,
		Data:         c.data.Clone(),
		Budget:       c.manager.Budget(),
		Transactions: c.manager.Transactions(),
		Trend:        c.data.WeeklyTrend(),
		Status:       c.status,
	}
}

// expenseStatus evaluates the limit against the loaded file's expenses.
// Callers hold c.mu.
func (c *Controller) expenseStatus() budget.Status {
	return budget.Evaluate(c.manager.Budget().Limit(), c.data.TotalActual())
}

// present is called without c.mu held so a presenter may call Snapshot.
func (c *Controller) present(ctx context.Context) {
	timer := telemetry.StartTimer(ctx, "session.present")
	defer timer.End()

	c.presenter.Present(c.Snapshot())
}

// ParseTransaction builds a transaction from user input. The category must
// be one of the registered labels.
func ParseTransaction(date, category, amount, description string) (budget.Transaction, error) {
	d, err := budget.ParseTransactionDate(date)
	if err != nil {
		return budget.Transaction{}, err
	}
	c, ok := budget.ParseCategory(category)
	if !ok {
		return budget.Transaction{}, fmt.Errorf("unknown category %q", category)
	}
	a, err := budget.ParseAmount(amount)
	if err != nil {
		return budget.Transaction{}, err
	}
	return budget.NewTransaction(d, c, a, description), nil
}
