package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"

	"github.com/robinvdvleuten/moneymanager/budget"
	"github.com/robinvdvleuten/moneymanager/dashboard"
	"github.com/robinvdvleuten/moneymanager/exporter"
	"github.com/robinvdvleuten/moneymanager/loader"
	"github.com/robinvdvleuten/moneymanager/logging"
	"github.com/robinvdvleuten/moneymanager/session"
)

// Menu actions.
const (
	actionUpload      = "upload"
	actionContinue    = "continue"
	actionTemplate    = "template"
	actionQuit        = "quit"
	actionSetBudget   = "budget"
	actionTransaction = "transaction"
	actionBack        = "back"
	actionSave        = "save"
)

type SessionCmd struct {
	File string `help:"Budget file to open right away (.xlsx or .csv)." arg:"" optional:"" type:"path"`
}

func (cmd *SessionCmd) Run(ctx *kong.Context, globals *Globals) error {
	if !isTerminal() {
		printError(ctx.Stderr, "session needs an interactive terminal; use show for scripts")
		return NewCommandError(1)
	}

	rt, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer rt.report()

	controller := session.New(
		budget.NewManager(),
		loader.New(),
		exporter.New(exporter.WithPath(rt.cfg.ExportPath)),
		session.WithPresenter(dashboard.New(ctx.Stdout)),
		session.WithLogger(logging.For(rt.logger, "session")),
	)

	runner := &sessionRunner{
		rt:         rt,
		controller: controller,
		prompt:     huhPrompter{},
		stdout:     ctx.Stdout,
		stderr:     ctx.Stderr,
	}

	if cmd.File != "" {
		runner.upload(cmd.File)
	}

	return runner.run()
}

// prompter asks the user for input.
type prompter interface {
	Choose(title string, options []huh.Option[string]) (string, error)
	Input(title, placeholder string, validate func(string) error) (string, error)
	Transaction() (date, category, amount, description string, err error)
}

// sessionRunner drives a controller from menu choices until the session is
// saved or the user quits.
type sessionRunner struct {
	rt         *runtime
	controller *session.Controller
	prompt     prompter
	stdout     io.Writer
	stderr     io.Writer
}

func (r *sessionRunner) run() error {
	for {
		var err error
		switch r.controller.Snapshot().View {
		case session.ViewClosed:
			return nil
		case session.ViewWelcome:
			err = r.welcome()
		default:
			err = r.main()
		}

		if errors.Is(err, errQuit) || errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

var errQuit = errors.New("quit")

func (r *sessionRunner) welcome() error {
	choice, err := r.prompt.Choose("Welcome to Money Manager", []huh.Option[string]{
		huh.NewOption("Upload File", actionUpload),
		huh.NewOption("Continue Without File", actionContinue),
		huh.NewOption("Download Template", actionTemplate),
		huh.NewOption("Quit", actionQuit),
	})
	if err != nil {
		return err
	}

	switch choice {
	case actionUpload:
		path, err := r.prompt.Input("Budget file", "budget.xlsx", validateExistingFile)
		if err != nil {
			return err
		}
		r.upload(path)

	case actionContinue:
		r.controller.ContinueWithoutFile(r.rt.ctx)
		r.applyConfiguredLimit()

	case actionTemplate:
		path, err := r.prompt.Input("Save template as", "BudgetTemplate.xlsx", nil)
		if err != nil {
			return err
		}
		if path == "" {
			path = "BudgetTemplate.xlsx"
		}
		if err := exporter.WriteTemplate(r.rt.ctx, path); err != nil {
			printError(r.stderr, err.Error())
			return nil
		}
		printSuccess(r.stdout, fmt.Sprintf("Wrote template %s", stylePath(r.stdout, path)))

	case actionQuit:
		return errQuit
	}

	return nil
}

func (r *sessionRunner) main() error {
	choice, err := r.prompt.Choose("What next?", []huh.Option[string]{
		huh.NewOption("Set Budget", actionSetBudget),
		huh.NewOption("Add Transaction", actionTransaction),
		huh.NewOption("Back to Welcome Screen", actionBack),
		huh.NewOption("Save & Exit", actionSave),
	})
	if err != nil {
		return err
	}

	switch choice {
	case actionSetBudget:
		input, err := r.prompt.Input("Enter budget amount", "1500.00", nil)
		if err != nil {
			return err
		}
		r.controller.SetBudget(r.rt.ctx, input)

	case actionTransaction:
		date, category, amount, description, err := r.prompt.Transaction()
		if err != nil {
			return err
		}
		t, err := session.ParseTransaction(date, category, amount, description)
		if err != nil {
			printError(r.stderr, err.Error())
			return nil
		}
		r.controller.AddTransaction(r.rt.ctx, t)

	case actionBack:
		r.controller.BackToWelcome(r.rt.ctx)

	case actionSave:
		path, err := r.controller.SaveAndExit(r.rt.ctx)
		if err != nil {
			printError(r.stderr, err.Error())
			return nil
		}
		printSuccess(r.stdout, fmt.Sprintf("Saved %s", stylePath(r.stdout, path)))
	}

	return nil
}

// upload loads path; failures are reported and the session carries on.
func (r *sessionRunner) upload(path string) {
	if err := r.controller.Upload(r.rt.ctx, path); err != nil {
		file := &FileOrStdin{Filename: path}
		_, _ = fmt.Fprintln(r.stderr, NewErrorRenderer(r.stderr, file.GetSourceContent()).Render(err))
		return
	}
	r.applyConfiguredLimit()
}

// applyConfiguredLimit sets budget_limit from the config on a fresh
// session.
func (r *sessionRunner) applyConfiguredLimit() {
	if r.rt.cfg.BudgetLimit == "" {
		return
	}
	r.controller.SetBudget(r.rt.ctx, r.rt.cfg.BudgetLimit)
	r.controller.Refresh(r.rt.ctx)
}

func validateExistingFile(path string) error {
	if path == "" {
		return errors.New("enter a file path")
	}
	if _, err := loader.FormatFromPath(path); err != nil {
		return errors.New("choose an .xlsx or .csv file")
	}
	if _, err := os.Stat(path); err != nil {
		return errors.New("file does not exist")
	}
	return nil
}

// huhPrompter asks questions with huh forms.
type huhPrompter struct{}

func (huhPrompter) Choose(title string, options []huh.Option[string]) (string, error) {
	var choice string
	err := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&choice).
		Run()
	return choice, err
}

func (huhPrompter) Input(title, placeholder string, validate func(string) error) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		field = field.Validate(validate)
	}
	err := field.Run()
	return value, err
}

func (huhPrompter) Transaction() (date, category, amount, description string, err error) {
	date = time.Now().Format(budget.DateLayout)

	categories := make([]huh.Option[string], 0, len(budget.AllCategories()))
	for _, c := range budget.AllCategories() {
		categories = append(categories, huh.NewOption(c.Title(), string(c)))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Value(&date).
				Validate(func(s string) error {
					_, err := budget.ParseTransactionDate(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Category").
				Options(categories...).
				Value(&category),
			huh.NewInput().
				Title("Amount").
				Placeholder("12.50").
				Value(&amount).
				Validate(func(s string) error {
					_, err := budget.ParseAmount(s)
					return err
				}),
			huh.NewInput().
				Title("Description").
				Value(&description),
		),
	)

	err = form.Run()
	return date, category, amount, description, err
}
