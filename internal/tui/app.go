package tui

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ledgerly-app/ledgerly/internal/ledgerview"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

// PageEntry is the name of the add-transaction form page.
const PageEntry = "entry"

var tableHeaders = []string{"Code", "Date", "Type", "Amount", "Running Balance"}

// App is the terminal front-end of the ledger view. It implements
// ledgerview.Renderer, Notifier and EntryForm; all state transitions live in
// the controller, the App only draws.
type App struct {
	tv        *tview.Application
	pages     *tview.Pages
	table     *tview.Table
	balance   *tview.TextView
	status    *tview.TextView
	footer    *tview.TextView
	form      *tview.Form
	formError *tview.TextView

	controller *ledgerview.Controller
	logger     *logger.Logger

	filter ledgerview.Filter
}

// New builds the application layout. SetController must be called before Run.
func New(log *logger.Logger) *App {
	a := &App{
		tv:     tview.NewApplication(),
		logger: log.WithField("component", "tui"),
	}

	a.balance = tview.NewTextView().SetDynamicColors(true)
	a.status = tview.NewTextView().SetDynamicColors(true)
	a.footer = tview.NewTextView().SetDynamicColors(true)

	a.table = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	a.table.SetBorder(true).SetTitle(" Transactions ")

	a.formError = tview.NewTextView().SetDynamicColors(true)
	a.form = tview.NewForm().
		AddDropDown("Type", []string{"deposit", "expense"}, 0, nil).
		AddInputField("Amount", "", 20, nil, nil)
	a.form.AddButton("Save", a.submit)
	a.form.AddButton("Cancel", a.hideEntry)
	a.form.SetBorder(true).SetTitle(" Add Transaction ")

	entry := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.form, 0, 1, true).
		AddItem(a.formError, 1, 0, false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.balance, 1, 0, false).
		AddItem(a.table, 0, 1, true).
		AddItem(a.footer, 1, 0, false).
		AddItem(a.status, 1, 0, false)

	a.pages = tview.NewPages().
		AddPage("main", main, true, true).
		AddPage(PageEntry, modal(entry, 44, 11), true, false)

	a.tv.SetRoot(a.pages, true)
	a.tv.SetInputCapture(a.handleKey)

	return a
}

// modal centers a primitive at a fixed size.
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// SetController wires the controller after construction; the two reference
// each other.
func (a *App) SetController(c *ledgerview.Controller) {
	a.controller = c
}

// Run hydrates the view with the first page and enters the UI loop.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.controller.FetchPage(ctx, "", ledgerview.FilterAll, false); err != nil {
			a.logger.WithError(err).Error("initial fetch failed")
		}
	}()
	return a.tv.Run()
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if name, _ := a.pages.GetFrontPage(); name == PageEntry {
		return event
	}
	switch event.Rune() {
	case 'q':
		a.tv.Stop()
		return nil
	case 'a':
		a.formError.SetText("")
		a.pages.ShowPage(PageEntry)
		a.tv.SetFocus(a.form)
		return nil
	case 'i':
		go a.controller.ImportFromExternalSource(context.Background()) //nolint:errcheck
		return nil
	case 'm':
		go a.controller.LoadMore(context.Background()) //nolint:errcheck
		return nil
	case 'f':
		go a.controller.SetFilter(context.Background(), nextFilter(a.filter)) //nolint:errcheck
		return nil
	}
	return event
}

func nextFilter(f ledgerview.Filter) ledgerview.Filter {
	switch f {
	case ledgerview.FilterAll:
		return ledgerview.FilterDeposit
	case ledgerview.FilterDeposit:
		return ledgerview.FilterExpense
	default:
		return ledgerview.FilterAll
	}
}

func (a *App) submit() {
	_, txType := a.form.GetFormItem(0).(*tview.DropDown).GetCurrentOption()
	amount := a.form.GetFormItem(1).(*tview.InputField).GetText()
	go a.controller.SubmitTransaction(context.Background(), ledgerview.Type(txType), amount) //nolint:errcheck
}

// Render implements ledgerview.Renderer.
func (a *App) Render(s ledgerview.State) {
	a.tv.QueueUpdateDraw(func() {
		a.filter = s.Filter

		if s.HasBalance {
			a.balance.SetText(fmt.Sprintf("[::b]Total Balance:[-:-:-] %s", s.TotalBalance.StringFixed(2)))
		} else {
			a.balance.SetText("[::b]Total Balance:[-:-:-] —")
		}

		a.table.Clear()
		for col, h := range tableHeaders {
			a.table.SetCell(0, col, tview.NewTableCell("[yellow::b]"+h).SetSelectable(false))
		}
		if s.Placeholder {
			a.table.SetCell(1, 0, tview.NewTableCell("No transactions found").SetSelectable(false))
		}
		for i, row := range s.Rows {
			color := "[green]"
			if row.Type == ledgerview.TypeExpense {
				color = "[red]"
			}
			a.table.SetCell(i+1, 0, tview.NewTableCell(row.Code))
			a.table.SetCell(i+1, 1, tview.NewTableCell(row.CreatedAt))
			a.table.SetCell(i+1, 2, tview.NewTableCell(row.TypeDisplay))
			a.table.SetCell(i+1, 3, tview.NewTableCell(color+row.AmountDisplay))
			a.table.SetCell(i+1, 4, tview.NewTableCell(row.RunningBalance.StringFixed(2)))
		}

		filter := string(s.Filter)
		if filter == "" {
			filter = "all"
		}
		importing := "i import"
		if s.Importing {
			importing = "importing..."
		}
		pageState := ""
		if s.Pagination.Visible || s.Pagination.Label == ledgerview.LabelNoMore {
			pageState = fmt.Sprintf("  [m %s]", s.Pagination.Label)
		}
		a.footer.SetText(fmt.Sprintf("[gray]filter: %s  [a add]  [%s]%s  [f filter]  [q quit]", filter, importing, pageState))
	})
}

// Success implements ledgerview.Notifier.
func (a *App) Success(message string) {
	a.tv.QueueUpdateDraw(func() {
		a.status.SetText("[green]" + tview.Escape(message))
	})
}

// Failure implements ledgerview.Notifier.
func (a *App) Failure(message string) {
	a.tv.QueueUpdateDraw(func() {
		a.status.SetText("[red]" + tview.Escape(message))
	})
}

// ShowError implements ledgerview.EntryForm.
func (a *App) ShowError(message string) {
	a.tv.QueueUpdateDraw(func() {
		a.formError.SetText("[red]" + tview.Escape(message))
	})
}

// Close implements ledgerview.EntryForm. It is only called from controller
// goroutines, never from the UI event loop; hideEntry is the direct variant
// for in-loop handlers.
func (a *App) Close() {
	a.tv.QueueUpdateDraw(a.hideEntry)
}

func (a *App) hideEntry() {
	a.formError.SetText("")
	a.form.GetFormItem(1).(*tview.InputField).SetText("")
	a.pages.HidePage(PageEntry)
	a.tv.SetFocus(a.table)
}
