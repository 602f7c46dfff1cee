package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"moneylens/internal/models"
	"moneylens/internal/optional"
)

const spendPageSize = 20

// Spend form field order.
const (
	fieldDate = iota
	fieldAmount
	fieldCategory
	fieldBankAccount
	fieldTags
	fieldNotes
)

type spendLoadedMsg struct {
	gen    int
	totals []models.MonthlyTotal
	txs    []models.Transaction
	err    error
}

type spendSavedMsg struct {
	status string
	err    error
}

// spendPage lists one month of spending, a page at a time.
type spendPage struct {
	backend Backend
	now     func() time.Time

	month models.Date
	page  int
	gen   int

	loading bool
	totals  []models.MonthlyTotal
	txs     []models.Transaction
	cursor  int

	form    *form
	editing *models.Transaction

	status    string
	statusErr bool
}

func newSpendPage(backend Backend, now func() time.Time) spendPage {
	return spendPage{
		backend: backend,
		now:     now,
		month:   models.DateOf(now()).MonthStart(),
	}
}

// load fetches the month's totals and the current page of spend rows. Only
// the response tagged with the latest generation is applied.
func (p *spendPage) load() tea.Cmd {
	p.gen++
	p.loading = true
	gen, month, offset := p.gen, p.month, p.page*spendPageSize
	backend := p.backend

	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()

		spend := models.TransactionTypeSpend
		from, to := month.MonthStart(), month.MonthEnd()
		msg := spendLoadedMsg{gen: gen}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.totals, err = backend.MonthlyTotals(ctx, &from)
			return err
		})
		g.Go(func() error {
			var err error
			msg.txs, err = backend.ListTransactions(ctx, models.TransactionFilter{
				Type:     &spend,
				From:     &from,
				To:       &to,
				OrderBy:  "date",
				OrderDir: models.OrderDesc,
				Limit:    spendPageSize,
				Offset:   offset,
			})
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (p *spendPage) setStatus(s string, isErr bool) {
	p.status, p.statusErr = s, isErr
}

func (p *spendPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spendLoadedMsg:
		if msg.gen != p.gen {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.setStatus(msg.err.Error(), true)
			return nil
		}
		p.totals, p.txs = msg.totals, msg.txs
		if p.cursor >= len(p.txs) {
			p.cursor = max(len(p.txs)-1, 0)
		}
		return nil

	case spendSavedMsg:
		if msg.err != nil {
			p.setStatus(msg.err.Error(), true)
			return nil
		}
		p.form, p.editing = nil, nil
		p.setStatus(msg.status, false)
		return p.load()

	case tea.KeyMsg:
		if p.form != nil {
			return p.updateForm(msg)
		}
		return p.updateList(msg)
	}
	return nil
}

func (p *spendPage) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.txs)-1 {
			p.cursor++
		}
	case "left", "h":
		p.month, p.page, p.cursor = p.month.AddDays(-1).MonthStart(), 0, 0
		return p.load()
	case "right", "l":
		p.month, p.page, p.cursor = p.month.MonthEnd().AddDays(1), 0, 0
		return p.load()
	case "[":
		if p.page > 0 {
			p.page, p.cursor = p.page-1, 0
			return p.load()
		}
	case "]":
		if len(p.txs) == spendPageSize {
			p.page, p.cursor = p.page+1, 0
			return p.load()
		}
	case "R":
		return p.load()
	case "a":
		p.openForm(nil)
	case "e":
		if tx := p.selected(); tx != nil {
			p.openForm(tx)
		}
	case "d":
		if tx := p.selected(); tx != nil {
			return p.deleteCmd(tx.ID)
		}
	}
	return nil
}

func (p *spendPage) selected() *models.Transaction {
	if p.cursor < 0 || p.cursor >= len(p.txs) {
		return nil
	}
	tx := p.txs[p.cursor]
	return &tx
}

func (p *spendPage) openForm(tx *models.Transaction) {
	title := "New spend"
	if tx != nil {
		title = "Edit spend"
	}
	f := newForm(title, "Date", "Amount", "Category", "Bank account", "Tags", "Notes")
	if tx == nil {
		date := models.DateOf(p.now())
		if !date.MonthStart().Equal(p.month.Time) {
			date = p.month
		}
		f.set(fieldDate, date.String())
	} else {
		f.set(fieldDate, tx.Date.String())
		f.set(fieldAmount, tx.Amount.String())
		f.set(fieldCategory, deref(tx.Category))
		f.set(fieldBankAccount, deref(tx.BankAccount))
		f.set(fieldTags, strings.Join(tx.Tags, ", "))
		f.set(fieldNotes, deref(tx.Notes))
	}
	p.form, p.editing = f, tx
}

func (p *spendPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch p.form.handleKey(msg) {
	case formCancel:
		p.form, p.editing = nil, nil
	case formSubmit:
		if p.editing == nil {
			return p.submitCreate()
		}
		return p.submitEdit()
	}
	return nil
}

func (p *spendPage) submitCreate() tea.Cmd {
	date, err := models.ParseDate(p.form.value(fieldDate))
	if err != nil {
		p.setStatus(err.Error(), true)
		return nil
	}
	amount, err := models.ParseAmount(p.form.value(fieldAmount))
	if err != nil {
		p.setStatus(err.Error(), true)
		return nil
	}
	input := models.TransactionInput{
		Date:        date,
		Amount:      models.AmountOf(amount),
		Category:    optionalText(p.form.value(fieldCategory)),
		BankAccount: optionalText(p.form.value(fieldBankAccount)),
		Tags:        models.SplitTags(p.form.value(fieldTags)),
		Notes:       optionalText(p.form.value(fieldNotes)),
	}

	backend := p.backend
	p.setStatus("Saving...", false)
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if _, err := backend.CreateTransaction(ctx, models.TransactionTypeSpend, input); err != nil {
			return spendSavedMsg{err: err}
		}
		return spendSavedMsg{status: "Spend added"}
	}
}

// editChanges compares the form with the row being edited and keeps only
// the fields the user changed.
func (p *spendPage) editChanges() (models.TransactionChanges, error) {
	var changes models.TransactionChanges
	tx := p.editing

	if v := strings.TrimSpace(p.form.value(fieldDate)); v != tx.Date.String() {
		date, err := models.ParseDate(v)
		if err != nil {
			return changes, err
		}
		changes.Date = optional.Of(date)
	}
	if v := strings.TrimSpace(p.form.value(fieldAmount)); v != tx.Amount.String() {
		amount, err := models.ParseAmount(v)
		if err != nil {
			return changes, err
		}
		if !amount.Equal(tx.Amount) {
			changes.Amount = optional.Of(amount)
		}
	}
	if v := optionalText(p.form.value(fieldCategory)); deref(v) != deref(tx.Category) {
		changes.Category = optional.FromPtr(v)
	}
	if v := optionalText(p.form.value(fieldBankAccount)); deref(v) != deref(tx.BankAccount) {
		changes.BankAccount = optional.FromPtr(v)
	}
	if v := models.SplitTags(p.form.value(fieldTags)); strings.Join(v, ",") != strings.Join(tx.Tags, ",") {
		changes.Tags = optional.Of([]string(v))
	}
	if v := optionalText(p.form.value(fieldNotes)); deref(v) != deref(tx.Notes) {
		changes.Notes = optional.FromPtr(v)
	}
	return changes, nil
}

func (p *spendPage) submitEdit() tea.Cmd {
	changes, err := p.editChanges()
	if err != nil {
		p.setStatus(err.Error(), true)
		return nil
	}
	if changes.Empty() {
		p.form, p.editing = nil, nil
		p.setStatus("Nothing changed", false)
		return nil
	}

	backend, id := p.backend, p.editing.ID
	p.setStatus("Saving...", false)
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if _, err := backend.UpdateTransaction(ctx, id, changes); err != nil {
			return spendSavedMsg{err: err}
		}
		return spendSavedMsg{status: "Spend updated"}
	}
}

func (p *spendPage) deleteCmd(id string) tea.Cmd {
	backend := p.backend
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if err := backend.DeleteTransaction(ctx, id); err != nil {
			return spendSavedMsg{err: err}
		}
		return spendSavedMsg{status: "Spend deleted"}
	}
}

func (p *spendPage) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.month.Format("January 2006")))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  page %d", p.page+1)))
	if p.loading {
		b.WriteString(mutedStyle.Render("  loading..."))
	}
	b.WriteString("\n")

	var parts []string
	for _, t := range models.TransactionTypes {
		total := "0"
		for _, row := range p.totals {
			if row.Type == t {
				total = row.Total.StringFixed(2)
			}
		}
		parts = append(parts, typeStyle(t).Render(string(t))+" "+total)
	}
	b.WriteString(strings.Join(parts, "   ") + "\n\n")

	if p.form != nil {
		b.WriteString(p.form.view())
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s %10s  %-18s %-16s %-20s %s", "DATE", "AMOUNT", "CATEGORY", "ACCOUNT", "TAGS", "NOTES")))
	b.WriteString("\n")
	if len(p.txs) == 0 && !p.loading {
		b.WriteString(mutedStyle.Render("  No spending this month") + "\n")
	}
	for i, tx := range p.txs {
		line := fmt.Sprintf("%-10s %10s  %-18s %-16s %-20s %s",
			tx.Date.String(), tx.Amount.StringFixed(2),
			truncate(deref(tx.Category), 18), truncate(deref(tx.BankAccount), 16),
			truncate(strings.Join(tx.Tags, ","), 20), deref(tx.Notes))
		if i == p.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(rowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + mutedStyle.Render("←/→ month · [/] page · a add · e edit · d delete · R reload"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
