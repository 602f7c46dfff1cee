package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"moneylens/internal/models"
	"moneylens/internal/optional"
)

type categoriesLoadedMsg struct {
	gen  int
	rows []models.CategoryWithUsage
	err  error
}

type categorySavedMsg struct {
	status string
	err    error
}

type categoryDeletedMsg struct {
	name   string
	result *models.SafeDeleteResult
	err    error
}

type categoryFormMode int

const (
	categoryCreate categoryFormMode = iota
	categoryRename
)

// categoriesPage manages the categories of one transaction type at a time.
type categoriesPage struct {
	backend Backend

	tab    int
	gen    int
	loaded bool

	loading bool
	rows    []models.CategoryWithUsage
	cursor  int

	form     *form
	formMode categoryFormMode
	renaming *models.CategoryWithUsage

	status    string
	statusErr bool
}

func newCategoriesPage(backend Backend) categoriesPage {
	return categoriesPage{backend: backend}
}

func (p *categoriesPage) txType() models.TransactionType {
	return models.TransactionTypes[p.tab]
}

func (p *categoriesPage) setStatus(s string, isErr bool) {
	p.status, p.statusErr = s, isErr
}

// load lists the categories of the selected type. Responses from an older
// generation are dropped on arrival.
func (p *categoriesPage) load() tea.Cmd {
	p.gen++
	p.loaded, p.loading = true, true
	gen, txType, backend := p.gen, p.txType(), p.backend

	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		rows, err := backend.ListCategories(ctx, &txType)
		return categoriesLoadedMsg{gen: gen, rows: rows, err: err}
	}
}

func (p *categoriesPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case categoriesLoadedMsg:
		if msg.gen != p.gen {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.setStatus(msg.err.Error(), true)
			return nil
		}
		p.rows = sortCategories(msg.rows)
		if p.cursor >= len(p.rows) {
			p.cursor = max(len(p.rows)-1, 0)
		}
		return nil

	case categorySavedMsg:
		if msg.err != nil {
			p.setStatus(msg.err.Error(), true)
			return nil
		}
		p.form, p.renaming = nil, nil
		p.setStatus(msg.status, false)
		return p.load()

	case categoryDeletedMsg:
		switch {
		case msg.err != nil:
			p.setStatus(msg.err.Error(), true)
			return nil
		case !msg.result.Deleted:
			p.setStatus(fmt.Sprintf("%s is used by %d transaction(s) and was not deleted", msg.name, msg.result.BlockingUsageCount), true)
			return nil
		}
		p.setStatus("Deleted "+msg.name, false)
		return p.load()

	case tea.KeyMsg:
		if p.form != nil {
			return p.updateForm(msg)
		}
		return p.updateList(msg)
	}
	return nil
}

func sortCategories(rows []models.CategoryWithUsage) []models.CategoryWithUsage {
	sorted := append([]models.CategoryWithUsage(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

func (p *categoriesPage) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
	case "left", "h":
		p.tab = (p.tab - 1 + len(models.TransactionTypes)) % len(models.TransactionTypes)
		p.cursor = 0
		return p.load()
	case "right", "l":
		p.tab = (p.tab + 1) % len(models.TransactionTypes)
		p.cursor = 0
		return p.load()
	case "R":
		return p.load()
	case "a":
		p.form, p.formMode = newForm("New "+string(p.txType())+" category", "Name", "Description"), categoryCreate
	case "e":
		if row := p.selected(); row != nil {
			f := newForm("Rename category", "Name")
			f.set(0, row.Name)
			p.form, p.formMode, p.renaming = f, categoryRename, row
		}
	case "d":
		if row := p.selected(); row != nil {
			return p.deleteCmd(row)
		}
	}
	return nil
}

func (p *categoriesPage) selected() *models.CategoryWithUsage {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return nil
	}
	row := p.rows[p.cursor]
	return &row
}

func (p *categoriesPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch p.form.handleKey(msg) {
	case formCancel:
		p.form, p.renaming = nil, nil
	case formSubmit:
		if p.formMode == categoryRename {
			return p.submitRename()
		}
		return p.submitCreate()
	}
	return nil
}

func (p *categoriesPage) submitCreate() tea.Cmd {
	name := strings.TrimSpace(p.form.value(0))
	if name == "" {
		p.setStatus("Name is required", true)
		return nil
	}
	input := models.CategoryInput{
		Type:        p.txType(),
		Name:        name,
		Description: optionalText(p.form.value(1)),
	}

	backend := p.backend
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if _, err := backend.CreateCategory(ctx, input); err != nil {
			return categorySavedMsg{err: err}
		}
		return categorySavedMsg{status: "Created " + input.Name}
	}
}

func (p *categoriesPage) submitRename() tea.Cmd {
	name := strings.TrimSpace(p.form.value(0))
	if name == "" {
		p.setStatus("Name is required", true)
		return nil
	}
	if name == p.renaming.Name {
		p.form, p.renaming = nil, nil
		return nil
	}

	backend, id := p.backend, p.renaming.ID
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if _, err := backend.UpdateCategory(ctx, id, models.ReferenceChanges{Name: optional.Of(name)}); err != nil {
			return categorySavedMsg{err: err}
		}
		return categorySavedMsg{status: "Renamed to " + name}
	}
}

func (p *categoriesPage) deleteCmd(row *models.CategoryWithUsage) tea.Cmd {
	backend, id, name := p.backend, row.ID, row.Name
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		result, err := backend.SafeDelete(ctx, models.ReferenceCategory, id)
		return categoryDeletedMsg{name: name, result: result, err: err}
	}
}

func (p *categoriesPage) view() string {
	var b strings.Builder
	for i, t := range models.TransactionTypes {
		label := string(t)
		if i == p.tab {
			b.WriteString(activeTabStyle.Render(typeStyle(t).Render(label)))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	if p.loading {
		b.WriteString(mutedStyle.Render("  loading..."))
	}
	b.WriteString("\n\n")

	if p.form != nil {
		b.WriteString(p.form.view())
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-24s %6s  %s", "NAME", "USED", "DESCRIPTION")))
	b.WriteString("\n")
	if len(p.rows) == 0 && !p.loading {
		b.WriteString(mutedStyle.Render("  No categories") + "\n")
	}
	for i, row := range p.rows {
		line := fmt.Sprintf("%-24s %6d  %s", truncate(row.Name, 24), row.InUseCount, deref(row.Description))
		if i == p.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(rowStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + mutedStyle.Render("←/→ type · a add · e rename · d delete · R reload"))
	return b.String()
}
