package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type pageID int

const (
	pageSpend pageID = iota
	pageCategories
)

// Model is the root bubbletea model. It routes keys to the active page and
// load results to the page that asked for them.
type Model struct {
	active     pageID
	spend      spendPage
	categories categoriesPage
	width      int
}

// New builds the program model over backend.
func New(backend Backend) Model {
	return newModel(backend, time.Now)
}

func newModel(backend Backend, now func() time.Time) Model {
	return Model{
		spend:      newSpendPage(backend, now),
		categories: newCategoriesPage(backend),
	}
}

// startMsg triggers the first load once the program owns the model.
type startMsg struct{}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m Model) formOpen() bool {
	switch m.active {
	case pageCategories:
		return m.categories.form != nil
	default:
		return m.spend.form != nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case startMsg:
		return m, m.spend.load()

	case spendLoadedMsg, spendSavedMsg:
		return m, m.spend.update(msg)

	case categoriesLoadedMsg, categorySavedMsg, categoryDeletedMsg:
		return m, m.categories.update(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if !m.formOpen() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.active = pageSpend
				return m, nil
			case "2":
				m.active = pageCategories
				if !m.categories.loaded {
					return m, m.categories.load()
				}
				return m, nil
			}
		}
		if m.active == pageCategories {
			return m, m.categories.update(msg)
		}
		return m, m.spend.update(msg)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MoneyLens") + "  ")
	for id, label := range []string{"1 Spend", "2 Categories"} {
		if pageID(id) == m.active {
			b.WriteString(activeTabStyle.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	b.WriteString("\n\n")

	status, isErr := m.spend.status, m.spend.statusErr
	if m.active == pageCategories {
		b.WriteString(m.categories.view())
		status, isErr = m.categories.status, m.categories.statusErr
	} else {
		b.WriteString(m.spend.view())
	}

	b.WriteString("\n")
	if status != "" {
		if isErr {
			b.WriteString(errorStyle.Render(status))
		} else {
			b.WriteString(statusStyle.Render(status))
		}
	}
	b.WriteString("\n" + mutedStyle.Render("1/2 switch page · q quit"))
	return b.String()
}
