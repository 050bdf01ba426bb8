package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// TaskStore is the subset of the store the browser drives.
type TaskStore interface {
	List() []model.Task
	Start(id int) (model.Task, error)
	Finish(id int) (model.Task, error)
	Delete(id int) error
	Update(id int, title, description string) (model.Task, error)
}

// listItem adapts a task to bubbles/list.Item.
type listItem struct {
	task model.Task
}

func (i listItem) FilterValue() string { return i.task.Title + " " + i.task.Description }

type browseKeys struct {
	start, finish, remove, edit key.Binding
}

func newBrowseKeys() browseKeys {
	return browseKeys{
		start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		finish: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
	}
}

func (k browseKeys) bindings() []key.Binding {
	return []key.Binding{k.start, k.finish, k.remove, k.edit}
}

// itemDelegate renders one task per line.
type itemDelegate struct {
	theme Theme
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.theme.Selected.Render(">") + " "
	}
	fmt.Fprint(w, prefix+d.theme.TaskLine(it.task))
}

// browseModel is the Bubble Tea model behind the browse command. Every
// action goes straight to the store, which persists it before returning.
type browseModel struct {
	store TaskStore
	theme Theme
	keys  browseKeys
	list  list.Model

	editing bool
	editID  int
	input   textinput.Model

	status  string
	err     error
	changes int
}

func newBrowseModel(s TaskStore, theme Theme) browseModel {
	keys := newBrowseKeys()
	l := list.New(nil, itemDelegate{theme: theme}, 0, 0)
	l.Title = "Tasks"
	l.Styles.Title = theme.Title
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Filter = list.UnsortedFilter
	l.SetStatusBarItemName("task", "tasks")
	l.FilterInput.Prompt = "/ "
	l.AdditionalShortHelpKeys = keys.bindings
	l.AdditionalFullHelpKeys = keys.bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := browseModel{store: s, theme: theme, keys: keys, list: l, input: ti}
	m.reload()
	return m
}

// reload refreshes the list from the store. With a filter applied the
// returned command recomputes the visible matches.
func (m *browseModel) reload() tea.Cmd {
	tasks := m.store.List()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, listItem{task: t})
	}
	return m.list.SetItems(items)
}

// clampSelection keeps the cursor on a visible row after items disappear.
func (m *browseModel) clampSelection() {
	if n := len(m.list.VisibleItems()); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
}

func (m browseModel) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

// apply runs a store action on the selected task and refreshes the list.
func (m browseModel) apply(verb string, fn func(id int) error) (browseModel, tea.Cmd) {
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	if err := fn(task.ID); err != nil {
		m.err = err
		m.status = fmt.Sprintf("%s #%d failed: %v", verb, task.ID, err)
		return m, nil
	}
	m.err = nil
	m.changes++
	m.status = fmt.Sprintf("%s #%d", verb, task.ID)
	cmd := m.reload()
	m.clampSelection()
	return m, cmd
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(ws.Width-4, ws.Height-6)
		m.input.Width = ws.Width - 8
		return m, nil
	}
	if fm, ok := msg.(list.FilterMatchesMsg); ok {
		m.list, _ = m.list.Update(fm)
		m.clampSelection()
		return m, nil
	}

	if m.editing {
		return m.updateEdit(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case km.String() == "q" || km.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(km, m.keys.start):
		return m.apply("started", func(id int) error { _, err := m.store.Start(id); return err })
	case key.Matches(km, m.keys.finish):
		return m.apply("finished", func(id int) error { _, err := m.store.Finish(id); return err })
	case key.Matches(km, m.keys.remove):
		return m.apply("deleted", m.store.Delete)
	case key.Matches(km, m.keys.edit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editID = task.ID
		m.input.SetValue(task.Title)
		m.input.CursorEnd()
		m.input.Placeholder = "Task title..."
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			title := strings.TrimSpace(m.input.Value())
			if title == "" {
				m.status = "Title cannot be empty"
				return m, nil
			}
			m.editing = false
			m.input.Blur()
			task, ok := m.selected()
			if !ok || task.ID != m.editID {
				m.status = "Selection changed while editing"
				return m, nil
			}
			return m.apply("updated", func(id int) error {
				_, err := m.store.Update(id, title, task.Description)
				return err
			})
		case "esc":
			m.editing = false
			m.input.Blur()
			m.status = ""
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	content := m.list.View()
	if m.editing {
		content += "\n" + m.theme.Frame.Render("Edit title\n"+m.input.View())
	}
	if m.status != "" {
		style := m.theme.Muted
		if m.err != nil {
			style = m.theme.Error
		}
		content += "\n" + style.Render(m.status)
	}
	return m.theme.Frame.Render(content)
}

// Browse runs the interactive task list until the user quits and reports
// how many changes were saved.
func Browse(s TaskStore, theme Theme, opts ...tea.ProgramOption) (int, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(newBrowseModel(s, theme), opts...).Run()
	if err != nil {
		return 0, err
	}
	fm, ok := final.(browseModel)
	if !ok {
		return 0, nil
	}
	return fm.changes, nil
}
