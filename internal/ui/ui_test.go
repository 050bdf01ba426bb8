package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

func plainTheme(name string) Theme {
	return NewTheme(name, lipgloss.NewRenderer(&bytes.Buffer{}))
}

func task(id int, title string, status model.Status) model.Task {
	t := model.NewTask(id, title, "desc "+title, time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local))
	t.Status = status
	return t
}

func TestPrinter(t *testing.T) {
	var out, errw bytes.Buffer
	p := NewPrinter(&out, &errw, "classic")
	p.OK("added")
	p.Fail("boom")
	p.Hint("try again")

	if got := out.String(); got != "✔ added\n" {
		t.Errorf("OK: got %q", got)
	}
	if got := errw.String(); got != "✖ boom\ntry again\n" {
		t.Errorf("Fail+Hint: got %q", got)
	}
}

func TestPrinterMonoSymbols(t *testing.T) {
	var out, errw bytes.Buffer
	p := NewPrinter(&out, &errw, "mono")
	p.OK("saved")
	p.Fail("nope")
	if out.String() != "ok: saved\n" || errw.String() != "error: nope\n" {
		t.Errorf("mono output: %q / %q", out.String(), errw.String())
	}
}

func TestProgressBar(t *testing.T) {
	th := plainTheme("mono")
	tests := []struct {
		done, total, width int
		want               string
	}{
		{0, 0, 10, "----------   0%"},
		{1, 2, 10, "#####-----  50%"},
		{3, 3, 4, "##### 100%"},
	}
	for _, tt := range tests {
		if got := th.ProgressBar(tt.done, tt.total, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%d,%d,%d) = %q, want %q", tt.done, tt.total, tt.width, got, tt.want)
		}
	}
}

func TestListViewFlat(t *testing.T) {
	th := plainTheme("mono")
	view := th.ListView("Tasks", []model.Task{
		task(1, "Buy milk", model.StatusTodo),
		task(2, "Write report", model.StatusInProgress),
		task(3, "Call mom", model.StatusDone),
	}, false)

	for _, want := range []string{"Tasks", "Total 3", "1. [ ] Buy milk", "2. [~] Write report", "3. [x] Call mom", " 33%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.HasPrefix(view, "+") {
		t.Errorf("expected ASCII frame, got:\n%s", view)
	}
}

func TestListViewEmptyAndGrouped(t *testing.T) {
	th := plainTheme("mono")
	if view := th.ListView("Done", nil, false); !strings.Contains(view, "No tasks found.") {
		t.Errorf("empty view:\n%s", view)
	}

	view := th.ListView("Tasks", []model.Task{
		task(1, "a", model.StatusTodo),
		task(2, "b", model.StatusDone),
	}, true)
	progress := strings.Index(view, "In progress")
	todo := strings.Index(view, "Todo")
	done := strings.Index(view, "Done")
	if progress < 0 || todo < progress || done < todo {
		t.Fatalf("sections out of order:\n%s", view)
	}
	if !strings.Contains(view[progress:todo], "(none)") {
		t.Errorf("empty in-progress section should say (none):\n%s", view)
	}
}

func TestTaskLineFlattensAndTruncates(t *testing.T) {
	th := plainTheme("mono")
	long := strings.Repeat("x", 100)
	line := th.TaskLine(model.Task{ID: 12, Title: "multi\nline\ttitle", Description: long, Status: model.StatusTodo})
	if !strings.Contains(line, "multi line title") {
		t.Errorf("title not flattened: %q", line)
	}
	if !strings.Contains(line, strings.Repeat("x", maxLineText-3)+"...") || strings.Contains(line, long) {
		t.Errorf("description not truncated: %q", line)
	}
}

func TestTaskDetail(t *testing.T) {
	th := plainTheme("mono")
	view := th.TaskDetail(task(7, "Buy milk", model.StatusInProgress))
	for _, want := range []string{"ID          7", "Title       Buy milk", "Status      [~] in_progress", "Created     2026-10-19 08:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail missing %q:\n%s", want, view)
		}
	}
}

// fakeStore records calls made by the browser.
type fakeStore struct {
	tasks []model.Task
	calls []string
	fail  error
}

func (f *fakeStore) List() []model.Task { return append([]model.Task(nil), f.tasks...) }

func (f *fakeStore) find(id int) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeStore) set(id int, s model.Status, call string) (model.Task, error) {
	f.calls = append(f.calls, call)
	if f.fail != nil {
		return model.Task{}, f.fail
	}
	i := f.find(id)
	f.tasks[i].Status = s
	return f.tasks[i], nil
}

func (f *fakeStore) Start(id int) (model.Task, error)  { return f.set(id, model.StatusInProgress, "start") }
func (f *fakeStore) Finish(id int) (model.Task, error) { return f.set(id, model.StatusDone, "finish") }

func (f *fakeStore) Delete(id int) error {
	f.calls = append(f.calls, "delete")
	i := f.find(id)
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

func (f *fakeStore) Update(id int, title, description string) (model.Task, error) {
	f.calls = append(f.calls, "update:"+title+"|"+description)
	i := f.find(id)
	f.tasks[i].Title = title
	f.tasks[i].Description = description
	return f.tasks[i], nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m browseModel, keys ...string) browseModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		bm, ok := next.(browseModel)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
		m = bm
	}
	return m
}

func newTestBrowser(fs *fakeStore) browseModel {
	m := newBrowseModel(fs, plainTheme("mono"))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(browseModel)
}

func TestBrowseActions(t *testing.T) {
	fs := &fakeStore{tasks: []model.Task{
		task(1, "first", model.StatusTodo),
		task(2, "second", model.StatusTodo),
	}}
	m := newTestBrowser(fs)

	m = send(t, m, "s")
	if fs.tasks[0].Status != model.StatusInProgress {
		t.Errorf("start: status %s", fs.tasks[0].Status)
	}
	m = send(t, m, "j", "f")
	if fs.tasks[1].Status != model.StatusDone {
		t.Errorf("finish on second row: status %s", fs.tasks[1].Status)
	}
	m = send(t, m, "d")
	if len(fs.tasks) != 1 || fs.tasks[0].ID != 1 {
		t.Fatalf("delete: remaining %v", fs.tasks)
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list not reloaded: %d items", len(m.list.Items()))
	}
	if m.changes != 3 {
		t.Errorf("changes: got %d, want 3", m.changes)
	}
	if !strings.Contains(m.View(), "deleted #2") {
		t.Errorf("status line missing from view:\n%s", m.View())
	}
}

func TestBrowseEditTitle(t *testing.T) {
	fs := &fakeStore{tasks: []model.Task{task(1, "old", model.StatusTodo)}}
	m := newTestBrowser(fs)

	m = send(t, m, "e")
	if !m.editing {
		t.Fatal("expected edit mode")
	}
	m.input.SetValue("  new title ")
	m = send(t, m, "enter")

	if m.editing {
		t.Error("edit mode should end on enter")
	}
	if len(fs.calls) != 1 || fs.calls[0] != "update:new title|desc old" {
		t.Errorf("calls: %v", fs.calls)
	}

	m = send(t, m, "e", "esc")
	if m.editing || len(fs.calls) != 1 {
		t.Errorf("esc should cancel without saving: editing=%v calls=%v", m.editing, fs.calls)
	}
}

func TestBrowseReportsStoreErrors(t *testing.T) {
	fs := &fakeStore{tasks: []model.Task{task(1, "a", model.StatusTodo)}, fail: errors.New("disk full")}
	m := newTestBrowser(fs)
	m = send(t, m, "s")
	if m.err == nil || m.changes != 0 {
		t.Errorf("expected error and no changes, got err=%v changes=%d", m.err, m.changes)
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Errorf("error not shown:\n%s", m.View())
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestBrowser(&fakeStore{})
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

// settle feeds the list's refilter command back into the model.
func settle(t *testing.T, m browseModel, cmd tea.Cmd) browseModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a refilter command while a filter is applied")
	}
	msg, ok := cmd().(list.FilterMatchesMsg)
	if !ok {
		t.Fatalf("expected list.FilterMatchesMsg, got %T", msg)
	}
	next, _ := m.Update(msg)
	return next.(browseModel)
}

func TestBrowseKeepsFilterAfterActions(t *testing.T) {
	fs := &fakeStore{tasks: []model.Task{
		task(1, "alpha one", model.StatusTodo),
		task(2, "beta", model.StatusTodo),
		task(3, "alpha two", model.StatusTodo),
	}}
	m := newTestBrowser(fs)
	m.list.SetFilterText("alp")
	if got := len(m.list.VisibleItems()); got != 2 {
		t.Fatalf("visible before action: got %d, want 2", got)
	}

	next, cmd := m.Update(keyMsg("s"))
	m = settle(t, next.(browseModel), cmd)
	if got := len(m.list.VisibleItems()); got != 2 {
		t.Fatalf("visible after start: got %d, want 2", got)
	}

	m = send(t, m, "j")
	next, cmd = m.Update(keyMsg("s"))
	m = settle(t, next.(browseModel), cmd)
	if len(fs.calls) != 2 || fs.tasks[2].Status != model.StatusInProgress {
		t.Fatalf("second start should reach task 3: calls=%v status=%s", fs.calls, fs.tasks[2].Status)
	}

	next, cmd = m.Update(keyMsg("d"))
	m = settle(t, next.(browseModel), cmd)
	if got := len(m.list.VisibleItems()); got != 1 {
		t.Fatalf("visible after delete: got %d, want 1", got)
	}
	sel, ok := m.selected()
	if !ok || sel.ID != 1 {
		t.Errorf("selection after deleting the last match: got %+v, %v", sel, ok)
	}
}
