package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

const maxLineText = 60

// ListView renders a framed task list with a header, progress bar and
// either a flat list or one section per status.
func (t Theme) ListView(heading string, tasks []model.Task, group bool) string {
	counts := map[model.Status]int{}
	for _, task := range tasks {
		counts[task.Status]++
	}
	done := counts[model.StatusDone]

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d  %s %d",
		t.Title.Render(heading),
		t.Success.Render(t.BoxDone), done,
		t.Pending.Render(t.BoxProgress), counts[model.StatusInProgress],
		t.Muted.Render(t.BoxTodo), counts[model.StatusTodo],
		t.Accent.Render("Total"), len(tasks),
	)

	lines := []string{header, t.Muted.Render(t.ProgressBar(done, len(tasks), 28)), ""}
	if group {
		lines = append(lines, t.groupLines(tasks)...)
	} else {
		lines = append(lines, t.flatLines(tasks)...)
	}
	return t.Panel(lines)
}

func (t Theme) flatLines(tasks []model.Task) []string {
	if len(tasks) == 0 {
		return []string{t.Muted.Render("No tasks found.")}
	}
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, t.TaskLine(task))
	}
	return out
}

func (t Theme) groupLines(tasks []model.Task) []string {
	var lines []string
	for i, status := range model.Statuses() {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, t.Accent.Render(StatusLabel(status)))
		var section []model.Task
		for _, task := range tasks {
			if task.Status == status {
				section = append(section, task)
			}
		}
		if len(section) == 0 {
			lines = append(lines, t.Muted.Render("(none)"))
			continue
		}
		for _, task := range section {
			lines = append(lines, t.TaskLine(task))
		}
	}
	return lines
}

// TaskLine renders one row: id, status box, title and a muted description.
func (t Theme) TaskLine(task model.Task) string {
	title := truncate(oneLine(task.Title), maxLineText)
	if task.IsDone() {
		title = t.DoneText.Render(title)
	}
	line := fmt.Sprintf("%s %s %s",
		t.Muted.Render(fmt.Sprintf("%3d.", task.ID)),
		t.StatusStyle(task.Status).Render(t.Box(task.Status)),
		title,
	)
	if d := oneLine(task.Description); d != "" {
		line += "  " + t.Muted.Render(truncate(d, maxLineText))
	}
	return line
}

// TaskDetail renders every field of a task, one per line.
func (t Theme) TaskDetail(task model.Task) string {
	label := func(s string) string { return t.Accent.Render(fmt.Sprintf("%-12s", s)) }
	lines := []string{
		label("ID") + fmt.Sprintf("%d", task.ID),
		label("Title") + task.Title,
		label("Description") + task.Description,
		label("Status") + t.StatusStyle(task.Status).Render(t.Box(task.Status)+" "+string(task.Status)),
		label("Created") + task.CreatedAt.String(),
		label("Updated") + task.UpdatedAt.String(),
	}
	return t.Panel(lines)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
