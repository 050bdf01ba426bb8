package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/Makepad-fr/tasktracker/internal/config"
	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/store/jsonstore"
)

func (r *runner) doAdd(a []string) error {
	s, err := r.open()
	if err != nil {
		return err
	}
	t, err := s.Add(a[0], a[1])
	if err != nil {
		return err
	}
	r.p.OK(fmt.Sprintf("added task %d", t.ID))
	return nil
}

func (r *runner) doUpdate(a []string) error {
	id, err := parseID(a[0])
	if err != nil {
		return err
	}
	s, err := r.open()
	if err != nil {
		return err
	}
	if _, err := s.Update(id, a[1], a[2]); err != nil {
		return err
	}
	r.p.OK(fmt.Sprintf("updated task %d", id))
	return nil
}

func (r *runner) doDelete(a []string) error {
	id, err := parseID(a[0])
	if err != nil {
		return err
	}
	s, err := r.open()
	if err != nil {
		return err
	}
	if err := s.Delete(id); err != nil {
		return err
	}
	r.p.OK(fmt.Sprintf("deleted task %d", id))
	return nil
}

func (r *runner) doStart(a []string) error {
	return r.setStatus(a[0], model.StatusInProgress, "marked task %d in progress")
}

func (r *runner) doFinish(a []string) error {
	return r.setStatus(a[0], model.StatusDone, "marked task %d done")
}

func (r *runner) setStatus(arg string, status model.Status, msg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	s, err := r.open()
	if err != nil {
		return err
	}
	if _, err := s.SetStatus(id, status); err != nil {
		return err
	}
	r.p.OK(fmt.Sprintf(msg, id))
	return nil
}

func (r *runner) doGet(a []string) error {
	id, err := parseID(a[0])
	if err != nil {
		return err
	}
	s, err := r.open()
	if err != nil {
		return err
	}
	t, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("get %d: %w", id, store.ErrNotFound)
	}
	r.p.Println(r.p.Theme().TaskDetail(t))
	return nil
}

func (r *runner) doList(cmd string) error {
	s, err := r.open()
	if err != nil {
		return err
	}
	var (
		heading string
		tasks   []model.Task
	)
	switch cmd {
	case "list-done":
		heading, tasks = "Done", s.ListDone()
	case "list-todo":
		heading, tasks = "Not done", s.ListNotDone()
	case "list-progress":
		heading, tasks = "In progress", s.ListInProgress()
	default:
		heading, tasks = "Tasks", s.List()
	}
	r.p.Println(r.p.Theme().ListView(heading, tasks, r.cfg.Group))
	return nil
}

func (r *runner) doBrowse() error {
	s, err := r.open()
	if err != nil {
		return err
	}
	changes, err := r.browse(s, r.p.Theme())
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	if changes > 0 {
		r.p.OK(fmt.Sprintf("saved %d change(s) to %s", changes, s.Path()))
	}
	return nil
}

// doValidate reads the task file without opening a store, so nothing is
// created or rewritten.
func (r *runner) doValidate() error {
	b, err := os.ReadFile(r.cfg.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("validate: no task file at %s", r.cfg.File)
		}
		return fmt.Errorf("validate: %w", err)
	}
	doc, err := jsonstore.Decode(b)
	if err != nil {
		var me *jsonstore.MalformedError
		if errors.As(err, &me) {
			for _, p := range me.Problems {
				r.p.Fail(p.String())
			}
			return fmt.Errorf("validate: %s has %d problem(s): %w", r.cfg.File, len(me.Problems), store.ErrMalformed)
		}
		return fmt.Errorf("validate: %w", err)
	}
	r.p.OK(fmt.Sprintf("%s is valid (%d tasks)", r.cfg.File, len(doc.Tasks)))
	return nil
}

func (r *runner) doConfig() error {
	th := r.p.Theme()
	lines := make([]string, 0, len(config.Fields())+1)
	for _, key := range config.Fields() {
		src := r.cfg.Sources[key]
		if src == "" {
			src = config.SourceDefault
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			th.Accent.Render(fmt.Sprintf("%-13s", key)),
			r.cfg.Value(key),
			th.Muted.Render("("+string(src)+")")))
	}
	if r.cfg.ConfigFile != "" {
		lines = append(lines, th.Muted.Render("config file: "+r.cfg.ConfigFile))
	}
	r.p.Println(th.Panel(lines))
	return nil
}
