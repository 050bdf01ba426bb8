// Package store keeps the ordered task list and mirrors it to a JSON file.
//
// A Store is built once per process with Open, serves one or a few
// operations, and is dropped on exit. Every successful mutation rewrites
// the whole backing file before returning. There is no file locking:
// when two processes race, the last full rewrite wins.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasktracker/internal/model"
	"github.com/Makepad-fr/tasktracker/internal/store/jsonstore"
)

// MalformedPolicy decides what Open does with an unparseable backing file.
type MalformedPolicy string

const (
	// MalformedFail refuses to open and leaves the file untouched.
	MalformedFail MalformedPolicy = "fail"
	// MalformedReset copies the file to <path>.corrupt and starts empty.
	MalformedReset MalformedPolicy = "reset"
)

// ParseMalformedPolicy validates a policy name from config or flags.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch p := MalformedPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MalformedFail, MalformedReset:
		return p, nil
	}
	return "", fmt.Errorf("%w: on_malformed must be fail or reset, got %q", ErrInvalidArgument, s)
}

// Option tunes a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMalformedPolicy sets how Open treats a malformed file. Default MalformedFail.
func WithMalformedPolicy(p MalformedPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// Store is the in-memory task list plus its backing file.
// It is not safe for concurrent use.
type Store struct {
	path   string
	tasks  []model.Task
	nextID int

	now    func() time.Time
	log    *log.Logger
	policy MalformedPolicy
}

// Open loads the store at path. A missing or blank file becomes an empty
// store and the empty document is written straight away, so the file
// always exists once Open succeeds.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty store path", ErrInvalidArgument)
	}
	s := &Store{
		path:   path,
		nextID: 1,
		now:    time.Now,
		log:    log.New(io.Discard),
		policy: MalformedFail,
	}
	for _, o := range opts {
		o(s)
	}

	doc, err := jsonstore.Load(path)
	switch {
	case err == nil:
		s.tasks = doc.Tasks
		for _, t := range s.tasks {
			if t.ID >= s.nextID {
				s.nextID = t.ID + 1
			}
		}
		s.log.Debug("loaded tasks", "path", path, "count", len(s.tasks), "next_id", s.nextID)
		return s, nil

	case errors.Is(err, os.ErrNotExist), errors.Is(err, jsonstore.ErrEmpty):
		s.log.Debug("initializing empty task file", "path", path)
		s.tasks = []model.Task{}
		if err := s.persist("open"); err != nil {
			return nil, err
		}
		return s, nil

	case errors.Is(err, ErrMalformed):
		if s.policy != MalformedReset {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		backup := path + ".corrupt"
		if berr := jsonstore.Backup(path, backup); berr != nil {
			return nil, fmt.Errorf("open %s: back up malformed file: %w", path, berr)
		}
		s.log.Warn("malformed task file reset", "path", path, "backup", backup, "err", err)
		s.tasks = []model.Task{}
		if err := s.persist("open"); err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// NextID returns the id the next Add will assign.
func (s *Store) NextID() int { return s.nextID }

// Add appends a new todo task and persists. On a persistence failure the
// task stays in memory and is returned together with the error.
func (s *Store) Add(title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("add: %w: empty title", ErrInvalidArgument)
	}
	if s.nextID < 1 || s.nextID > jsonstore.MaxID {
		return model.Task{}, fmt.Errorf("add: %w (largest id is %d)", ErrIDsExhausted, jsonstore.MaxID)
	}
	t := model.NewTask(s.nextID, title, description, s.now())
	s.nextID++
	s.tasks = append(s.tasks, t)
	if err := s.persist("add"); err != nil {
		return t, err
	}
	s.log.Debug("task added", "id", t.ID)
	return t, nil
}

// Update replaces title and description of task id.
func (s *Store) Update(id int, title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("update: %w: empty title", ErrInvalidArgument)
	}
	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("update %d: %w", id, ErrNotFound)
	}
	s.tasks[i].Title = title
	s.tasks[i].Description = description
	s.tasks[i].Touch(s.now())
	return s.tasks[i], s.persist("update")
}

// Delete removes task id, keeping the order of the rest.
func (s *Store) Delete(id int) error {
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("delete %d: %w", id, ErrNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return s.persist("delete")
}

// SetStatus moves task id to status. Setting the current status again
// still refreshes UpdatedAt and rewrites the file.
func (s *Store) SetStatus(id int, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("set status: %w: %q", ErrInvalidArgument, status)
	}
	i := s.index(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("set status %d: %w", id, ErrNotFound)
	}
	s.tasks[i].Status = status
	s.tasks[i].Touch(s.now())
	return s.tasks[i], s.persist("set status")
}

// Start marks task id in progress.
func (s *Store) Start(id int) (model.Task, error) {
	return s.SetStatus(id, model.StatusInProgress)
}

// Finish marks task id done.
func (s *Store) Finish(id int) (model.Task, error) {
	return s.SetStatus(id, model.StatusDone)
}

// Get returns a copy of task id and whether it exists.
func (s *Store) Get(id int) (model.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// List returns every task in store order.
func (s *Store) List() []model.Task {
	return s.filter(func(model.Task) bool { return true })
}

// ListDone returns done tasks.
func (s *Store) ListDone() []model.Task {
	return s.filter(func(t model.Task) bool { return t.Status == model.StatusDone })
}

// ListNotDone returns every task that is not done, todo and in progress alike.
func (s *Store) ListNotDone() []model.Task {
	return s.filter(func(t model.Task) bool { return t.Status != model.StatusDone })
}

// ListInProgress returns in-progress tasks.
func (s *Store) ListInProgress() []model.Task {
	return s.filter(func(t model.Task) bool { return t.Status == model.StatusInProgress })
}

// ListTodo returns tasks that have not been started.
func (s *Store) ListTodo() []model.Task {
	return s.filter(func(t model.Task) bool { return t.Status == model.StatusTodo })
}

// Stats counts tasks per status.
func (s *Store) Stats() map[model.Status]int {
	out := make(map[model.Status]int, 3)
	for _, t := range s.tasks {
		out[t.Status]++
	}
	return out
}

// Document snapshots the store as a backing-file document.
func (s *Store) Document() *jsonstore.Document {
	return &jsonstore.Document{Tasks: s.List()}
}

func (s *Store) filter(keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) index(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(op string) error {
	if err := jsonstore.Save(s.path, &jsonstore.Document{Tasks: s.tasks}); err != nil {
		s.log.Debug("persist failed", "op", op, "path", s.path, "err", err)
		return &PersistenceError{Op: op, Path: s.path, Err: err}
	}
	s.log.Debug("persisted", "op", op, "path", s.path, "count", len(s.tasks))
	return nil
}
