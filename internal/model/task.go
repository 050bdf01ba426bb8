package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is where a task sits in its lifecycle. Any status may follow any other.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusInProgress, StatusTodo, StatusDone}
}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus accepts the stored spelling plus a few CLI-friendly aliases.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, nil
	case "in_progress", "in-progress", "progress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status %q, must be one of: todo, in_progress, done", s)
}

// TimestampLayout is the on-disk layout for task timestamps (local time, seconds).
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a local wall-clock time truncated to the second.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to second resolution in the local zone.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.Local().Truncate(time.Second)}
}

func (ts Timestamp) String() string {
	return ts.Format(TimestampLayout)
}

func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.String()), nil
}

func (ts *Timestamp) UnmarshalText(b []byte) error {
	t, err := time.ParseInLocation(TimestampLayout, string(b), time.Local)
	if err != nil {
		return fmt.Errorf("timestamp %q: want layout %s", string(b), TimestampLayout)
	}
	ts.Time = t
	return nil
}

// MarshalJSON and UnmarshalJSON shadow the methods promoted from time.Time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	return ts.UnmarshalText([]byte(s))
}

// Task is the domain model for a tracked unit of work.
// Field order here is the field order in the backing file.
type Task struct {
	ID          int       `json:"id" yaml:"id" toml:"id"`
	Title       string    `json:"title" yaml:"title" toml:"title"`
	Description string    `json:"description" yaml:"description" toml:"description"`
	Status      Status    `json:"status" yaml:"status" toml:"status"`
	CreatedAt   Timestamp `json:"created_at" yaml:"created_at" toml:"created_at"`
	UpdatedAt   Timestamp `json:"updated_at" yaml:"updated_at" toml:"updated_at"`
}

// NewTask builds a todo task stamped with now.
func NewTask(id int, title, description string, now time.Time) Task {
	ts := NewTimestamp(now)
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// Touch refreshes UpdatedAt.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = NewTimestamp(now)
}

func (t Task) IsDone() bool { return t.Status == StatusDone }
