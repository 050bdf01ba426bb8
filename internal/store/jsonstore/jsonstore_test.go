package jsonstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

func sampleTask(id int, title, desc string) model.Task {
	return model.NewTask(id, title, desc, time.Date(2026, 10, 19, 9, 30, 15, 0, time.Local))
}

func TestEncodeLayout(t *testing.T) {
	doc := &Document{Tasks: []model.Task{sampleTask(1, `a "quoted" <title>`, "two\nlines")}}
	b, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	want := `{
  "tasks": [
    {
      "id": 1,
      "title": "a \"quoted\" <title>",
      "description": "two\nlines",
      "status": "todo",
      "created_at": "2026-10-19 09:30:15",
      "updated_at": "2026-10-19 09:30:15"
    }
  ]
}
`
	if string(b) != want {
		t.Errorf("Encode:\ngot\n%s\nwant\n%s", b, want)
	}
}

func TestEncodeNilTasks(t *testing.T) {
	b, err := Encode(&Document{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"tasks\": []\n}\n" {
		t.Errorf("got %q", b)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	original := &Document{Tasks: []model.Task{
		sampleTask(1, "first", `back\slash`),
		sampleTask(4, "tab\tand\fform\bfeed", "\r\n"),
	}}
	original.Tasks[1].Status = model.StatusDone

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Tasks) != 2 {
		t.Fatalf("Tasks count: got %d, want 2", len(loaded.Tasks))
	}
	for i := range original.Tasks {
		want, got := original.Tasks[i], loaded.Tasks[i]
		if got.ID != want.ID || got.Title != want.Title || got.Description != want.Description ||
			got.Status != want.Status || got.CreatedAt.String() != want.CreatedAt.String() {
			t.Errorf("task %d: got %+v, want %+v", i, got, want)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("file mode: got %o, want 644", perm)
	}
}

func TestLoadMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: expected os.ErrNotExist, got %v", err)
	}

	blank := filepath.Join(dir, "blank.json")
	if err := os.WriteFile(blank, []byte("\n\t \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(blank); !errors.Is(err, ErrEmpty) {
		t.Errorf("blank: expected ErrEmpty, got %v", err)
	}
}

func TestDecodeToleratesLayout(t *testing.T) {
	doc := `{"tasks":[{"updated_at":"2026-01-02 03:04:05","status":"in_progress","id":9,
	"description":"d","created_at":"2026-01-01 00:00:00","title":"t","extra":{"nested":"}"}}]}`
	got, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	task := got.Tasks[0]
	if task.ID != 9 || task.Title != "t" || task.Status != model.StatusInProgress {
		t.Errorf("decoded: %+v", task)
	}
	if task.UpdatedAt.String() != "2026-01-02 03:04:05" {
		t.Errorf("updated_at: %s", task.UpdatedAt)
	}
}

func TestValidateProblems(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{"not json", `{"tasks": [`, ""},
		{"trailing data", `{"tasks": []} {}`, ""},
		{"bad status", `{"tasks":[{"id":1,"title":"a","description":"","status":"blocked","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`, "tasks[0].status"},
		{"string id", `{"tasks":[{"id":"1","title":"a","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`, "tasks[0].id"},
		{"id above max", `{"tasks":[{"id":2147483648,"title":"a","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`, "tasks[0].id"},
		{"int64 max id", `{"tasks":[{"id":9223372036854775807,"title":"a","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`, "tasks[0].id"},
		{"duplicate id", `{"tasks":[{"id":2,"title":"a","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"},{"id":2,"title":"b","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`, "tasks[1].id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var me *MalformedError
			if !errors.As(err, &me) || len(me.Problems) == 0 {
				t.Fatalf("expected problems, got %v", err)
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, p := range me.Problems {
				if p.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no problem at %s: %v", tt.wantPath, me.Problems)
			}
		})
	}
}

func TestDecodeAcceptsMaxID(t *testing.T) {
	doc, err := Decode([]byte(`{"tasks":[{"id":2147483647,"title":"a","description":"","status":"todo","created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}]}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if doc.Tasks[0].ID != MaxID {
		t.Errorf("id: got %d, want %d", doc.Tasks[0].ID, MaxID)
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tasks.json")
	if err := os.WriteFile(src, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := src + ".corrupt"
	if err := Backup(src, dst); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}
	b, _ := os.ReadFile(dst)
	if string(b) != "garbage" {
		t.Errorf("backup content: %q", b)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"/tasks":          "tasks",
		"/tasks/3/status": "tasks[3].status",
		"#/tasks/0/a~1b":  "tasks[0].a/b",
		"/tasks/10/x~0y":  "tasks[10].x~y",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMalformedErrorMessage(t *testing.T) {
	err := &MalformedError{Problems: []Problem{{Path: "tasks[0].id", Message: "bad"}, {Message: "worse"}}}
	msg := err.Error()
	if !strings.Contains(msg, "tasks[0].id: bad") || !strings.Contains(msg, "1 more") {
		t.Errorf("Error(): %q", msg)
	}
}
