package jsonstore

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaSource string

const schemaURL = "https://github.com/Makepad-fr/tasktracker/tasks.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Problem is one reason a document was rejected.
type Problem struct {
	Path    string // e.g. tasks[2].status; empty for the document itself
	Message string
}

func (p Problem) String() string {
	if p.Path != "" {
		return fmt.Sprintf("%s: %s", p.Path, p.Message)
	}
	return p.Message
}

// MalformedError lists every problem found in a document.
type MalformedError struct {
	Problems []Problem
}

func (e *MalformedError) Error() string {
	if len(e.Problems) == 0 {
		return ErrMalformed.Error()
	}
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", ErrMalformed, e.Problems[0])
	}
	return fmt.Sprintf("%s: %s (and %d more)", ErrMalformed, e.Problems[0], len(e.Problems)-1)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

// Validate checks raw bytes against the task file schema and rejects
// duplicate ids. It returns nil or a *MalformedError.
func Validate(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return &MalformedError{Problems: []Problem{{Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}
	if dec.More() {
		return &MalformedError{Problems: []Problem{{Message: "invalid JSON: trailing data after document"}}}
	}

	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		me := &MalformedError{}
		collectSchemaErrors(me, err)
		return me
	}
	return checkUniqueIDs(v)
}

func checkUniqueIDs(v interface{}) error {
	root, _ := v.(map[string]interface{})
	tasks, _ := root["tasks"].([]interface{})
	seen := make(map[string]int, len(tasks))
	me := &MalformedError{}
	for i, raw := range tasks {
		obj, _ := raw.(map[string]interface{})
		id, ok := obj["id"].(json.Number)
		if !ok {
			continue
		}
		key := id.String()
		if n, err := id.Int64(); err == nil {
			key = strconv.FormatInt(n, 10)
		}
		if first, dup := seen[key]; dup {
			me.Problems = append(me.Problems, Problem{
				Path:    fmt.Sprintf("tasks[%d].id", i),
				Message: fmt.Sprintf("duplicate id %s (first used by tasks[%d])", key, first),
			})
			continue
		}
		seen[key] = i
	}
	if len(me.Problems) > 0 {
		return me
	}
	return nil
}

func collectSchemaErrors(me *MalformedError, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		me.Problems = append(me.Problems, Problem{Message: err.Error()})
		return
	}
	collectCauses(me, ve)
}

func collectCauses(me *MalformedError, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		me.Problems = append(me.Problems, Problem{
			Path:    jsonPointerToPath(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collectCauses(me, cause)
	}
}

// jsonPointerToPath turns /tasks/0/status into tasks[0].status.
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
