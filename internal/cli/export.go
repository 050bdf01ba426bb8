package cli

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Makepad-fr/tasktracker/internal/store"
	"github.com/Makepad-fr/tasktracker/internal/store/jsonstore"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

func (r *runner) doExport(args []string) error {
	fs := flag.NewFlagSet("tasktracker export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	format := fs.String("format", FormatJSON, "Output format: json|yaml|toml")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: export: %v", store.ErrInvalidArgument, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: usage: tasktracker export [--format json|yaml|toml]", store.ErrInvalidArgument)
	}
	switch strings.ToLower(*format) {
	case FormatJSON, FormatYAML, FormatTOML:
	default:
		return fmt.Errorf("%w: unknown export format %q (want json, yaml or toml)", store.ErrInvalidArgument, *format)
	}

	s, err := r.open()
	if err != nil {
		return err
	}
	b, err := encodeDocument(s.Document(), *format)
	if err != nil {
		return err
	}
	_, err = r.p.Out.Write(b)
	return err
}

func encodeDocument(doc *jsonstore.Document, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return jsonstore.Encode(doc)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("yaml marshal: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("yaml marshal: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("toml marshal: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q (want json, yaml or toml)", store.ErrInvalidArgument, format)
}
