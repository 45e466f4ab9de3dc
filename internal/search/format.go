// Package search builds the client-side search index and provides the
// serialization formats used for it and for per-page JSON output.
package search

import (
	"encoding/json"
	"fmt"
	"io"
)

// Format serializes the search index and JSON page contexts.
type Format interface {
	Name() string
	// Suffix is the file suffix including the dot.
	Suffix() string
	Dump(w io.Writer, v any) error
	Load(r io.Reader, v any) error
}

// JSON is the JSON serializer. Output files use the ".json" suffix.
type JSON struct {
	Indent string
}

var _ Format = JSON{}

func (JSON) Name() string   { return "json" }
func (JSON) Suffix() string { return ".json" }

func (f JSON) Dump(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (JSON) Load(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// IndexFilename returns the search index file name for a format.
func IndexFilename(f Format) string {
	return "searchindex" + f.Suffix()
}
