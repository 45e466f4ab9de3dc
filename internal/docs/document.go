package docs

import (
	"path"
	"regexp"
	"strings"
)

// Document is a Markdown source document identified by its docname.
//
// The docname is the slash-separated path of the source file relative to the
// source directory, without extension ("guide/install" for
// guide/install.md). It is also the key of the changed-document set.
type Document struct {
	Name        string // docname
	SourcePath  string // absolute path of the source file
	RelPath     string // path relative to the source directory, slash separated
	Title       string
	Meta        Meta
	Frontmatter []byte
	Body        []byte // Markdown without front matter
	Content     []byte // raw file content
}

// Depth returns how many directories deep the document's output page is.
func (d *Document) Depth() int {
	return strings.Count(d.Name, "/")
}

// OutputName returns the output page path relative to the output directory.
func (d *Document) OutputName(suffix string) string {
	return d.Name + suffix
}

// Meta is the front matter understood by the builder.
type Meta struct {
	Title   string    `yaml:"title,omitempty"`
	Orphan  bool      `yaml:"orphan,omitempty"` // not expected in any toctree
	Toctree []Toctree `yaml:"toctree,omitempty"`
	// Extra keeps every other front matter key for templates.
	Extra map[string]any `yaml:",inline"`
}

// Toctree is one table of contents block declared by a document.
type Toctree struct {
	Caption string   `yaml:"caption,omitempty"`
	Hidden  bool     `yaml:"hidden,omitempty"`
	Entries []string `yaml:"entries"`
}

// TocEntry is a resolved toctree entry.
type TocEntry struct {
	// Title overrides the target document title when non-empty.
	Title string
	// DocName is the resolved target docname. Empty for external entries.
	DocName string
	// URL is set for external entries.
	URL    string
	Hidden bool
	// Caption is set on the first entry of a captioned toctree block.
	Caption string
}

// External reports whether the entry points outside the project.
func (e TocEntry) External() bool { return e.URL != "" }

var explicitTitle = regexp.MustCompile(`^(.+?)\s*<([^<>]+)>$`)

// Entries resolves all toctree entries of the document in declaration order.
// Relative entries are resolved against the document's directory; entries
// starting with "/" are relative to the source root.
func (d *Document) Entries() []TocEntry {
	var out []TocEntry
	for _, tree := range d.Meta.Toctree {
		out = append(out, d.ResolveToctree(tree)...)
	}
	return out
}

// ResolveToctree resolves the entries of one toctree block of the document.
// Unresolvable entries are skipped.
func (d *Document) ResolveToctree(tree Toctree) []TocEntry {
	var out []TocEntry
	caption := tree.Caption
	for _, raw := range tree.Entries {
		if e, ok := d.resolveEntry(raw); ok {
			e.Hidden = tree.Hidden
			e.Caption, caption = caption, ""
			out = append(out, e)
		}
	}
	return out
}

func (d *Document) resolveEntry(raw string) (TocEntry, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TocEntry{}, false
	}
	var e TocEntry
	target := raw
	if m := explicitTitle.FindStringSubmatch(raw); m != nil {
		e.Title = strings.TrimSpace(m[1])
		target = strings.TrimSpace(m[2])
	}
	if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
		e.URL = target
		if e.Title == "" {
			e.Title = target
		}
		return e, true
	}
	target = strings.TrimSuffix(target, ".md")
	if strings.HasPrefix(target, "/") {
		e.DocName = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		e.DocName = path.Clean(path.Join(path.Dir(d.Name), target))
	}
	if e.DocName == "." || strings.HasPrefix(e.DocName, "../") {
		return TocEntry{}, false
	}
	return e, true
}
