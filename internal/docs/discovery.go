package docs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	derrors "git.home.luguber.info/inful/awesometheme/internal/docs/errors"
	"git.home.luguber.info/inful/awesometheme/internal/frontmatter"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
)

// Asset is a non-Markdown file found next to the documents (images, downloads).
type Asset struct {
	SourcePath string
	RelPath    string // slash separated, relative to the source directory
}

// Result is the outcome of a discovery pass.
type Result struct {
	Documents []*Document // natural order by docname
	Assets    []Asset
	byName    map[string]*Document
}

// NewResult orders documents and assets naturally and indexes documents by
// docname. Later documents with a duplicate docname replace earlier ones.
func NewResult(documents []*Document, assets []Asset) *Result {
	res := &Result{byName: make(map[string]*Document, len(documents))}
	for _, doc := range documents {
		res.byName[doc.Name] = doc
	}
	names := make([]string, 0, len(res.byName))
	for n := range res.byName {
		names = append(names, n)
	}
	sort.Sort(natural.StringSlice(names))
	res.Documents = make([]*Document, len(names))
	for i, n := range names {
		res.Documents[i] = res.byName[n]
	}
	res.Assets = append([]Asset(nil), assets...)
	sort.Slice(res.Assets, func(i, j int) bool {
		return natural.Less(res.Assets[i].RelPath, res.Assets[j].RelPath)
	})
	return res
}

// Get returns the document with the given docname.
func (r *Result) Get(name string) (*Document, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns all docnames in natural order.
func (r *Result) Names() []string {
	out := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		out[i] = d.Name
	}
	return out
}

// Discovery walks a source directory for Markdown documents and assets.
type Discovery struct {
	source config.SourceConfig
	titler cases.Caser
}

// NewDiscovery creates a new discovery instance for a source configuration.
func NewDiscovery(source config.SourceConfig, lang string) *Discovery {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Discovery{source: source, titler: cases.Title(tag)}
}

// Discover reads every document below the source directory.
func (d *Discovery) Discover() (*Result, error) {
	root, err := filepath.Abs(d.source.Directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", derrors.ErrSourceDirNotFound, err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceDirNotFound, d.source.Directory)
	}
	for _, pattern := range d.source.Exclude {
		if _, matchErr := path.Match(pattern, ""); matchErr != nil {
			return nil, fmt.Errorf("%w: %q: %w", derrors.ErrInvalidExcludePattern, pattern, matchErr)
		}
	}

	res := &Result{byName: map[string]*Document{}}
	walkErr := filepath.WalkDir(root, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		name := entry.Name()
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			// _build, _static, .git and friends never hold documents.
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || d.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.excluded(rel) {
			return nil
		}

		switch {
		case IsMarkdownFile(name):
			doc, err := d.load(p, rel)
			if err != nil {
				return err
			}
			res.Documents = append(res.Documents, doc)
			res.byName[doc.Name] = doc
			slog.Debug("Discovered document", logfields.DocName(doc.Name), logfields.Path(rel))
		case isAsset(name):
			res.Assets = append(res.Assets, Asset{SourcePath: p, RelPath: rel})
		}
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, derrors.ErrFileReadFailed) || errors.Is(walkErr, derrors.ErrInvalidFrontmatter) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("%w: %w", derrors.ErrSourceDirWalkFailed, walkErr)
	}
	if len(res.Documents) == 0 {
		return nil, fmt.Errorf("%w in %s", derrors.ErrNoDocsFound, d.source.Directory)
	}

	res = NewResult(res.Documents, res.Assets)
	slog.Info("Documents discovered", logfields.Count(len(res.Documents)), slog.Int("assets", len(res.Assets)))
	return res, nil
}

// excluded matches a slash-separated relative path against the exclude globs.
// A pattern also matches every path below a matching directory.
func (d *Discovery) excluded(rel string) bool {
	for _, pattern := range d.source.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(rel)); ok && !strings.Contains(pattern, "/") {
			return true
		}
	}
	return false
}

func (d *Discovery) load(abs, rel string) (*Document, error) {
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, rel, err)
	}
	return d.Parse(rel, abs, content)
}

// Parse builds a Document from raw Markdown content.
func (d *Discovery) Parse(rel, abs string, content []byte) (*Document, error) {
	fm, body, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrInvalidFrontmatter, rel, err)
	}
	var meta Meta
	if err := frontmatter.Decode(fm, &meta); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrInvalidFrontmatter, rel, err)
	}

	doc := &Document{
		Name:        DocName(rel),
		SourcePath:  abs,
		RelPath:     rel,
		Meta:        meta,
		Frontmatter: fm,
		Body:        body,
		Content:     content,
	}
	doc.Title = d.title(doc)
	return doc, nil
}

// title picks the front matter title, then the first level-one heading, then
// a title-cased file name.
func (d *Discovery) title(doc *Document) string {
	if t := strings.TrimSpace(doc.Meta.Title); t != "" {
		return t
	}
	if t := firstHeading(doc.Body); t != "" {
		return t
	}
	base := path.Base(doc.Name)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return d.titler.String(base)
}

func firstHeading(body []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(body))
	inFence := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(line, "# "), "#"))
		}
	}
	return ""
}

// DocName converts a slash-separated relative source path into a docname.
func DocName(rel string) string {
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, path.Ext(rel))
}

// IsMarkdownFile reports whether a file name has a Markdown extension.
func IsMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// isAsset checks if a file is an asset (image, etc.)
func isAsset(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		".pdf",
		".mp4", ".webm", ".ogv",
		".csv", ".json", ".yaml", ".yml", ".xml", ".txt", ".zip":
		return true
	}
	return false
}
