package build

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/docs"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/observability"
	"git.home.luguber.info/inful/awesometheme/internal/render"
)

// Toctree is a toctree block of a page as templates see it.
type Toctree struct {
	Caption string         `json:"caption,omitempty"`
	Hidden  bool           `json:"hidden,omitempty"`
	Entries []ToctreeEntry `json:"entries"`
}

// ToctreeEntry links to a document or an external URL.
type ToctreeEntry struct {
	Title string `json:"title"`
	// Target is a docname, or the URL of an external entry.
	Target   string `json:"target"`
	External bool   `json:"external,omitempty"`
}

// stageRead renders the outdated documents.
func stageRead(ctx context.Context, bs *buildState) error {
	names := bs.env.ToWrite()
	renderer := render.New(bs.app.OutSuffix(), bs.app.MarkdownExtensions()...)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.jobs(bs.readSafe))
	for _, name := range names {
		doc, ok := bs.res.Get(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := renderer.Render(doc)
			if err != nil {
				return ferrors.WrapError(fmt.Errorf("%w: %w", ErrRender, err), ferrors.CategoryParse, "failed to render document").
					WithContext("docname", doc.Name).
					Fatal().
					Build()
			}
			bs.setPage(doc.Name, page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bs.result.DocsRead = len(bs.pages)
	bs.app.Recorder().AddDocuments("read", bs.result.DocsRead)
	bs.svc.log().InfoContext(ctx, "Documents read", logfields.Count(bs.result.DocsRead))
	return nil
}

// stageWrite emits html-page-context for every rendered page and writes it.
func stageWrite(ctx context.Context, bs *buildState) error {
	globals := bs.globals()
	names := bs.env.ToWrite()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.jobs(bs.writeSafe))
	for _, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return bs.writePage(observability.WithDocName(gctx, name), name, globals)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bs.result.DocsWritten = len(names)
	bs.app.Recorder().AddDocuments("written", len(names))
	bs.svc.log().InfoContext(ctx, "Pages written", logfields.Count(len(names)), logfields.Builder(bs.app.Builder))
	return nil
}

// globals returns the template variables shared by every page.
func (bs *buildState) globals() map[string]any {
	cfg := bs.req.Config
	vars := map[string]any{
		"project":      cfg.Project.Title,
		"language":     cfg.Project.Language,
		"copyright":    cfg.Project.Copyright,
		"root_doc":     cfg.Source.RootDoc,
		"builder":      bs.app.Builder,
		"css_files":    bs.app.CSSFiles(),
		"script_files": bs.app.JSFiles(),
		"pygments_css": staticDir + "/" + bs.app.Highlighter().StyleFilename(),
	}
	for k, v := range bs.app.ContextVars() {
		vars[k] = v
	}
	return vars
}

func (bs *buildState) writePage(ctx context.Context, name string, globals map[string]any) error {
	doc, ok := bs.res.Get(name)
	if !ok {
		return nil
	}
	page, ok := bs.page(name)
	if !ok {
		return nil
	}

	pc := host.NewPageContext(name, doc.Depth(), globals)
	pc.Headings = page.Headings
	pc.Meta = doc.Meta.Extra
	pc.Nav = bs.nav
	pc.Suffix = bs.app.OutSuffix()
	pc.Set("docname", name)
	pc.Set("title", page.Title)
	pc.Set("body", template.HTML(page.Body)) //nolint:gosec // rendered by goldmark from project sources
	pc.Set("meta", doc.Meta.Extra)
	pc.Set("toctrees", bs.toctrees(doc))
	pc.AddFuncs(pageFuncs(name, pc.Suffix))

	if err := bs.app.EmitPageContext(pc); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryExtension, "html-page-context failed").
			WithContext("docname", name).
			Fatal().
			Build()
	}

	var (
		out []byte
		err error
	)
	if bs.app.Builder == string(config.OutputFormatJSON) {
		out, err = bs.renderJSON(pc)
	} else {
		out, err = bs.renderHTML(pc)
	}
	if err != nil {
		return err
	}

	target := filepath.Join(bs.app.OutDir, filepath.FromSlash(doc.OutputName(pc.Suffix)))
	if err := writeFile(target, out); err != nil {
		return ferrors.WrapError(fmt.Errorf("%w: %w", ErrWrite, err), ferrors.CategoryFileSystem, "failed to write page").
			WithContext("docname", name).
			WithContext("path", target).
			Fatal().
			Build()
	}
	bs.svc.log().DebugContext(ctx, "Page written", logfields.Path(target))
	return nil
}

// renderHTML executes the page template on a clone carrying the page-bound
// template functions.
func (bs *buildState) renderHTML(pc *host.PageContext) ([]byte, error) {
	t, err := bs.tmpl.Clone()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to clone theme templates").Fatal().Build()
	}
	t.Funcs(pc.Funcs())
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, pc.Template, pc.Vars()); err != nil {
		return nil, ferrors.WrapError(fmt.Errorf("%w: %w", ErrTheme, err), ferrors.CategoryTheme, "failed to render page template").
			WithContext("docname", pc.DocName).
			WithContext("template", pc.Template).
			Fatal().
			Build()
	}
	return buf.Bytes(), nil
}

// renderJSON serializes the page context with the index format.
func (bs *buildState) renderJSON(pc *host.PageContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := bs.app.IndexFormat().Dump(&buf, pc.Vars()); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryBuild, "failed to serialize page context").
			WithContext("docname", pc.DocName).
			Fatal().
			Build()
	}
	return buf.Bytes(), nil
}

// toctrees resolves the toctree blocks of doc. Entries pointing at unknown
// documents are dropped; the navigation tree already reported them.
func (bs *buildState) toctrees(doc *docs.Document) []Toctree {
	out := make([]Toctree, 0, len(doc.Meta.Toctree))
	for _, block := range doc.Meta.Toctree {
		tree := Toctree{Caption: block.Caption, Hidden: block.Hidden}
		for _, e := range doc.ResolveToctree(block) {
			if e.External() {
				title := e.Title
				if title == "" {
					title = e.URL
				}
				tree.Entries = append(tree.Entries, ToctreeEntry{Title: title, Target: e.URL, External: true})
				continue
			}
			target, ok := bs.res.Get(e.DocName)
			if !ok {
				continue
			}
			title := e.Title
			if title == "" {
				title = target.Title
			}
			tree.Entries = append(tree.Entries, ToctreeEntry{Title: title, Target: target.Name})
		}
		out = append(out, tree)
	}
	return out
}

// writeFile writes data, creating parent directories.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec // site output is public
}

// writeIfChanged writes data unless the file already holds it.
func writeIfChanged(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	return true, writeFile(path, data)
}
