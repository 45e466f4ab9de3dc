package host

import (
	"html/template"
	"maps"
	"sync"

	"git.home.luguber.info/inful/awesometheme/internal/navtree"
	"git.home.luguber.info/inful/awesometheme/internal/render"
)

// PageContext is the template context of one output page. The builder fills
// it, html-page-context listeners adjust it, and the theme template renders
// it. Template variables such as "title" and "body" live in the vars map so
// listeners can replace them.
type PageContext struct {
	DocName  string
	Depth    int
	Headings []render.Heading
	Meta     map[string]any
	// Nav is the global navigation tree, shared between pages and read-only.
	Nav      *navtree.Tree
	Template string
	Suffix   string

	mu    sync.Mutex
	vars  map[string]any
	funcs template.FuncMap
}

// NewPageContext creates a context seeded with the global template variables.
func NewPageContext(docname string, depth int, globals map[string]any) *PageContext {
	vars := maps.Clone(globals)
	if vars == nil {
		vars = map[string]any{}
	}
	return &PageContext{DocName: docname, Depth: depth, Template: "layout.html", vars: vars, funcs: template.FuncMap{}}
}

// Set stores a template variable.
func (p *PageContext) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vars[key] = value
}

// Get returns a template variable.
func (p *PageContext) Get(key string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.vars[key]
	return v, ok
}

// Vars returns a copy of all template variables.
func (p *PageContext) Vars() map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.vars)
}

// AddFuncs binds template functions to this page. They replace functions of
// the same name registered with App.AddTemplateFuncs, which must exist so
// templates parse.
func (p *PageContext) AddFuncs(funcs template.FuncMap) {
	p.mu.Lock()
	defer p.mu.Unlock()
	maps.Copy(p.funcs, funcs)
}

// Funcs returns a copy of the page-bound template functions.
func (p *PageContext) Funcs() template.FuncMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.funcs)
}
