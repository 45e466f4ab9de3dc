// Package postprocess applies the theme's fix-ups to rendered HTML pages.
package postprocess

import (
	"bytes"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
)

// CopyLinkLabel is the title and aria-label of adorned headerlinks.
const CopyLinkLabel = "Copy link to this section"

// Options selects the transformations.
type Options struct {
	// Headerlinks turns headerlinks into copy-to-clipboard buttons.
	Headerlinks bool
	// ExternalLinks marks links leaving the site.
	ExternalLinks bool
	// BaseURL is the absolute site URL. Its host decides which links are
	// external, and it makes copied headerlinks absolute.
	BaseURL string
	// Suffix is the output page suffix.
	Suffix string
}

// OptionsFrom reads the transformations from the configuration.
func OptionsFrom(cfg *config.Config, suffix string) Options {
	return Options{
		Headerlinks:   cfg.Theme.AwesomeHeaderlinks,
		ExternalLinks: cfg.Theme.AwesomeExternalLinks,
		BaseURL:       cfg.Project.BaseURL,
		Suffix:        suffix,
	}
}

// Transform applies the transformations to the page of docname. The input
// is returned unchanged when no transformation modified the tree, so running
// Transform on its own output is a no-op.
func Transform(src []byte, docname string, opts Options) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return src, ferrors.WrapError(err, ferrors.CategoryParse, "failed to parse HTML").
			WithContext("docname", docname).
			Warning().
			Build()
	}

	var siteHost string
	if opts.BaseURL != "" {
		if u, err := url.Parse(opts.BaseURL); err == nil {
			siteHost = u.Host
		}
	}

	t := &transformer{docname: docname, opts: opts, siteHost: siteHost}
	if opts.Headerlinks {
		t.headerlinks(doc)
	}
	if opts.ExternalLinks {
		t.externalLinks(doc)
	}
	t.removeEmptyToctrees(doc)
	t.expandCurrent(doc)

	if !t.modified {
		return src, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return src, ferrors.WrapError(err, ferrors.CategoryParse, "failed to render HTML").
			WithContext("docname", docname).
			Warning().
			Build()
	}
	return buf.Bytes(), nil
}

type transformer struct {
	docname  string
	opts     Options
	siteHost string
	modified bool
}

// headerlinks adorns every a.headerlink so client script copies the link.
func (t *transformer) headerlinks(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.DataAtom != atom.A || !hasClass(n, "headerlink") {
			return
		}
		href := getAttr(n, "href")
		t.setAttr(n, "data-copy-link", t.absolute(href))
		t.setAttr(n, "aria-label", CopyLinkLabel)
		t.setAttr(n, "title", CopyLinkLabel)
		t.addClass(n, "copy")
	})
}

// absolute resolves a headerlink href against the page URL when the site
// URL is known.
func (t *transformer) absolute(href string) string {
	if t.opts.BaseURL == "" {
		return href
	}
	base, err := url.Parse(strings.TrimSuffix(t.opts.BaseURL, "/") + "/" + t.docname + t.opts.Suffix)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// externalLinks marks anchors leaving the site. The site header is left
// alone: its navigation and icon links are styled by the theme.
func (t *transformer) externalLinks(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.DataAtom != atom.A || inside(n, atom.Header) {
			return
		}
		href, ok := lookupAttr(n, "href")
		if !ok || !IsExternal(href, t.siteHost) {
			return
		}
		t.addClass(n, "external")
		t.mergeRel(n, "nofollow", "noopener")
		if last := n.LastChild; last != nil && last.DataAtom == atom.Span && hasClass(last, "external-icon") {
			return
		}
		n.AppendChild(&html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "class", Val: "external-icon"},
				{Key: "aria-hidden", Val: "true"},
			},
		})
		t.modified = true
	})
}

// removeEmptyToctrees drops toctree wrappers without entries, left behind by
// hidden toctrees.
func (t *transformer) removeEmptyToctrees(root *html.Node) {
	var empty []*html.Node
	walk(root, func(n *html.Node) {
		if n.DataAtom == atom.Div && hasClass(n, "toctree-wrapper") && find(n, func(c *html.Node) bool { return c.DataAtom == atom.Li }) == nil {
			empty = append(empty, n)
		}
	})
	for _, n := range empty {
		n.Parent.RemoveChild(n)
		t.modified = true
	}
}

// expandCurrent opens the sidebar entries on the path to the current page.
func (t *transformer) expandCurrent(root *html.Node) {
	walk(root, func(n *html.Node) {
		if n.DataAtom != atom.Nav || !hasClass(n, "sidebar") {
			return
		}
		walk(n, func(li *html.Node) {
			if li.DataAtom != atom.Li || !hasClass(li, "current") {
				return
			}
			if find(li, func(c *html.Node) bool { return c != li && c.DataAtom == atom.Ul }) != nil {
				t.addClass(li, "expanded")
			}
		})
	})
}

// IsExternal reports whether href leaves the site at siteHost. Relative,
// fragment-only, same-host, mailto: and tel: links are internal.
func IsExternal(href, siteHost string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "mailto", "tel", "javascript":
		return false
	}
	if u.Host == "" {
		return false
	}
	return !strings.EqualFold(u.Host, siteHost)
}

func (t *transformer) setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			if n.Attr[i].Val != val {
				n.Attr[i].Val = val
				t.modified = true
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	t.modified = true
}

func (t *transformer) addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	classes := strings.Fields(getAttr(n, "class"))
	t.setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func (t *transformer) mergeRel(n *html.Node, tokens ...string) {
	rel := strings.Fields(getAttr(n, "rel"))
	changed := false
	for _, tok := range tokens {
		if !slices.Contains(rel, tok) {
			rel = append(rel, tok)
			changed = true
		}
	}
	if changed {
		t.setAttr(n, "rel", strings.Join(rel, " "))
	}
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttr(n, "class")), class)
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// walk visits element nodes depth first. fn may modify attributes and
// append children to the visited node.
func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

// inside reports whether n has an ancestor element of kind a.
func inside(n *html.Node, a atom.Atom) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == a {
			return true
		}
	}
	return false
}
