// Package funcs provides the template functions of the awesome theme.
//
// Global returns the functions every template is parsed with. Functions that
// depend on the page being rendered are placeholders there; ForPage returns
// their bound versions, which the builder installs on a per-page clone of
// the template.
package funcs

import (
	"html/template"
	"net/url"
	"path"
	"strings"

	sprig "github.com/go-task/slim-sprig/v3"

	"git.home.luguber.info/inful/awesometheme/internal/config"
)

// Resource selects pathto's file mode: the target is a path below the
// output root instead of a docname.
const Resource = 1

// Page is what the page-bound functions need to know about the current page.
type Page struct {
	DocName string
	Suffix  string
}

// HeaderLink is an entry of the site header.
type HeaderLink struct {
	Label    string
	URL      string
	Icon     template.HTML // inline SVG, icon links only
	Absolute bool
	Current  bool
}

// Global returns the functions available to every template: slim-sprig,
// isAbsolute and placeholders for the page-bound functions.
func Global() template.FuncMap {
	m := sprig.FuncMap()
	m["isAbsolute"] = IsAbsolute
	for name, fn := range ForPage(Page{Suffix: ".html"}, config.ThemeOptions{}, "") {
		m[name] = fn
	}
	return m
}

// ForPage returns the functions bound to one page.
func ForPage(p Page, opts config.ThemeOptions, baseURL string) template.FuncMap {
	pathto := func(target string, kind ...int) string {
		return PathTo(p, target, len(kind) > 0 && kind[0] == Resource)
	}
	return template.FuncMap{
		"pathto": pathto,
		"headerLinks": func() []HeaderLink {
			return HeaderLinks(p, opts.MainNavLinks)
		},
		"iconLinks": func() []HeaderLink {
			return IconLinks(opts.ExtraHeaderLinkIcons)
		},
		"canonicalURL": func() string {
			return CanonicalURL(baseURL, p)
		},
	}
}

// IsAbsolute reports whether link carries its own scheme or host and must
// not be resolved against the page. Whether it leaves the site depends on
// the site host and is decided during post-processing.
func IsAbsolute(link string) bool {
	if strings.Contains(link, "://") || strings.HasPrefix(link, "//") {
		return true
	}
	u, err := url.Parse(link)
	return err == nil && (u.Scheme == "mailto" || u.Scheme == "tel")
}

// PathTo returns the link from page p to target. Targets are docnames,
// or output paths when resource is set. External links and fragments are
// returned unchanged.
func PathTo(p Page, target string, resource bool) string {
	if target == "" || IsAbsolute(target) || strings.HasPrefix(target, "#") {
		return target
	}
	target = strings.TrimPrefix(target, "/")
	if !resource {
		fragment := ""
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target, fragment = target[:i], target[i:]
		}
		target = strings.TrimSuffix(target, ".md") + p.Suffix + fragment
	}
	return RelativeURI(p.DocName+p.Suffix, target)
}

// RelativeURI returns the relative link from the output file base to the
// output file to, both slash-separated and relative to the output root.
func RelativeURI(base, to string) string {
	b := strings.Split(path.Dir(base), "/")
	if b[0] == "." {
		b = nil
	}
	t := strings.Split(to, "/")
	i := 0
	for i < len(b) && i < len(t)-1 && b[i] == t[i] {
		i++
	}
	rel := strings.Repeat("../", len(b)-i) + strings.Join(t[i:], "/")
	if rel == "" {
		return "#"
	}
	return rel
}

// HeaderLinks resolves main_nav_links for page p in configuration order.
// Relative links are docnames and are resolved with PathTo.
func HeaderLinks(p Page, links config.NavLinks) []HeaderLink {
	out := make([]HeaderLink, 0, len(links))
	for _, link := range links {
		h := HeaderLink{Label: link.Label, Absolute: IsAbsolute(link.URL)}
		if h.Absolute {
			h.URL = link.URL
		} else {
			docname := strings.TrimSuffix(strings.TrimPrefix(link.URL, "/"), ".md")
			h.URL = PathTo(p, link.URL, false)
			h.Current = docname == p.DocName
		}
		out = append(out, h)
	}
	return out
}

// IconLinks lists extra_header_link_icons in configuration order.
func IconLinks(icons config.HeaderIcons) []HeaderLink {
	out := make([]HeaderLink, 0, len(icons))
	for _, icon := range icons {
		out = append(out, HeaderLink{
			Label:    icon.Label,
			URL:      icon.Link,
			Icon:     template.HTML(icon.Icon), //nolint:gosec // icons are trusted configuration
			Absolute: IsAbsolute(icon.Link),
		})
	}
	return out
}

// CanonicalURL returns the absolute URL of page p, or "" without a base URL.
func CanonicalURL(baseURL string, p Page) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + p.DocName + p.Suffix
}
