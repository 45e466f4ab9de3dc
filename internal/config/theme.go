package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// LinkIcon is a link to an external resource, represented by an icon.
type LinkIcon struct {
	// Link is the absolute URL to the external resource.
	Link string `yaml:"link" json:"link"`
	// Icon is an inline SVG icon.
	Icon string `yaml:"icon" json:"icon"`
}

// ThemeOptions configures the awesome theme. Each field is a key below
// `theme:` in the configuration file.
type ThemeOptions struct {
	// ShowPrevNext includes links to the previous and next pages in the hierarchy.
	ShowPrevNext bool `yaml:"show_prev_next"`
	// ShowBreadcrumbs includes breadcrumbs on every page except the root page.
	ShowBreadcrumbs bool `yaml:"show_breadcrumbs"`
	// BreadcrumbsSeparator separates the breadcrumbs links.
	BreadcrumbsSeparator string `yaml:"breadcrumbs_separator"`
	// AwesomeHeaderlinks makes clicking a headerlink copy its URL to the clipboard.
	AwesomeHeaderlinks bool `yaml:"awesome_headerlinks"`
	// ShowScrolltop shows a button that scrolls to the top of the page.
	ShowScrolltop bool `yaml:"show_scrolltop"`
	// AwesomeExternalLinks adds an icon after external links and `rel="nofollow noopener"`.
	AwesomeExternalLinks bool `yaml:"awesome_external_links"`
	// MainNavLinks maps labels to absolute or relative URLs shown in the site
	// header, in configuration order.
	MainNavLinks NavLinks `yaml:"main_nav_links,omitempty"`
	// ExtraHeaderLinkIcons maps link titles to icons shown right of the search
	// bar, in configuration order.
	ExtraHeaderLinkIcons HeaderIcons `yaml:"extra_header_link_icons,omitempty"`
	// LogoLight and LogoDark are paths to logos for light and dark mode.
	// When using separate logos, both must be provided.
	LogoLight string `yaml:"logo_light,omitempty"`
	LogoDark  string `yaml:"logo_dark,omitempty"`
	// GlobaltocIncludehidden includes entries from hidden toctrees in the sidebar.
	GlobaltocIncludehidden bool `yaml:"globaltoc_includehidden"`
}

// DefaultThemeOptions returns the theme defaults.
func DefaultThemeOptions() ThemeOptions {
	return ThemeOptions{
		ShowPrevNext:           true,
		ShowBreadcrumbs:        true,
		BreadcrumbsSeparator:   "/",
		AwesomeHeaderlinks:     true,
		ShowScrolltop:          false,
		AwesomeExternalLinks:   false,
		MainNavLinks:           NavLinks{},
		ExtraHeaderLinkIcons:   HeaderIcons{},
		GlobaltocIncludehidden: true,
	}
}

// Clone returns a deep copy so callers can hand out options without sharing links.
func (o ThemeOptions) Clone() ThemeOptions {
	out := o
	out.MainNavLinks = slices.Clone(o.MainNavLinks)
	out.ExtraHeaderLinkIcons = slices.Clone(o.ExtraHeaderLinkIcons)
	if out.MainNavLinks == nil {
		out.MainNavLinks = NavLinks{}
	}
	if out.ExtraHeaderLinkIcons == nil {
		out.ExtraHeaderLinkIcons = HeaderIcons{}
	}
	return out
}

// HasLogo reports whether any logo is configured.
func (o ThemeOptions) HasLogo() bool {
	return o.LogoLight != "" || o.LogoDark != ""
}

// LogosPaired reports whether the light/dark logo pairing is complete (both or neither set).
func (o ThemeOptions) LogosPaired() bool {
	return (o.LogoLight == "") == (o.LogoDark == "")
}

// NavLink is an entry of main_nav_links.
type NavLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// NavLinks is the main_nav_links mapping. It decodes from a YAML mapping and
// keeps the order the labels were written in.
type NavLinks []NavLink

// Get returns the URL of label.
func (l NavLinks) Get(label string) (string, bool) {
	for _, link := range l {
		if link.Label == label {
			return link.URL, true
		}
	}
	return "", false
}

func (l *NavLinks) UnmarshalYAML(node *yaml.Node) error {
	out := NavLinks{}
	err := decodeMapping(node, "main_nav_links", func(label string, value *yaml.Node) error {
		var url string
		if err := value.Decode(&url); err != nil {
			return err
		}
		out = append(out, NavLink{Label: label, URL: url})
		return nil
	})
	if err != nil {
		return err
	}
	*l = out
	return nil
}

func (l NavLinks) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, link := range l {
		if err := appendPair(node, link.Label, link.URL); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// HeaderIcon is an entry of extra_header_link_icons.
type HeaderIcon struct {
	Label string `json:"label"`
	LinkIcon
}

// HeaderIcons is the extra_header_link_icons mapping in configuration order.
type HeaderIcons []HeaderIcon

// Get returns the icon link of label.
func (h HeaderIcons) Get(label string) (LinkIcon, bool) {
	for _, icon := range h {
		if icon.Label == label {
			return icon.LinkIcon, true
		}
	}
	return LinkIcon{}, false
}

func (h *HeaderIcons) UnmarshalYAML(node *yaml.Node) error {
	out := HeaderIcons{}
	err := decodeMapping(node, "extra_header_link_icons", func(label string, value *yaml.Node) error {
		var icon LinkIcon
		if err := value.Decode(&icon); err != nil {
			return err
		}
		out = append(out, HeaderIcon{Label: label, LinkIcon: icon})
		return nil
	})
	if err != nil {
		return err
	}
	*h = out
	return nil
}

func (h HeaderIcons) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, icon := range h {
		if err := appendPair(node, icon.Label, icon.LinkIcon); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// decodeMapping calls fn for every key of a mapping node in document order.
func decodeMapping(node *yaml.Node, field string, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: %s must be a mapping", node.Line, field)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return fmt.Errorf("line %d: %s key %q already defined", key.Line, field, key.Value)
		}
		seen[key.Value] = true
		if err := fn(key.Value, node.Content[i+1]); err != nil {
			return fmt.Errorf("%s[%s]: %w", field, key.Value, err)
		}
	}
	return nil
}

func appendPair(node *yaml.Node, key string, value any) error {
	var v yaml.Node
	if err := v.Encode(value); err != nil {
		return err
	}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, &v)
	return nil
}
