// Package toc derives the per-page navigation shown by the theme: the
// sidebar tree, breadcrumbs, previous and next links and the on-page table
// of contents. Every function is pure; the shared tree is never modified.
package toc

import (
	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/navtree"
)

// Options are the visibility rules for the sidebar.
type Options struct {
	// IncludeHidden keeps entries of hidden toctrees.
	IncludeHidden bool
}

// OptionsFrom reads the sidebar rules from the theme options.
func OptionsFrom(o config.ThemeOptions) Options {
	return Options{IncludeHidden: o.GlobaltocIncludehidden}
}

// Adjust returns a copy of the tree for the page current: hidden entries are
// dropped unless opts.IncludeHidden, the first node of current is marked
// Current and its ancestors Expanded. A nil tree yields nil.
func Adjust(tree *navtree.Tree, current string, opts Options) *navtree.Node {
	if tree == nil || tree.Root == nil {
		return nil
	}
	a := &adjuster{current: current, opts: opts}
	root, _ := a.copy(tree.Root)
	return root
}

type adjuster struct {
	current string
	opts    Options
	marked  bool
}

// copy reports whether the current node is in the copied subtree.
func (a *adjuster) copy(n *navtree.Node) (*navtree.Node, bool) {
	out := &navtree.Node{
		DocName: n.DocName,
		Title:   n.Title,
		URL:     n.URL,
		Caption: n.Caption,
		Hidden:  n.Hidden,
	}
	found := false
	if !a.marked && !n.External() && n.DocName == a.current {
		out.Current = true
		a.marked = true
		found = true
	}
	for _, c := range n.Children {
		if c.Hidden && !a.opts.IncludeHidden {
			continue
		}
		child, childFound := a.copy(c)
		if childFound {
			out.Expanded = true
			found = true
		}
		out.Children = append(out.Children, child)
	}
	return out, found
}

// Find returns the first node for docname in reading order.
func Find(root *navtree.Node, docname string) *navtree.Node {
	if root == nil {
		return nil
	}
	if !root.External() && root.DocName == docname {
		return root
	}
	for _, c := range root.Children {
		if n := Find(c, docname); n != nil {
			return n
		}
	}
	return nil
}
