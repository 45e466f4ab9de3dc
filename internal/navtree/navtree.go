// Package navtree builds the global navigation tree from toctree front matter.
package navtree

import (
	"fmt"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
)

// Node is an entry of the navigation tree.
type Node struct {
	DocName  string // empty for external entries
	Title    string
	URL      string // external entries only
	Caption  string // caption of the toctree this entry opens
	Hidden   bool
	Current  bool
	Expanded bool
	Children []*Node
}

// External reports whether the node links outside the project.
func (n *Node) External() bool { return n.URL != "" }

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Tree is the global navigation tree. It is built once per build and only
// read afterwards, so it may be shared between concurrent page renders.
type Tree struct {
	Root  *Node
	order []string
	index map[string]int
}

// NewTree indexes a node hierarchy. Reading order is the pre-order of
// internal nodes.
func NewTree(root *Node) *Tree {
	t := &Tree{Root: root, index: map[string]int{}}
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.External() {
			if _, seen := t.index[n.DocName]; !seen {
				t.index[n.DocName] = len(t.order)
				t.order = append(t.order, n.DocName)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return t
}

// Order returns docnames in reading order, hidden entries included.
func (t *Tree) Order() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Position returns the reading-order index of a docname.
func (t *Tree) Position(docname string) (int, bool) {
	i, ok := t.index[docname]
	return i, ok
}

// PathTo returns the chain of nodes from the root to the first node for
// docname, or nil if the document is not in the tree.
func (t *Tree) PathTo(docname string) []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return pathTo(t.Root, docname, nil)
}

func pathTo(n *Node, docname string, prefix []*Node) []*Node {
	chain := append(prefix[:len(prefix):len(prefix)], n)
	if n.DocName == docname {
		return chain
	}
	for _, c := range n.Children {
		if found := pathTo(c, docname, chain); found != nil {
			return found
		}
	}
	return nil
}

// Problem is a non-fatal inconsistency found while building the tree.
type Problem struct {
	DocName string
	Message string
}

func (p Problem) Error() string { return fmt.Sprintf("%s: %s", p.DocName, p.Message) }

// Build walks the toctrees starting at rootDoc. A document is placed at its
// first reference; later references and cycles are reported and skipped.
func Build(res *docs.Result, rootDoc string) (*Tree, []Problem) {
	rootDocument, ok := res.Get(rootDoc)
	if !ok {
		return NewTree(nil), []Problem{{DocName: rootDoc, Message: "root document not found"}}
	}

	b := &builder{res: res, placed: map[string]bool{}}
	t := NewTree(b.node(rootDocument, docs.TocEntry{DocName: rootDoc}))

	for _, doc := range res.Documents {
		if !b.placed[doc.Name] && !doc.Meta.Orphan {
			b.problems = append(b.problems, Problem{DocName: doc.Name, Message: "document isn't included in any toctree"})
		}
	}
	return t, b.problems
}

type builder struct {
	res      *docs.Result
	placed   map[string]bool
	problems []Problem
}

func (b *builder) node(doc *docs.Document, entry docs.TocEntry) *Node {
	b.placed[doc.Name] = true

	n := &Node{DocName: doc.Name, Title: doc.Title, Hidden: entry.Hidden}
	if entry.Title != "" {
		n.Title = entry.Title
	}

	for _, e := range doc.Entries() {
		var child *Node
		switch {
		case e.External():
			child = &Node{Title: e.Title, URL: e.URL, Hidden: e.Hidden}
		default:
			target, ok := b.res.Get(e.DocName)
			if !ok {
				b.problems = append(b.problems, Problem{DocName: doc.Name, Message: fmt.Sprintf("toctree contains reference to nonexisting document %q", e.DocName)})
				continue
			}
			if b.placed[target.Name] {
				b.problems = append(b.problems, Problem{DocName: doc.Name, Message: fmt.Sprintf("document %q is already referenced by another toctree", e.DocName)})
				continue
			}
			child = b.node(target, e)
		}
		child.Caption = e.Caption
		n.Children = append(n.Children, child)
	}
	return n
}
