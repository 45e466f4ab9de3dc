package toc

import "git.home.luguber.info/inful/awesometheme/internal/navtree"

// Link is a navigation link to a document.
type Link struct {
	DocName string
	Title   string
}

// Breadcrumbs returns the chain from the root document to current, current
// included. The root page has no breadcrumbs, and neither has a page outside
// the tree.
func Breadcrumbs(tree *navtree.Tree, current string) []Link {
	chain := tree.PathTo(current)
	if len(chain) < 2 {
		return nil
	}
	out := make([]Link, len(chain))
	for i, n := range chain {
		out[i] = Link{DocName: n.DocName, Title: n.Title}
	}
	return out
}

// PrevNext returns the neighbours of current in reading order. Hidden
// entries take part in the order; either result is nil at the ends.
func PrevNext(tree *navtree.Tree, current string) (prev, next *Link) {
	if tree == nil || tree.Root == nil {
		return nil, nil
	}
	pos, ok := tree.Position(current)
	if !ok {
		return nil, nil
	}
	order := tree.Order()
	link := func(docname string) *Link {
		n := Find(tree.Root, docname)
		if n == nil {
			return &Link{DocName: docname}
		}
		return &Link{DocName: n.DocName, Title: n.Title}
	}
	if pos > 0 {
		prev = link(order[pos-1])
	}
	if pos+1 < len(order) {
		next = link(order[pos+1])
	}
	return prev, next
}
