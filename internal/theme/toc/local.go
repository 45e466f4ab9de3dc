package toc

import "git.home.luguber.info/inful/awesometheme/internal/render"

// Section is an entry of the on-page table of contents.
type Section struct {
	ID       string
	Title    string
	Level    int
	Children []*Section
}

// LocalTOC nests the headings of a page by level. A single top-level
// section is the page title: it is removed and its children promoted.
func LocalTOC(headings []render.Heading) []*Section {
	var roots []*Section
	var stack []*Section
	for _, h := range headings {
		s := &Section{ID: h.ID, Title: h.Text, Level: h.Level}
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, s)
		}
		stack = append(stack, s)
	}
	if len(roots) == 1 {
		return roots[0].Children
	}
	return roots
}
