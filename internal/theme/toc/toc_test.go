package toc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/navtree"
	"git.home.luguber.info/inful/awesometheme/internal/render"
)

// sample is A > {B > {D}, C(hidden), Example(external)}.
func sample() *navtree.Tree {
	return navtree.NewTree(&navtree.Node{DocName: "a", Title: "A", Children: []*navtree.Node{
		{DocName: "b", Title: "B", Children: []*navtree.Node{{DocName: "b/d", Title: "D"}}},
		{DocName: "c", Title: "C", Hidden: true},
		{Title: "Example", URL: "https://example.com"},
	}})
}

func titles(nodes []*navtree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

func TestAdjustDropsHidden(t *testing.T) {
	tree := navtree.NewTree(&navtree.Node{DocName: "a", Title: "A", Children: []*navtree.Node{
		{DocName: "b", Title: "B"},
		{DocName: "c", Title: "C", Hidden: true},
	}})

	for _, page := range []string{"a", "b", "c"} {
		got := Adjust(tree, page, Options{IncludeHidden: false})
		require.NotNil(t, got)
		assert.Equal(t, "A", got.Title)
		assert.Equal(t, []string{"B"}, titles(got.Children), page)
	}

	got := Adjust(tree, "a", Options{IncludeHidden: true})
	assert.Equal(t, []string{"B", "C"}, titles(got.Children))
}

func TestAdjustMarksCurrentAndAncestors(t *testing.T) {
	tree := sample()
	got := Adjust(tree, "b/d", Options{IncludeHidden: true})

	assert.True(t, got.Expanded)
	assert.False(t, got.Current)
	b := got.Children[0]
	assert.True(t, b.Expanded)
	assert.False(t, b.Current)
	d := b.Children[0]
	assert.True(t, d.Current)
	assert.False(t, d.Expanded)
	assert.False(t, got.Children[1].Expanded)
}

func TestAdjustDoesNotMutateTree(t *testing.T) {
	tree := sample()
	before := tree.Root.Clone()

	var wg sync.WaitGroup
	for _, page := range []string{"a", "b", "b/d", "c", "missing"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Adjust(tree, page, Options{})
		}()
	}
	wg.Wait()
	assert.Equal(t, before, tree.Root)
}

func TestAdjustNilTree(t *testing.T) {
	assert.Nil(t, Adjust(nil, "a", Options{}))
	assert.Nil(t, Adjust(navtree.NewTree(nil), "a", Options{}))
}

func TestOptionsFrom(t *testing.T) {
	o := config.DefaultThemeOptions()
	assert.True(t, OptionsFrom(o).IncludeHidden)
	o.GlobaltocIncludehidden = false
	assert.False(t, OptionsFrom(o).IncludeHidden)
}

func TestBreadcrumbs(t *testing.T) {
	tree := sample()
	assert.Nil(t, Breadcrumbs(tree, "a"))
	assert.Nil(t, Breadcrumbs(tree, "missing"))
	assert.Equal(t, []Link{{"a", "A"}, {"b", "B"}, {"b/d", "D"}}, Breadcrumbs(tree, "b/d"))
}

func TestPrevNext(t *testing.T) {
	tree := sample()

	prev, next := PrevNext(tree, "a")
	assert.Nil(t, prev)
	assert.Equal(t, &Link{DocName: "b", Title: "B"}, next)

	prev, next = PrevNext(tree, "b/d")
	assert.Equal(t, &Link{DocName: "b", Title: "B"}, prev)
	assert.Equal(t, &Link{DocName: "c", Title: "C"}, next)

	prev, next = PrevNext(tree, "c")
	assert.Equal(t, "b/d", prev.DocName)
	assert.Nil(t, next)

	prev, next = PrevNext(tree, "missing")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestLocalTOC(t *testing.T) {
	headings := []render.Heading{
		{Level: 1, ID: "title", Text: "Title"},
		{Level: 2, ID: "install", Text: "Install"},
		{Level: 3, ID: "linux", Text: "Linux"},
		{Level: 2, ID: "usage", Text: "Usage"},
	}
	got := LocalTOC(headings)
	require.Len(t, got, 2)
	assert.Equal(t, "install", got[0].ID)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "Linux", got[0].Children[0].Title)
	assert.Equal(t, "usage", got[1].ID)
}

func TestLocalTOCWithoutSingleTitle(t *testing.T) {
	headings := []render.Heading{
		{Level: 2, ID: "one", Text: "One"},
		{Level: 2, ID: "two", Text: "Two"},
	}
	got := LocalTOC(headings)
	require.Len(t, got, 2)
	assert.Empty(t, LocalTOC(nil))
	assert.Empty(t, LocalTOC([]render.Heading{{Level: 1, ID: "t", Text: "T"}}))
}
