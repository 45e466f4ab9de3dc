package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/maruel/natural"
	"golang.org/x/net/html"
)

// Section is an anchored heading of a page.
type Section struct {
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

// Entry is the indexed data of one document.
type Entry struct {
	DocName    string    `json:"docname"`
	Title      string    `json:"title"`
	Terms      []string  `json:"terms"`
	TitleTerms []string  `json:"titleterms"`
	Sections   []Section `json:"sections,omitempty"`
}

// TitleRef points at a section title.
type TitleRef struct {
	Doc    int    `json:"doc"`
	Anchor string `json:"anchor"`
}

// Index is the serialized search index. Entries carry the per-document data
// so later builds can update the index without re-reading unchanged pages.
type Index struct {
	DocNames   []string              `json:"docnames"`
	Titles     []string              `json:"titles"`
	Terms      map[string][]int      `json:"terms"`
	TitleTerms map[string][]int      `json:"titleterms"`
	AllTitles  map[string][]TitleRef `json:"alltitles"`
	Entries    []Entry               `json:"entries"`
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "with": {},
}

// NewEntry indexes a rendered page body.
func NewEntry(docname, title, bodyHTML string, sections []Section) Entry {
	return Entry{
		DocName:    docname,
		Title:      title,
		Terms:      Tokenize(TextContent(bodyHTML)),
		TitleTerms: Tokenize(title),
		Sections:   sections,
	}
}

// Tokenize lower-cases text and returns its sorted unique words, ignoring
// stopwords and single characters.
func Tokenize(text string) []string {
	seen := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		seen[w] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// TextContent returns the text of an HTML fragment without script and style
// elements.
func TextContent(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// Builder accumulates entries and compiles the index.
type Builder struct {
	entries map[string]Entry
}

// NewBuilder returns an empty builder, optionally seeded from a previous index.
func NewBuilder(previous *Index) *Builder {
	b := &Builder{entries: map[string]Entry{}}
	if previous != nil {
		for _, e := range previous.Entries {
			b.entries[e.DocName] = e
		}
	}
	return b
}

// Add inserts or replaces the entry of a document.
func (b *Builder) Add(e Entry) { b.entries[e.DocName] = e }

// Prune drops entries whose document is not in keep.
func (b *Builder) Prune(keep []string) {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	for name := range b.entries {
		if _, ok := set[name]; !ok {
			delete(b.entries, name)
		}
	}
}

// Len returns the number of indexed documents.
func (b *Builder) Len() int { return len(b.entries) }

// Build compiles the index with documents in natural order.
func (b *Builder) Build() *Index {
	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	idx := &Index{
		DocNames:   names,
		Titles:     make([]string, len(names)),
		Terms:      map[string][]int{},
		TitleTerms: map[string][]int{},
		AllTitles:  map[string][]TitleRef{},
		Entries:    make([]Entry, len(names)),
	}
	for i, name := range names {
		e := b.entries[name]
		idx.Titles[i] = e.Title
		idx.Entries[i] = e
		for _, term := range e.Terms {
			idx.Terms[term] = append(idx.Terms[term], i)
		}
		for _, term := range e.TitleTerms {
			idx.TitleTerms[term] = append(idx.TitleTerms[term], i)
		}
		for _, s := range e.Sections {
			idx.AllTitles[s.Title] = append(idx.AllTitles[s.Title], TitleRef{Doc: i, Anchor: s.Anchor})
		}
	}
	return idx
}
