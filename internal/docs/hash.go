package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// ComputeNavHash computes a deterministic hash of everything that shapes the
// navigation: docnames, titles and resolved toctree entries.
//
// Every page renders the global toc, so a changed hash means every page is
// outdated.
func ComputeNavHash(documents []*Document) string {
	if len(documents) == 0 {
		h := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(h[:])
	}

	sorted := make([]*Document, len(documents))
	copy(sorted, documents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	for _, doc := range sorted {
		fmt.Fprintf(h, "%s|%s|%t\n", doc.Name, doc.Title, doc.Meta.Orphan)
		for i, tree := range doc.Meta.Toctree {
			fmt.Fprintf(h, "  tree %d|%s|%t\n", i, tree.Caption, tree.Hidden)
		}
		for _, e := range doc.Entries() {
			fmt.Fprintf(h, "  %s|%s|%s|%t\n", e.DocName, e.URL, e.Title, e.Hidden)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
