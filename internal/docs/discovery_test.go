package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	derrors "git.home.luguber.info/inful/awesometheme/internal/docs/errors"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"index.md":            "---\ntoctree:\n  - entries: [guide/index, api]\n---\n# Welcome\n",
		"api.md":              "# API Reference\n",
		"guide/index.md":      "---\ntitle: The Guide\n---\nBody\n",
		"guide/step10.md":     "no heading",
		"guide/step2.md":      "```\n# not a heading\n```\n# Step Two\n",
		"guide/logo.png":      "png",
		"drafts/wip.md":       "# WIP\n",
		"_build/html/x.md":    "# Build output\n",
		".hidden/secret.md":   "# Secret\n",
		"notes.txt":           "plain",
		"guide/getting_up.md": "",
	})

	d := NewDiscovery(config.SourceConfig{Directory: root, Exclude: []string{"drafts"}}, "en")
	res, err := d.Discover()
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "guide/getting_up", "guide/index", "guide/step2", "guide/step10", "index"}, res.Names())

	idx, ok := res.Get("index")
	require.True(t, ok)
	assert.Equal(t, "Welcome", idx.Title)
	assert.Equal(t, 0, idx.Depth())

	guide, _ := res.Get("guide/index")
	assert.Equal(t, "The Guide", guide.Title)
	assert.Equal(t, 1, guide.Depth())
	assert.Equal(t, "guide/index.html", guide.OutputName(".html"))

	step2, _ := res.Get("guide/step2")
	assert.Equal(t, "Step Two", step2.Title)

	step10, _ := res.Get("guide/step10")
	assert.Equal(t, "Step10", step10.Title)

	gu, _ := res.Get("guide/getting_up")
	assert.Equal(t, "Getting Up", gu.Title)

	require.Len(t, res.Assets, 2)
	assert.Equal(t, "guide/logo.png", res.Assets[0].RelPath)
	assert.Equal(t, "notes.txt", res.Assets[1].RelPath)
}

func TestDiscoverErrors(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		_, err := NewDiscovery(config.SourceConfig{Directory: filepath.Join(t.TempDir(), "nope")}, "en").Discover()
		require.ErrorIs(t, err, derrors.ErrSourceDirNotFound)
	})

	t.Run("no documents", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"a.png": "x"})
		_, err := NewDiscovery(config.SourceConfig{Directory: root}, "en").Discover()
		require.ErrorIs(t, err, derrors.ErrNoDocsFound)
	})

	t.Run("bad front matter", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"index.md": "---\ntitle: [unclosed\n---\n"})
		_, err := NewDiscovery(config.SourceConfig{Directory: root}, "en").Discover()
		require.ErrorIs(t, err, derrors.ErrInvalidFrontmatter)
	})

	t.Run("unterminated front matter", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"index.md": "---\ntitle: x\n"})
		_, err := NewDiscovery(config.SourceConfig{Directory: root}, "en").Discover()
		require.ErrorIs(t, err, derrors.ErrInvalidFrontmatter)
	})

	t.Run("bad exclude pattern", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{"index.md": "# x"})
		_, err := NewDiscovery(config.SourceConfig{Directory: root, Exclude: []string{"["}}, "en").Discover()
		require.ErrorIs(t, err, derrors.ErrInvalidExcludePattern)
	})
}

func TestDocName(t *testing.T) {
	assert.Equal(t, "index", DocName("index.md"))
	assert.Equal(t, "guide/install", DocName("guide/install.markdown"))
}

func TestComputeNavHash(t *testing.T) {
	d := NewDiscovery(config.SourceConfig{}, "en")
	parse := func(rel, content string) *Document {
		doc, err := d.Parse(rel, "/src/"+rel, []byte(content))
		require.NoError(t, err)
		return doc
	}

	a := parse("index.md", "---\ntoctree:\n  - entries: [b]\n---\n# A\n")
	b := parse("b.md", "# B\n")
	base := ComputeNavHash([]*Document{a, b})

	assert.Equal(t, base, ComputeNavHash([]*Document{b, a}), "order independent")

	bodyEdit := parse("b.md", "# B\n\nMore text.\n")
	assert.Equal(t, base, ComputeNavHash([]*Document{a, bodyEdit}), "body edits do not touch navigation")

	retitled := parse("b.md", "# Bee\n")
	assert.NotEqual(t, base, ComputeNavHash([]*Document{a, retitled}))

	hidden := parse("index.md", "---\ntoctree:\n  - hidden: true\n    entries: [b]\n---\n# A\n")
	assert.NotEqual(t, base, ComputeNavHash([]*Document{hidden, b}))

	assert.NotEmpty(t, ComputeNavHash(nil))
}
