package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTreeAndOutput(t *testing.T) {
	dir := t.TempDir()
	WriteTree(t, dir, map[string]string{
		"index.html":       "<h1>Home</h1>",
		"guide/index.html": "<h1>Guide</h1>",
		"_static/app.css":  "body{}",
	})

	NewOutput(t, dir).
		Exists("index.html", "guide/index.html").
		Missing("guide/missing.html").
		Contains("guide/index.html", "Guide").
		NotContains("index.html", "Guide").
		Count(".html", 2)
}

func TestGitRepo(t *testing.T) {
	repo, wt, dir := GitRepo(t)
	WriteTree(t, dir, map[string]string{"docs/index.md": "# Home\n"})
	hash := CommitAll(t, wt, "initial")

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hash, head.Hash().String())
	assert.Equal(t, "# Home\n", ReadFile(t, filepath.Join(dir, "docs", "index.md")))
}
