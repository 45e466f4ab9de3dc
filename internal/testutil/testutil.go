// Package testutil holds helpers shared by package tests: source trees on
// disk, throwaway git repositories and fluent assertions on build output.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// WriteTree writes files (slash-separated paths relative to root) below
// root, creating directories as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), dirPermissions))
		require.NoError(t, os.WriteFile(full, []byte(content), filePermissions))
	}
}

// ReadFile returns the content of path and fails the test when it is missing.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test paths
	require.NoError(t, err)
	return string(data)
}

// GitRepo initializes a repository in a temporary directory.
// Returns the repository, its worktree, and the absolute path to the directory.
func GitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return repo, wt, dir
}

// CommitAll stages every change of the worktree and commits it. It returns
// the commit hash.
func CommitAll(t *testing.T, wt *git.Worktree, msg string) string {
	t.Helper()
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	h, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h.String()
}

// Output asserts on the files of a build output directory.
type Output struct {
	t   *testing.T
	dir string
}

// NewOutput returns assertions rooted at dir.
func NewOutput(t *testing.T, dir string) *Output {
	return &Output{t: t, dir: dir}
}

func (o *Output) path(rel string) string {
	return filepath.Join(o.dir, filepath.FromSlash(rel))
}

// Read returns the content of rel.
func (o *Output) Read(rel string) string {
	o.t.Helper()
	return ReadFile(o.t, o.path(rel))
}

// Exists asserts that every rel exists.
func (o *Output) Exists(rels ...string) *Output {
	o.t.Helper()
	for _, rel := range rels {
		assert.FileExists(o.t, o.path(rel))
	}
	return o
}

// Missing asserts that no rel exists.
func (o *Output) Missing(rels ...string) *Output {
	o.t.Helper()
	for _, rel := range rels {
		assert.NoFileExists(o.t, o.path(rel))
	}
	return o
}

// Contains asserts that rel contains every snippet.
func (o *Output) Contains(rel string, snippets ...string) *Output {
	o.t.Helper()
	content := o.Read(rel)
	for _, s := range snippets {
		assert.Contains(o.t, content, s, "%s", rel)
	}
	return o
}

// NotContains asserts that rel contains none of the snippets.
func (o *Output) NotContains(rel string, snippets ...string) *Output {
	o.t.Helper()
	content := o.Read(rel)
	for _, s := range snippets {
		assert.NotContains(o.t, content, s, "%s", rel)
	}
	return o
}

// Count asserts how many files with the given suffix exist below the
// output directory.
func (o *Output) Count(suffix string, want int) *Output {
	o.t.Helper()
	n := 0
	err := filepath.WalkDir(o.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, suffix) {
			n++
		}
		return nil
	})
	require.NoError(o.t, err)
	assert.Equal(o.t, want, n, "files ending in %s", suffix)
	return o
}
