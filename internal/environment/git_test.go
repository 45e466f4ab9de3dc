package environment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/testutil"
)

func TestChangedSince(t *testing.T) {
	_, wt, root := testutil.GitRepo(t)

	testutil.WriteTree(t, root, map[string]string{
		"README.md":         "# Repo\n",
		"docs/index.md":     "# Index\n",
		"docs/guide/a.md":   "# A\n",
		"docs/guide/b.md":   "# B\n",
		"docs/old.md":       "# Old\n",
		"docs/img/logo.png": "png",
	})
	base := testutil.CommitAll(t, wt, "initial")

	testutil.WriteTree(t, root, map[string]string{
		"README.md":         "# Repo changed\n",
		"docs/guide/a.md":   "# A changed\n",
		"docs/new.md":       "# New\n",
		"docs/img/logo.png": "png2",
	})
	_, err := wt.Remove("docs/old.md")
	require.NoError(t, err)
	testutil.CommitAll(t, wt, "second")

	names, err := ChangedSince(filepath.Join(root, "docs"), base)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"guide/a", "new", "old"}, names)

	_, err = ChangedSince(filepath.Join(root, "docs"), "does-not-exist")
	require.Error(t, err)
}

func TestChangedSinceOutsideRepository(t *testing.T) {
	_, err := ChangedSince(t.TempDir(), "HEAD~1")
	require.Error(t, err)
}

func TestSourceDocName(t *testing.T) {
	name, ok := sourceDocName("docs", "docs/guide/install.md")
	require.True(t, ok)
	assert.Equal(t, "guide/install", name)

	_, ok = sourceDocName("docs", "other/install.md")
	assert.False(t, ok)

	_, ok = sourceDocName("docs", "docs/logo.png")
	assert.False(t, ok)

	name, ok = sourceDocName(".", "index.md")
	require.True(t, ok)
	assert.Equal(t, "index", name)
}
