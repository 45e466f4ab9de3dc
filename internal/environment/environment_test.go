package environment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/docs"
	"git.home.luguber.info/inful/awesometheme/internal/testutil"
)

func parseDocs(t *testing.T, files map[string]string) *docs.Result {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, files)
	res, err := docs.NewDiscovery(config.SourceConfig{Directory: root}, "en").Discover()
	require.NoError(t, err)
	return res
}

func TestCompare(t *testing.T) {
	prev := &Snapshot{ConfigHash: "c", NavHash: "n", Fingerprints: map[string]string{
		"index": "1", "a": "2", "gone": "3",
	}}
	cur := &Snapshot{ConfigHash: "c", NavHash: "n", Fingerprints: map[string]string{
		"index": "1", "a": "changed", "new": "4",
	}}

	o := Compare(prev, cur)
	assert.False(t, o.FullRebuild)
	assert.Equal(t, []string{"new"}, o.Added)
	assert.Equal(t, []string{"a"}, o.Changed)
	assert.Equal(t, []string{"gone"}, o.Removed)
	assert.Equal(t, []string{"a", "new"}, o.Stale())
	assert.False(t, o.Empty())
}

func TestCompareFullRebuildReasons(t *testing.T) {
	cur := &Snapshot{ConfigHash: "c", NavHash: "n", Fingerprints: map[string]string{"index": "1"}}

	tests := []struct {
		name   string
		prev   *Snapshot
		reason string
	}{
		{"no state", nil, ReasonNoState},
		{"config", &Snapshot{ConfigHash: "other", NavHash: "n", Fingerprints: map[string]string{"index": "1"}}, ReasonConfigChanged},
		{"nav", &Snapshot{ConfigHash: "c", NavHash: "other", Fingerprints: map[string]string{"index": "1"}}, ReasonNavChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Compare(tt.prev, cur)
			assert.True(t, o.FullRebuild)
			assert.Equal(t, tt.reason, o.Reason)
		})
	}

	o := Compare(cur.Clone(), cur)
	assert.True(t, o.Empty())
}

func TestMarkChanged(t *testing.T) {
	cur := &Snapshot{Fingerprints: map[string]string{"a": "1", "b": "2", "c": "3"}}
	o := Outdated{Added: []string{"a"}}
	o.MarkChanged(cur, []string{"a", "c", "b", "unknown", "c"})
	assert.Equal(t, []string{"b", "c"}, o.Changed)
	assert.Equal(t, []string{"a", "b", "c"}, o.Stale())
}

func TestPrepareAndCommit(t *testing.T) {
	ctx := t.Context()
	store := NewMemoryStore()
	cfgHash := ConfigHash(config.Default())

	files := map[string]string{
		"index.md": "---\ntoctree:\n  - entries: [a, b]\n---\n# Index\n",
		"a.md":     "# A\n",
		"b.md":     "# B\n",
	}
	res := parseDocs(t, files)

	env, err := Prepare(ctx, store, res, Options{BuildID: "1", ConfigHash: cfgHash})
	require.NoError(t, err)
	assert.True(t, env.Outdated.FullRebuild)
	assert.Equal(t, []string{"a", "b", "index"}, env.ToWrite())
	require.NoError(t, env.Commit(ctx, store))

	// Unchanged sources: nothing to write.
	env, err = Prepare(ctx, store, parseDocs(t, files), Options{BuildID: "2", ConfigHash: cfgHash})
	require.NoError(t, err)
	assert.True(t, env.Outdated.Empty())
	assert.Empty(t, env.ToWrite())
	require.NotNil(t, env.Previous)
	assert.Equal(t, "1", env.Previous.BuildID)

	// Body edit only touches that document.
	files["a.md"] = "# A\n\nNew paragraph.\n"
	env, err = Prepare(ctx, store, parseDocs(t, files), Options{BuildID: "3", ConfigHash: cfgHash})
	require.NoError(t, err)
	assert.False(t, env.Outdated.FullRebuild)
	assert.Equal(t, []string{"a"}, env.ToWrite())

	// Forcing rebuilds everything.
	env, err = Prepare(ctx, store, parseDocs(t, files), Options{BuildID: "4", ConfigHash: cfgHash, Force: true})
	require.NoError(t, err)
	assert.Equal(t, ReasonForced, env.Outdated.Reason)
	assert.Len(t, env.ToWrite(), 3)
}

func TestPrepareWithoutStore(t *testing.T) {
	res := parseDocs(t, map[string]string{"index.md": "# Index\n"})
	env, err := Prepare(t.Context(), nil, res, Options{})
	require.NoError(t, err)
	assert.True(t, env.Outdated.FullRebuild)
	require.NoError(t, env.Commit(t.Context(), nil))
}

func TestConfigHash(t *testing.T) {
	a := config.Default()
	b := config.Default()
	assert.Equal(t, ConfigHash(a), ConfigHash(b))

	b.Watch.Debounce = "2s"
	assert.Equal(t, ConfigHash(a), ConfigHash(b), "watch settings do not affect pages")

	b.Theme.ShowScrolltop = true
	assert.NotEqual(t, ConfigHash(a), ConfigHash(b))
}

func TestSQLiteStore(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "state", "state.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	want := &Snapshot{BuildID: "b1", ConfigHash: "c", NavHash: "n", Fingerprints: map[string]string{"index": "f1", "guide/a": "f2"}}
	require.NoError(t, store.Save(ctx, want))

	want2 := &Snapshot{BuildID: "b2", ConfigHash: "c", NavHash: "n2", Fingerprints: map[string]string{"index": "f3"}}
	require.NoError(t, store.Save(ctx, want2))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want2, got)
}

func TestSQLiteStoreInMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	snap := &Snapshot{BuildID: "x", Fingerprints: map[string]string{"index": "1"}}
	require.NoError(t, store.Save(t.Context(), snap))
	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	snap := &Snapshot{Fingerprints: map[string]string{"a": "1"}}
	require.NoError(t, store.Save(t.Context(), snap))
	snap.Fingerprints["a"] = "mutated"

	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "1", got.Fingerprints["a"])
	assert.Equal(t, map[string]string{"a": "1"}, store.Fingerprints())
}
