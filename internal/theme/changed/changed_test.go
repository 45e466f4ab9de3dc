package changed

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
)

func newEnv(outdated environment.Outdated, names ...string) *environment.Environment {
	documents := make([]*docs.Document, len(names))
	for i, n := range names {
		documents[i] = &docs.Document{Name: n}
	}
	return &environment.Environment{Docs: docs.NewResult(documents, nil), Outdated: outdated}
}

func TestRecordIncremental(t *testing.T) {
	env := newEnv(environment.Outdated{Added: []string{"new"}, Changed: []string{"guide/install"}, Removed: []string{"old"}},
		"index", "guide/install", "new")

	var tr Tracker
	s := tr.Record(env)

	assert.False(t, s.Full())
	assert.Equal(t, []string{"guide/install", "new"}, s.Names())
	assert.True(t, s.Has("new"))
	assert.False(t, s.Has("index"))
	assert.False(t, s.Has("old"))
	assert.Same(t, s, tr.Current())
}

func TestRecordFullRebuild(t *testing.T) {
	env := newEnv(environment.Outdated{FullRebuild: true, Reason: environment.ReasonNoState}, "index", "b", "a")

	var tr Tracker
	s := tr.Record(env)

	assert.True(t, s.Full())
	assert.Equal(t, []string{"a", "b", "index"}, s.Names())
	assert.Equal(t, 3, s.Len())
}

func TestCurrentBeforeRecord(t *testing.T) {
	var tr Tracker
	s := tr.Current()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("index"))

	tr.Record(newEnv(environment.Outdated{FullRebuild: true}, "index"))
	tr.Reset()
	assert.Equal(t, 0, tr.Current().Len())
}

func TestSetIsImmutableToCallers(t *testing.T) {
	s := NewSet([]string{"a", "b", "a"}, false)
	names := s.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Names())

	var nilSet *Set
	assert.False(t, nilSet.Has("a"))
	assert.Nil(t, nilSet.Names())
}

func TestConcurrentReaders(t *testing.T) {
	var tr Tracker
	tr.Record(newEnv(environment.Outdated{Changed: []string{"index"}}, "index"))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, tr.Current().Has("index"))
		}()
	}
	wg.Wait()
}
