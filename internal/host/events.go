package host

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/environment"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
)

// Event names a lifecycle point of a build.
type Event string

const (
	EventBuilderInited     Event = "builder-inited"
	EventEnvBeforeReadDocs Event = "env-before-read-docs"
	EventHTMLPageContext   Event = "html-page-context"
	EventBuildFinished     Event = "build-finished"
)

// DefaultPriority is the listener priority when none is given. Lower runs first.
const DefaultPriority = 500

type (
	BuilderInitedFunc     func(app *App) error
	EnvBeforeReadDocsFunc func(app *App, env *environment.Environment) error
	PageContextFunc       func(app *App, page *PageContext) error
	// BuildFinishedFunc receives the build error, nil on success.
	BuildFinishedFunc func(app *App, buildErr error) error
)

// ListenerID identifies a connected listener.
type ListenerID int

type listener struct {
	id       ListenerID
	priority int
	owner    string
	fn       any
}

// ListenerOption configures a listener.
type ListenerOption func(*listener)

// WithPriority orders the listener among others of the same event.
func WithPriority(p int) ListenerOption {
	return func(l *listener) { l.priority = p }
}

func (a *App) connect(ev Event, fn any, opts []ListenerOption) ListenerID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	l := listener{id: a.nextID, priority: DefaultPriority, owner: a.owner, fn: fn}
	for _, opt := range opts {
		opt(&l)
	}
	a.listeners[ev] = append(a.listeners[ev], l)
	sort.SliceStable(a.listeners[ev], func(i, j int) bool {
		return a.listeners[ev][i].priority < a.listeners[ev][j].priority
	})
	return l.id
}

func (a *App) ConnectBuilderInited(fn BuilderInitedFunc, opts ...ListenerOption) ListenerID {
	return a.connect(EventBuilderInited, fn, opts)
}

func (a *App) ConnectEnvBeforeReadDocs(fn EnvBeforeReadDocsFunc, opts ...ListenerOption) ListenerID {
	return a.connect(EventEnvBeforeReadDocs, fn, opts)
}

func (a *App) ConnectPageContext(fn PageContextFunc, opts ...ListenerOption) ListenerID {
	return a.connect(EventHTMLPageContext, fn, opts)
}

func (a *App) ConnectBuildFinished(fn BuildFinishedFunc, opts ...ListenerOption) ListenerID {
	return a.connect(EventBuildFinished, fn, opts)
}

// Disconnect removes a listener. Unknown ids are ignored.
func (a *App) Disconnect(id ListenerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for ev, ls := range a.listeners {
		for i, l := range ls {
			if l.id == id {
				a.listeners[ev] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of listeners connected to an event.
func (a *App) Listeners(ev Event) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.listeners[ev])
}

// emit calls every listener of ev in priority order and stops at the first error.
func (a *App) emit(ev Event, call func(fn any) error) error {
	a.mu.RLock()
	ls := make([]listener, len(a.listeners[ev]))
	copy(ls, a.listeners[ev])
	a.mu.RUnlock()

	start := time.Now()
	defer func() { a.recorder().ObserveEventDuration(string(ev), time.Since(start)) }()

	for _, l := range ls {
		if err := call(l.fn); err != nil {
			a.logger().Debug("Listener failed", logfields.Event(string(ev)), logfields.Extension(l.owner), logfields.Error(err))
			if l.owner != "" {
				return fmt.Errorf("%s listener of %s: %w", ev, l.owner, err)
			}
			return fmt.Errorf("%s listener: %w", ev, err)
		}
	}
	if len(ls) > 0 {
		a.logger().Debug("Event emitted", logfields.Event(string(ev)), slog.Int("listeners", len(ls)))
	}
	return nil
}

func (a *App) EmitBuilderInited() error {
	return a.emit(EventBuilderInited, func(fn any) error { return fn.(BuilderInitedFunc)(a) })
}

// EmitEnvBeforeReadDocs publishes env, then notifies listeners.
func (a *App) EmitEnvBeforeReadDocs(env *environment.Environment) error {
	a.mu.Lock()
	a.env = env
	a.mu.Unlock()
	return a.emit(EventEnvBeforeReadDocs, func(fn any) error { return fn.(EnvBeforeReadDocsFunc)(a, env) })
}

// EmitPageContext may be called concurrently for different pages.
func (a *App) EmitPageContext(page *PageContext) error {
	return a.emit(EventHTMLPageContext, func(fn any) error { return fn.(PageContextFunc)(a, page) })
}

func (a *App) EmitBuildFinished(buildErr error) error {
	return a.emit(EventBuildFinished, func(fn any) error { return fn.(BuildFinishedFunc)(a, buildErr) })
}
