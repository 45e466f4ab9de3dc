package build

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
	"git.home.luguber.info/inful/awesometheme/internal/navtree"
	"git.home.luguber.info/inful/awesometheme/internal/observability"
	"git.home.luguber.info/inful/awesometheme/internal/render"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StageSetup    StageName = "setup"
	StageDiscover StageName = "discover"
	StagePrepare  StageName = "prepare"
	StageRead     StageName = "read"
	StageWrite    StageName = "write"
	StageIndex    StageName = "index"
	StageStatic   StageName = "static"
	StageCleanup  StageName = "cleanup"
	StageFinish   StageName = "finish"
)

// Stage is one step of the pipeline operating on the shared build state.
type Stage func(ctx context.Context, bs *buildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

func setupStages() []StageDef {
	return []StageDef{
		{Name: StageSetup, Fn: stageSetup},
	}
}

func buildStages() []StageDef {
	return []StageDef{
		{Name: StageDiscover, Fn: stageDiscover},
		{Name: StagePrepare, Fn: stagePrepare},
		{Name: StageRead, Fn: stageRead},
		{Name: StageWrite, Fn: stageWrite},
		{Name: StageIndex, Fn: stageIndex},
		{Name: StageStatic, Fn: stageStatic},
		{Name: StageCleanup, Fn: stageCleanup},
	}
}

// buildState is the mutable state shared by the stages of one build.
type buildState struct {
	svc    *DefaultBuildService
	req    BuildRequest
	app    *host.App
	result *BuildResult

	// inited is set once builder-inited succeeded; build-finished is only
	// emitted for builds that got that far.
	inited    bool
	readSafe  bool
	writeSafe bool
	theme     host.Theme
	tmpl      *template.Template

	res *docs.Result
	nav *navtree.Tree
	env *environment.Environment

	mu    sync.Mutex
	pages map[string]*render.Page
}

func (bs *buildState) setPage(name string, page *render.Page) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.pages == nil {
		bs.pages = map[string]*render.Page{}
	}
	bs.pages[name] = page
}

func (bs *buildState) page(name string) (*render.Page, bool) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	p, ok := bs.pages[name]
	return p, ok
}

// jobs returns the parallelism for a phase that the loaded extensions may
// or may not support.
func (bs *buildState) jobs(safe bool) int {
	if !safe || bs.req.Config.Build.Jobs < 1 {
		return 1
	}
	return bs.req.Config.Build.Jobs
}

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	rec := bs.svc.recorder
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			rec.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return err
		}
		sctx := observability.WithStage(ctx, string(st.Name))
		t0 := time.Now()
		err := st.Fn(sctx, bs)
		dur := time.Since(t0)
		bs.result.StageDurations[st.Name] = dur
		rec.ObserveStageDuration(string(st.Name), dur)
		rec.IncStageResult(string(st.Name), stageResult(ctx, err))
		if err != nil {
			bs.svc.log().DebugContext(sctx, "Stage failed", logfields.Stage(string(st.Name)), logfields.Error(err))
			return err
		}
		bs.svc.log().DebugContext(sctx, "Stage complete",
			logfields.Stage(string(st.Name)),
			slog.Duration("duration", dur))
	}
	return nil
}

func stageResult(ctx context.Context, err error) metrics.ResultLabel {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
