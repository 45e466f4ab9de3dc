package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/awesometheme/internal/environment"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
	"git.home.luguber.info/inful/awesometheme/internal/observability"
	"git.home.luguber.info/inful/awesometheme/internal/plugin"
)

// DefaultBuildService is the standard implementation of BuildService.
// It orchestrates the full pipeline: extensions → discovery → read → write.
type DefaultBuildService struct {
	registry *plugin.Registry
	store    environment.Store
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewBuildService creates a build service using the global extension
// registry and no persistent state.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder: metrics.NoopRecorder{},
	}
}

// WithRegistry sets the registry extensions are resolved from (for testing).
func (s *DefaultBuildService) WithRegistry(reg *plugin.Registry) *DefaultBuildService {
	s.registry = reg
	return s
}

// WithStore sets the fingerprint store that enables incremental builds.
func (s *DefaultBuildService) WithStore(store environment.Store) *DefaultBuildService {
	s.store = store
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithLogger sets the build logger. Defaults to slog.Default().
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	s.logger = l
	return s
}

func (s *DefaultBuildService) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		BuildID:        uuid.NewString(),
		StartTime:      startTime,
		StageDurations: map[StageName]time.Duration{},
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	if req.Config == nil {
		err := ferrors.ConfigError("config required").Build()
		s.finish(ctx, result, nil, err)
		return result, err
	}
	result.Builder = string(req.Config.Output.Format)
	result.OutputPath = req.Config.Output.Directory

	app := host.New(req.Config, host.WithLogger(s.log()), host.WithRecorder(s.recorder))
	app.SetContext(ctx)

	bs := &buildState{
		svc:    s,
		req:    req,
		app:    app,
		result: result,
	}

	s.log().InfoContext(ctx, "Build started",
		logfields.Builder(result.Builder),
		logfields.Path(req.Config.Source.Directory),
		slog.Bool("force", req.Force))

	err := runStages(ctx, bs, setupStages())
	if err == nil {
		err = runStages(ctx, bs, buildStages())
	}
	if bs.inited {
		// build-finished sees the build error; a listener failure fails an
		// otherwise successful build.
		finishStart := time.Now()
		if finishErr := app.EmitBuildFinished(err); finishErr != nil {
			if err == nil {
				err = finishErr
			} else {
				s.log().WarnContext(ctx, "build-finished listener failed after build error", logfields.Error(finishErr))
			}
		}
		result.StageDurations[StageFinish] = time.Since(finishStart)
	}
	if err == nil && bs.env != nil {
		if commitErr := bs.env.Commit(ctx, s.store); commitErr != nil {
			err = ferrors.WrapError(commitErr, ferrors.CategoryState, "failed to save build state").Build()
		}
	}

	result.Warnings = app.Warnings()
	s.finish(ctx, result, app, err)
	return result, err
}

// finish derives the status and records the outcome metrics.
func (s *DefaultBuildService) finish(ctx context.Context, result *BuildResult, app *host.App, err error) {
	switch {
	case err == nil && result.Warnings > 0:
		result.Status = BuildStatusWarning
	case err == nil:
		result.Status = BuildStatusSuccess
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Status = BuildStatusCancelled
	default:
		result.Status = BuildStatusFailed
	}
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	s.recorder.IncBuildOutcome(string(result.Status))
	s.recorder.ObserveBuildDuration(result.Duration)

	attrs := []any{
		logfields.Builder(result.Builder),
		slog.String("status", string(result.Status)),
		slog.Int("read", result.DocsRead),
		slog.Int("written", result.DocsWritten),
		slog.Int("removed", result.DocsRemoved),
		slog.Int64("warnings", result.Warnings),
		logfields.DurationMS(float64(result.Duration.Milliseconds())),
	}
	if err != nil {
		attrs = append(attrs, logfields.Error(err))
		s.log().ErrorContext(ctx, "Build failed", attrs...)
		return
	}
	if app != nil && len(result.Extensions) > 0 {
		attrs = append(attrs, slog.Any("extensions", app.Extensions()))
	}
	s.log().InfoContext(ctx, "Build finished", attrs...)
}
