package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/plugin"
)

// BuildService is the canonical interface for executing documentation builds.
type BuildService interface {
	// Run executes a complete build: setup → discover → read → write → finish.
	// Returns a BuildResult with detailed outcomes and any error encountered.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a documentation build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Force requests a full rebuild regardless of recorded state.
	Force bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// BuildID identifies the build in logs and notifications.
	BuildID string

	// Status indicates overall build outcome.
	Status BuildStatus

	// Builder is the output format ("html" or "json").
	Builder string

	// OutputPath is the output directory.
	OutputPath string

	// Extensions lists the loaded extensions in load order.
	Extensions []plugin.Loaded

	// DocsRead is the number of documents rendered in this pass.
	DocsRead int

	// DocsWritten is the number of output pages written.
	DocsWritten int

	// DocsRemoved is the number of outputs deleted for removed documents.
	DocsRemoved int

	// FullRebuild reports whether every document was rebuilt, and Reason why.
	FullRebuild bool
	Reason      string

	// Warnings is the number of warnings reported during the build.
	Warnings int64

	// StageDurations records the wall time of each stage that ran.
	StageDurations map[StageName]time.Duration

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed without warnings.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the build completed with warnings.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build produced its output.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
