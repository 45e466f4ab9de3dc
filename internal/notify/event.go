package notify

import (
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/build"
)

// BuildEvent summarizes a finished build for downstream consumers
// (cache purges, deploy hooks, chat notifications).
type BuildEvent struct {
	BuildID string `json:"build_id"`
	Project string `json:"project"`
	Status  string `json:"status"`
	Builder string `json:"builder"`
	Output  string `json:"output"`

	DocsRead    int    `json:"docs_read"`
	DocsWritten int    `json:"docs_written"`
	DocsRemoved int    `json:"docs_removed"`
	FullRebuild bool   `json:"full_rebuild"`
	Reason      string `json:"reason,omitempty"`
	Warnings    int64  `json:"warnings"`

	Extensions []string `json:"extensions,omitempty"`
	Error      string   `json:"error,omitempty"`

	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewBuildEvent builds the event for result. buildErr is the error returned
// alongside the result, if any.
func NewBuildEvent(project string, result *build.BuildResult, buildErr error) *BuildEvent {
	ev := &BuildEvent{
		BuildID:     result.BuildID,
		Project:     project,
		Status:      string(result.Status),
		Builder:     result.Builder,
		Output:      result.OutputPath,
		DocsRead:    result.DocsRead,
		DocsWritten: result.DocsWritten,
		DocsRemoved: result.DocsRemoved,
		FullRebuild: result.FullRebuild,
		Reason:      result.Reason,
		Warnings:    result.Warnings,
		DurationMS:  result.Duration.Milliseconds(),
		FinishedAt:  result.EndTime,
	}
	for _, l := range result.Extensions {
		ev.Extensions = append(ev.Extensions, l.Name)
	}
	if buildErr != nil {
		ev.Error = buildErr.Error()
	}
	return ev
}
