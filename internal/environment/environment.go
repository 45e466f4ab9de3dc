// Package environment tracks document fingerprints between builds and decides
// which documents are outdated.
package environment

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
)

// Options controls how outdated documents are computed.
type Options struct {
	BuildID    string
	ConfigHash string
	// Force requests a full rebuild regardless of recorded state.
	Force bool
	// SourceDir and Since enable git-based staleness; both must be set.
	SourceDir string
	Since     string
}

// Environment is the build environment for one build pass.
type Environment struct {
	Docs     *docs.Result
	Previous *Snapshot
	Current  *Snapshot
	Outdated Outdated
}

// Prepare loads the previous snapshot from store and computes the outdated
// documents of res. A nil store always yields a full rebuild.
func Prepare(ctx context.Context, store Store, res *docs.Result, opts Options) (*Environment, error) {
	var prev *Snapshot
	if store != nil {
		var err error
		prev, err = store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load build state: %w", err)
		}
	}

	cur := NewSnapshot(opts.BuildID, opts.ConfigHash, res.Documents)
	outdated := Compare(prev, cur)
	if opts.Force && !outdated.FullRebuild {
		outdated.FullRebuild, outdated.Reason = true, ReasonForced
	}

	if opts.Since != "" && opts.SourceDir != "" && !outdated.FullRebuild {
		names, err := ChangedSince(opts.SourceDir, opts.Since)
		if err != nil {
			// Git staleness is additive; fingerprints still decide the build.
			slog.Warn("Git staleness check failed", slog.String("since", opts.Since), logfields.Error(err))
		} else {
			outdated.MarkChanged(cur, names)
		}
	}

	slog.Info("Outdated documents computed",
		logfields.BuildID(opts.BuildID),
		slog.Int("added", len(outdated.Added)),
		slog.Int("changed", len(outdated.Changed)),
		slog.Int("removed", len(outdated.Removed)),
		slog.Bool("full_rebuild", outdated.FullRebuild),
		slog.String("reason", outdated.Reason))

	return &Environment{Docs: res, Previous: prev, Current: cur, Outdated: outdated}, nil
}

// AllDocs returns every known docname in natural order.
func (e *Environment) AllDocs() []string {
	return e.Docs.Names()
}

// ToWrite returns the docnames whose output must be written in this pass.
func (e *Environment) ToWrite() []string {
	if e.Outdated.FullRebuild {
		return e.AllDocs()
	}
	return e.Outdated.Stale()
}

// Commit records the current snapshot after a successful build.
func (e *Environment) Commit(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	if err := store.Save(ctx, e.Current); err != nil {
		return fmt.Errorf("save build state: %w", err)
	}
	return nil
}
