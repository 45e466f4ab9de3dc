package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/multierr"

	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/search"
)

// staticDir is the output directory of theme and project static files.
const staticDir = "_static"

// stageIndex updates the search index with the pages read in this build.
// Incremental builds start from the previous index so unchanged documents
// keep their entries.
func stageIndex(ctx context.Context, bs *buildState) error {
	format := bs.app.IndexFormat()
	target := filepath.Join(bs.app.OutDir, search.IndexFilename(format))

	var previous *search.Index
	if !bs.env.Outdated.FullRebuild {
		previous = bs.loadIndex(ctx, target)
	}

	b := search.NewBuilder(previous)
	b.Prune(bs.env.AllDocs())
	for _, name := range bs.env.ToWrite() {
		page, ok := bs.page(name)
		if !ok {
			continue
		}
		sections := make([]search.Section, 0, len(page.Headings))
		for _, h := range page.Headings {
			sections = append(sections, search.Section{Title: h.Text, Anchor: h.ID})
		}
		b.Add(search.NewEntry(name, page.Title, page.Body, sections))
	}

	var buf bytes.Buffer
	if err := format.Dump(&buf, b.Build()); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, "failed to serialize search index").Fatal().Build()
	}
	if _, err := writeIfChanged(target, buf.Bytes()); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write search index").
			WithContext("path", target).
			Fatal().
			Build()
	}
	bs.svc.log().DebugContext(ctx, "Search index written", logfields.Path(target), logfields.Count(b.Len()))
	return nil
}

// loadIndex reads the previous index. A missing or unreadable index only
// costs the entries of unchanged documents until the next full rebuild.
func (bs *buildState) loadIndex(ctx context.Context, target string) *search.Index {
	f, err := os.Open(target) //nolint:gosec // path derived from configured output directory
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			bs.app.Warn(ctx, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open previous search index").Warning().Build())
		}
		return nil
	}
	defer func() { _ = f.Close() }()

	var idx search.Index
	if err := bs.app.IndexFormat().Load(f, &idx); err != nil {
		bs.app.Warn(ctx, ferrors.WrapError(err, ferrors.CategoryParse, "previous search index is unreadable").
			WithContext("path", target).
			Warning().
			Build())
		return nil
	}
	return &idx
}

// stageStatic copies theme static files, project static directories,
// document assets and the highlighting stylesheet.
func stageStatic(ctx context.Context, bs *buildState) error {
	cfg := bs.req.Config
	out := bs.app.OutDir
	staticOut := filepath.Join(out, staticDir)
	var errs error

	if bs.theme.Static != nil {
		if _, err := copyFS(bs.theme.Static, staticOut); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryTheme, "failed to copy theme static files").
				WithContext("theme", bs.theme.Name).
				Fatal().
				Build()
		}
	}
	for _, dir := range cfg.Source.Static {
		if _, err := os.Stat(dir); err != nil {
			errs = multierr.Append(errs, ferrors.WrapError(err, ferrors.CategoryAsset, "static directory not found").
				WithContext("path", dir).
				Warning().
				Build())
			continue
		}
		if _, err := copyFS(os.DirFS(dir), staticOut); err != nil {
			errs = multierr.Append(errs, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy static directory").
				WithContext("path", dir).
				Warning().
				Build())
		}
	}

	copied := 0
	for _, asset := range bs.res.Assets {
		data, err := os.ReadFile(asset.SourcePath)
		if err == nil {
			var changed bool
			changed, err = writeIfChanged(filepath.Join(out, filepath.FromSlash(asset.RelPath)), data)
			if changed {
				copied++
			}
		}
		if err != nil {
			errs = multierr.Append(errs, ferrors.WrapError(err, ferrors.CategoryAsset, "failed to copy asset").
				WithContext("path", asset.RelPath).
				Warning().
				Build())
		}
	}

	hl := bs.app.Highlighter()
	css, err := hl.Stylesheet()
	if err == nil {
		_, err = writeIfChanged(filepath.Join(staticOut, filepath.FromSlash(hl.StyleFilename())), css)
	}
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryTheme, "failed to write highlighting stylesheet").Fatal().Build()
	}

	for _, e := range multierr.Errors(errs) {
		bs.app.Warn(ctx, e)
	}
	bs.svc.log().DebugContext(ctx, "Static files copied", logfields.Count(copied))
	return nil
}

// copyFS copies every regular file of src below dst, skipping files whose
// content is unchanged. It returns the number of files written.
func copyFS(src fs.FS, dst string) (int, error) {
	written := 0
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		changed, err := writeIfChanged(filepath.Join(dst, filepath.FromSlash(path.Clean(p))), data)
		if err != nil {
			return err
		}
		if changed {
			written++
		}
		return nil
	})
	return written, err
}

// stageCleanup removes the output pages of documents deleted since the
// previous build.
func stageCleanup(ctx context.Context, bs *buildState) error {
	suffix := bs.app.OutSuffix()
	removed := 0
	for _, name := range bs.env.Outdated.Removed {
		target := filepath.Join(bs.app.OutDir, filepath.FromSlash(name+suffix))
		err := os.Remove(target)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			bs.app.Warn(ctx, ferrors.WrapError(fmt.Errorf("remove %s: %w", target, err), ferrors.CategoryFileSystem, "failed to remove stale page").
				WithContext("docname", name).
				Warning().
				Build())
		}
	}
	bs.result.DocsRemoved = removed
	if removed > 0 {
		bs.svc.log().InfoContext(ctx, "Stale pages removed", logfields.Count(removed))
	}
	return nil
}
