// Package logos validates, copies and links the light and dark mode logos.
package logos

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
)

// StaticDir is the output directory logos are copied to.
const StaticDir = "_static"

// Logos are the resolved logo paths, relative to the source directory or
// absolute URLs. Both are empty when no logo is configured.
type Logos struct {
	Light string
	Dark  string
}

// Empty reports whether no logo is configured.
func (l Logos) Empty() bool { return l.Light == "" && l.Dark == "" }

// Files returns the distinct local logo paths that need copying.
func (l Logos) Files() []string {
	var out []string
	for _, p := range []string{l.Light, l.Dark} {
		if p == "" || IsURL(p) {
			continue
		}
		if len(out) == 1 && out[0] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Target returns the file name of logo p below StaticDir. A dark logo with
// the same base name as a different light logo gets a "-dark" suffix so the
// two do not overwrite each other. URLs are returned unchanged.
func (l Logos) Target(p string) string {
	if p == "" || IsURL(p) {
		return p
	}
	base := path.Base(filepath.ToSlash(p))
	if p == l.Dark && l.Dark != l.Light && !IsURL(l.Light) && base == path.Base(filepath.ToSlash(l.Light)) {
		ext := path.Ext(base)
		return strings.TrimSuffix(base, ext) + "-dark" + ext
	}
	return base
}

// Link returns the link from a page at the given depth to the copied logo p.
func (l Logos) Link(depth int, p string) string {
	return RelPath(depth, l.Target(p))
}

// Available drops the local logos missing below srcDir. When one mode's
// logo is missing the other is used for both; the result is empty when no
// logo is left. Missing files are reported by Copy.
func (l Logos) Available(srcDir string) Logos {
	exists := func(p string) bool {
		if p == "" || IsURL(p) {
			return p != ""
		}
		info, err := os.Stat(filepath.Join(srcDir, filepath.FromSlash(p)))
		return err == nil && info.Mode().IsRegular()
	}
	out := l
	if !exists(out.Light) {
		out.Light = ""
	}
	if !exists(out.Dark) {
		out.Dark = ""
	}
	if out.Light == "" {
		out.Light = out.Dark
	}
	if out.Dark == "" {
		out.Dark = out.Light
	}
	return out
}

// IsURL reports whether a logo is linked rather than copied.
func IsURL(p string) bool {
	return strings.Contains(p, "://") || strings.HasPrefix(p, "//")
}

// Validate resolves the configured logos. When only one of light and dark is
// set, that logo is used for both modes and a configuration warning is
// returned alongside the usable result.
func Validate(opts config.ThemeOptions) (Logos, error) {
	l := Logos{Light: opts.LogoLight, Dark: opts.LogoDark}
	if opts.LogosPaired() {
		return l, nil
	}

	set, missing := "logo_light", "logo_dark"
	single := l.Light
	if l.Light == "" {
		set, missing = missing, set
		single = l.Dark
	}
	l.Light, l.Dark = single, single
	return l, ferrors.ConfigError(fmt.Sprintf("%s is set without %s; using it for both modes", set, missing)).
		WithContext("set", set).
		WithContext("missing", missing).
		WithContext("logo", single).
		Warning().
		Build()
}

// Copy copies the local logos from srcDir into outDir/_static. Identical
// existing files are left alone, so copying twice yields the same tree.
// Problems are returned as classified errors combined with multierr; the
// result is fatal only when every configured logo is missing.
func Copy(srcDir, outDir string, l Logos) ([]string, error) {
	files := l.Files()
	if len(files) == 0 {
		return nil, nil
	}
	staticDir := filepath.Join(outDir, StaticDir)
	if err := os.MkdirAll(staticDir, 0o750); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create static directory").
			WithContext("path", staticDir).
			Fatal().
			Build()
	}

	var (
		copied  []string
		errs    error
		missing int
	)
	for _, rel := range files {
		src := filepath.Join(srcDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(src)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing++
			}
			errs = multierr.Append(errs, ferrors.WrapError(err, ferrors.CategoryAsset, "logo file not found").
				WithContext("logo", rel).
				WithContext("path", src).
				Build())
			continue
		}
		if !IsImage(data) {
			errs = multierr.Append(errs, ferrors.AssetError("logo is not an image").
				WithContext("logo", rel).
				Warning().
				Build())
		}

		dst := filepath.Join(staticDir, l.Target(rel))
		if existing, readErr := os.ReadFile(dst); readErr == nil && bytes.Equal(existing, data) {
			copied = append(copied, dst)
			continue
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec // published site assets are world-readable
			errs = multierr.Append(errs, ferrors.WrapError(err, ferrors.CategoryFileSystem, "write logo").
				WithContext("path", dst).
				Build())
			continue
		}
		copied = append(copied, dst)
	}

	if missing == len(files) {
		errs = multierr.Append(errs, ferrors.AssetError("no configured logo could be found").
			WithContext("logos", strings.Join(files, ", ")).
			Fatal().
			Build())
	}
	return copied, errs
}

// IsImage sniffs data for a raster image or an SVG document.
func IsImage(data []byte) bool {
	if filetype.IsImage(data) {
		return true
	}
	return isSVG(data)
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<")) && bytes.Contains(head, []byte("<svg"))
}

// RelPath returns the link from a page at the given depth to a logo. Depth 0
// is a page in the output root. URLs are returned unchanged.
func RelPath(depth int, logo string) string {
	if logo == "" || IsURL(logo) {
		return logo
	}
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat("../", depth) + StaticDir + "/" + path.Base(filepath.ToSlash(logo))
}
