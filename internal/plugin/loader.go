package plugin

import (
	"log/slog"

	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
)

// Load sets up the named extensions on app in order. Duplicate names are
// loaded once. Names without a registered extension are declared on the
// host and assumed safe for parallel builds.
func Load(app *host.App, reg *Registry, names []string) ([]Loaded, error) {
	if reg == nil {
		reg = globalRegistry
	}
	seen := make(map[string]bool, len(names))
	loaded := make([]Loaded, 0, len(names))

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		ext, err := reg.Get(name)
		if err != nil {
			app.DeclareExtension(name)
			app.Logger().Debug("Extension declared without setup", logfields.Extension(name))
			loaded = append(loaded, Loaded{
				Name:     name,
				Metadata: Metadata{Version: UnknownVersion, ParallelReadSafe: true, ParallelWriteSafe: true},
				Declared: true,
			})
			continue
		}

		var md Metadata
		err = app.SetupExtension(name, func(a *host.App) error {
			var setupErr error
			md, setupErr = ext.Setup(a)
			return setupErr
		})
		if err != nil {
			return loaded, ferrors.WrapError(&SetupError{Extension: name, Err: err}, ferrors.CategoryExtension, "extension setup failed").
				WithContext("extension", name).
				Fatal().
				Build()
		}
		if md.Version == "" {
			md.Version = UnknownVersion
		}
		app.Logger().Info("Extension loaded",
			logfields.Extension(name),
			slog.String("version", md.Version),
			slog.Bool("parallel_read", md.ParallelReadSafe),
			slog.Bool("parallel_write", md.ParallelWriteSafe))
		loaded = append(loaded, Loaded{Name: name, Metadata: md})
	}
	return loaded, nil
}

// ParallelSafe reports whether every loaded extension allows parallel
// reading and writing respectively. No extensions means both are allowed.
func ParallelSafe(loaded []Loaded) (read, write bool) {
	read, write = true, true
	for _, l := range loaded {
		read = read && l.Metadata.ParallelReadSafe
		write = write && l.Metadata.ParallelWriteSafe
	}
	return read, write
}
