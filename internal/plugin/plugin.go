// Package plugin provides the extension registry of the documentation builder.
// Extensions register themselves by name and are set up on a host.App when
// the configuration lists them.
package plugin

import (
	"fmt"

	"git.home.luguber.info/inful/awesometheme/internal/host"
)

// Extension is a named unit of setup code run against the host.
type Extension interface {
	// Name is the identifier used in the extensions list of the configuration.
	Name() string

	// Setup registers listeners, assets and strategies on app and reports
	// what the extension supports.
	Setup(app *host.App) (Metadata, error)
}

// Metadata is what an extension reports after setup.
type Metadata struct {
	// Version is the extension version, usually the module version.
	Version string

	// ParallelReadSafe allows the builder to read documents concurrently.
	ParallelReadSafe bool

	// ParallelWriteSafe allows the builder to write pages concurrently.
	ParallelWriteSafe bool
}

// String returns a human-readable representation of the metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s (parallel read=%t write=%t)", m.Version, m.ParallelReadSafe, m.ParallelWriteSafe)
}

// Func adapts a setup function to the Extension interface.
type Func struct {
	ID string
	Fn func(app *host.App) (Metadata, error)
}

func (f Func) Name() string { return f.ID }

func (f Func) Setup(app *host.App) (Metadata, error) { return f.Fn(app) }
