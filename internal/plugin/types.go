package plugin

import "fmt"

// UnknownVersion is reported for extensions that do not state a version.
const UnknownVersion = "unknown"

// Loaded describes an extension after loading.
type Loaded struct {
	Name     string
	Metadata Metadata

	// Declared is set for names without a registered extension. They are
	// recorded on the host so themes can react to them, but run no code.
	Declared bool
}

// SetupError represents a failure inside an extension's setup.
type SetupError struct {
	// Extension identifies which extension failed.
	Extension string

	Err error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	return fmt.Sprintf("extension %s failed during setup: %v", e.Extension, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *SetupError) Unwrap() error {
	return e.Err
}
