// Package errors provides classified error primitives used across the theme and its host.
//
// A ClassifiedError carries a category (config, parse, asset, ...), a severity
// and structured context. Severity decides how the host reacts: warnings are
// reported and the build continues with degraded output, fatal errors abort
// the build.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryAsset, "logo not found").
//		Warning().
//		WithContext("path", logoPath).
//		Build()
package errors
