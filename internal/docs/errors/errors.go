package errors

// Package errors provides sentinel errors for source discovery.
// Callers classify them with errors.Is before wrapping into classified errors.

import "errors"

var (
	// ErrSourceDirNotFound indicates the configured source directory does not exist.
	ErrSourceDirNotFound = errors.New("source directory not found")

	// ErrSourceDirWalkFailed indicates filesystem traversal of the source directory failed.
	ErrSourceDirWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading a discovered document failed.
	ErrFileReadFailed = errors.New("document read failed")

	// ErrInvalidFrontmatter indicates a document carries malformed YAML front matter.
	ErrInvalidFrontmatter = errors.New("invalid document front matter")

	// ErrInvalidExcludePattern indicates an exclude glob could not be compiled.
	ErrInvalidExcludePattern = errors.New("invalid exclude pattern")

	// ErrNoDocsFound indicates no Markdown documents were discovered.
	ErrNoDocsFound = errors.New("no documents found")

	// ErrRootDocMissing indicates the configured navigation root was not discovered.
	ErrRootDocMissing = errors.New("root document not found")
)
