// Package build provides the canonical build execution pipeline.
//
// A build creates a fresh host.App, loads the configured extensions through
// the plugin registry and then runs a fixed sequence of stages:
//
//  1. setup        – load extensions, select the HTML theme, emit builder-inited
//  2. discover     – read the source directory and build the navigation tree
//  3. prepare      – compute outdated documents, emit env-before-read-docs
//  4. read         – render outdated documents to HTML fragments
//  5. write        – emit html-page-context per page and write the output
//  6. index        – update the search index
//  7. static       – copy theme, project and document assets
//  8. cleanup      – remove outputs of deleted documents
//
// build-finished is emitted once after the stages, with the build error if
// one occurred, and the fingerprint snapshot is committed only when the whole
// build, listeners included, succeeded.
//
// Reading and writing run in parallel only when every loaded extension
// declares the respective safety flag.
package build
