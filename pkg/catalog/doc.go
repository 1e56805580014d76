// Package catalog provides the process-wide country catalog used by every
// nationality select.
//
// The provider loads names at most once (NotLoaded -> Loading -> Loaded),
// shares a single in-flight fetch between concurrent callers, and returns to
// NotLoaded after a failed attempt so the next call retries. Populate copies
// the catalog into a select field exactly once per field.
package catalog
