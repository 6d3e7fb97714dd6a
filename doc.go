// Package rugo is a minimal parquet read core: it parses file footers into
// schema and column chunk metadata, decodes flat column chunks into typed
// in-memory arrays, and probes the split-block bloom filters attached to
// column chunks.
//
// The package operates on complete file images held in byte slices and never
// performs I/O of its own beyond the file-path convenience entry points. All
// operations are pure functions over their inputs and are safe to call
// concurrently.
package rugo
