// Package history persists a local log of remote invocations.
//
// Every proxy call is appended with its method name, outcome, profile
// annotation, and duration. The CLI surfaces the log through
// `lattice history`. The store is nil-safe so callers that disable history
// can pass a nil *Store without guarding every call site.
package history
