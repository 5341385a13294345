// Package cleanup exposes the destination cleaner as a service.
//
// The Service resolves a request against the configured defaults, loads the site
// files from a manifest source, plans the cleanup and optionally applies it. Calls
// for the same destination root are serialized; the core cleaner itself holds no
// locks. Applies are recorded as CleanupRun rows when a database is configured and
// counted in the Prometheus metrics.
//
// # HTTP Endpoints
//
//   - POST /cleanup/plan : Computes the obsolete paths without removing anything.
//   - POST /cleanup/apply : Removes the obsolete paths (supports "dry_run").
//   - GET /cleanup/history : Lists recent runs (supports ?limit=N).
//   - GET /cleanup/sources : Lists the configured manifest sources.
//
// Errors map to 400 for malformed requests, 404 for unknown sources and 500 for
// traversal or deletion failures, whose body includes the offending path.
package cleanup
