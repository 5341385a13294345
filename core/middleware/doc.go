// Package middleware groups the fiber middleware mounted by the start command.
//
// The subpackages are:
//   - auth: compares the X-API-Key header with server.api_key in constant time and
//     answers 401 on mismatch. An empty key leaves the cleanup endpoints open, so
//     destinations are then limited only by cleaner.allowed_roots.
//   - rayid: tags each request with an X-Ray-ID, reusing one sent by the caller.
//     The id ends up in request logs and in the origin of recorded cleanup runs.
//
// rayid runs first so that rejected requests are still traceable. auth is mounted
// after the public swagger and metrics routes.
package middleware
