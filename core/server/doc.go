// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure embedded by core/config.
//
// # Configuration
//
// The Config struct defines the HTTP port and the API key checked by the auth
// middleware.
package server
