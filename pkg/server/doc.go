// Package server provides the HTTP server for the Ganymede guardrail
// service: route setup, the middleware chain, and graceful shutdown.
package server
