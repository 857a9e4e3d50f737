// Package handlers implements the Ganymede HTTP API.
//
// Routes:
//
//	POST /v1/guardrails/check   evaluate text against the active ruleset
//	GET  /v1/guardrails/config  summarize the active ruleset
//	POST /v1/guardrails/reload  re-read the ruleset from its source
//
// Health, readiness and metrics endpoints are mounted by the server
// from their own packages.
package handlers
