// Package middleware provides the HTTP middleware chain for the
// Ganymede API: request ID propagation, structured request logging,
// panic recovery, per-request timeouts, CORS, and Prometheus request
// metrics.
//
// Middlewares compose outermost-first:
//
//	handler = middleware.Recovery(logger)(
//	    middleware.RequestID(
//	        middleware.Logging(logger)(
//	            middleware.Metrics(collector)(mux))))
package middleware
