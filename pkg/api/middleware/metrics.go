package middleware

import (
	"net/http"
	"strconv"
	"time"

	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Metrics records request counts, latencies and in-flight gauge. A nil
// collector disables instrumentation.
func Metrics(hm *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hm == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			hm.IncInFlight()
			defer hm.DecInFlight()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			hm.RecordRequest(r.URL.Path, r.Method, strconv.Itoa(rw.statusCode), time.Since(start))
		})
	}
}
