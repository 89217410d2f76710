package middleware

import (
	"net/http"
	"strconv"
	"time"

	"storefront/pkg/metrics"

	"github.com/go-chi/chi/v5"
)

// Metrics records request latency keyed by the matched route pattern, so
// unmatched paths do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		metrics.APILatency.
			WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}
