package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/solemate/solemate-backend/pkg/metrics"
)

// Metrics records request count, latency, and in-flight gauge per chi route.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.IncInFlight()
			defer m.DecInFlight()

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			m.ObserveRequest(r.Method, routePattern(r), strconv.Itoa(rec.status), time.Since(start))
		})
	}
}
