package metrics

import (
	"net/http"
	"regexp"
	"time"
)

var (
	numericSegment = regexp.MustCompile(`/(\d+)`)
	shareToken     = regexp.MustCompile(`^/public/dashboard/[^/]+`)
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request count and latency for each request. Panics are
// recorded as 500s without re-panicking.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		startTime := time.Now()

		defer func() {
			duration := time.Since(startTime).Seconds()

			statusCode := recorder.statusCode
			if statusCode == 0 {
				statusCode = http.StatusInternalServerError
			}

			normalizedPath := normalizePath(r.URL.Path)

			statusStr := http.StatusText(statusCode)
			if statusStr == "" {
				statusStr = "UNKNOWN"
			}

			RecordRequest(r.Method, normalizedPath, statusStr)
			RecordRequestDuration(r.Method, normalizedPath, statusStr, duration)

			if err := recover(); err != nil {
				if !recorder.written {
					recorder.statusCode = http.StatusInternalServerError
					recorder.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// normalizePath replaces variable path segments so metric labels stay low
// cardinality.
//
//	/access-keys/123        -> /access-keys/:id
//	/access-keys/123/renew  -> /access-keys/:id/renew
//	/public/dashboard/ab3f  -> /public/dashboard/:token
func normalizePath(path string) string {
	if shareToken.MatchString(path) {
		return "/public/dashboard/:token"
	}
	return numericSegment.ReplaceAllString(path, "/:id")
}
