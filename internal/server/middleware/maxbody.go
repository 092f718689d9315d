package middleware

import (
	"fmt"
	"net/http"
)

// MaxBodySize is the default request body limit, sized for camera photos.
const MaxBodySize = 10 << 20

// MaxBody caps the body of POST, PUT and PATCH requests at maxSize bytes,
// or MaxBodySize when maxSize is not positive. A declared Content-Length
// over the cap is refused with 413 before the handler runs; otherwise the
// handler sees a read error once the cap is crossed.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxSize {
				WriteError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request body of %d bytes exceeds the %d byte limit", r.ContentLength, maxSize))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}
