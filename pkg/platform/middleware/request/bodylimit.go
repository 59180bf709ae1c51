package request

import (
	"fmt"
	"net/http"

	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes. A declared Content-Length above
// the cap is refused with 413 up front; a body without one is cut off while
// the handler decodes it.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", maxBytes)))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
