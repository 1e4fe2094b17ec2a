package http

import (
	"net/http"
)

// Hasher signs response bodies.
type Hasher interface {
	Hash(data []byte) string
}

// HashMiddleware sets header to the hash of the uncompressed response body.
// Mount it inside GzipMiddleware so the signature covers the plain body.
// A nil hasher disables it.
func HashMiddleware(hasher Hasher, header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hasher == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := newBufferResponseWriter(w)
			next.ServeHTTP(bw, r)

			body := bw.buf.Bytes()
			w.Header().Set(header, hasher.Hash(body))
			w.WriteHeader(bw.statusCode)
			w.Write(body)
		})
	}
}
