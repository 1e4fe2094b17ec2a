package http

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

// Compressor compresses response bodies.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Encoding() string
}

// GzipMiddleware compresses JSON, HTML and text responses for clients whose
// Accept-Encoding names the compressor's encoding. A nil compressor disables it.
func GzipMiddleware(compressor Compressor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if compressor == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), compressor.Encoding()) {
				next.ServeHTTP(w, r)
				return
			}

			bw := newBufferResponseWriter(w)
			next.ServeHTTP(bw, r)

			body := bw.buf.Bytes()
			if compressible(w.Header().Get("Content-Type")) && len(body) > 0 {
				compressed, err := compressor.Compress(body)
				if err == nil {
					body = compressed
					w.Header().Set("Content-Encoding", compressor.Encoding())
					w.Header().Add("Vary", "Accept-Encoding")
				}
			}

			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(bw.statusCode)
			w.Write(body)
		})
	}
}

func compressible(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "text/plain")
}

// bufferResponseWriter holds the status and body until the wrapping
// middleware decides how to send them.
type bufferResponseWriter struct {
	http.ResponseWriter
	buf         *bytes.Buffer
	statusCode  int
	wroteHeader bool
}

func newBufferResponseWriter(w http.ResponseWriter) *bufferResponseWriter {
	return &bufferResponseWriter{
		ResponseWriter: w,
		buf:            &bytes.Buffer{},
		statusCode:     http.StatusOK,
	}
}

func (w *bufferResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
}

func (w *bufferResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}
