package http

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gophaproxy/internal/configs/compressor"
)

type failingCompressor struct{}

func (failingCompressor) Compress([]byte) ([]byte, error) { return nil, errors.New("broken") }
func (failingCompressor) Encoding() string                { return "gzip" }

func gunzip(t *testing.T, data []byte) string {
	t.Helper()

	gzr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gzr.Close()
	out, err := io.ReadAll(gzr)
	require.NoError(t, err)
	return string(out)
}

func TestGzipMiddleware(t *testing.T) {
	jsonHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		io.WriteString(w, `[{"id":"Requests"}]`)
	})
	binaryHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{1, 2, 3})
	})

	tests := []struct {
		name           string
		compressor     Compressor
		handler        http.Handler
		acceptEncoding string
		expectGzip     bool
		expectStatus   int
		expectBody     string
	}{
		{
			name:           "client accepts gzip",
			compressor:     compressor.New(),
			handler:        jsonHandler,
			acceptEncoding: "gzip, deflate",
			expectGzip:     true,
			expectStatus:   http.StatusAccepted,
			expectBody:     `[{"id":"Requests"}]`,
		},
		{
			name:         "client does not accept gzip",
			compressor:   compressor.New(),
			handler:      jsonHandler,
			expectStatus: http.StatusAccepted,
			expectBody:   `[{"id":"Requests"}]`,
		},
		{
			name:           "content type not compressible",
			compressor:     compressor.New(),
			handler:        binaryHandler,
			acceptEncoding: "gzip",
			expectStatus:   http.StatusOK,
			expectBody:     "\x01\x02\x03",
		},
		{
			name:           "disabled",
			compressor:     nil,
			handler:        jsonHandler,
			acceptEncoding: "gzip",
			expectStatus:   http.StatusAccepted,
			expectBody:     `[{"id":"Requests"}]`,
		},
		{
			name:           "compression failure falls back to plain body",
			compressor:     failingCompressor{},
			handler:        jsonHandler,
			acceptEncoding: "gzip",
			expectStatus:   http.StatusAccepted,
			expectBody:     `[{"id":"Requests"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()

			GzipMiddleware(tt.compressor)(tt.handler).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectStatus, rec.Code)
			if tt.expectGzip {
				assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
				assert.Equal(t, tt.expectBody, gunzip(t, rec.Body.Bytes()))
				return
			}
			assert.Empty(t, rec.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.expectBody, rec.Body.String())
		})
	}
}
