package http

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/gophaproxy/internal/configs/hasher"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

//go:generate mockgen -source=metric.go -destination=mock_metric.go -package=http

// Compressor compresses request bodies.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Encoding() string
}

// Hasher signs request bodies.
type Hasher interface {
	Hash(data []byte) string
}

// MetricHTTPFacade pushes metric batches to the /updates/ endpoint of a metrics server.
type MetricHTTPFacade struct {
	client     *resty.Client
	compressor Compressor
	hasher     Hasher
}

// MetricFacadeOpt configures a MetricHTTPFacade.
type MetricFacadeOpt func(*MetricHTTPFacade)

// WithCompressor compresses every batch with c.
func WithCompressor(c Compressor) MetricFacadeOpt {
	return func(f *MetricHTTPFacade) {
		f.compressor = c
	}
}

// WithHasher signs every batch with h. The signature covers the uncompressed body.
func WithHasher(h Hasher) MetricFacadeOpt {
	return func(f *MetricHTTPFacade) {
		f.hasher = h
	}
}

// NewMetricHTTPFacade creates a MetricHTTPFacade on top of client.
func NewMetricHTTPFacade(client *resty.Client, opts ...MetricFacadeOpt) *MetricHTTPFacade {
	f := &MetricHTTPFacade{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Update posts metrics as one JSON batch to "/updates/". Nil entries are
// skipped and an empty batch sends nothing.
func (f *MetricHTTPFacade) Update(ctx context.Context, metrics []*models.Metrics) error {
	batch := make([]*models.Metrics, 0, len(metrics))
	for _, m := range metrics {
		if m != nil {
			batch = append(batch, m)
		}
	}
	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return err
	}

	req := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	if f.hasher != nil {
		req.SetHeader(hasher.Header, f.hasher.Hash(body))
	}

	if f.compressor != nil {
		packed, err := f.compressor.Compress(body)
		if err != nil {
			return err
		}
		req.SetHeader("Content-Encoding", f.compressor.Encoding())
		body = packed
	}

	resp, err := req.SetBody(body).Post("/updates/")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("metrics server: unexpected status %d", resp.StatusCode())
	}
	return nil
}
