package http

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/sbilibin2017/gophaproxy/internal/models"
	"github.com/sbilibin2017/gophaproxy/internal/stats"
)

// StatsHTTPFacade downloads HAProxy CSV stats pages.
type StatsHTTPFacade struct {
	client *resty.Client
}

// NewStatsHTTPFacade creates a StatsHTTPFacade. Credentials and timeouts are
// configured on client.
func NewStatsHTTPFacade(client *resty.Client) *StatsHTTPFacade {
	return &StatsHTTPFacade{client: client}
}

// Fetch loads and parses the stats page at source. Transport errors, non-2xx
// responses and unparseable bodies are returned in FetchResult.Err.
func (f *StatsHTTPFacade) Fetch(ctx context.Context, source models.Source) *models.FetchResult {
	result := &models.FetchResult{Source: source}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(string(source))
	if err != nil {
		result.Err = fmt.Errorf("fetch %s: %w", source, err)
		return result
	}
	if resp.IsError() {
		result.Err = fmt.Errorf("fetch %s: unexpected status %d", source, resp.StatusCode())
		return result
	}

	rows, err := stats.ParseCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		result.Err = fmt.Errorf("parse %s: %w", source, err)
		return result
	}

	result.Rows = rows
	return result
}
