// Package stats selects and aggregates rows from HAProxy CSV stats pages.
package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// Parse errors.
var (
	ErrEmptyStats        = errors.New("stats: empty document")
	ErrMissingProxyField = errors.New("stats: header has no pxname column")
)

// ParseCSV reads a HAProxy CSV stats dump. The first record is the header;
// its leading "# " marker is stripped so the first column reads "pxname".
// Unnamed columns (HAProxy ends every line with a comma) are dropped and
// short records simply lack the missing columns.
func ParseCSV(r io.Reader) ([]models.StatsRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyStats
	}
	if err != nil {
		return nil, fmt.Errorf("stats: read header: %w", err)
	}

	columns := make([]string, len(header))
	var hasProxy bool
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimSpace(strings.TrimPrefix(name, "#"))
		}
		columns[i] = name
		if name == models.ColumnProxyName {
			hasProxy = true
		}
	}
	if !hasProxy {
		return nil, ErrMissingProxyField
	}

	var rows []models.StatsRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stats: read record %d: %w", len(rows)+1, err)
		}

		row := make(models.StatsRow, len(columns))
		for i, value := range record {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			row[columns[i]] = value
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseInt reads a numeric stats field. Missing or malformed values count as 0.
func parseInt(row models.StatsRow, key models.MetricKey) int64 {
	raw, ok := row[string(key)]
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
