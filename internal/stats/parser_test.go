package stats

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

func csvReader(t *testing.T, path string) io.Reader {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestParseCSV_HAProxyDump(t *testing.T) {
	rows, err := ParseCSV(csvReader(t, "testdata/stats.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "web", rows[0][models.ColumnProxyName])
	assert.Equal(t, "FRONTEND", rows[0][models.ColumnServiceName])
	assert.Equal(t, "120", rows[0]["stot"])
	assert.Equal(t, "100", rows[0]["hrsp_2xx"])
	assert.Equal(t, "OPEN", rows[0]["status"])

	assert.Equal(t, "app1", rows[1][models.ColumnServiceName])
	assert.Equal(t, "1", rows[1]["act"])
	assert.Equal(t, "20", rows[1]["ttime"])

	for _, row := range rows {
		_, ok := row[""]
		assert.False(t, ok, "unnamed trailing column must be dropped")
	}
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []models.StatsRow
		wantErr error
	}{
		{
			name:  "header without hash marker",
			input: "pxname,svname,stot\nweb,FRONTEND,7\n",
			want:  []models.StatsRow{{"pxname": "web", "svname": "FRONTEND", "stot": "7"}},
		},
		{
			name:  "short record",
			input: "# pxname,svname,stot,\nweb,BACKEND\n",
			want:  []models.StatsRow{{"pxname": "web", "svname": "BACKEND"}},
		},
		{
			name:  "long record",
			input: "# pxname,svname\nweb,BACKEND,extra,\n",
			want:  []models.StatsRow{{"pxname": "web", "svname": "BACKEND"}},
		},
		{
			name:  "header only",
			input: "# pxname,svname,\n",
			want:  nil,
		},
		{
			name:    "empty document",
			input:   "",
			wantErr: ErrEmptyStats,
		},
		{
			name:    "not a stats page",
			input:   "<html><body>login</body></html>\n",
			wantErr: ErrMissingProxyField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInt(t *testing.T) {
	row := models.StatsRow{"stot": "42", "bin": "", "bout": "n/a", "scur": " 3 "}

	assert.Equal(t, int64(42), parseInt(row, models.KeyTotalSessions))
	assert.Equal(t, int64(0), parseInt(row, models.KeyBytesIn))
	assert.Equal(t, int64(0), parseInt(row, models.KeyBytesOut))
	assert.Equal(t, int64(3), parseInt(row, models.KeyCurrentSessions))
	assert.Equal(t, int64(0), parseInt(row, models.KeyConnErrors))
}
