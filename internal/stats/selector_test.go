package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

func collect(rows []models.StatsRow, proxy, service string) []models.StatsRow {
	var out []models.StatsRow
	for row := range Select(rows, proxy, service) {
		out = append(out, row)
	}
	return out
}

func TestSelect(t *testing.T) {
	frontend := models.StatsRow{"pxname": "web", "svname": "FRONTEND"}
	backend := models.StatsRow{"pxname": "web", "svname": "BACKEND"}
	server := models.StatsRow{"pxname": "Web", "svname": "app1"}
	other := models.StatsRow{"pxname": "stats", "svname": "FRONTEND"}
	rows := []models.StatsRow{frontend, backend, server, other}

	tests := []struct {
		name    string
		proxy   string
		service string
		want    []models.StatsRow
	}{
		{
			name:    "frontend filter",
			proxy:   "web",
			service: "frontend",
			want:    []models.StatsRow{frontend},
		},
		{
			name:    "backend filter in mixed case",
			proxy:   "web",
			service: "BackEnd",
			want:    []models.StatsRow{backend},
		},
		{
			name:  "no filter",
			proxy: "web",
			want:  []models.StatsRow{frontend, backend, server},
		},
		{
			name:    "unknown filter imposes nothing",
			proxy:   "web",
			service: "server",
			want:    []models.StatsRow{frontend, backend, server},
		},
		{
			name:  "proxy name is trimmed and case-insensitive",
			proxy: "  WEB ",
			want:  []models.StatsRow{frontend, backend, server},
		},
		{
			name:    "filter containing frontend must match svname exactly",
			proxy:   "web",
			service: "my-frontend",
			want:    nil,
		},
		{
			name:  "no match",
			proxy: "api",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(rows, tt.proxy, tt.service))
		})
	}
}

func TestSelect_Restartable(t *testing.T) {
	rows := []models.StatsRow{
		{"pxname": "web", "svname": "FRONTEND", "stot": "1"},
		{"pxname": "web", "svname": "BACKEND", "stot": "2"},
	}
	seq := Select(rows, "web", "")

	var first, second []models.StatsRow
	for row := range seq {
		first = append(first, row)
	}
	for row := range seq {
		second = append(second, row)
	}

	assert.Equal(t, first, second)
	assert.Equal(t, models.StatsRow{"pxname": "web", "svname": "FRONTEND", "stot": "1"}, rows[0])
	assert.Len(t, rows, 2)
}

func TestSelect_StopsEarly(t *testing.T) {
	rows := []models.StatsRow{
		{"pxname": "web", "svname": "FRONTEND"},
		{"pxname": "web", "svname": "BACKEND"},
	}

	var n int
	for range Select(rows, "web", "") {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSelector_Rows(t *testing.T) {
	rows := []models.StatsRow{
		{"pxname": "web", "svname": "FRONTEND"},
		{"pxname": "web", "svname": "BACKEND"},
	}
	s := Selector{ProxyName: "web", ServiceType: "frontend"}

	assert.Equal(t, []models.StatsRow{rows[0]}, s.Rows(rows))
	assert.Nil(t, Selector{ProxyName: "db"}.Rows(rows))
}
