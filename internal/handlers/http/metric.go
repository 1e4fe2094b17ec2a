package http

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sbilibin2017/gophaproxy/internal/models"
	"github.com/sbilibin2017/gophaproxy/internal/services"
)

//go:generate mockgen -source=metric.go -destination=mock_metric.go -package=http

// Getter retrieves the latest value of a metric.
type Getter interface {
	Get(ctx context.Context, id *models.MetricID) (*models.Metrics, error)
}

// Lister lists the latest value of every metric.
type Lister interface {
	List(ctx context.Context) ([]*models.Metrics, error)
}

// Historian lists past values of one metric.
type Historian interface {
	History(ctx context.Context, id string, limit int) ([]*models.Metrics, error)
}

// DefaultHistoryLimit caps /history responses without an explicit limit.
const DefaultHistoryLimit = 100

// NewMetricGetPathHandler writes the latest value of a metric as plain text.
// The metric name is the wildcard tail of the route since names contain
// slashes, e.g. /value/counter/Response/Codes/2xx.
func NewMetricGetPathHandler(getter Getter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mType := chi.URLParam(r, "type")
		id := chi.URLParam(r, "*")

		if strings.TrimSpace(id) == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if mType != models.Gauge && mType != models.Counter {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		metric, err := getter.Get(r.Context(), &models.MetricID{ID: id, MType: mType})
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if metric == nil {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(formatValue(metric)))
	}
}

// NewMetricListHTMLHandler renders the latest snapshot as an HTML table.
func NewMetricListHTMLHandler(lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := lister.List(r.Context())
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		var sb strings.Builder

		sb.WriteString("<html><body><h1>HAProxy</h1>")
		sb.WriteString("<table border='1'><tr><th>Name</th><th>Type</th><th>Value</th><th>Unit</th></tr>")

		for _, m := range metrics {
			sb.WriteString("<tr><td>")
			sb.WriteString(html.EscapeString(m.ID))
			sb.WriteString("</td><td>")
			sb.WriteString(m.MType)
			sb.WriteString("</td><td>")
			sb.WriteString(formatValue(m))
			sb.WriteString("</td><td>")
			sb.WriteString(html.EscapeString(m.Unit))
			sb.WriteString("</td></tr>")
		}

		sb.WriteString("</table></body></html>")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(sb.String()))
	}
}

// NewSnapshotJSONHandler writes the latest snapshot as a JSON array.
func NewSnapshotJSONHandler(lister Lister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := lister.List(r.Context())
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if metrics == nil {
			metrics = []*models.Metrics{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics)
	}
}

// NewMetricHistoryHandler writes past values of the metric named by the "id"
// query parameter, newest first. "limit" defaults to DefaultHistoryLimit.
func NewMetricHistoryHandler(historian Historian) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		limit := DefaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			limit = n
		}

		metrics, err := historian.History(r.Context(), id, limit)
		if errors.Is(err, services.ErrHistoryDisabled) {
			http.Error(w, "Not implemented", http.StatusNotImplemented)
			return
		}
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if metrics == nil {
			metrics = []*models.Metrics{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(metrics)
	}
}

func formatValue(m *models.Metrics) string {
	switch {
	case m.Delta != nil:
		return strconv.FormatInt(*m.Delta, 10)
	case m.Value != nil:
		return strconv.FormatFloat(*m.Value, 'f', -1, 64)
	default:
		return ""
	}
}
