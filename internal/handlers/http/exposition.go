package http

import (
	"net/http"
	"strings"
	"unicode"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// ExpositionPrefix namespaces every exposed metric.
const ExpositionPrefix = "haproxy_"

// NewMetricsExpositionHandler exposes the latest snapshot in the Prometheus
// text format. Counters carry per-interval deltas, not running totals, so
// every metric is exposed as a gauge; the original type is kept in HELP.
func NewMetricsExpositionHandler(lister Lister, instance string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := lister.List(r.Context())
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		for _, m := range metrics {
			if _, err := expfmt.MetricFamilyToText(w, toFamily(m, instance)); err != nil {
				return
			}
		}
	}
}

func toFamily(m *models.Metrics, instance string) *dto.MetricFamily {
	name := ExpositionName(m.ID, m.Unit)
	help := m.ID + " (" + m.MType + ")"
	value := m.Number()

	metric := &dto.Metric{
		Gauge: &dto.Gauge{Value: &value},
	}
	if instance != "" {
		labelName := "instance"
		metric.Label = []*dto.LabelPair{{Name: &labelName, Value: &instance}}
	}
	if !m.CreatedAt.IsZero() {
		ts := m.CreatedAt.UnixMilli()
		metric.TimestampMs = &ts
	}

	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{metric},
	}
}

// ExpositionName converts a reported name such as "Response/Codes/2xx" with
// unit "responses" into "haproxy_response_codes_2xx_responses".
func ExpositionName(id, unit string) string {
	var sb strings.Builder
	sb.WriteString(ExpositionPrefix)

	write := func(s string) {
		for _, r := range s {
			switch {
			case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
				sb.WriteRune(unicode.ToLower(r))
			default:
				sb.WriteByte('_')
			}
		}
	}

	write(id)
	if unit != "" {
		sb.WriteByte('_')
		write(unit)
	}
	return sb.String()
}
