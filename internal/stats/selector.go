package stats

import (
	"iter"
	"regexp"
	"strings"

	"github.com/sbilibin2017/gophaproxy/internal/models"
)

var serviceTypePattern = regexp.MustCompile(`(?i)frontend|backend`)

// Select yields the rows of one source whose proxy name equals proxyName,
// compared case-insensitively after trimming proxyName.
//
// When serviceType mentions "frontend" or "backend" (any case), only rows whose
// svname equals the upper-cased serviceType are kept. Any other serviceType,
// including "", does not narrow the selection.
//
// The returned sequence reads rows lazily and may be ranged over repeatedly.
func Select(rows []models.StatsRow, proxyName, serviceType string) iter.Seq[models.StatsRow] {
	proxy := strings.ToLower(strings.TrimSpace(proxyName))

	var service string
	if serviceTypePattern.MatchString(serviceType) {
		service = strings.ToUpper(serviceType)
	}

	return func(yield func(models.StatsRow) bool) {
		for _, row := range rows {
			if strings.ToLower(row[models.ColumnProxyName]) != proxy {
				continue
			}
			if service != "" && row[models.ColumnServiceName] != service {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Selector binds a proxy name and service type filter for repeated use.
type Selector struct {
	ProxyName   string
	ServiceType string
}

// Rows collects the selected rows of one source.
func (s Selector) Rows(rows []models.StatsRow) []models.StatsRow {
	var out []models.StatsRow
	for row := range Select(rows, s.ProxyName, s.ServiceType) {
		out = append(out, row)
	}
	return out
}
