package models

import "time"

// Source identifies one monitored HAProxy instance by its stats URL.
type Source string

// MetricKey names one HAProxy CSV stats column the agent tracks.
type MetricKey string

// Counter columns: cumulative totals that need delta conversion.
const (
	KeyTotalSessions  MetricKey = "stot"
	KeyResponses1xx   MetricKey = "hrsp_1xx"
	KeyResponses2xx   MetricKey = "hrsp_2xx"
	KeyResponses3xx   MetricKey = "hrsp_3xx"
	KeyResponses4xx   MetricKey = "hrsp_4xx"
	KeyResponses5xx   MetricKey = "hrsp_5xx"
	KeyResponsesOther MetricKey = "hrsp_other"
	KeyRequestErrors  MetricKey = "ereq"
	KeyResponseErrors MetricKey = "eresp"
	KeyConnErrors     MetricKey = "econ"
	KeyBytesIn        MetricKey = "bin"
	KeyBytesOut       MetricKey = "bout"
)

// Gauge columns: instantaneous values summed or averaged directly.
const (
	KeyConnectTime     MetricKey = "ctime"
	KeyQueueTime       MetricKey = "qtime"
	KeyResponseTime    MetricKey = "rtime"
	KeyTotalTime       MetricKey = "ttime"
	KeyCurrentSessions MetricKey = "scur"
	KeyQueuedSessions  MetricKey = "qcur"
	KeyActiveServers   MetricKey = "act"
	KeyBackupServers   MetricKey = "bck"
	KeyStatus          MetricKey = "status"
)

// CounterKeys lists every counter column in reporting order.
var CounterKeys = []MetricKey{
	KeyTotalSessions,
	KeyResponses1xx,
	KeyResponses2xx,
	KeyResponses3xx,
	KeyResponses4xx,
	KeyResponses5xx,
	KeyResponsesOther,
	KeyRequestErrors,
	KeyResponseErrors,
	KeyConnErrors,
	KeyBytesIn,
	KeyBytesOut,
}

// GaugeKeys lists every gauge column in reporting order.
var GaugeKeys = []MetricKey{
	KeyConnectTime,
	KeyQueueTime,
	KeyResponseTime,
	KeyTotalTime,
	KeyCurrentSessions,
	KeyQueuedSessions,
	KeyActiveServers,
	KeyBackupServers,
	KeyStatus,
}

// AveragedKeys are gauges divided by the configured source count.
var AveragedKeys = []MetricKey{
	KeyConnectTime,
	KeyQueueTime,
	KeyResponseTime,
	KeyTotalTime,
	KeyActiveServers,
	KeyBackupServers,
	KeyStatus,
}

// StatsRow is one parsed record of a stats dump: column name to raw value.
type StatsRow map[string]string

// Stats CSV columns used for row selection.
const (
	ColumnProxyName   = "pxname"
	ColumnServiceName = "svname"
)

// FetchResult is the outcome of fetching one source's stats page.
// Err is set when the source was unavailable; Rows is then empty.
type FetchResult struct {
	Source Source
	Rows   []StatsRow
	Err    error
}

// Snapshot is the aggregated result of one poll cycle.
type Snapshot struct {
	Values      map[MetricKey]int64 // every MetricKey is present
	Sources     int                 // configured source count (averaging divisor)
	Reporting   int                 // sources that contributed at least one row
	CollectedAt time.Time
}

// Get returns the value for key, or 0 if absent.
func (s Snapshot) Get(key MetricKey) int64 {
	return s.Values[key]
}
