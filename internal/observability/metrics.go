package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	decodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starwire",
			Subsystem: "codec",
			Name:      "decode_total",
			Help:      "Schema decode calls.",
		},
		[]string{"schema", "success"},
	)
	encodeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starwire",
			Subsystem: "codec",
			Name:      "encode_total",
			Help:      "Schema encode calls.",
		},
		[]string{"schema", "success"},
	)
	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starwire",
			Subsystem: "codec",
			Name:      "bytes_total",
			Help:      "Bytes consumed by decode or produced by encode.",
		},
		[]string{"schema", "direction"},
	)
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "starwire",
			Subsystem: "codec",
			Name:      "duration_seconds",
			Help:      "Schema decode and encode duration in seconds.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"schema", "op"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by the metrics router.",
		},
		[]string{"route", "code"},
	)
)

// Registry is where codec collectors are registered. It defaults to the
// prometheus default registerer.
var Registry prometheus.Registerer = prometheus.DefaultRegisterer

func RegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(decodeTotal, encodeTotal, bytesTotal, duration, httpRequests)
	})
}

func RecordDecode(schema string, n int64, d time.Duration, success bool) {
	RegisterMetrics()
	decodeTotal.WithLabelValues(schema, strconv.FormatBool(success)).Inc()
	bytesTotal.WithLabelValues(schema, "in").Add(float64(n))
	duration.WithLabelValues(schema, "decode").Observe(d.Seconds())
}

func RecordEncode(schema string, n int64, d time.Duration, success bool) {
	RegisterMetrics()
	encodeTotal.WithLabelValues(schema, strconv.FormatBool(success)).Inc()
	bytesTotal.WithLabelValues(schema, "out").Add(float64(n))
	duration.WithLabelValues(schema, "encode").Observe(d.Seconds())
}
