package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PacketsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_packets_received_total",
		Help: "Decoded packets delivered by the APRS-IS feed",
	})
	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_parse_errors_total",
		Help: "Feed lines dropped because they could not be parsed",
	})
	LinesEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_lines_encoded_total",
		Help: "Records encoded into line protocol",
	})
	FormatsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_formats_skipped_total",
		Help: "Records skipped because their format is not stored",
	})
	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_duplicates_dropped_total",
		Help: "Records suppressed by the duplicate filter",
	})
	WriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_write_errors_total",
		Help: "Failed InfluxDB writes",
	})
	HeartbeatsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aprs_heartbeats_sent_total",
		Help: "Status beacons sent to keep the session alive",
	})
)

func StartMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	_ = http.ListenAndServe(":"+port, nil)
}
