package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatferry_events_received_total",
		Help: "Raw dialogue payloads received over HTTP.",
	})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatferry_events_dropped_total",
		Help: "Payloads dropped before processing, by reason.",
	}, []string{"reason"})

	RecordsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatferry_records_merged_total",
		Help: "Finalized records merged into the day log.",
	})

	FirstSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatferry_records_first_seen_total",
		Help: "Merged records whose id was new for the day.",
	})

	TranslateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatferry_translate_failures_total",
		Help: "Translation attempts that returned an error, by provider.",
	}, []string{"provider"})
)

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
