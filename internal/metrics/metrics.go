// Package metrics exposes the Prometheus counters/gauges the demo harness
// registers around pkg/dlob: orders ingested, fills/triggers found, and
// resting-limit promotion latency. pkg/dlob itself is metrics-free; these
// are updated only from internal/service.Supervisor's call sites. The
// open-orders gauge is registered, but no call site sets it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the demo harness's metrics. A nil *Registry is not
// valid; always construct via New.
type Registry struct {
	OrdersIngested   *prometheus.CounterVec
	NodesFilled      *prometheus.CounterVec
	NodesTriggered   *prometheus.CounterVec
	OpenOrdersGauge  *prometheus.GaugeVec
	PromotionLatency prometheus.Histogram
}

// New registers and returns a fresh metrics registry.
func New() *Registry {
	return &Registry{
		OrdersIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlob",
			Name:      "orders_ingested_total",
			Help:      "Orders ingested via Supervisor.InsertOrder, by market_type.",
		}, []string{"market_type"}),
		NodesFilled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlob",
			Name:      "nodes_filled_total",
			Help:      "NodeToFill entries returned by FindNodesToFill, by market_type.",
		}, []string{"market_type"}),
		NodesTriggered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlob",
			Name:      "nodes_triggered_total",
			Help:      "NodeToTrigger entries returned by FindNodesToTrigger, by market_type.",
		}, []string{"market_type"}),
		OpenOrdersGauge: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dlob",
			Name:      "open_orders",
			Help:      "Current count of open orders tracked by the DLOB, by market_type.",
		}, []string{"market_type"}),
		PromotionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dlob",
			Name:      "resting_limit_promotion_seconds",
			Help:      "Wall-clock time spent in UpdateRestingLimitOrders per invocation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the Prometheus scrape handler for the demo harness's
// metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
