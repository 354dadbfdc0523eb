package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gleipnir/internal/common"
)

// Collector holds the matching session counters. All observation happens
// on the producer thread, so the hot path only pays for atomic adds.
type Collector struct {
	InboundTotal    *prometheus.CounterVec
	BookEventsTotal *prometheus.CounterVec
	MatchedQty      prometheus.Counter
	RingDepth       prometheus.Gauge

	registry *prometheus.Registry
}

func NewCollector() *Collector {
	c := &Collector{
		InboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gleipnir_inbound_orders_total",
			Help: "Inbound order events consumed, by kind.",
		}, []string{"kind"}),
		BookEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gleipnir_book_events_total",
			Help: "Book events produced by the engine, by kind.",
		}, []string{"kind"}),
		MatchedQty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gleipnir_matched_qty_total",
			Help: "Total quantity traded across all fills.",
		}),
		RingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gleipnir_ring_depth",
			Help: "Book events buffered between producer and consumer.",
		}),
		registry: prometheus.NewRegistry(),
	}
	c.registry.MustRegister(c.InboundTotal, c.BookEventsTotal, c.MatchedQty, c.RingDepth)
	return c
}

// Handler serves the collector's registry over HTTP.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveInbound(event common.Inbound) {
	switch event.(type) {
	case common.LimitOrder:
		c.InboundTotal.WithLabelValues("limit").Inc()
	case common.MarketOrder:
		c.InboundTotal.WithLabelValues("market").Inc()
	case common.CancelOrder:
		c.InboundTotal.WithLabelValues("cancel").Inc()
	}
}

func (c *Collector) ObserveBookEvent(event common.BookEvent) {
	switch ev := event.(type) {
	case common.MatchEvent:
		c.BookEventsTotal.WithLabelValues("match").Inc()
		c.MatchedQty.Add(float64(ev.Qty))
	case common.CancelEvent:
		c.BookEventsTotal.WithLabelValues("cancel").Inc()
	case common.InsertEvent:
		c.BookEventsTotal.WithLabelValues("insert").Inc()
	case common.SnapshotEvent:
		c.BookEventsTotal.WithLabelValues("snapshot").Inc()
	}
}
