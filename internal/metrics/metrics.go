package metrics

import (
	"errors"
	"net/http"

	"fenrir/internal/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts what goes through a book. It is fed by whoever drives the
// book, never by the book itself.
type Metrics struct {
	registry *prometheus.Registry

	ordersAccepted prometheus.Counter
	ordersDropped  *prometheus.CounterVec
	tradesExecuted prometheus.Counter
	tradedQuantity prometheus.Counter
	restingOrders  *prometheus.GaugeVec
}

func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_accepted_total",
			Help:      "Total number of order events accepted by the book",
		}),

		ordersDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_dropped_total",
			Help:      "Total number of order events dropped, by reason",
		}, []string{"reason"}),

		tradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_executed_total",
			Help:      "Total number of executions written to the ledger",
		}),

		tradedQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Total quantity executed",
		}),

		restingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Current number of resting orders by side",
		}, []string{"side"}),
	}

	registry.MustRegister(
		m.ordersAccepted,
		m.ordersDropped,
		m.tradesExecuted,
		m.tradedQuantity,
		m.restingOrders,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAccepted() {
	m.ordersAccepted.Inc()
}

// ObserveDropped counts a dropped event under the kind of error that dropped
// it.
func (m *Metrics) ObserveDropped(err error) {
	m.ordersDropped.WithLabelValues(dropReason(err)).Inc()
}

func (m *Metrics) ObserveTrades(trades []common.Trade) {
	for _, trade := range trades {
		m.tradesExecuted.Inc()
		m.tradedQuantity.Add(float64(trade.MatchQty))
	}
}

func (m *Metrics) ObserveDepth(bids, asks int) {
	m.restingOrders.WithLabelValues(common.Buy.String()).Set(float64(bids))
	m.restingOrders.WithLabelValues(common.Sell.String()).Set(float64(asks))
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, common.ErrMalformedOrder):
		return "malformed"
	case errors.Is(err, common.ErrRejectedOrder):
		return "rejected"
	}
	return "other"
}
