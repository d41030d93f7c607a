// Package metrics exports order lifecycle counters to Prometheus.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"ordercore/domain/orderbook"
)

// Collector is an OrderListener that counts events. Counter children
// are resolved up front so callbacks never allocate.
type Collector struct {
	events     *prometheus.CounterVec
	canceled   *prometheus.CounterVec
	terminated *prometheus.CounterVec
	volume     prometheus.Counter

	reduced   prometheus.Counter
	executed  prometheus.Counter
	filled    prometheus.Counter
	cancelled prometheus.Counter
	byReason  [orderbook.CancelReasonMissed + 1]prometheus.Counter

	Accepted prometheus.Counter
	Rejected *prometheus.CounterVec

	muted atomic.Bool
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "order_events_total",
			Help:      "Order lifecycle events by type.",
		}, []string{"event"}),
		canceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "order_cancels_total",
			Help:      "Terminal cancellations by reason.",
		}, []string{"reason"}),
		terminated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "orders_terminated_total",
			Help:      "Terminated orders by outcome.",
		}, []string{"outcome"}),
		volume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "executed_size_total",
			Help:      "Total executed size.",
		}),
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "orders_accepted_total",
			Help:      "Orders accepted.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordercore",
			Name:      "orders_rejected_total",
			Help:      "Orders rejected by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(c.events, c.canceled, c.terminated, c.volume, c.Accepted, c.Rejected)

	c.reduced = c.events.WithLabelValues("reduced")
	c.executed = c.events.WithLabelValues("executed")
	c.filled = c.terminated.WithLabelValues("filled")
	c.cancelled = c.terminated.WithLabelValues("canceled")
	for r := range c.byReason {
		c.byReason[r] = c.canceled.WithLabelValues(orderbook.CancelReason(r).String())
	}
	return c
}

// Mute stops the listener callbacks from counting while set. Replay
// mutes the collector so recovered history is not counted twice.
func (c *Collector) Mute(on bool) { c.muted.Store(on) }

func (c *Collector) OnOrderReduced(int64, *orderbook.Order, int64) {
	if c.muted.Load() {
		return
	}
	c.reduced.Inc()
}

func (c *Collector) OnOrderCanceled(_ int64, _ *orderbook.Order, reason orderbook.CancelReason) {
	if c.muted.Load() {
		return
	}
	if int(reason) < len(c.byReason) {
		c.byReason[reason].Inc()
	}
}

func (c *Collector) OnOrderExecuted(_ int64, _ *orderbook.Order, _ orderbook.ExecuteSide, size, _, _, _ int64) {
	if c.muted.Load() {
		return
	}
	c.executed.Inc()
	c.volume.Add(float64(size))
}

func (c *Collector) OnOrderTerminated(_ int64, o *orderbook.Order) {
	if c.muted.Load() {
		return
	}
	if o.CanceledSize() == 0 {
		c.filled.Inc()
		return
	}
	c.cancelled.Inc()
}

// Reject counts a rejected order.
func (c *Collector) Reject(reason orderbook.RejectReason) {
	c.Rejected.WithLabelValues(reason.String()).Inc()
}
