package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "souq"

// Domain counts business events emitted by the services. All methods are
// safe on a nil receiver.
type Domain struct {
	cartMerges      prometheus.Counter
	ordersPlaced    *prometheus.CounterVec
	statusChanges   *prometheus.CounterVec
	paymentsCapture *prometheus.CounterVec
	capturedAmount  *prometheus.CounterVec
}

// NewDomain registers the domain counters on reg. A nil registerer yields a
// no-op recorder.
func NewDomain(reg prometheus.Registerer) *Domain {
	if reg == nil {
		return nil
	}
	d := &Domain{
		cartMerges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_merges_total",
			Help:      "Session carts merged into user carts.",
		}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders created, by order type.",
		}, []string{"order_type"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Order status writes, by target status and kind (order or quick_order).",
		}, []string{"kind", "status"}),
		paymentsCapture: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_captured_total",
			Help:      "Payments marked as paid, by payment method code.",
		}, []string{"method"}),
		capturedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_captured_amount",
			Help:      "Sum of captured payment amounts, by currency.",
		}, []string{"currency"}),
	}
	reg.MustRegister(d.cartMerges, d.ordersPlaced, d.statusChanges, d.paymentsCapture, d.capturedAmount)
	return d
}

func (d *Domain) CartMerged() {
	if d == nil {
		return
	}
	d.cartMerges.Inc()
}

func (d *Domain) OrderPlaced(orderType string) {
	if d == nil {
		return
	}
	d.ordersPlaced.WithLabelValues(normalizeLabel(orderType)).Inc()
}

func (d *Domain) StatusChanged(kind, status string) {
	if d == nil {
		return
	}
	d.statusChanges.WithLabelValues(normalizeLabel(kind), normalizeLabel(status)).Inc()
}

func (d *Domain) PaymentCaptured(method, currency string, amount decimal.Decimal) {
	if d == nil {
		return
	}
	d.paymentsCapture.WithLabelValues(normalizeLabel(method)).Inc()
	value, _ := amount.Float64()
	if value > 0 {
		d.capturedAmount.WithLabelValues(normalizeLabel(currency)).Add(value)
	}
}
