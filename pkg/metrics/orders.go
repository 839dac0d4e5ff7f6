package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records dispatch pipeline outcomes.
type OrderMetrics struct {
	ordersCreated        *prometheus.CounterVec
	paymentLinks         *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	notificationFailures prometheus.Counter
	stripeDuration       *prometheus.HistogramVec
}

// NewOrderMetrics registers the order pipeline metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Order creation requests by outcome.",
	}, []string{"outcome"})
	paymentLinks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_links_total",
		Help: "Stripe payment link provisioning attempts by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook events by handling result.",
	}, []string{"result"})
	notificationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "operator_notification_failures_total",
		Help: "Telegram notifications that could not be delivered.",
	})
	stripeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stripe_call_duration_seconds",
		Help:    "Duration of outbound Stripe API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"call"})
	reg.MustRegister(ordersCreated, paymentLinks, webhookEvents, notificationFailures, stripeDuration)
	return &OrderMetrics{
		ordersCreated:        ordersCreated,
		paymentLinks:         paymentLinks,
		webhookEvents:        webhookEvents,
		notificationFailures: notificationFailures,
		stripeDuration:       stripeDuration,
	}
}

// IncOrderCreated counts one order creation with the given outcome
// ("created" or "reused").
func (m *OrderMetrics) IncOrderCreated(outcome string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPaymentLink counts one payment link attempt with the given outcome
// ("issued", "skipped" or "failed").
func (m *OrderMetrics) IncPaymentLink(outcome string) {
	if m == nil || m.paymentLinks == nil {
		return
	}
	m.paymentLinks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhookEvent counts one Stripe webhook event with the given result
// ("paid", "duplicate", "ignored" or "anomaly").
func (m *OrderMetrics) IncWebhookEvent(result string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncNotificationFailure counts one undeliverable operator notification.
func (m *OrderMetrics) IncNotificationFailure() {
	if m == nil || m.notificationFailures == nil {
		return
	}
	m.notificationFailures.Inc()
}

// ObserveStripeCall records the duration of the named Stripe API call.
func (m *OrderMetrics) ObserveStripeCall(call string, duration time.Duration) {
	if m == nil || m.stripeDuration == nil {
		return
	}
	m.stripeDuration.WithLabelValues(normalizeLabel(call)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
