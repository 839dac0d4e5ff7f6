package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zinxon/towber-api/api/controllers"
	ordercontrollers "github.com/zinxon/towber-api/api/controllers/orders"
	webhookcontrollers "github.com/zinxon/towber-api/api/controllers/webhooks"
	"github.com/zinxon/towber-api/api/middleware"
	"github.com/zinxon/towber-api/internal/orders"
	stripewebhook "github.com/zinxon/towber-api/internal/webhooks/stripe"
	"github.com/zinxon/towber-api/pkg/config"
	"github.com/zinxon/towber-api/pkg/logger"
	"github.com/zinxon/towber-api/pkg/stripe"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	OrdersService orders.Service
	StripeClient  *stripe.Client
	WebhookSvc    webhookcontrollers.StripeWebhookService
	WebhookGuard  *stripewebhook.IdempotencyGuard
	Metrics       prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(d.Config))
		r.Get("/ready", controllers.HealthReady(d.Config, d.Logger, map[string]controllers.Pinger{
			"postgres": d.DB,
			"redis":    d.Redis,
		}))
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", ordercontrollers.Create(d.OrdersService, d.Logger))
		r.Get("/", ordercontrollers.List(d.OrdersService, d.Logger))
		r.Post("/create-payment-intent", ordercontrollers.CreatePaymentIntent(d.OrdersService, d.Logger))
		r.Post("/process-payment", ordercontrollers.ProcessPayment(d.OrdersService, d.Logger))
		r.Post("/webhook", webhookcontrollers.StripeWebhook(d.WebhookSvc, d.StripeClient, d.WebhookGuard, d.Logger))
		r.Get("/phone/{phoneNumber}", ordercontrollers.ByPhone(d.OrdersService, d.Logger))
		r.Get("/{id}", ordercontrollers.Detail(d.OrdersService, d.Logger))
		r.Patch("/{id}", ordercontrollers.Update(d.OrdersService, d.Logger))
		r.Delete("/{id}", ordercontrollers.Delete(d.OrdersService, d.Logger))
		r.Post("/{id}/payment-link", ordercontrollers.PaymentLink(d.OrdersService, d.Logger))
	})

	return r
}
