package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentlink"
	"github.com/stripe/stripe-go/v84/price"
	"github.com/stripe/stripe-go/v84/product"

	"github.com/zinxon/towber-api/pkg/db/models"
	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
	"github.com/zinxon/towber-api/pkg/metrics"
	pkgstripe "github.com/zinxon/towber-api/pkg/stripe"
)

// StripePaymentClient exposes the subset of Stripe operations required by the
// payment gateway.
type StripePaymentClient interface {
	CreateProduct(ctx context.Context, params *stripe.ProductParams) (*stripe.Product, error)
	CreatePrice(ctx context.Context, params *stripe.PriceParams) (*stripe.Price, error)
	CreatePaymentLink(ctx context.Context, params *stripe.PaymentLinkParams) (*stripe.PaymentLink, error)
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct{}

// NewStripePaymentClient wraps the provided Stripe client so the gateway can be tested.
func NewStripePaymentClient(api *pkgstripe.Client) StripePaymentClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateProduct(ctx context.Context, params *stripe.ProductParams) (*stripe.Product, error) {
	if params != nil {
		params.Context = ctx
	}
	return product.New(params)
}

func (w *stripeClientWrapper) CreatePrice(ctx context.Context, params *stripe.PriceParams) (*stripe.Price, error) {
	if params != nil {
		params.Context = ctx
	}
	return price.New(params)
}

func (w *stripeClientWrapper) CreatePaymentLink(ctx context.Context, params *stripe.PaymentLinkParams) (*stripe.PaymentLink, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentlink.New(params)
}

func (w *stripeClientWrapper) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

type stripeGateway struct {
	client   StripePaymentClient
	currency string
	metrics  *metrics.OrderMetrics
}

// NewStripeGateway builds the production payment gateway.
func NewStripeGateway(client StripePaymentClient, currency string, m *metrics.OrderMetrics) (PaymentGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe payment client required")
	}
	if currency == "" {
		currency = "cad"
	}
	return &stripeGateway{client: client, currency: currency, metrics: m}, nil
}

// CreatePaymentLink mints the product, price and payment link for an order.
// Metadata carries the order id so the webhook reconciler can find its way back.
func (g *stripeGateway) CreatePaymentLink(ctx context.Context, order *models.TowberOrder) (*PaymentArtifacts, error) {
	meta := orderMetadata(order)

	start := time.Now()
	prod, err := g.client.CreateProduct(ctx, &stripe.ProductParams{
		Name:     stripe.String(fmt.Sprintf("Towing Service - %s", order.ServiceType)),
		Metadata: meta,
	})
	g.metrics.ObserveStripeCall("product", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe product").
			WithDetails(paymentStepDetails(order, "payment_link"))
	}

	start = time.Now()
	pr, err := g.client.CreatePrice(ctx, &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(amountInCents(order.PriceWithTax)),
		Currency:   stripe.String(g.currency),
		Metadata:   meta,
	})
	g.metrics.ObserveStripeCall("price", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe price").
			WithDetails(paymentStepDetails(order, "payment_link"))
	}

	start = time.Now()
	link, err := g.client.CreatePaymentLink(ctx, &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(pr.ID), Quantity: stripe.Int64(1)},
		},
		Metadata: meta,
	})
	g.metrics.ObserveStripeCall("payment_link", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe payment link").
			WithDetails(paymentStepDetails(order, "payment_link"))
	}

	return &PaymentArtifacts{PaymentLink: link.URL}, nil
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, order *models.TowberOrder) (*PaymentIntentResult, error) {
	start := time.Now()
	intent, err := g.client.CreatePaymentIntent(ctx, &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(order.PriceWithTax)),
		Currency: stripe.String(g.currency),
		Metadata: orderMetadata(order),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	g.metrics.ObserveStripeCall("payment_intent", time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe payment intent").
			WithDetails(paymentStepDetails(order, "payment_intent"))
	}

	return &PaymentIntentResult{PaymentIntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// ChargeCard confirms a payment intent synchronously against the supplied
// payment method.
func (g *stripeGateway) ChargeCard(ctx context.Context, order *models.TowberOrder, paymentMethodID string) (string, error) {
	start := time.Now()
	intent, err := g.client.CreatePaymentIntent(ctx, &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountInCents(order.PriceWithTax)),
		Currency:      stripe.String(g.currency),
		Metadata:      orderMetadata(order),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	})
	g.metrics.ObserveStripeCall("charge", time.Since(start))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "charge payment method").
			WithDetails(paymentStepDetails(order, "charge"))
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return intent.ID, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeDependency, "payment not completed").
			WithDetails(map[string]any{
				"order_id": order.ID.String(),
				"step":     "charge",
				"status":   string(intent.Status),
			})
	}
}

func amountInCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func orderMetadata(order *models.TowberOrder) map[string]string {
	return map[string]string{
		"order_id":      order.ID.String(),
		"customer_name": order.CustomerName,
		"phone_number":  order.PhoneNumber,
		"service_type":  order.ServiceType.String(),
	}
}

func paymentStepDetails(order *models.TowberOrder, step string) map[string]any {
	return map[string]any{
		"order_id": order.ID.String(),
		"step":     step,
	}
}
